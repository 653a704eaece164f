package similarity

import "center-directory-service/internal/models"

// Weights controls how the four similarity scores combine into one.
type Weights struct {
	Tags     float64
	Distance float64
	Rating   float64
	Hours    float64
}

// DefaultWeights favours shared amenities, then proximity.
func DefaultWeights() Weights {
	return Weights{Tags: 0.4, Distance: 0.3, Rating: 0.2, Hours: 0.1}
}

// Normalize scales the weights to sum to 1. All-zero weights become DefaultWeights.
func (w Weights) Normalize() Weights {
	sum := w.Tags + w.Distance + w.Rating + w.Hours
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Tags:     w.Tags / sum,
		Distance: w.Distance / sum,
		Rating:   w.Rating / sum,
		Hours:    w.Hours / sum,
	}
}

// Breakdown holds each component score and their weighted combination.
type Breakdown struct {
	Tags     float64 `json:"tags"`
	Distance float64 `json:"distance"`
	Rating   float64 `json:"rating"`
	Hours    float64 `json:"hours"`
	Score    float64 `json:"score"`
}

// Map returns the component scores keyed by name.
func (b Breakdown) Map() map[string]float64 {
	return map[string]float64{
		"tags":     b.Tags,
		"distance": b.Distance,
		"rating":   b.Rating,
		"hours":    b.Hours,
	}
}

// Centers computes all four similarities between two centers and combines them.
func Centers(a, b models.Center, w Weights) Breakdown {
	w = w.Normalize()
	bd := Breakdown{
		Tags:     Tags(a.Tags, b.Tags),
		Distance: Distance(a, b),
		Rating:   Rating(a.AverageRating(), b.AverageRating()),
		Hours:    Hours(a.Hours, b.Hours),
	}
	bd.Score = clamp(w.Tags*bd.Tags + w.Distance*bd.Distance + w.Rating*bd.Rating + w.Hours*bd.Hours)
	return bd
}
