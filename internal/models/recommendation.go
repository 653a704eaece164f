package models

import "time"

// CenterRecommendation is the response shape for a recommended center.
type CenterRecommendation struct {
	Center CenterSummary      `json:"center"`
	Score  float64            `json:"score"`
	Scores map[string]float64 `json:"scores,omitempty"`
	Reason string             `json:"reason"`
}

// RecommendationResponse wraps the recommendation list.
type RecommendationResponse struct {
	UserID          int                    `json:"user_id"`
	Recommendations []CenterRecommendation `json:"recommendations"`
	GeneratedAt     string                 `json:"generated_at"`
}

// SimilarCentersResponse wraps the similar-centers list for one center.
type SimilarCentersResponse struct {
	CenterID int                    `json:"center_id"`
	Similar  []CenterRecommendation `json:"similar"`
}

// RecommendationSnapshot stores a computed recommendation.
type RecommendationSnapshot struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	CenterID    int       `json:"center_id"`
	Score       float64   `json:"score"`
	GeneratedAt time.Time `json:"generated_at"`
}

// RecommendationRule overrides one personal scoring weight while active.
// RuleType is one of liked, disliked, filters, quality.
type RecommendationRule struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	RuleType  string    `json:"rule_type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
