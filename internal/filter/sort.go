package filter

import (
	"fmt"
	"sort"
	"time"

	"center-directory-service/internal/models"
)

// SortMode names a rating-based ordering.
type SortMode string

const (
	SortNone                 SortMode = ""
	SortRecommended          SortMode = "recommended"
	SortHighestRated         SortMode = "highestRated"
	SortMostReviewed         SortMode = "mostReviewed"
	SortMostRecentlyReviewed SortMode = "mostRecentlyReviewed"
)

// RecencyHorizon is the review age at which the recency score reaches zero.
const RecencyHorizon = 90 * 24 * time.Hour

// ParseSortMode validates a sort name. Empty means no sort.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case SortNone, SortRecommended, SortHighestRated, SortMostReviewed, SortMostRecentlyReviewed:
		return m, nil
	}
	return SortNone, fmt.Errorf("invalid sort %q", s)
}

// Recency scores the most recent review linearly from 1 (now) to 0 (RecencyHorizon ago).
func Recency(c models.Center, now time.Time) float64 {
	latest := c.LatestReview()
	if latest == nil {
		return 0
	}
	return max(0, 1-float64(now.Sub(*latest))/float64(RecencyHorizon))
}

// RecommendedScore blends mean rating, relative review volume and recency.
// maxReviews is the largest review count in the candidate set.
func RecommendedScore(c models.Center, maxReviews int, now time.Time) float64 {
	var rating, volume float64
	if avg := c.AverageRating(); avg != nil {
		rating = *avg / 5
	}
	if maxReviews > 0 {
		volume = float64(len(c.Reviews)) / float64(maxReviews)
	}
	return 0.5*rating + 0.3*volume + 0.2*Recency(c, now)
}

// Sort returns a stably sorted copy of centers. SortNone returns the input order.
func Sort(centers []models.Center, mode SortMode, now time.Time) []models.Center {
	out := append([]models.Center(nil), centers...)

	switch mode {
	case SortRecommended:
		maxReviews := 0
		for _, c := range out {
			maxReviews = max(maxReviews, len(c.Reviews))
		}
		scores := make(map[int]float64, len(out))
		for _, c := range out {
			scores[c.ID] = RecommendedScore(c, maxReviews, now)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return scores[out[i].ID] > scores[out[j].ID]
		})

	case SortHighestRated:
		sort.SliceStable(out, func(i, j int) bool {
			return ratingOrZero(out[i]) > ratingOrZero(out[j])
		})

	case SortMostReviewed:
		sort.SliceStable(out, func(i, j int) bool {
			return len(out[i].Reviews) > len(out[j].Reviews)
		})

	case SortMostRecentlyReviewed:
		sort.SliceStable(out, func(i, j int) bool {
			li, lj := out[i].LatestReview(), out[j].LatestReview()
			switch {
			case li == nil:
				return false
			case lj == nil:
				return true
			}
			return li.After(*lj)
		})
	}
	return out
}

func ratingOrZero(c models.Center) float64 {
	if avg := c.AverageRating(); avg != nil {
		return *avg
	}
	return 0
}
