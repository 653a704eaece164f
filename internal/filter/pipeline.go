package filter

import (
	"time"

	"center-directory-service/internal/models"
	"center-directory-service/internal/schedule"
)

// Criteria is a parsed browse or search request.
type Criteria struct {
	TagIDs    []int
	TagMode   TagMode
	Ranges    []Range
	Hours     []HoursPredicate
	LateScope LateScope
	Sort      SortMode
}

// NeedsDistance reports whether Apply will consult distances.
func (c Criteria) NeedsDistance() bool {
	return len(c.Ranges) > 0
}

// Apply runs the tag, distance and hours filters, then sorts.
func Apply(centers []models.Center, crit Criteria, distances map[int]*float64, engine *schedule.Engine, now time.Time) []models.Center {
	out := ByTags(centers, crit.TagIDs, crit.TagMode)
	out = ByDistance(out, distances, crit.Ranges)
	out = ByHours(out, crit.Hours, crit.LateScope, engine, now)
	return Sort(out, crit.Sort, now)
}
