// Package filter narrows, orders and enriches an in-memory list of centers.
// Every stage is pure: distances are resolved by the caller beforehand.
package filter

import (
	"fmt"

	"center-directory-service/internal/models"
)

// TagMode selects how requested tags are matched.
type TagMode int

const (
	// MatchAnyTags keeps centers carrying at least one requested tag.
	MatchAnyTags TagMode = iota
	// MatchAllTags keeps centers carrying every requested tag.
	MatchAllTags
)

func (m TagMode) String() string {
	if m == MatchAllTags {
		return "all"
	}
	return "any"
}

// ParseTagMode accepts "all" or "any"; empty selects def.
func ParseTagMode(s string, def TagMode) (TagMode, error) {
	switch s {
	case "":
		return def, nil
	case "all":
		return MatchAllTags, nil
	case "any":
		return MatchAnyTags, nil
	}
	return def, fmt.Errorf("invalid tag mode %q", s)
}

// ByTags filters centers by tag id. An empty tagIDs keeps everything.
func ByTags(centers []models.Center, tagIDs []int, mode TagMode) []models.Center {
	if len(tagIDs) == 0 {
		return centers
	}

	out := make([]models.Center, 0, len(centers))
	for _, c := range centers {
		if matchTags(c, tagIDs, mode) {
			out = append(out, c)
		}
	}
	return out
}

func matchTags(c models.Center, tagIDs []int, mode TagMode) bool {
	for _, id := range tagIDs {
		has := c.HasTag(id)
		if mode == MatchAnyTags && has {
			return true
		}
		if mode == MatchAllTags && !has {
			return false
		}
	}
	return mode == MatchAllTags
}
