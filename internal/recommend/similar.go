package recommend

import (
	"fmt"

	"center-directory-service/internal/models"
	"center-directory-service/internal/similarity"
)

// Similar ranks candidates by composite similarity to target, excluding target
// itself. limit <= 0 returns all.
func Similar(target models.Center, candidates []models.Center, limit int, w similarity.Weights) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		bd := similarity.Centers(target, c, w)
		out = append(out, Scored{
			Center:    c,
			Score:     bd.Score,
			Breakdown: bd.Map(),
			Reason:    similarReason(bd, c, target),
		})
	}

	sortScored(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func similarReason(bd similarity.Breakdown, c, target models.Center) string {
	shared := 0
	for _, t := range c.Tags {
		for _, u := range target.Tags {
			if t.Name == u.Name {
				shared++
				break
			}
		}
	}

	switch {
	case bd.Tags >= bd.Distance && shared > 0:
		if shared == 1 {
			return "Shares 1 amenity"
		}
		return fmt.Sprintf("Shares %d amenities", shared)
	case bd.Distance > 0:
		return "Nearby"
	case bd.Hours >= 0.5:
		return "Similar opening hours"
	default:
		return "Similar rating"
	}
}
