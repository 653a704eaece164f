// Package recommend ranks centers for a user from their reactions and filter
// history, and ranks centers similar to a given one.
package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"center-directory-service/internal/filter"
	"center-directory-service/internal/models"
	"center-directory-service/internal/similarity"
)

// DefaultTopFilters is how many of the user's most clicked tags feed the boost.
const DefaultTopFilters = 5

// Weights controls how the four personal signals combine.
type Weights struct {
	Liked    float64
	Disliked float64
	Filters  float64
	Quality  float64
}

func DefaultWeights() Weights {
	return Weights{Liked: 0.5, Disliked: 0.3, Filters: 0.3, Quality: 0.1}
}

// Rule types understood by WithRules.
const (
	RuleLiked    = "liked"
	RuleDisliked = "disliked"
	RuleFilters  = "filters"
	RuleQuality  = "quality"
)

// WithRules returns w with each rule's weight replacing the matching signal.
// Unknown rule types and negative weights are ignored.
func (w Weights) WithRules(rules []models.RecommendationRule) Weights {
	for _, r := range rules {
		if r.Weight < 0 {
			continue
		}
		switch r.RuleType {
		case RuleLiked:
			w.Liked = r.Weight
		case RuleDisliked:
			w.Disliked = r.Weight
		case RuleFilters:
			w.Filters = r.Weight
		case RuleQuality:
			w.Quality = r.Weight
		}
	}
	return w
}

// Profile is what is known about a user's taste.
type Profile struct {
	Liked    []models.Center
	Disliked []models.Center
	Filters  []models.FilterInteraction
}

// Scored is a ranked candidate with its component scores.
type Scored struct {
	Center    models.Center
	Score     float64
	Breakdown map[string]float64
	Reason    string
}

// Scorer computes personalized relevance scores. Scores are only meaningful
// relative to each other.
type Scorer struct {
	weights    Weights
	similarity similarity.Weights
	topFilters int
}

// NewScorer creates a scorer. A non-positive topFilters uses DefaultTopFilters.
func NewScorer(w Weights, sw similarity.Weights, topFilters int) *Scorer {
	if topFilters <= 0 {
		topFilters = DefaultTopFilters
	}
	return &Scorer{weights: w, similarity: sw.Normalize(), topFilters: topFilters}
}

// Weights returns the personal signal weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// TopFilters is how many of the user's most clicked tags feed the boost.
func (s *Scorer) TopFilters() int {
	return s.topFilters
}

// WithWeights returns a copy of s using w for the personal signals.
func (s *Scorer) WithWeights(w Weights) *Scorer {
	cp := *s
	cp.weights = w
	return &cp
}

// Score computes one candidate's relevance.
func (s *Scorer) Score(c models.Center, p Profile, now time.Time) Scored {
	liked, closest := s.meanSimilarity(c, p.Liked)
	disliked, _ := s.meanSimilarity(c, p.Disliked)
	boost, matched := s.filterBoost(c, p.Filters)
	quality := Quality(c, now)

	parts := map[string]float64{
		"liked":    s.weights.Liked * liked,
		"disliked": -s.weights.Disliked * disliked,
		"filters":  s.weights.Filters * boost,
		"quality":  s.weights.Quality * quality,
	}
	total := parts["liked"] + parts["disliked"] + parts["filters"] + parts["quality"]

	return Scored{
		Center:    c,
		Score:     total,
		Breakdown: parts,
		Reason:    reason(parts, closest, matched),
	}
}

// Rank scores every candidate the user has not reacted to and returns them
// best first, ties broken by id. limit <= 0 returns all.
func (s *Scorer) Rank(candidates []models.Center, p Profile, limit int, now time.Time) []Scored {
	excluded := make(map[int]bool, len(p.Liked)+len(p.Disliked))
	for _, c := range p.Liked {
		excluded[c.ID] = true
	}
	for _, c := range p.Disliked {
		excluded[c.ID] = true
	}

	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if excluded[c.ID] {
			continue
		}
		out = append(out, s.Score(c, p, now))
	}

	sortScored(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Quality is the profile-independent base score: mostly mean rating, partly
// review recency.
func Quality(c models.Center, now time.Time) float64 {
	var rating float64
	if avg := c.AverageRating(); avg != nil {
		rating = *avg / 5
	}
	return 0.7*rating + 0.3*filter.Recency(c, now)
}

func (s *Scorer) meanSimilarity(c models.Center, refs []models.Center) (float64, *models.Center) {
	if len(refs) == 0 {
		return 0, nil
	}
	var (
		sum     float64
		best    = -1.0
		closest *models.Center
	)
	for i := range refs {
		score := similarity.Centers(c, refs[i], s.similarity).Score
		sum += score
		if score > best {
			best, closest = score, &refs[i]
		}
	}
	return sum / float64(len(refs)), closest
}

// filterBoost is the click-weighted share of the user's top tags the
// candidate carries.
func (s *Scorer) filterBoost(c models.Center, filters []models.FilterInteraction) (float64, []string) {
	top := append([]models.FilterInteraction(nil), filters...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].ClickCount > top[j].ClickCount })
	if len(top) > s.topFilters {
		top = top[:s.topFilters]
	}

	var total, hit int
	var matched []string
	for _, f := range top {
		if f.ClickCount <= 0 {
			continue
		}
		total += f.ClickCount
		if c.HasTag(f.TagID) {
			hit += f.ClickCount
			matched = append(matched, f.TagName)
		}
	}
	if total == 0 {
		return 0, nil
	}
	return float64(hit) / float64(total), matched
}

func reason(parts map[string]float64, closest *models.Center, matched []string) string {
	switch {
	case closest != nil && parts["liked"] > 0 && parts["liked"] >= parts["filters"]:
		return fmt.Sprintf("Similar to %s, which you liked", closest.Name)
	case len(matched) > 0:
		return fmt.Sprintf("Offers %s, which you often filter by", strings.Join(matched, ", "))
	case parts["quality"] > 0:
		return "Highly rated by visitors"
	default:
		return "Recently added center"
	}
}

func sortScored(out []Scored) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Center.ID < out[j].Center.ID
	})
}
