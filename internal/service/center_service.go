package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"center-directory-service/internal/distance"
	"center-directory-service/internal/filter"
	"center-directory-service/internal/metrics"
	"center-directory-service/internal/models"
	"center-directory-service/internal/recommend"
	"center-directory-service/internal/schedule"
	"center-directory-service/internal/similarity"
)

type CenterService struct {
	centers  CenterStore
	distance distance.Provider
	engine   *schedule.Engine
	lists    *Lists
	ttl      time.Duration
	weights  similarity.Weights
}

func NewCenterService(
	centers CenterStore,
	provider distance.Provider,
	engine *schedule.Engine,
	lists *Lists,
	ttl time.Duration,
	weights similarity.Weights,
) *CenterService {
	return &CenterService{
		centers:  centers,
		distance: provider,
		engine:   engine,
		lists:    lists,
		ttl:      ttl,
		weights:  weights,
	}
}

// ListTags returns every tag.
func (s *CenterService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.centers.ListTags(ctx)
}

// Find runs the filter pipeline over all centers. origin is optional unless
// crit filters by distance; when given, results carry their distance.
func (s *CenterService) Find(ctx context.Context, crit filter.Criteria, origin *distance.Point) (*models.CenterListResponse, error) {
	if crit.NeedsDistance() && origin == nil {
		return nil, ErrMissingOrigin
	}

	all, err := s.centers.ListCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}

	// Tags first so the provider is only asked about candidates.
	candidates := filter.ByTags(all, crit.TagIDs, crit.TagMode)

	var distances map[int]*float64
	if origin != nil {
		distances = distance.Resolve(ctx, s.distance, *origin, candidates)
	}

	now := s.engine.Clock().Now()
	matched := filter.Apply(candidates, crit, distances, s.engine, now)

	slog.Debug("centers filtered",
		"total", len(all), "matched", len(matched),
		"tags", len(crit.TagIDs), "tag_mode", crit.TagMode.String(),
		"ranges", len(crit.Ranges), "hours", len(crit.Hours), "sort", crit.Sort)

	return &models.CenterListResponse{
		Total:   len(matched),
		Centers: filter.Enrich(matched, distances, s.engine, now),
	}, nil
}

// GetCenter returns one enriched center.
func (s *CenterService) GetCenter(ctx context.Context, id int, origin *distance.Point) (*models.CenterSummary, error) {
	c, err := s.centers.GetCenter(ctx, id)
	if err != nil {
		return nil, err
	}

	var d *float64
	if origin != nil {
		d = distance.Resolve(ctx, s.distance, *origin, []models.Center{*c})[c.ID]
	}

	summary := filter.Summarize(*c, d, s.engine, s.engine.Clock().Now())
	return &summary, nil
}

// SimilarCenters ranks the centers most like id, memoized per (center, limit).
func (s *CenterService) SimilarCenters(ctx context.Context, id, limit int) (*models.SimilarCentersResponse, error) {
	key := similarKey(id, limit)
	if cached, ok := s.lists.Get(key); ok {
		slog.Debug("similar centers cache hit", "center_id", id)
		return &models.SimilarCentersResponse{CenterID: id, Similar: cached.Items}, nil
	}

	started := time.Now()
	prefix := similarPrefix(id)
	gen := s.lists.Generation(prefix)
	all, err := s.centers.ListCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}

	var target *models.Center
	for i := range all {
		if all[i].ID == id {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("center %d: %w", id, ErrNotFound)
	}

	now := s.engine.Clock().Now()
	ranked := recommend.Similar(*target, all, limit, s.weights)
	items := toRecommendations(ranked, s.engine, now)

	s.lists.SetIfCurrent(prefix, gen, key, CachedList{Items: items, GeneratedAt: now}, s.ttl)
	metrics.RecommendationDuration.WithLabelValues("similar").Observe(time.Since(started).Seconds())

	return &models.SimilarCentersResponse{CenterID: id, Similar: items}, nil
}

func toRecommendations(ranked []recommend.Scored, engine *schedule.Engine, now time.Time) []models.CenterRecommendation {
	out := make([]models.CenterRecommendation, len(ranked))
	for i, r := range ranked {
		scores := make(map[string]float64, len(r.Breakdown))
		for k, v := range r.Breakdown {
			scores[k] = roundScore(v)
		}
		out[i] = models.CenterRecommendation{
			Center: filter.Summarize(r.Center, nil, engine, now),
			Score:  roundScore(r.Score),
			Scores: scores,
			Reason: r.Reason,
		}
	}
	return out
}
