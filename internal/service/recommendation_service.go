package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"center-directory-service/internal/metrics"
	"center-directory-service/internal/models"
	"center-directory-service/internal/recommend"
	"center-directory-service/internal/schedule"
)

type RecommendationService struct {
	centers      CenterStore
	interactions InteractionStore
	snapshots    SnapshotStore
	rules        RuleStore
	scorer       *recommend.Scorer
	engine       *schedule.Engine
	lists        *Lists
	ttl          time.Duration
}

func NewRecommendationService(
	centers CenterStore,
	interactions InteractionStore,
	snapshots SnapshotStore,
	rules RuleStore,
	scorer *recommend.Scorer,
	engine *schedule.Engine,
	lists *Lists,
	ttl time.Duration,
) *RecommendationService {
	return &RecommendationService{
		centers:      centers,
		interactions: interactions,
		snapshots:    snapshots,
		rules:        rules,
		scorer:       scorer,
		engine:       engine,
		lists:        lists,
		ttl:          ttl,
	}
}

// GetRecommendations returns the user's personalized ranking, memoized per
// (user, limit) until the TTL elapses or the user reacts to a center.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID, limit int) (*models.RecommendationResponse, error) {
	key := recommendationKey(userID, limit)
	if cached, ok := s.lists.Get(key); ok {
		slog.Debug("recommendations cache hit", "user_id", userID)
		return response(userID, cached), nil
	}

	started := time.Now()
	prefix := recommendationPrefix(userID)
	gen := s.lists.Generation(prefix)

	var (
		all       []models.Center
		reactions *models.UserReactions
		filters   []models.FilterInteraction
		rules     []models.RecommendationRule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = s.centers.ListCenters(gctx)
		return err
	})
	g.Go(func() (err error) {
		reactions, err = s.interactions.GetReactions(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		filters, err = s.interactions.MostClickedFilters(gctx, userID, s.scorer.TopFilters())
		return err
	})
	g.Go(func() (err error) {
		rules, err = s.rules.GetActiveRules(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load recommendation inputs: %w", err)
	}

	profile := recommend.Profile{
		Liked:    pick(all, reactions.Liked),
		Disliked: pick(all, reactions.Disliked),
		Filters:  filters,
	}

	now := s.engine.Clock().Now()
	scorer := s.scorer
	if len(rules) > 0 {
		scorer = scorer.WithWeights(scorer.Weights().WithRules(rules))
	}
	ranked := scorer.Rank(all, profile, limit, now)
	entry := CachedList{Items: toRecommendations(ranked, s.engine, now), GeneratedAt: now}

	if !s.lists.SetIfCurrent(prefix, gen, key, entry, s.ttl) {
		slog.Debug("recommendations invalidated while computing, not cached", "user_id", userID)
	}
	metrics.RecommendationDuration.WithLabelValues("personal").Observe(time.Since(started).Seconds())
	slog.Debug("recommendations computed",
		"user_id", userID, "candidates", len(all), "returned", len(entry.Items),
		"liked", len(profile.Liked), "disliked", len(profile.Disliked), "filters", len(filters))

	go s.persist(userID, entry.Items)

	return response(userID, entry), nil
}

// GetRules returns the active scoring weight overrides.
func (s *RecommendationService) GetRules(ctx context.Context) ([]models.RecommendationRule, error) {
	return s.rules.GetActiveRules(ctx)
}

// GetSnapshots returns the last persisted recommendation list.
func (s *RecommendationService) GetSnapshots(ctx context.Context, userID, limit int) ([]models.RecommendationSnapshot, error) {
	return s.snapshots.GetSnapshots(ctx, userID, limit)
}

func (s *RecommendationService) persist(userID int, items []models.CenterRecommendation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scores := make(map[int]float64, len(items))
	for _, it := range items {
		scores[it.Center.ID] = it.Score
	}
	if err := s.snapshots.ReplaceSnapshots(ctx, userID, scores); err != nil {
		slog.Warn("failed to persist recommendation snapshots", "user_id", userID, "error", err)
	}
}

func response(userID int, entry CachedList) *models.RecommendationResponse {
	return &models.RecommendationResponse{
		UserID:          userID,
		Recommendations: entry.Items,
		GeneratedAt:     entry.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// pick returns the centers whose ids are listed, in all's order.
func pick(all []models.Center, ids []int) []models.Center {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Center
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
