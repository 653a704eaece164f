// Package service holds the request-level operations: it loads data through
// the stores, runs the pure filter and scoring packages over it, and memoizes
// results in the process cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"center-directory-service/internal/models"
	"center-directory-service/internal/repository"
)

var (
	ErrNotFound      = repository.ErrNotFound
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingOrigin = errors.New("distance filter requires lat and lng")
)

// CenterStore is read access to centers with hours, tags and reviews.
type CenterStore interface {
	ListCenters(ctx context.Context) ([]models.Center, error)
	GetCenter(ctx context.Context, id int) (*models.Center, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id int) (*models.Tag, error)
}

// InteractionStore is read/write access to reactions and interaction counters.
type InteractionStore interface {
	GetReactions(ctx context.Context, userID int) (*models.UserReactions, error)
	SetReaction(ctx context.Context, userID, centerID int, reaction models.Reaction) error
	RecordFilterInteraction(ctx context.Context, userID, tagID int) (*models.FilterInteraction, error)
	RecordPageInteraction(ctx context.Context, userID, centerID int, s models.PageSignals) (*models.PageInteraction, error)
	MostClickedFilters(ctx context.Context, userID, limit int) ([]models.FilterInteraction, error)
}

// SnapshotStore persists computed recommendation lists.
type SnapshotStore interface {
	ReplaceSnapshots(ctx context.Context, userID int, scores map[int]float64) error
	GetSnapshots(ctx context.Context, userID, limit int) ([]models.RecommendationSnapshot, error)
}

// RuleStore reads the active scoring weight overrides.
type RuleStore interface {
	GetActiveRules(ctx context.Context) ([]models.RecommendationRule, error)
}

// ListCache memoizes ranked lists. *cache.Cache[CachedList] satisfies it.
type ListCache interface {
	Get(key string) (CachedList, bool)
	Set(key string, value CachedList, ttl time.Duration)
	ClearPrefix(prefix string) int
}

// CachedList is a ranked list and the time it was computed.
type CachedList struct {
	Items       []models.CenterRecommendation
	GeneratedAt time.Time
}

// Lists guards a ListCache against lost invalidations. Each key prefix has a
// generation that Invalidate bumps; a result computed under an older
// generation is dropped instead of stored.
type Lists struct {
	cache ListCache

	mu          sync.Mutex
	generations map[string]uint64
}

func NewLists(cache ListCache) *Lists {
	return &Lists{cache: cache, generations: make(map[string]uint64)}
}

func (l *Lists) Get(key string) (CachedList, bool) {
	return l.cache.Get(key)
}

// Generation returns the current generation of prefix. Capture it before
// loading the inputs of a list that will be stored under prefix.
func (l *Lists) Generation(prefix string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generations[prefix]
}

// SetIfCurrent stores value under key unless prefix was invalidated since
// generation gen was read. It reports whether the value was stored.
func (l *Lists) SetIfCurrent(prefix string, gen uint64, key string, value CachedList, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generations[prefix] != gen {
		return false
	}
	l.cache.Set(key, value, ttl)
	return true
}

// Invalidate drops every entry under prefix and bumps its generation.
func (l *Lists) Invalidate(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generations[prefix]++
	return l.cache.ClearPrefix(prefix)
}

func recommendationKey(userID, limit int) string {
	return fmt.Sprintf("recommendations_%d_%d", userID, limit)
}

func recommendationPrefix(userID int) string {
	return fmt.Sprintf("recommendations_%d_", userID)
}

func similarKey(centerID, limit int) string {
	return fmt.Sprintf("similar_%d_%d", centerID, limit)
}

func similarPrefix(centerID int) string {
	return fmt.Sprintf("similar_%d_", centerID)
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}
