package handler

import (
	"github.com/gofiber/fiber/v3"

	"center-directory-service/internal/cache"
	"center-directory-service/internal/service"
)

// StatsSource reports cache statistics.
type StatsSource interface {
	Stats() cache.Stats
}

type RecommendationHandler struct {
	svc      *service.RecommendationService
	stats    StatsSource
	maxLimit int
}

func NewRecommendationHandler(svc *service.RecommendationService, stats StatsSource, maxLimit int) *RecommendationHandler {
	return &RecommendationHandler{svc: svc, stats: stats, maxLimit: maxLimit}
}

// GetRecommendations godoc
// GET /api/v1/users/:id/recommendations?limit=10
func (h *RecommendationHandler) GetRecommendations(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}
	limit := clampLimit(fiber.Query(c, "limit", 10), 10, h.maxLimit)

	resp, err := h.svc.GetRecommendations(c.Context(), userID, limit)
	if err != nil {
		return respondError(c, err, "failed to generate recommendations")
	}
	return c.JSON(resp)
}

// GetSnapshots godoc
// GET /api/v1/users/:id/recommendations/snapshots
func (h *RecommendationHandler) GetSnapshots(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}
	limit := clampLimit(fiber.Query(c, "limit", 10), 10, h.maxLimit)

	snapshots, err := h.svc.GetSnapshots(c.Context(), userID, limit)
	if err != nil {
		return respondError(c, err, "failed to get recommendation snapshots")
	}
	return c.JSON(fiber.Map{
		"user_id":   userID,
		"snapshots": snapshots,
	})
}

// GetRules godoc
// GET /api/v1/rules
func (h *RecommendationHandler) GetRules(c fiber.Ctx) error {
	rules, err := h.svc.GetRules(c.Context())
	if err != nil {
		return respondError(c, err, "failed to get recommendation rules")
	}
	return c.JSON(fiber.Map{"rules": rules})
}

// CacheStats godoc
// GET /api/v1/cache/stats
func (h *RecommendationHandler) CacheStats(c fiber.Ctx) error {
	return c.JSON(h.stats.Stats())
}
