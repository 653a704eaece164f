package handler

import (
	"github.com/gofiber/fiber/v3"

	"center-directory-service/internal/models"
	"center-directory-service/internal/service"
)

type InteractionHandler struct {
	svc *service.InteractionService
}

func NewInteractionHandler(svc *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

// SetReaction godoc
// PUT /api/v1/users/:id/reactions/:centerId  {"reaction": "like"|"dislike"|"none"}
func (h *InteractionHandler) SetReaction(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	centerID := fiber.Params[int](c, "centerId")
	if userID <= 0 || centerID <= 0 {
		return badRequest(c, "invalid user or center ID")
	}

	var req models.SetReactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reactions, err := h.svc.SetReaction(c.Context(), userID, centerID, req)
	if err != nil {
		return respondError(c, err, "failed to set reaction")
	}
	return c.JSON(reactions)
}

// GetReactions godoc
// GET /api/v1/users/:id/reactions
func (h *InteractionHandler) GetReactions(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}

	reactions, err := h.svc.GetReactions(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "failed to get reactions")
	}
	return c.JSON(reactions)
}

// RecordFilterClick godoc
// POST /api/v1/users/:id/filter-clicks  {"tag_id": 3}
func (h *InteractionHandler) RecordFilterClick(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}

	var req models.FilterClickRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	fi, err := h.svc.RecordFilterClick(c.Context(), userID, req)
	if err != nil {
		return respondError(c, err, "failed to record filter click")
	}
	return c.Status(fiber.StatusCreated).JSON(fi)
}

// MostClickedFilters godoc
// GET /api/v1/users/:id/filter-clicks?limit=5
func (h *InteractionHandler) MostClickedFilters(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return badRequest(c, "invalid user ID")
	}

	filters, err := h.svc.MostClickedFilters(c.Context(), userID, fiber.Query(c, "limit", 5))
	if err != nil {
		return respondError(c, err, "failed to get filter clicks")
	}
	return c.JSON(fiber.Map{
		"user_id": userID,
		"filters": filters,
	})
}

// RecordPageInteraction godoc
// POST /api/v1/users/:id/page-interactions/:centerId
func (h *InteractionHandler) RecordPageInteraction(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	centerID := fiber.Params[int](c, "centerId")
	if userID <= 0 || centerID <= 0 {
		return badRequest(c, "invalid user or center ID")
	}

	var signals models.PageSignals
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&signals); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	pi, err := h.svc.RecordPageInteraction(c.Context(), userID, centerID, signals)
	if err != nil {
		return respondError(c, err, "failed to record page interaction")
	}
	return c.JSON(pi)
}
