package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"center-directory-service/internal/distance"
	"center-directory-service/internal/filter"
	"center-directory-service/internal/models"
	"center-directory-service/internal/service"
	"center-directory-service/internal/validation"
)

type CenterHandler struct {
	svc      *service.CenterService
	maxLimit int
}

func NewCenterHandler(svc *service.CenterService, maxLimit int) *CenterHandler {
	return &CenterHandler{svc: svc, maxLimit: maxLimit}
}

// Health returns service health status.
func (h *CenterHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "center-directory-service",
	})
}

// ListTags godoc
// GET /api/v1/tags
func (h *CenterHandler) ListTags(c fiber.Ctx) error {
	tags, err := h.svc.ListTags(c.Context())
	if err != nil {
		return respondError(c, err, "failed to list tags")
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// Browse godoc
// GET /api/v1/centers?tags=1,2&tag_mode=any&distance=5miles&lat=..&lng=..&hours=openNow&late_scope=any&sort=recommended
// Tags match any by default; openLate looks at every day by default.
func (h *CenterHandler) Browse(c fiber.Ctx) error {
	tagIDs, err := parseIDList(c.Query("tags"))
	if err != nil {
		return badRequest(c, "tags must be a comma-separated list of ids")
	}
	mode, err := filter.ParseTagMode(c.Query("tag_mode"), filter.MatchAnyTags)
	if err != nil {
		return badRequest(c, err.Error())
	}
	scope, err := filter.ParseLateScope(c.Query("late_scope"), filter.LateAnyDay)
	if err != nil {
		return badRequest(c, err.Error())
	}
	origin, err := parseOrigin(c.Query("lat"), c.Query("lng"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	crit, err := criteria(tagIDs, splitList(c.Query("distance")), splitList(c.Query("hours")), c.Query("sort"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	crit.TagMode = mode
	crit.LateScope = scope

	resp, err := h.svc.Find(c.Context(), crit, origin)
	if err != nil {
		return respondError(c, err, "failed to list centers")
	}
	return c.JSON(resp)
}

// Search godoc
// POST /api/v1/centers/search
// Tags must all match and openLate only looks at today.
func (h *CenterHandler) Search(c fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	crit, err := criteria(req.Tags, req.Distance, req.Hours, req.Sort)
	if err != nil {
		return badRequest(c, err.Error())
	}
	crit.TagMode = filter.MatchAllTags
	crit.LateScope = filter.LateTodayOnly

	var origin *distance.Point
	if req.Lat != nil && req.Lng != nil {
		origin = &distance.Point{Lat: *req.Lat, Lng: *req.Lng}
	}

	resp, err := h.svc.Find(c.Context(), crit, origin)
	if err != nil {
		return respondError(c, err, "failed to search centers")
	}
	return c.JSON(resp)
}

// GetCenter godoc
// GET /api/v1/centers/:id
func (h *CenterHandler) GetCenter(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return badRequest(c, "invalid center ID")
	}
	origin, err := parseOrigin(c.Query("lat"), c.Query("lng"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	center, err := h.svc.GetCenter(c.Context(), id, origin)
	if err != nil {
		return respondError(c, err, "failed to get center")
	}
	return c.JSON(center)
}

// SimilarCenters godoc
// GET /api/v1/centers/:id/similar?limit=5
func (h *CenterHandler) SimilarCenters(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return badRequest(c, "invalid center ID")
	}
	limit := clampLimit(fiber.Query(c, "limit", 5), 5, h.maxLimit)

	resp, err := h.svc.SimilarCenters(c.Context(), id, limit)
	if err != nil {
		return respondError(c, err, "failed to find similar centers")
	}
	return c.JSON(resp)
}

func criteria(tagIDs []int, ranges, hours []string, sort string) (filter.Criteria, error) {
	parsedRanges, err := filter.ParseRanges(ranges)
	if err != nil {
		return filter.Criteria{}, err
	}
	preds, err := filter.ParseHoursPredicates(hours)
	if err != nil {
		return filter.Criteria{}, err
	}
	mode, err := filter.ParseSortMode(sort)
	if err != nil {
		return filter.Criteria{}, err
	}
	return filter.Criteria{TagIDs: tagIDs, Ranges: parsedRanges, Hours: preds, Sort: mode}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIDList(s string) ([]int, error) {
	parts := splitList(s)
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, strconv.ErrSyntax
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseOrigin returns nil when neither coordinate is given.
func parseOrigin(lat, lng string) (*distance.Point, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	la, errLat := strconv.ParseFloat(lat, 64)
	ln, errLng := strconv.ParseFloat(lng, 64)
	if errLat != nil || errLng != nil || la < -90 || la > 90 || ln < -180 || ln > 180 {
		return nil, errInvalidOrigin
	}
	return &distance.Point{Lat: la, Lng: ln}, nil
}

func clampLimit(v, def, maxLimit int) int {
	if v <= 0 {
		return def
	}
	return min(v, maxLimit)
}
