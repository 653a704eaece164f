package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"center-directory-service/internal/filter"
	"center-directory-service/internal/service"
)

var errInvalidOrigin = errors.New("lat and lng must both be valid coordinates")

type ErrorResponse struct {
	Error string `json:"error"`
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// respondError maps service errors to a status code. Unexpected errors are
// logged and answered with fallback.
func respondError(c fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrMissingOrigin),
		errors.Is(err, filter.ErrInvalidRange):
		return badRequest(c, err.Error())
	}

	slog.Error(fallback, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: fallback})
}

// ErrorHandler is the app-level handler for errors returned by routes.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
