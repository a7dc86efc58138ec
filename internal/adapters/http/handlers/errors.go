package handlers

import (
	"errors"
	"strconv"

	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError is the single boundary between service errors and HTTP responses.
// Internals never reach the client.
func handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	log := logger.FromFiber(c).With(zap.Int("status", status), zap.Error(err))

	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error("request failed")
	case status == fiber.StatusBadGateway:
		log.Warn("upstream failed")
	default:
		log.Debug("request rejected")
	}

	message := domain.PublicMessage(err)
	if status == fiber.StatusInternalServerError {
		message = domain.ErrInternal.Error()
	}
	return response.Error(c, status, message)
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validation("invalid " + name)
	}
	return uint(id), nil
}
