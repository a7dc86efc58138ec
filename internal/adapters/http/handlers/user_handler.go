package handlers

import (
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/pagination"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles admin user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.List(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "users retrieved", result)
}

// DeleteUser removes a user and their agent application (Admin only)
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	if err := h.userService.Delete(c.UserContext(), id, middleware.CurrentUserID(c)); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "user deleted", nil)
}
