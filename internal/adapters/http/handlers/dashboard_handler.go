package handlers

import (
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/pagination"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetUserDashboard returns the user's own listing activity
// @Summary User Dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/user [get]
func (h *DashboardHandler) GetUserDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.User(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "user dashboard retrieved", data)
}

// GetAgentDashboard returns listing counts and clients of the agent
// @Summary Agent Dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/agent [get]
func (h *DashboardHandler) GetAgentDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.Agent(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "agent dashboard retrieved", data)
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Global counters, a page of users and the latest listings (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param page query int false "Users page" default(1)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.Admin(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "admin dashboard retrieved", data)
}
