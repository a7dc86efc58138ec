package handlers

import (
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AgentHandler handles the agent application endpoints
type AgentHandler struct {
	agentService *services.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentService *services.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

// RejectRequest represents the optional rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Apply submits the caller's agent application
// @Summary Submit agent application
// @Tags Agent
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitApplicationInput true "Application form"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /agent/apply [post]
func (h *AgentHandler) Apply(c *fiber.Ctx) error {
	var req services.SubmitApplicationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	app, err := h.agentService.Submit(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "application submitted", fiber.Map{"applicationId": app.ID})
}

// MyApplication returns the caller's application
// @Summary Get my application
// @Tags Agent
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /agent/my-application [get]
func (h *AgentHandler) MyApplication(c *fiber.Ctx) error {
	app, err := h.agentService.GetMyApplication(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "application retrieved", app)
}

// Pending lists pending applications (Admin only)
// @Summary List pending applications
// @Tags Agent
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /agent/applications/pending [get]
func (h *AgentHandler) Pending(c *fiber.Ctx) error {
	apps, err := h.agentService.GetPendingApplications(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "pending applications retrieved", apps)
}

// Approve approves a pending application (Admin only)
// @Summary Approve application
// @Tags Agent
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /agent/applications/{id}/approve [patch]
func (h *AgentHandler) Approve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	app, err := h.agentService.Approve(c.UserContext(), id, middleware.CurrentUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "application approved", app)
}

// Reject rejects a pending application (Admin only)
// @Summary Reject application
// @Tags Agent
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body RejectRequest false "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /agent/applications/{id}/reject [patch]
func (h *AgentHandler) Reject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}

	var req RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}

	app, err := h.agentService.Reject(c.UserContext(), id, middleware.CurrentUserID(c), req.Reason)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "application rejected", app)
}
