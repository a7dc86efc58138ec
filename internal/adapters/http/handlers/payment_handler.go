package handlers

import (
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/pagination"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles Paystack payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Initialize opens a checkout
// @Summary Initialize payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.InitializePaymentInput true "Payment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payments/initialize [post]
func (h *PaymentHandler) Initialize(c *fiber.Ctx) error {
	var req services.InitializePaymentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Email == "" {
		if u := middleware.CurrentUser(c); u != nil {
			req.Email = u.Email
		}
	}

	result, err := h.paymentService.Initialize(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "payment initialized", result)
}

// Verify checks a transaction by reference
// @Summary Verify payment
// @Tags Payments
// @Produce json
// @Param reference path string true "Payment reference"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payments/verify/{reference} [get]
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	payment, err := h.paymentService.Verify(c.UserContext(), c.Params("reference"))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "payment verified", payment)
}

// Transactions lists recorded payments (Admin only)
// @Summary List transactions
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /payments/transactions [get]
func (h *PaymentHandler) Transactions(c *fiber.Ctx) error {
	result, err := h.paymentService.List(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "transactions retrieved", result)
}
