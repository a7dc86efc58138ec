package handlers

import (
	"time"

	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const accessTokenCookie = "access_token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents reset password request body
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Register handles user registration
// @Summary Register new account
// @Description Creates an unverified user or agent account and emails a verification link
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return handleError(c, err)
	}

	return response.Created(c, "registration successful, check your email to verify your account", fiber.Map{
		"user": user,
	})
}

// Login handles user login
// @Summary Login
// @Description Authenticates by email and password and returns an identity token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.authService.Login(c.UserContext(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return handleError(c, err)
	}

	h.setAuthCookie(c, result.Token)

	return response.Success(c, "login successful", result)
}

// Logout clears the auth cookie; bearer tokens simply expire
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearAuthCookie(c)
	return response.Success(c, "logged out", nil)
}

// VerifyEmail consumes the verification token from the emailed link
// @Summary Verify email
// @Tags Auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/verify/{token} [get]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.authService.VerifyEmail(c.UserContext(), c.Params("token")); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "email verified successfully", nil)
}

// ForgotPassword emails a one-hour reset link
// @Summary Forgot password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "password reset link sent", nil)
}

// ResetPassword sets a new password using the emailed token
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body ResetPasswordRequest true "New password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.authService.ResetPassword(c.UserContext(), c.Params("token"), req.Password); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "password reset successful", nil)
}

// Profile returns the current user
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := h.authService.Profile(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "profile retrieved", fiber.Map{"user": user})
}

func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.JWT.ExpiresIn.Seconds()),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

func (h *AuthHandler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
