package middleware

import (
	"errors"
	"strings"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/jwt"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalUser   = "user"
)

// bearerToken reads the Authorization header first and falls back to the access_token cookie
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); tok != "" {
			return tok
		}
	}
	return c.Cookies("access_token")
}

// AuthMiddleware authenticates the caller and resolves them to a live account
func AuthMiddleware(cfg *config.Config, users repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Extract token
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "no token")
		}

		// 2. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "token expired")
			}
			return response.Unauthorized(c, "invalid token")
		}

		// 3. Resolve the subject; deleted accounts lose access immediately
		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Unauthorized(c, "invalid token")
			}
			logger.FromFiber(c).Error("resolve token subject", zap.Uint("user_id", claims.UserID), zap.Error(err))
			return response.InternalServerError(c, domain.ErrInternal.Error())
		}

		// 4. Set user info in context
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalRole, user.Role)
		c.Locals(LocalUser, user.ToResponse())

		return c.Next()
	}
}

// RoleMiddleware allows only the given roles; it must run after AuthMiddleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(domain.Role)
		if !ok {
			return response.Unauthorized(c, "not authenticated")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "access denied")
	}
}

// AdminOnly allows only admins
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// AgentOnly allows only agents
func AgentOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAgent)
}

// UserOnly allows only regular users
func UserOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleUser)
}

// AgentOrAdmin allows agents and admins
func AgentOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleAgent, domain.RoleAdmin)
}

// CurrentUserID returns the authenticated user id
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

// CurrentRole returns the authenticated user's role
func CurrentRole(c *fiber.Ctx) domain.Role {
	role, _ := c.Locals(LocalRole).(domain.Role)
	return role
}

// CurrentUser returns the sanitized authenticated user
func CurrentUser(c *fiber.Ctx) *models.UserResponse {
	u, _ := c.Locals(LocalUser).(*models.UserResponse)
	return u
}
