package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/jwt"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/password"
	"atw-marketplace/internal/pkg/token"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	notifier *NotificationService
	hasher   *password.Hasher
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	notifier *NotificationService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		notifier: notifier,
		hasher:   password.NewHasher(cfg.Auth.BcryptCost),
		cfg:      cfg,
		now:      time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the issued identity token plus the sanitized user
type LoginResult struct {
	Token     string               `json:"token"`
	ExpiresIn int64                `json:"expiresIn"`
	User      *models.UserResponse `json:"user"`
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register registers a new unverified account and queues the verification email
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.UserResponse, error) {
	// 1. Validate input
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, domain.Validation("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.Validation("invalid email address")
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.Validation("password must be at least 6 characters")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAgent {
		return nil, domain.Validation("role must be user or agent")
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("check email", err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 3. Hash password
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	// 4. Generate verification token
	verifyToken, err := token.New()
	if err != nil {
		return nil, domain.Internal("generate verification token", err)
	}

	// 5. Create user
	user := &models.User{
		Name:              name,
		Email:             email,
		Password:          hashed,
		Role:              role,
		IsVerified:        false,
		VerificationToken: &verifyToken,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, domain.Internal("create user", err)
	}

	// 6. Queue verification email, best effort
	s.notifier.SendVerification(user.Email, user.Name, verifyToken)

	logger.FromContext(ctx).Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user.ToResponse(), nil
}

// Login authenticates a user and issues an identity token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.Validation("email and password are required")
	}

	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal("load user", err)
	}

	// 2. Verify password; same error as unknown email
	if !s.hasher.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Verification gate
	if s.cfg.Auth.RequireEmailVerification && !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}

	// 4. Issue token
	accessToken, err := jwt.GenerateAccessToken(user.ID, string(user.Role), s.cfg.JWT.Secret, s.cfg.JWT.ExpiresIn)
	if err != nil {
		return nil, domain.Internal("sign token", err)
	}

	logger.FromContext(ctx).Info("user logged in", zap.Uint("user_id", user.ID))

	return &LoginResult{
		Token:     accessToken,
		ExpiresIn: int64(s.cfg.JWT.ExpiresIn.Seconds()),
		User:      user.ToResponse(),
	}, nil
}

// VerifyEmail consumes a verification token
func (s *AuthService) VerifyEmail(ctx context.Context, verifyToken string) error {
	if strings.TrimSpace(verifyToken) == "" {
		return domain.Validation("verification token is required")
	}

	user, err := s.userRepo.GetByVerificationToken(ctx, verifyToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Validation("invalid or expired verification token")
		}
		return domain.Internal("load user", err)
	}

	user.IsVerified = true
	user.VerificationToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return domain.Internal("update user", err)
	}

	logger.FromContext(ctx).Info("email verified", zap.Uint("user_id", user.ID))
	return nil
}

// ForgotPassword issues a reset token valid for the configured TTL and queues the reset email
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.Validation("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Internal("load user", err)
	}

	resetToken, err := token.New()
	if err != nil {
		return domain.Internal("generate reset token", err)
	}
	expires := s.now().Add(s.cfg.Auth.ResetTokenTTL)

	user.ResetPasswordToken = &resetToken
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return domain.Internal("update user", err)
	}

	s.notifier.SendPasswordReset(user.Email, user.Name, resetToken)

	logger.FromContext(ctx).Info("password reset requested", zap.Uint("user_id", user.ID))
	return nil
}

// ResetPassword replaces the password when the reset token is known and unexpired
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if strings.TrimSpace(resetToken) == "" || newPassword == "" {
		return domain.Validation("token and new password are required")
	}
	if !password.ValidatePassword(newPassword) {
		return domain.Validation("password must be at least 6 characters")
	}

	user, err := s.userRepo.GetByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Validation("invalid or expired reset token")
		}
		return domain.Internal("load user", err)
	}

	// the persisted expiry must be strictly in the future
	if user.ResetPasswordExpires == nil || !user.ResetPasswordExpires.After(s.now()) {
		return domain.Validation("invalid or expired reset token")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.Internal("hash password", err)
	}

	user.Password = hashed
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return domain.Internal("update user", err)
	}

	logger.FromContext(ctx).Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}

// Profile returns the sanitized profile of the authenticated user
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	if userID == 0 {
		return nil, domain.Unauthorized("not authenticated")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Unauthorized("user no longer exists")
		}
		return nil, domain.Internal("load user", err)
	}
	return user.ToResponse(), nil
}
