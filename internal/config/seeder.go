package config

import (
	"context"
	"errors"
	"strings"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	users  repositories.UserRepository
	cfg    *Config
	log    *zap.Logger
	hasher *password.Hasher
}

// NewSeeder creates a new seeder instance
func NewSeeder(users repositories.UserRepository, cfg *Config, log *zap.Logger) *Seeder {
	return &Seeder{
		users:  users,
		cfg:    cfg,
		log:    log,
		hasher: password.NewHasher(cfg.Auth.BcryptCost),
	}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	s.log.Info("running database seeders")

	if err := s.seedAdminUser(ctx); err != nil {
		s.log.Warn("admin seeder skipped", zap.Error(err))
	}

	return nil
}

// seedAdminUser creates the bootstrap admin. Admins cannot self-register,
// so this is the only way the first one comes into existence.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.cfg.Seed.AdminEmail))
	if email == "" || s.cfg.Seed.AdminPassword == "" {
		s.log.Debug("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !password.ValidatePassword(s.cfg.Seed.AdminPassword) {
		return errors.New("SEED_ADMIN_PASSWORD is too short")
	}
	hashed, err := s.hasher.Hash(s.cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:       s.cfg.Seed.AdminName,
		Email:      email,
		Password:   hashed,
		Role:       domain.RoleAdmin,
		IsVerified: true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.log.Info("admin user created", zap.String("email", admin.Email), zap.Uint("id", admin.ID))
	return nil
}
