package services

import (
	"context"
	"time"

	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService runs periodic maintenance jobs
type CronService struct {
	cron     *cron.Cron
	userRepo repositories.UserRepository
	spec     string
	log      *zap.Logger
	now      func() time.Time
}

// NewCronService creates a new cron service
func NewCronService(userRepo repositories.UserRepository, cfg *config.Config, log *zap.Logger) *CronService {
	return &CronService{
		cron:     cron.New(),
		userRepo: userRepo,
		spec:     cfg.Cron.ResetTokenPurge,
		log:      log.Named("cron"),
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.PurgeExpiredResetTokens); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("cron started", zap.String("reset_token_purge", s.spec))
	return nil
}

// Stop stops the scheduler and waits for running jobs, bounded by ctx
func (s *CronService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("cron stopped")
	case <-ctx.Done():
		s.log.Warn("cron stop timed out")
	}
}

// PurgeExpiredResetTokens clears reset tokens whose expiry has passed
func (s *CronService) PurgeExpiredResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.userRepo.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		s.log.Error("purge expired reset tokens", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("purged expired reset tokens", zap.Int64("count", n))
	}
}
