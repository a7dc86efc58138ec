package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AgentService handles the agent application workflow
type AgentService struct {
	appRepo  repositories.AgentApplicationRepository
	userRepo repositories.UserRepository
	notifier *NotificationService
	now      func() time.Time
}

// NewAgentService creates a new agent service
func NewAgentService(
	appRepo repositories.AgentApplicationRepository,
	userRepo repositories.UserRepository,
	notifier *NotificationService,
) *AgentService {
	return &AgentService{
		appRepo:  appRepo,
		userRepo: userRepo,
		notifier: notifier,
		now:      time.Now,
	}
}

// SubmitApplicationInput is the agent application form.
// ExperienceYears is a pointer so that "missing" and "0" can be told apart.
type SubmitApplicationInput struct {
	FullName        string   `json:"fullName"`
	Phone           string   `json:"phone"`
	BusinessName    string   `json:"businessName"`
	ExperienceYears *int     `json:"experienceYears"`
	LicenseNumber   string   `json:"licenseNumber"`
	Bio             string   `json:"bio"`
	Documents       []string `json:"documents"`
}

func (in SubmitApplicationInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Phone) == "" ||
		in.ExperienceYears == nil || strings.TrimSpace(in.Bio) == "" {
		return domain.Validation("fullName, phone, experienceYears and bio are required")
	}
	if *in.ExperienceYears < 0 {
		return domain.Validation("experienceYears cannot be negative")
	}
	docs := 0
	for _, d := range in.Documents {
		if strings.TrimSpace(d) != "" {
			docs++
		}
	}
	if docs == 0 {
		return domain.Validation("at least one document is required")
	}
	return nil
}

// Submit records a pending application for the agent and alerts the admin channel
func (s *AgentService) Submit(ctx context.Context, userID uint, input SubmitApplicationInput) (*models.AgentApplication, error) {
	// 1. One application per user, whatever its status
	exists, err := s.appRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("check application", err)
	}
	if exists {
		return nil, domain.Validation("application already submitted")
	}

	// 2. Validate form
	if err := input.validate(); err != nil {
		return nil, err
	}

	docs := make([]string, 0, len(input.Documents))
	for _, d := range input.Documents {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}

	// 3. Persist application
	app := &models.AgentApplication{
		UserID:          userID,
		FullName:        strings.TrimSpace(input.FullName),
		Phone:           strings.TrimSpace(input.Phone),
		BusinessName:    strings.TrimSpace(input.BusinessName),
		ExperienceYears: *input.ExperienceYears,
		LicenseNumber:   strings.TrimSpace(input.LicenseNumber),
		Bio:             strings.TrimSpace(input.Bio),
		Documents:       docs,
		Status:          domain.ApplicationPending,
		AppliedAt:       s.now(),
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Validation("application already submitted")
		}
		return nil, domain.Internal("create application", err)
	}

	// 4. Link the user. Not atomic with step 3: a failure here leaves an
	// application whose user flags are stale, which GetMyApplication still finds.
	if err := s.userRepo.LinkAgentApplication(ctx, userID, app.ID); err != nil {
		return nil, domain.Internal("link application", err)
	}

	// 5. Alert admin channel
	s.notifier.NotifyAdminNewApplication(app.FullName)

	logger.FromContext(ctx).Info("agent application submitted",
		zap.Uint("user_id", userID),
		zap.Uint("application_id", app.ID),
	)

	return app, nil
}

// Approve moves a pending application to approved and enables the agent
func (s *AgentService) Approve(ctx context.Context, applicationID, adminID uint) (*models.AgentApplication, error) {
	app, applicant, err := s.decide(ctx, applicationID, repositories.ApplicationDecision{
		Status:     domain.ApplicationApproved,
		ReviewedBy: adminID,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetApproved(ctx, app.UserID, true); err != nil {
		return nil, domain.Internal("approve user", err)
	}

	if applicant != nil {
		s.notifier.SendApproval(applicant.Email, applicant.Name)
	}

	logger.FromContext(ctx).Info("agent application approved",
		zap.Uint("application_id", app.ID),
		zap.Uint("admin_id", adminID),
	)
	return app, nil
}

// Reject moves a pending application to rejected, storing the reason when given
func (s *AgentService) Reject(ctx context.Context, applicationID, adminID uint, reason string) (*models.AgentApplication, error) {
	reason = strings.TrimSpace(reason)
	app, applicant, err := s.decide(ctx, applicationID, repositories.ApplicationDecision{
		Status:          domain.ApplicationRejected,
		ReviewedBy:      adminID,
		ReviewedAt:      s.now(),
		RejectionReason: reason,
	})
	if err != nil {
		return nil, err
	}

	if applicant != nil {
		s.notifier.SendRejection(applicant.Email, applicant.Name, reason)
	}

	logger.FromContext(ctx).Info("agent application rejected",
		zap.Uint("application_id", app.ID),
		zap.Uint("admin_id", adminID),
	)
	return app, nil
}

// decide loads the application with its applicant and applies the guarded transition
func (s *AgentService) decide(ctx context.Context, applicationID uint, d repositories.ApplicationDecision) (*models.AgentApplication, *models.User, error) {
	app, applicant, err := s.appRepo.GetWithApplicant(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) && app == nil {
			return nil, nil, domain.Validation("invalid application or status")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.Internal("load application", err)
		}
		// applicant row is gone; the decision still stands, no email goes out
		logger.FromContext(ctx).Warn("application has no applicant", zap.Uint("application_id", applicationID))
	}

	if app.Status != domain.ApplicationPending {
		return nil, nil, domain.Validation("invalid application or status")
	}

	ok, err := s.appRepo.DecideIfPending(ctx, applicationID, d)
	if err != nil {
		return nil, nil, domain.Internal("update application", err)
	}
	if !ok {
		return nil, nil, domain.Conflict("application was already reviewed")
	}

	app.Status = d.Status
	reviewer := d.ReviewedBy
	app.ReviewedBy = &reviewer
	at := d.ReviewedAt
	app.ReviewedAt = &at
	if d.RejectionReason != "" {
		app.RejectionReason = d.RejectionReason
	}
	return app, applicant, nil
}

// GetMyApplication returns the caller's application with the reviewer summary
func (s *AgentService) GetMyApplication(ctx context.Context, userID uint) (*models.ApplicationWithUser, error) {
	app, err := s.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("no application found")
		}
		return nil, domain.Internal("load application", err)
	}

	result := &models.ApplicationWithUser{AgentApplication: app}
	if app.ReviewedBy != nil {
		reviewer, err := s.userRepo.GetByID(ctx, *app.ReviewedBy)
		switch {
		case err == nil:
			result.Reviewer = reviewer.ToSummary()
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.Internal("load reviewer", err)
		}
	}
	return result, nil
}

// GetPendingApplications lists pending applications newest first with applicant summaries
func (s *AgentService) GetPendingApplications(ctx context.Context) ([]*models.ApplicationWithUser, error) {
	apps, err := s.appRepo.ListPendingWithApplicants(ctx)
	if err != nil {
		return nil, domain.Internal("list applications", err)
	}
	return apps, nil
}
