package repositories

import (
	"context"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/core/domain"

	"gorm.io/gorm"
)

// agentApplicationRepository implements AgentApplicationRepository interface
type agentApplicationRepository struct {
	db *gorm.DB
}

// NewAgentApplicationRepository creates a new agent application repository
func NewAgentApplicationRepository(db *gorm.DB) AgentApplicationRepository {
	return &agentApplicationRepository{db: db}
}

// Create creates a new application
func (r *agentApplicationRepository) Create(ctx context.Context, app *models.AgentApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID
func (r *agentApplicationRepository) GetByID(ctx context.Context, id uint) (*models.AgentApplication, error) {
	var app models.AgentApplication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByUserID gets the application submitted by a user
func (r *agentApplicationRepository) GetByUserID(ctx context.Context, userID uint) (*models.AgentApplication, error) {
	var app models.AgentApplication
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ExistsByUserID checks if the user already has an application in any status
func (r *agentApplicationRepository) ExistsByUserID(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AgentApplication{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// GetWithApplicant gets an application and its applicant with a second lookup
func (r *agentApplicationRepository) GetWithApplicant(ctx context.Context, id uint) (*models.AgentApplication, *models.User, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", app.UserID).First(&user).Error; err != nil {
		return app, nil, err
	}
	return app, &user, nil
}

// ListPendingWithApplicants lists pending applications newest first, joined with applicants
func (r *agentApplicationRepository) ListPendingWithApplicants(ctx context.Context) ([]*models.ApplicationWithUser, error) {
	var apps []*models.AgentApplication
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.ApplicationPending).
		Order("applied_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return []*models.ApplicationWithUser{}, nil
	}

	userIDs := make([]uint, 0, len(apps))
	for _, a := range apps {
		userIDs = append(userIDs, a.UserID)
	}

	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]*models.ApplicationWithUser, 0, len(apps))
	for _, a := range apps {
		item := &models.ApplicationWithUser{AgentApplication: a}
		if u, ok := byID[a.UserID]; ok {
			item.Applicant = u.ToSummary()
		}
		result = append(result, item)
	}
	return result, nil
}

// DecideIfPending writes the decision with a status guard
func (r *agentApplicationRepository) DecideIfPending(ctx context.Context, id uint, d ApplicationDecision) (bool, error) {
	updates := map[string]interface{}{
		"status":      d.Status,
		"reviewed_by": d.ReviewedBy,
		"reviewed_at": d.ReviewedAt,
	}
	if d.RejectionReason != "" {
		updates["rejection_reason"] = d.RejectionReason
	}

	res := r.db.WithContext(ctx).
		Model(&models.AgentApplication{}).
		Where("id = ? AND status = ?", id, domain.ApplicationPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountByStatus counts applications in a status
func (r *agentApplicationRepository) CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AgentApplication{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
