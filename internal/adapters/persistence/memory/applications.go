package memory

import (
	"context"
	"errors"
	"sort"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"

	"gorm.io/gorm"
)

type applicationRepository struct {
	s *Store
}

func cloneApp(a *models.AgentApplication) *models.AgentApplication {
	c := *a
	c.Documents = append([]string(nil), a.Documents...)
	return &c
}

func (r *applicationRepository) Create(_ context.Context, app *models.AgentApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.apps {
		if a.UserID == app.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	app.ID = r.s.nextID("agent_applications")
	now := r.s.now()
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	if app.Status == "" {
		app.Status = domain.ApplicationPending
	}
	app.CreatedAt = now
	app.UpdatedAt = now
	r.s.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *applicationRepository) GetByID(_ context.Context, id uint) (*models.AgentApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneApp(a), nil
}

func (r *applicationRepository) GetByUserID(_ context.Context, userID uint) (*models.AgentApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.apps {
		if a.UserID == userID {
			return cloneApp(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *applicationRepository) ExistsByUserID(ctx context.Context, userID uint) (bool, error) {
	_, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *applicationRepository) GetWithApplicant(_ context.Context, id uint) (*models.AgentApplication, *models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	u, err := r.s.userByID(a.UserID)
	if err != nil {
		return cloneApp(a), nil, err
	}
	return cloneApp(a), u, nil
}

func (r *applicationRepository) ListPendingWithApplicants(_ context.Context) ([]*models.ApplicationWithUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.ApplicationWithUser, 0)
	for _, a := range r.s.apps {
		if a.Status != domain.ApplicationPending {
			continue
		}
		item := &models.ApplicationWithUser{AgentApplication: cloneApp(a)}
		if u, ok := r.s.users[a.UserID]; ok {
			item.Applicant = u.ToSummary()
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].AppliedAt, result[j].AppliedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

// DecideIfPending mirrors the guarded UPDATE ... WHERE status = 'pending'
func (r *applicationRepository) DecideIfPending(_ context.Context, id uint, d repositories.ApplicationDecision) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.apps[id]
	if !ok || a.Status != domain.ApplicationPending {
		return false, nil
	}
	a.Status = d.Status
	reviewer := d.ReviewedBy
	a.ReviewedBy = &reviewer
	at := d.ReviewedAt
	a.ReviewedAt = &at
	if d.RejectionReason != "" {
		a.RejectionReason = d.RejectionReason
	}
	a.UpdatedAt = r.s.now()
	return true, nil
}

func (r *applicationRepository) CountByStatus(_ context.Context, status domain.ApplicationStatus) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, a := range r.s.apps {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}
