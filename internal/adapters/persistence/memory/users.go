package memory

import (
	"context"
	"sort"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/core/domain"

	"gorm.io/gorm"
)

type userRepository struct {
	s *Store
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.nextID("users")
	now := r.s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.userByID(id)
}

func (s *Store) userByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepository) GetByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *userRepository) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
	})
}

func (r *userRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) mutate(id uint, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepository) LinkAgentApplication(_ context.Context, userID, applicationID uint) error {
	return r.mutate(userID, func(u *models.User) {
		u.HasAppliedAsAgent = true
		id := applicationID
		u.AgentApplicationID = &id
	})
}

func (r *userRepository) SetApproved(_ context.Context, userID uint, approved bool) error {
	return r.mutate(userID, func(u *models.User) { u.IsApproved = approved })
}

// Delete removes the user and their application
func (r *userRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for appID, a := range r.s.apps {
		if a.UserID == id {
			delete(r.s.apps, appID)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })

	start, end := page(len(all), offset, limit)
	return all[start:end], int64(len(all)), nil
}

func (r *userRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepository) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

func (r *userRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.ResetPasswordToken != nil && u.ResetPasswordExpires != nil && !u.ResetPasswordExpires.After(now) {
			u.ResetPasswordToken = nil
			u.ResetPasswordExpires = nil
			n++
		}
	}
	return n, nil
}

// newerFirst orders by timestamp descending, ties broken by higher id
func newerFirst(a, b time.Time, aID, bID uint) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}
