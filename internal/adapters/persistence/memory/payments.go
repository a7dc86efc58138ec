package memory

import (
	"context"
	"sort"

	"atw-marketplace/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type paymentRepository struct {
	s *Store
}

func (r *paymentRepository) Create(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.Reference == p.Reference {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ID = r.s.nextID("payments")
	now := r.s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	c := *p
	r.s.payments[p.ID] = &c
	return nil
}

func (r *paymentRepository) GetByReference(_ context.Context, reference string) (*models.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payments {
		if p.Reference == reference {
			c := *p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *paymentRepository) Update(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	p.UpdatedAt = r.s.now()
	c := *p
	r.s.payments[p.ID] = &c
	return nil
}

func (r *paymentRepository) List(_ context.Context, offset, limit int) ([]*models.Payment, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]*models.Payment, 0, len(r.s.payments))
	for _, p := range r.s.payments {
		c := *p
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })
	start, end := page(len(all), offset, limit)
	return all[start:end], int64(len(all)), nil
}
