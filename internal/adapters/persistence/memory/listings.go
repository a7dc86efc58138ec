package memory

import (
	"context"
	"sort"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

func matchCommon(f repositories.ListingFilter, status string, price float64) bool {
	if f.Status != "" && string(f.Status) != status {
		return false
	}
	if f.MinPrice > 0 && price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && price > f.MaxPrice {
		return false
	}
	return true
}

// poster resolves the posting user the way Preload("Poster") does
func (s *Store) poster(id uint) *models.User {
	if u, ok := s.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

type propertyRepository struct {
	s *Store
}

func cloneProperty(p *models.Property) *models.Property {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Amenities = append([]string(nil), p.Amenities...)
	c.Poster = nil
	return &c
}

func (r *propertyRepository) Create(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID("properties")
	now := r.s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.s.properties[p.ID] = cloneProperty(p)
	return nil
}

func (r *propertyRepository) GetByID(_ context.Context, id uint) (*models.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := cloneProperty(p)
	c.Poster = r.s.poster(c.PostedBy)
	return c, nil
}

func (r *propertyRepository) Update(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.properties[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	p.UpdatedAt = r.s.now()
	r.s.properties[p.ID] = cloneProperty(p)
	return nil
}

func (r *propertyRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.properties[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.properties, id)
	return nil
}

func (r *propertyRepository) List(_ context.Context, f repositories.ListingFilter, offset, limit int) ([]*models.Property, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*models.Property
	for _, p := range r.s.properties {
		if f.City != "" && p.Location.City != f.City {
			continue
		}
		if f.PropertyType != "" && p.PropertyType != f.PropertyType {
			continue
		}
		if !matchCommon(f, string(p.Status), p.Price) {
			continue
		}
		c := cloneProperty(p)
		c.Poster = r.s.poster(c.PostedBy)
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })

	start, end := page(len(all), offset, limit)
	return all[start:end], int64(len(all)), nil
}

func (r *propertyRepository) ListByPoster(_ context.Context, userID uint, limit int) ([]*models.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*models.Property
	for _, p := range r.s.properties {
		if p.PostedBy == userID {
			all = append(all, cloneProperty(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })
	_, end := page(len(all), 0, limit)
	return all[:end], nil
}

func (r *propertyRepository) IncrementViews(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.properties[id]; ok {
		p.Views++
	}
	return nil
}

func (r *propertyRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.properties)), nil
}

func (r *propertyRepository) CountByPoster(_ context.Context, userID uint) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.properties {
		if p.PostedBy == userID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Cars
// ---------------------------------------------------------------------------

type carRepository struct {
	s *Store
}

func cloneCar(car *models.Car) *models.Car {
	c := *car
	c.Images = append([]string(nil), car.Images...)
	c.Videos = append([]string(nil), car.Videos...)
	c.Poster = nil
	return &c
}

func (r *carRepository) Create(_ context.Context, car *models.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	car.ID = r.s.nextID("cars")
	now := r.s.now()
	car.CreatedAt = now
	car.UpdatedAt = now
	r.s.cars[car.ID] = cloneCar(car)
	return nil
}

func (r *carRepository) GetByID(_ context.Context, id uint) (*models.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	car, ok := r.s.cars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := cloneCar(car)
	c.Poster = r.s.poster(c.PostedBy)
	return c, nil
}

func (r *carRepository) Update(_ context.Context, car *models.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cars[car.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	car.UpdatedAt = r.s.now()
	r.s.cars[car.ID] = cloneCar(car)
	return nil
}

func (r *carRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cars[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.cars, id)
	return nil
}

func (r *carRepository) List(_ context.Context, f repositories.ListingFilter, offset, limit int) ([]*models.Car, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*models.Car
	for _, car := range r.s.cars {
		if f.Make != "" && car.Make != f.Make {
			continue
		}
		if f.Condition != "" && car.Condition != f.Condition {
			continue
		}
		if !matchCommon(f, string(car.Status), car.Price) {
			continue
		}
		c := cloneCar(car)
		c.Poster = r.s.poster(c.PostedBy)
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })

	start, end := page(len(all), offset, limit)
	return all[start:end], int64(len(all)), nil
}

func (r *carRepository) ListByPoster(_ context.Context, userID uint, limit int) ([]*models.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*models.Car
	for _, car := range r.s.cars {
		if car.PostedBy == userID {
			all = append(all, cloneCar(car))
		}
	}
	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID) })
	_, end := page(len(all), 0, limit)
	return all[:end], nil
}

func (r *carRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.cars)), nil
}

func (r *carRepository) CountByPoster(_ context.Context, userID uint) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, car := range r.s.cars {
		if car.PostedBy == userID {
			n++
		}
	}
	return n, nil
}
