package repositories

import (
	"context"

	"atw-marketplace/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// carRepository implements CarRepository interface
type carRepository struct {
	db *gorm.DB
}

// NewCarRepository creates a new car repository
func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *carRepository) GetByID(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	err := r.db.WithContext(ctx).
		Preload("Poster").
		Where("id = ?", id).
		First(&car).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) Update(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Omit("Poster").Save(car).Error
}

func (r *carRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Car{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List lists cars matching filter, newest first
func (r *carRepository) List(ctx context.Context, filter ListingFilter, offset, limit int) ([]*models.Car, int64, error) {
	var items []*models.Car
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Car{})
	if filter.Make != "" {
		query = query.Where("make = ?", filter.Make)
	}
	if filter.Condition != "" {
		// struct condition so the reserved column name is quoted per dialect
		query = query.Where(&models.Car{Condition: filter.Condition})
	}
	query = applyCommonFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Poster").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *carRepository) ListByPoster(ctx context.Context, userID uint, limit int) ([]*models.Car, error) {
	var items []*models.Car
	err := r.db.WithContext(ctx).
		Where("posted_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *carRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Car{}).Count(&count).Error
	return count, err
}

func (r *carRepository) CountByPoster(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Car{}).Where("posted_by = ?", userID).Count(&count).Error
	return count, err
}
