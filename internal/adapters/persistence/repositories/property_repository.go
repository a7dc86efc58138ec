package repositories

import (
	"context"

	"atw-marketplace/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// propertyRepository implements PropertyRepository interface
type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

// Create creates a new property
func (r *propertyRepository) Create(ctx context.Context, p *models.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID gets a property with its poster
func (r *propertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	err := r.db.WithContext(ctx).
		Preload("Poster").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update updates a property
func (r *propertyRepository) Update(ctx context.Context, p *models.Property) error {
	return r.db.WithContext(ctx).Omit("Poster").Save(p).Error
}

// Delete deletes a property
func (r *propertyRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Property{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List lists properties matching filter, newest first
func (r *propertyRepository) List(ctx context.Context, filter ListingFilter, offset, limit int) ([]*models.Property, int64, error) {
	var items []*models.Property
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Property{})
	if filter.City != "" {
		query = query.Where("location_city = ?", filter.City)
	}
	if filter.PropertyType != "" {
		query = query.Where("property_type = ?", filter.PropertyType)
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

// ListByPoster lists the latest properties of a poster
func (r *propertyRepository) ListByPoster(ctx context.Context, userID uint, limit int) ([]*models.Property, error) {
	var items []*models.Property
	err := r.db.WithContext(ctx).
		Where("posted_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// IncrementViews bumps the view counter atomically
func (r *propertyRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Count counts all properties
func (r *propertyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Count(&count).Error
	return count, err
}

// CountByPoster counts properties of a poster
func (r *propertyRepository) CountByPoster(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Where("posted_by = ?", userID).Count(&count).Error
	return count, err
}

// applyCommonFilter adds the status and price filters shared by listings
func applyCommonFilter(query *gorm.DB, filter ListingFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	return query
}
