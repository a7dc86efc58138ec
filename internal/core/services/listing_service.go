package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cache key prefixes for unfiltered listing pages
const (
	PropertiesCachePrefix = "properties:all"
	CarsCachePrefix       = "cars:all"
)

const firstCarYear = 1886

// Actor is the authenticated caller of a write operation
type Actor struct {
	UserID uint
	Role   domain.Role
}

// canModify reports whether the actor owns the listing or is an admin
func (a Actor) canModify(postedBy uint) bool {
	return a.Role == domain.RoleAdmin || a.UserID == postedBy
}

// ListingService handles property and car listings with cache-aside reads
type ListingService struct {
	propertyRepo repositories.PropertyRepository
	carRepo      repositories.CarRepository
	cache        Cache
	ttl          time.Duration
	now          func() time.Time
}

// NewListingService creates a new listing service
func NewListingService(
	propertyRepo repositories.PropertyRepository,
	carRepo repositories.CarRepository,
	cache Cache,
	cfg *config.Config,
) *ListingService {
	return &ListingService{
		propertyRepo: propertyRepo,
		carRepo:      carRepo,
		cache:        cache,
		ttl:          cfg.Redis.CacheTTL,
		now:          time.Now,
	}
}

func pageKey(prefix string, params *pagination.Params) string {
	return fmt.Sprintf("%s:%d:%d", prefix, params.Page, params.Limit)
}

// cachedList serves unfiltered pages from the cache. Cache errors never fail the request.
func (s *ListingService) cachedList(ctx context.Context, key string, load func() (*pagination.Response, error), dest *pagination.Response) (*pagination.Response, error) {
	log := logger.FromContext(ctx)

	if found, err := s.cache.Get(ctx, key, dest); err != nil {
		log.Warn("cache get", zap.String("key", key), zap.Error(err))
	} else if found {
		return dest, nil
	}

	resp, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
		log.Warn("cache set", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (s *ListingService) invalidate(ctx context.Context, prefix string) {
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		logger.FromContext(ctx).Warn("cache invalidate", zap.String("prefix", prefix), zap.Error(err))
	}
}

// ============================================================
// Properties
// ============================================================

// PropertyInput is used for create (required fields enforced) and partial update
type PropertyInput struct {
	Title        string               `json:"title"`
	PropertyType domain.PropertyType  `json:"propertyType"`
	Price        *float64             `json:"price"`
	OffPrice     *float64             `json:"offPrice"`
	CallOnPrice  *bool                `json:"callOnPrice"`
	Location     *models.Location     `json:"location"`
	Description  *string              `json:"description"`
	Images       []string             `json:"images"`
	Size         *float64             `json:"size"`
	Bedrooms     *int                 `json:"bedrooms"`
	Bathrooms    *int                 `json:"bathrooms"`
	Amenities    []string             `json:"amenities"`
	Status       domain.ListingStatus `json:"status"`
}

// ListProperties lists properties; unfiltered pages are cached
func (s *ListingService) ListProperties(ctx context.Context, filter repositories.ListingFilter, params *pagination.Params) (*pagination.Response, error) {
	load := func() (*pagination.Response, error) {
		items, total, err := s.propertyRepo.List(ctx, filter, params.Offset, params.Limit)
		if err != nil {
			return nil, domain.Internal("list properties", err)
		}
		return pagination.NewResponse(items, params, total), nil
	}
	if !filter.IsZero() {
		return load()
	}
	return s.cachedList(ctx, pageKey(PropertiesCachePrefix, params), load, &pagination.Response{Items: &[]*models.Property{}})
}

// GetProperty returns a property and counts the view
func (s *ListingService) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("property not found")
		}
		return nil, domain.Internal("load property", err)
	}

	if err := s.propertyRepo.IncrementViews(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("increment views", zap.Uint("property_id", id), zap.Error(err))
	} else {
		p.Views++
	}
	return p, nil
}

// CreateProperty creates a property posted by the actor
func (s *ListingService) CreateProperty(ctx context.Context, actor Actor, in PropertyInput) (*models.Property, error) {
	if strings.TrimSpace(in.Title) == "" || in.Price == nil || in.Size == nil {
		return nil, domain.Validation("title, price and size are required")
	}

	p := &models.Property{
		PropertyType: domain.PropertyApartment,
		Location:     models.Location{City: "Agbor", State: "Delta"},
		Status:       domain.ListingAvailable,
		PostedBy:     actor.UserID,
		Amenities:    []string{},
	}
	if err := applyPropertyInput(p, in); err != nil {
		return nil, err
	}
	if len(p.Images) == 0 {
		return nil, domain.Validation("at least one image is required")
	}

	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, domain.Internal("create property", err)
	}
	s.invalidate(ctx, PropertiesCachePrefix)

	logger.FromContext(ctx).Info("property created", zap.Uint("property_id", p.ID), zap.Uint("user_id", actor.UserID))
	return p, nil
}

// UpdateProperty applies a partial update; only the poster or an admin may do so
func (s *ListingService) UpdateProperty(ctx context.Context, actor Actor, id uint, in PropertyInput) (*models.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("property not found")
		}
		return nil, domain.Internal("load property", err)
	}
	if !actor.canModify(p.PostedBy) {
		return nil, domain.Forbidden("you can only modify your own listings")
	}

	if err := applyPropertyInput(p, in); err != nil {
		return nil, err
	}
	if in.Images != nil && len(p.Images) == 0 {
		return nil, domain.Validation("at least one image is required")
	}

	if err := s.propertyRepo.Update(ctx, p); err != nil {
		return nil, domain.Internal("update property", err)
	}
	s.invalidate(ctx, PropertiesCachePrefix)
	return p, nil
}

// DeleteProperty deletes a property; only the poster or an admin may do so
func (s *ListingService) DeleteProperty(ctx context.Context, actor Actor, id uint) error {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("property not found")
		}
		return domain.Internal("load property", err)
	}
	if !actor.canModify(p.PostedBy) {
		return domain.Forbidden("you can only modify your own listings")
	}

	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return domain.Internal("delete property", err)
	}
	s.invalidate(ctx, PropertiesCachePrefix)
	return nil
}

func applyPropertyInput(p *models.Property, in PropertyInput) error {
	if t := strings.TrimSpace(in.Title); t != "" {
		if len(t) > 100 {
			return domain.Validation("title cannot exceed 100 characters")
		}
		p.Title = t
	}
	if in.PropertyType != "" {
		if !in.PropertyType.IsValid() {
			return domain.Validation("invalid property type")
		}
		p.PropertyType = in.PropertyType
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return domain.Validation("price cannot be negative")
		}
		p.Price = *in.Price
	}
	if in.OffPrice != nil {
		p.OffPrice = in.OffPrice
	}
	if in.CallOnPrice != nil {
		p.CallOnPrice = *in.CallOnPrice
	}
	if in.Location != nil {
		loc := *in.Location
		if strings.TrimSpace(loc.City) == "" {
			loc.City = p.Location.City
		}
		if strings.TrimSpace(loc.State) == "" {
			loc.State = p.Location.State
		}
		p.Location = loc
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Images != nil {
		p.Images = cleanList(in.Images)
	}
	if in.Size != nil {
		if *in.Size < 0 {
			return domain.Validation("size cannot be negative")
		}
		p.Size = *in.Size
	}
	if in.Bedrooms != nil {
		if *in.Bedrooms < 0 {
			return domain.Validation("bedrooms cannot be negative")
		}
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		if *in.Bathrooms < 0 {
			return domain.Validation("bathrooms cannot be negative")
		}
		p.Bathrooms = *in.Bathrooms
	}
	if in.Amenities != nil {
		p.Amenities = cleanList(in.Amenities)
	}
	if in.Status != "" {
		if !in.Status.IsValid() {
			return domain.Validation("invalid status")
		}
		p.Status = in.Status
	}
	return nil
}

// ============================================================
// Cars
// ============================================================

// CarInput is used for create (required fields enforced) and partial update
type CarInput struct {
	Make        string               `json:"make"`
	Model       string               `json:"model"`
	Year        *int                 `json:"year"`
	Mileage     *int                 `json:"mileage"`
	Price       *float64             `json:"price"`
	Condition   domain.CarCondition  `json:"condition"`
	Description *string              `json:"description"`
	Images      []string             `json:"images"`
	Videos      []string             `json:"videos"`
	Location    *string              `json:"location"`
	Status      domain.ListingStatus `json:"status"`
}

// ListCars lists cars; unfiltered pages are cached
func (s *ListingService) ListCars(ctx context.Context, filter repositories.ListingFilter, params *pagination.Params) (*pagination.Response, error) {
	filter.Make = strings.ToUpper(strings.TrimSpace(filter.Make))
	load := func() (*pagination.Response, error) {
		items, total, err := s.carRepo.List(ctx, filter, params.Offset, params.Limit)
		if err != nil {
			return nil, domain.Internal("list cars", err)
		}
		return pagination.NewResponse(items, params, total), nil
	}
	if !filter.IsZero() {
		return load()
	}
	return s.cachedList(ctx, pageKey(CarsCachePrefix, params), load, &pagination.Response{Items: &[]*models.Car{}})
}

// GetCar returns a car
func (s *ListingService) GetCar(ctx context.Context, id uint) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("car not found")
		}
		return nil, domain.Internal("load car", err)
	}
	return car, nil
}

// CreateCar creates a car posted by the actor
func (s *ListingService) CreateCar(ctx context.Context, actor Actor, in CarInput) (*models.Car, error) {
	if strings.TrimSpace(in.Make) == "" || strings.TrimSpace(in.Model) == "" ||
		in.Year == nil || in.Mileage == nil || in.Price == nil {
		return nil, domain.Validation("make, model, year, mileage and price are required")
	}

	car := &models.Car{
		Condition: domain.CarUsed,
		Status:    domain.ListingAvailable,
		PostedBy:  actor.UserID,
		Videos:    []string{},
	}
	if err := s.applyCarInput(car, in); err != nil {
		return nil, err
	}
	if len(car.Images) == 0 {
		return nil, domain.Validation("at least one image is required")
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, domain.Internal("create car", err)
	}
	s.invalidate(ctx, CarsCachePrefix)

	logger.FromContext(ctx).Info("car created", zap.Uint("car_id", car.ID), zap.Uint("user_id", actor.UserID))
	return car, nil
}

// UpdateCar applies a partial update; only the poster or an admin may do so
func (s *ListingService) UpdateCar(ctx context.Context, actor Actor, id uint, in CarInput) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("car not found")
		}
		return nil, domain.Internal("load car", err)
	}
	if !actor.canModify(car.PostedBy) {
		return nil, domain.Forbidden("you can only modify your own listings")
	}

	if err := s.applyCarInput(car, in); err != nil {
		return nil, err
	}
	if in.Images != nil && len(car.Images) == 0 {
		return nil, domain.Validation("at least one image is required")
	}

	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, domain.Internal("update car", err)
	}
	s.invalidate(ctx, CarsCachePrefix)
	return car, nil
}

// DeleteCar deletes a car; only the poster or an admin may do so
func (s *ListingService) DeleteCar(ctx context.Context, actor Actor, id uint) error {
	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("car not found")
		}
		return domain.Internal("load car", err)
	}
	if !actor.canModify(car.PostedBy) {
		return domain.Forbidden("you can only modify your own listings")
	}

	if err := s.carRepo.Delete(ctx, id); err != nil {
		return domain.Internal("delete car", err)
	}
	s.invalidate(ctx, CarsCachePrefix)
	return nil
}

func (s *ListingService) applyCarInput(car *models.Car, in CarInput) error {
	if m := strings.TrimSpace(in.Make); m != "" {
		car.Make = strings.ToUpper(m)
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		car.Model = m
	}
	if in.Year != nil {
		maxYear := s.now().Year() + 1
		if *in.Year < firstCarYear || *in.Year > maxYear {
			return domain.Validation(fmt.Sprintf("year must be between %d and %d", firstCarYear, maxYear))
		}
		car.Year = *in.Year
	}
	if in.Mileage != nil {
		if *in.Mileage < 0 {
			return domain.Validation("mileage cannot be negative")
		}
		car.Mileage = *in.Mileage
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return domain.Validation("price cannot be negative")
		}
		car.Price = *in.Price
	}
	if in.Condition != "" {
		if !in.Condition.IsValid() {
			return domain.Validation("invalid condition")
		}
		car.Condition = in.Condition
	}
	if in.Description != nil {
		car.Description = strings.TrimSpace(*in.Description)
	}
	if in.Images != nil {
		car.Images = cleanList(in.Images)
	}
	if in.Videos != nil {
		car.Videos = cleanList(in.Videos)
	}
	if in.Location != nil {
		car.Location = strings.TrimSpace(*in.Location)
	}
	if in.Status != "" {
		if !in.Status.IsValid() {
			return domain.Validation("invalid status")
		}
		car.Status = in.Status
	}
	return nil
}

// cleanList trims entries and drops blanks
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
