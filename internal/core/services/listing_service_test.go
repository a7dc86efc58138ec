package services

import (
	"context"
	"errors"
	"testing"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/pagination"
)

func propertyItems(t *testing.T, resp *pagination.Response) []*models.Property {
	t.Helper()
	switch items := resp.Items.(type) {
	case []*models.Property:
		return items
	case *[]*models.Property:
		return *items
	default:
		t.Fatalf("unexpected items type %T", resp.Items)
		return nil
	}
}

func newProperty(title string, price float64) PropertyInput {
	return PropertyInput{
		Title:  title,
		Price:  floatPtr(price),
		Size:   floatPtr(120),
		Images: []string{"https://img.test/1.jpg"},
	}
}

func TestCreateProperty_DefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := Actor{UserID: f.verifiedUser(t, "Ag", "ag@x.com", domain.RoleAgent), Role: domain.RoleAgent}

	p, err := f.listings.CreateProperty(ctx, agent, newProperty("Duplex", 5_000_000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.PostedBy != agent.UserID || p.Status != domain.ListingAvailable || p.PropertyType != domain.PropertyApartment {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if p.Location.City != "Agbor" || p.Location.State != "Delta" {
		t.Fatalf("unexpected default location %+v", p.Location)
	}

	noImages := newProperty("Plot", 1)
	noImages.Images = []string{" "}
	if _, err := f.listings.CreateProperty(ctx, agent, noImages); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for no images, got %v", err)
	}
	badType := newProperty("Plot", 1)
	badType.PropertyType = "castle"
	if _, err := f.listings.CreateProperty(ctx, agent, badType); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
	if _, err := f.listings.CreateProperty(ctx, agent, PropertyInput{Title: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing fields, got %v", err)
	}
}

func TestListProperties_CacheAside(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := Actor{UserID: f.verifiedUser(t, "Ag", "ag@x.com", domain.RoleAgent), Role: domain.RoleAgent}
	if _, err := f.listings.CreateProperty(ctx, agent, newProperty("One", 100)); err != nil {
		t.Fatal(err)
	}

	params := pagination.NewParams(1, 10)
	first, err := f.listings.ListProperties(ctx, repositories.ListingFilter{}, params)
	if err != nil {
		t.Fatal(err)
	}
	if f.cache.hits != 0 || f.cache.size() != 1 {
		t.Fatalf("first read must miss and populate, hits=%d size=%d", f.cache.hits, f.cache.size())
	}

	second, err := f.listings.ListProperties(ctx, repositories.ListingFilter{}, params)
	if err != nil {
		t.Fatal(err)
	}
	if f.cache.hits != 1 {
		t.Fatalf("second read must hit, hits=%d", f.cache.hits)
	}
	a, b := propertyItems(t, first), propertyItems(t, second)
	if len(a) != 1 || len(b) != 1 || a[0].Title != b[0].Title || second.Meta.Total != 1 {
		t.Fatalf("cached page differs from source")
	}

	// a write drops every cached page
	if _, err := f.listings.CreateProperty(ctx, agent, newProperty("Two", 200)); err != nil {
		t.Fatal(err)
	}
	if f.cache.size() != 0 {
		t.Fatalf("create must invalidate the cache, size=%d", f.cache.size())
	}
	third, _ := f.listings.ListProperties(ctx, repositories.ListingFilter{}, params)
	if got := propertyItems(t, third); len(got) != 2 || got[0].Title != "Two" {
		t.Fatalf("expected fresh newest-first page, got %d items", len(got))
	}

	// filtered reads bypass the cache
	gets := f.cache.gets
	filtered, _ := f.listings.ListProperties(ctx, repositories.ListingFilter{MinPrice: 150}, params)
	if f.cache.gets != gets {
		t.Fatal("filtered list must not consult the cache")
	}
	if got := propertyItems(t, filtered); len(got) != 1 || got[0].Title != "Two" {
		t.Fatalf("price filter not applied, got %d items", len(got))
	}
}

func TestListProperties_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := Actor{UserID: f.verifiedUser(t, "Ag", "ag@x.com", domain.RoleAgent), Role: domain.RoleAgent}
	_, _ = f.listings.CreateProperty(ctx, agent, newProperty("One", 100))

	f.cache.failGet = true
	resp, err := f.listings.ListProperties(ctx, repositories.ListingFilter{}, pagination.NewParams(1, 10))
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if len(propertyItems(t, resp)) != 1 {
		t.Fatal("expected database result")
	}
}

func TestPropertyOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := Actor{UserID: f.verifiedUser(t, "Own", "own@x.com", domain.RoleAgent), Role: domain.RoleAgent}
	other := Actor{UserID: f.verifiedUser(t, "Oth", "oth@x.com", domain.RoleAgent), Role: domain.RoleAgent}
	admin := Actor{UserID: f.admin(t), Role: domain.RoleAdmin}

	p, _ := f.listings.CreateProperty(ctx, owner, newProperty("Mine", 100))

	if _, err := f.listings.UpdateProperty(ctx, other, p.ID, PropertyInput{Title: "Stolen"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.listings.DeleteProperty(ctx, other, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := f.listings.UpdateProperty(ctx, owner, p.ID, PropertyInput{Status: domain.ListingSold})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Status != domain.ListingSold || updated.Title != "Mine" || updated.Price != 100 {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	if _, err := f.listings.UpdateProperty(ctx, admin, p.ID, PropertyInput{Price: floatPtr(90)}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if err := f.listings.DeleteProperty(ctx, admin, p.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := f.listings.GetProperty(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestGetProperty_CountsViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := Actor{UserID: f.verifiedUser(t, "Own", "own@x.com", domain.RoleAgent), Role: domain.RoleAgent}
	p, _ := f.listings.CreateProperty(ctx, owner, newProperty("Mine", 100))

	_, _ = f.listings.GetProperty(ctx, p.ID)
	got, err := f.listings.GetProperty(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != 2 {
		t.Fatalf("expected 2 views, got %d", got.Views)
	}
	if got.Poster == nil || got.Poster.Email != "own@x.com" {
		t.Fatalf("expected poster summary, got %+v", got.Poster)
	}
}

func newCar() CarInput {
	return CarInput{
		Make:    " toyota ",
		Model:   "Camry",
		Year:    intPtr(2018),
		Mileage: intPtr(40000),
		Price:   floatPtr(8_500_000),
		Images:  []string{"https://img.test/car.jpg"},
	}
}

func TestCars(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := Actor{UserID: f.verifiedUser(t, "Own", "own@x.com", domain.RoleAgent), Role: domain.RoleAgent}

	car, err := f.listings.CreateCar(ctx, owner, newCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if car.Make != "TOYOTA" || car.Condition != domain.CarUsed {
		t.Fatalf("unexpected car %+v", car)
	}

	bad := newCar()
	bad.Year = intPtr(1800)
	if _, err := f.listings.CreateCar(ctx, owner, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected year validation, got %v", err)
	}
	bad = newCar()
	bad.Condition = "wrecked"
	if _, err := f.listings.CreateCar(ctx, owner, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected condition validation, got %v", err)
	}

	resp, err := f.listings.ListCars(ctx, repositories.ListingFilter{Make: "toyota"}, pagination.NewParams(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Meta.Total != 1 {
		t.Fatalf("make filter must ignore case, total=%d", resp.Meta.Total)
	}

	if _, err := f.listings.ListCars(ctx, repositories.ListingFilter{}, pagination.NewParams(1, 10)); err != nil {
		t.Fatal(err)
	}
	if f.cache.size() != 1 {
		t.Fatal("unfiltered car page must be cached")
	}
	if err := f.listings.DeleteCar(ctx, owner, car.ID); err != nil {
		t.Fatal(err)
	}
	if f.cache.size() != 0 {
		t.Fatal("delete must invalidate cached car pages")
	}
	if _, err := f.listings.GetCar(ctx, car.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
