package repositories_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openPostgres starts a throwaway Postgres, or reuses TEST_PG_DSN when set.
// Set RUN_INTEGRATION=true to run these tests.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") != "true" {
		t.Skip("set RUN_INTEGRATION=true to run repository integration tests")
	}

	ctx := context.Background()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		pgC, err := postgres.Run(ctx,
			"postgres:16",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("start postgres: %v", err)
		}
		t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

		dsn, err = pgC.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("connection string: %v", err)
		}
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), config.GormConfig(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("TRUNCATE users, agent_applications, properties, cars, chat_rooms, messages, payments RESTART IDENTITY CASCADE")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, repo repositories.UserRepository, email string, role domain.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "n", Email: email, Password: "hash", Role: role, IsVerified: true}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestGormRepositories(t *testing.T) {
	db := openPostgres(t)
	repos := repositories.NewGormSet(db)
	ctx := context.Background()

	t.Run("duplicate email is translated", func(t *testing.T) {
		createUser(t, repos.Users, "dup@x.com", domain.RoleUser)
		err := repos.Users.Create(ctx, &models.User{Name: "n", Email: "dup@x.com", Password: "h", Role: domain.RoleUser})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			t.Fatalf("want ErrDuplicatedKey, got %v", err)
		}
	})

	t.Run("decision is applied once", func(t *testing.T) {
		agent := createUser(t, repos.Users, "agent@x.com", domain.RoleAgent)
		app := &models.AgentApplication{
			UserID: agent.ID, FullName: "Ada", Phone: "1", ExperienceYears: 2, Bio: "bio",
			Documents: []string{"a.pdf"}, Status: domain.ApplicationPending, AppliedAt: time.Now(),
		}
		if err := repos.Applications.Create(ctx, app); err != nil {
			t.Fatalf("create application: %v", err)
		}

		decision := repositories.ApplicationDecision{Status: domain.ApplicationApproved, ReviewedBy: 1, ReviewedAt: time.Now()}
		ok, err := repos.Applications.DecideIfPending(ctx, app.ID, decision)
		if err != nil || !ok {
			t.Fatalf("first decision: ok=%v err=%v", ok, err)
		}
		decision.Status = domain.ApplicationRejected
		ok, err = repos.Applications.DecideIfPending(ctx, app.ID, decision)
		if err != nil || ok {
			t.Fatalf("second decision: ok=%v err=%v", ok, err)
		}

		got, err := repos.Applications.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != domain.ApplicationApproved || len(got.Documents) != 1 {
			t.Fatalf("unexpected row %+v", got)
		}
	})

	t.Run("user delete cascades application", func(t *testing.T) {
		agent := createUser(t, repos.Users, "gone@x.com", domain.RoleAgent)
		app := &models.AgentApplication{
			UserID: agent.ID, FullName: "Gone", Phone: "1", Bio: "bio",
			Status: domain.ApplicationPending, AppliedAt: time.Now(),
		}
		if err := repos.Applications.Create(ctx, app); err != nil {
			t.Fatalf("create application: %v", err)
		}
		if err := repos.Users.Delete(ctx, agent.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repos.Applications.GetByID(ctx, app.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("application should be gone, got %v", err)
		}
		if err := repos.Users.Delete(ctx, agent.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("second delete: %v", err)
		}
	})

	t.Run("property filter and poster preload", func(t *testing.T) {
		poster := createUser(t, repos.Users, "poster@x.com", domain.RoleAgent)
		for _, city := range []string{"Agbor", "Asaba", "Agbor"} {
			p := &models.Property{
				Title: "Flat", PropertyType: domain.PropertyApartment, Price: 1000, Size: 50,
				Location: models.Location{City: city, State: "Delta"},
				Status:   domain.ListingAvailable, PostedBy: poster.ID,
			}
			if err := repos.Properties.Create(ctx, p); err != nil {
				t.Fatalf("create property: %v", err)
			}
		}

		items, total, err := repos.Properties.List(ctx, repositories.ListingFilter{City: "Agbor"}, 0, 10)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 2 || len(items) != 2 {
			t.Fatalf("total=%d len=%d", total, len(items))
		}
		if items[0].Poster == nil || items[0].Poster.Email != "poster@x.com" {
			t.Fatalf("poster not preloaded: %+v", items[0].Poster)
		}

		if err := repos.Properties.IncrementViews(ctx, items[0].ID); err != nil {
			t.Fatalf("views: %v", err)
		}
		got, err := repos.Properties.GetByID(ctx, items[0].ID)
		if err != nil || got.Views != 1 {
			t.Fatalf("views=%v err=%v", got, err)
		}
	})

	t.Run("expired reset tokens are purged", func(t *testing.T) {
		u := createUser(t, repos.Users, "reset@x.com", domain.RoleUser)
		tok := "tok"
		past := time.Now().Add(-time.Minute)
		u.ResetPasswordToken = &tok
		u.ResetPasswordExpires = &past
		if err := repos.Users.Update(ctx, u); err != nil {
			t.Fatalf("update: %v", err)
		}

		n, err := repos.Users.ClearExpiredResetTokens(ctx, time.Now())
		if err != nil || n != 1 {
			t.Fatalf("purged=%d err=%v", n, err)
		}
		if _, err := repos.Users.GetByResetToken(ctx, tok); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("token should be cleared, got %v", err)
		}
	})
}
