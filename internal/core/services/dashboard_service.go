package services

import (
	"context"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/pagination"

	"golang.org/x/sync/errgroup"
)

const (
	recentPersonalListings = 5
	recentGlobalListings   = 10
	dashboardClientLimit   = 10
)

// DashboardService aggregates per-role dashboard data
type DashboardService struct {
	userRepo     repositories.UserRepository
	appRepo      repositories.AgentApplicationRepository
	propertyRepo repositories.PropertyRepository
	carRepo      repositories.CarRepository
	chatRepo     repositories.ChatRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	appRepo repositories.AgentApplicationRepository,
	propertyRepo repositories.PropertyRepository,
	carRepo repositories.CarRepository,
	chatRepo repositories.ChatRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:     userRepo,
		appRepo:      appRepo,
		propertyRepo: propertyRepo,
		carRepo:      carRepo,
		chatRepo:     chatRepo,
	}
}

// ListingStats counts listings
type ListingStats struct {
	TotalProperties int64 `json:"totalProperties"`
	TotalCars       int64 `json:"totalCars"`
}

// UserDashboardData represents the user's own listings
type UserDashboardData struct {
	Stats            ListingStats       `json:"stats"`
	RecentProperties []*models.Property `json:"recentProperties"`
	RecentCars       []*models.Car      `json:"recentCars"`
}

// AgentDashboardData extends the user dashboard with client metrics
type AgentDashboardData struct {
	Stats struct {
		ListingStats
		ClientCount int `json:"clientCount"`
	} `json:"stats"`
	RecentProperties []*models.Property    `json:"recentProperties"`
	RecentCars       []*models.Car         `json:"recentCars"`
	Clients          []*models.UserSummary `json:"clients"`
}

// AdminStats are global counters
type AdminStats struct {
	ListingStats
	TotalUsers       int64 `json:"totalUsers"`
	TotalAgents      int64 `json:"totalAgents"`
	PendingApprovals int64 `json:"pendingApprovals"`
}

// AdminDashboardData represents the admin overview
type AdminDashboardData struct {
	Stats            AdminStats           `json:"stats"`
	Users            *pagination.Response `json:"users"`
	RecentProperties []*models.Property   `json:"recentProperties"`
	RecentCars       []*models.Car        `json:"recentCars"`
}

// User returns the caller's own listing activity
func (s *DashboardService) User(ctx context.Context, userID uint) (*UserDashboardData, error) {
	data := &UserDashboardData{}
	if err := s.personal(ctx, userID, &data.Stats, &data.RecentProperties, &data.RecentCars); err != nil {
		return nil, err
	}
	return data, nil
}

// Agent returns the agent's listings plus the users they chat with
func (s *DashboardService) Agent(ctx context.Context, agentID uint) (*AgentDashboardData, error) {
	data := &AgentDashboardData{}
	if err := s.personal(ctx, agentID, &data.Stats.ListingStats, &data.RecentProperties, &data.RecentCars); err != nil {
		return nil, err
	}

	clients, err := s.chatRepo.ListClientsOfAgent(ctx, agentID)
	if err != nil {
		return nil, domain.Internal("list clients", err)
	}
	data.Stats.ClientCount = len(clients)
	if len(clients) > dashboardClientLimit {
		clients = clients[:dashboardClientLimit]
	}
	data.Clients = make([]*models.UserSummary, len(clients))
	for i, c := range clients {
		data.Clients[i] = c.ToSummary()
	}
	return data, nil
}

// personal loads counts and recent listings of one poster concurrently
func (s *DashboardService) personal(ctx context.Context, userID uint, stats *ListingStats, props *[]*models.Property, cars *[]*models.Car) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalProperties, err = s.propertyRepo.CountByPoster(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCars, err = s.carRepo.CountByPoster(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		*props, err = s.propertyRepo.ListByPoster(gctx, userID, recentPersonalListings)
		return err
	})
	g.Go(func() (err error) {
		*cars, err = s.carRepo.ListByPoster(gctx, userID, recentPersonalListings)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Internal("load dashboard", err)
	}
	return nil
}

// Admin returns global counters, a page of accounts and the latest listings
func (s *DashboardService) Admin(ctx context.Context, params *pagination.Params) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.Stats.TotalProperties, err = s.propertyRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Stats.TotalCars, err = s.carRepo.Count(gctx)
		return err
	})
	g.Go(func() error {
		all, err := s.userRepo.Count(gctx)
		if err != nil {
			return err
		}
		admins, err := s.userRepo.CountByRole(gctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		data.Stats.TotalUsers = all - admins
		return nil
	})
	g.Go(func() (err error) {
		data.Stats.TotalAgents, err = s.userRepo.CountByRole(gctx, domain.RoleAgent)
		return err
	})
	g.Go(func() (err error) {
		data.Stats.PendingApprovals, err = s.appRepo.CountByStatus(gctx, domain.ApplicationPending)
		return err
	})
	g.Go(func() error {
		users, total, err := s.userRepo.List(gctx, params.Offset, params.Limit)
		if err != nil {
			return err
		}
		items := make([]*models.UserResponse, len(users))
		for i, u := range users {
			items[i] = u.ToResponse()
		}
		data.Users = pagination.NewResponse(items, params, total)
		return nil
	})
	g.Go(func() error {
		props, _, err := s.propertyRepo.List(gctx, repositories.ListingFilter{}, 0, recentGlobalListings)
		data.RecentProperties = props
		return err
	})
	g.Go(func() error {
		cars, _, err := s.carRepo.List(gctx, repositories.ListingFilter{}, 0, recentGlobalListings)
		data.RecentCars = cars
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, domain.Internal("load admin dashboard", err)
	}
	return data, nil
}
