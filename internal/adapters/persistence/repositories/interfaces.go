package repositories

import (
	"context"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/core/domain"
)

// UserRepository defines user repository interface.
// Lookups return gorm.ErrRecordNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	LinkAgentApplication(ctx context.Context, userID, applicationID uint) error
	SetApproved(ctx context.Context, userID uint, approved bool) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	Count(ctx context.Context) (int64, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ApplicationDecision is the review outcome written by a status-guarded update
type ApplicationDecision struct {
	Status          domain.ApplicationStatus
	ReviewedBy      uint
	ReviewedAt      time.Time
	RejectionReason string
}

// AgentApplicationRepository defines agent application repository interface
type AgentApplicationRepository interface {
	Create(ctx context.Context, app *models.AgentApplication) error
	GetByID(ctx context.Context, id uint) (*models.AgentApplication, error)
	GetByUserID(ctx context.Context, userID uint) (*models.AgentApplication, error)
	ExistsByUserID(ctx context.Context, userID uint) (bool, error)
	// GetWithApplicant resolves the application and the user who submitted it
	GetWithApplicant(ctx context.Context, id uint) (*models.AgentApplication, *models.User, error)
	ListPendingWithApplicants(ctx context.Context) ([]*models.ApplicationWithUser, error)
	// DecideIfPending applies the decision only while the row is still pending.
	// It reports false when another writer got there first.
	DecideIfPending(ctx context.Context, id uint, decision ApplicationDecision) (bool, error)
	CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int64, error)
}

// ListingFilter narrows listing queries; zero values are ignored
type ListingFilter struct {
	City         string
	Status       domain.ListingStatus
	PropertyType domain.PropertyType
	Make         string
	Condition    domain.CarCondition
	MinPrice     float64
	MaxPrice     float64
}

// IsZero reports whether no filter field is set
func (f ListingFilter) IsZero() bool {
	return f == ListingFilter{}
}

// PropertyRepository defines property repository interface
type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uint) (*models.Property, error)
	Update(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListingFilter, offset, limit int) ([]*models.Property, int64, error)
	ListByPoster(ctx context.Context, userID uint, limit int) ([]*models.Property, error)
	IncrementViews(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByPoster(ctx context.Context, userID uint) (int64, error)
}

// CarRepository defines car repository interface
type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id uint) (*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListingFilter, offset, limit int) ([]*models.Car, int64, error)
	ListByPoster(ctx context.Context, userID uint, limit int) ([]*models.Car, error)
	Count(ctx context.Context) (int64, error)
	CountByPoster(ctx context.Context, userID uint) (int64, error)
}

// ChatRepository defines chat room and message repository interface
type ChatRepository interface {
	FindRoom(ctx context.Context, userID, agentID uint) (*models.ChatRoom, error)
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error)
	ListRoomsForMember(ctx context.Context, userID uint) ([]*models.ChatRoom, error)
	ListRooms(ctx context.Context, offset, limit int) ([]*models.ChatRoom, int64, error)
	TouchRoom(ctx context.Context, roomID uint, at time.Time) error
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, roomID uint, offset, limit int) ([]*models.Message, int64, error)
	// MarkRead flags messages in the room sent by anyone other than readerID
	MarkRead(ctx context.Context, roomID, readerID uint) error
	ListClientsOfAgent(ctx context.Context, agentID uint) ([]*models.User, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error)
}
