// Package memory provides map-backed repositories. They honour the same
// contracts as the GORM repositories (gorm.ErrRecordNotFound on misses,
// gorm.ErrDuplicatedKey on unique violations) and back DB_DRIVER=memory
// and the service tests.
package memory

import (
	"sync"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
)

// Store holds every table behind one lock so cross-table operations
// (user delete cascade, joins) stay consistent.
type Store struct {
	mu sync.RWMutex

	users      map[uint]*models.User
	apps       map[uint]*models.AgentApplication
	properties map[uint]*models.Property
	cars       map[uint]*models.Car
	rooms      map[uint]*models.ChatRoom
	messages   map[uint]*models.Message
	payments   map[uint]*models.Payment

	seq map[string]uint
	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:      make(map[uint]*models.User),
		apps:       make(map[uint]*models.AgentApplication),
		properties: make(map[uint]*models.Property),
		cars:       make(map[uint]*models.Car),
		rooms:      make(map[uint]*models.ChatRoom),
		messages:   make(map[uint]*models.Message),
		payments:   make(map[uint]*models.Payment),
		seq:        make(map[string]uint),
		now:        time.Now,
	}
}

// SetClock overrides the timestamp source (tests)
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

// Users returns the user repository view of the store
func (s *Store) Users() repositories.UserRepository { return &userRepository{s: s} }

// Applications returns the agent application repository view of the store
func (s *Store) Applications() repositories.AgentApplicationRepository {
	return &applicationRepository{s: s}
}

// Properties returns the property repository view of the store
func (s *Store) Properties() repositories.PropertyRepository { return &propertyRepository{s: s} }

// Cars returns the car repository view of the store
func (s *Store) Cars() repositories.CarRepository { return &carRepository{s: s} }

// Chats returns the chat repository view of the store
func (s *Store) Chats() repositories.ChatRepository { return &chatRepository{s: s} }

// Payments returns the payment repository view of the store
func (s *Store) Payments() repositories.PaymentRepository { return &paymentRepository{s: s} }

// page applies offset/limit to n items and returns the slice bounds
func page(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

// Repositories returns every repository view of the store
func (s *Store) Repositories() repositories.Set {
	return repositories.Set{
		Users:        s.Users(),
		Applications: s.Applications(),
		Properties:   s.Properties(),
		Cars:         s.Cars(),
		Chats:        s.Chats(),
		Payments:     s.Payments(),
	}
}
