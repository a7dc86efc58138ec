package memory

import (
	"context"
	"sort"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type chatRepository struct {
	s *Store
}

func cloneRoom(r *models.ChatRoom) *models.ChatRoom {
	c := *r
	c.User, c.Agent = nil, nil
	return &c
}

func (s *Store) withMembers(room *models.ChatRoom) *models.ChatRoom {
	c := cloneRoom(room)
	c.User = s.poster(c.UserID)
	c.Agent = s.poster(c.AgentID)
	return c
}

func (r *chatRepository) FindRoom(_ context.Context, userID, agentID uint) (*models.ChatRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, room := range r.s.rooms {
		if room.UserID == userID && room.AgentID == agentID {
			return cloneRoom(room), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *chatRepository) CreateRoom(_ context.Context, room *models.ChatRoom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.rooms {
		if existing.UserID == room.UserID && existing.AgentID == room.AgentID {
			return gorm.ErrDuplicatedKey
		}
	}
	room.ID = r.s.nextID("chat_rooms")
	now := r.s.now()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *chatRepository) GetRoom(_ context.Context, id uint) (*models.ChatRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.withMembers(room), nil
}

func lastActivity(room *models.ChatRoom) time.Time {
	if room.LastMessageAt != nil {
		return *room.LastMessageAt
	}
	return room.CreatedAt
}

func (r *chatRepository) ListRoomsForMember(_ context.Context, userID uint) ([]*models.ChatRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rooms := make([]*models.ChatRoom, 0)
	for _, room := range r.s.rooms {
		if room.HasMember(userID) {
			rooms = append(rooms, r.s.withMembers(room))
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		return newerFirst(lastActivity(rooms[i]), lastActivity(rooms[j]), rooms[i].ID, rooms[j].ID)
	})
	return rooms, nil
}

func (r *chatRepository) ListRooms(_ context.Context, offset, limit int) ([]*models.ChatRoom, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rooms := make([]*models.ChatRoom, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		rooms = append(rooms, r.s.withMembers(room))
	}
	sort.Slice(rooms, func(i, j int) bool {
		return newerFirst(rooms[i].CreatedAt, rooms[j].CreatedAt, rooms[i].ID, rooms[j].ID)
	})
	start, end := page(len(rooms), offset, limit)
	return rooms[start:end], int64(len(rooms)), nil
}

func (r *chatRepository) TouchRoom(_ context.Context, roomID uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t := at
	room.LastMessageAt = &t
	room.UpdatedAt = r.s.now()
	return nil
}

func (r *chatRepository) CreateMessage(_ context.Context, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID = r.s.nextID("messages")
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.s.now()
	}
	c := *msg
	r.s.messages[msg.ID] = &c
	return nil
}

func (r *chatRepository) ListMessages(_ context.Context, roomID uint, offset, limit int) ([]*models.Message, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	msgs := make([]*models.Message, 0)
	for _, m := range r.s.messages {
		if m.RoomID == roomID {
			c := *m
			msgs = append(msgs, &c)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	start, end := page(len(msgs), offset, limit)
	return msgs[start:end], int64(len(msgs)), nil
}

func (r *chatRepository) MarkRead(_ context.Context, roomID, readerID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.RoomID == roomID && m.SenderID != readerID {
			m.IsRead = true
		}
	}
	return nil
}

func (r *chatRepository) ListClientsOfAgent(_ context.Context, agentID uint) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[uint]bool)
	users := make([]*models.User, 0)
	for _, room := range r.s.rooms {
		if room.AgentID != agentID || seen[room.UserID] {
			continue
		}
		seen[room.UserID] = true
		if u, ok := r.s.users[room.UserID]; ok {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}
