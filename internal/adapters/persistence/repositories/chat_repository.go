package repositories

import (
	"context"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// chatRepository implements ChatRepository interface
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindRoom finds the room of a user/agent pair
func (r *chatRepository) FindRoom(ctx context.Context, userID, agentID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.db.WithContext(ctx).Omit("User", "Agent").Create(room).Error
}

func (r *chatRepository) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Agent").
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRoomsForMember lists rooms where the user is either side, most recent activity first
func (r *chatRepository) ListRoomsForMember(ctx context.Context, userID uint) ([]*models.ChatRoom, error) {
	var rooms []*models.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Agent").
		Where("user_id = ? OR agent_id = ?", userID, userID).
		Order("last_message_at DESC").
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// ListRooms lists all rooms (admin)
func (r *chatRepository) ListRooms(ctx context.Context, offset, limit int) ([]*models.ChatRoom, int64, error) {
	var rooms []*models.ChatRoom
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ChatRoom{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Agent").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// TouchRoom records the time of the latest message
func (r *chatRepository) TouchRoom(ctx context.Context, roomID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Update("last_message_at", at).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListMessages lists messages of a room in chronological order
func (r *chatRepository) ListMessages(ctx context.Context, roomID uint, offset, limit int) ([]*models.Message, int64, error) {
	var messages []*models.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("room_id = ?", roomID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkRead flags the other side's messages as read
func (r *chatRepository) MarkRead(ctx context.Context, roomID, readerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true).Error
}

// ListClientsOfAgent lists distinct users holding a room with the agent
func (r *chatRepository) ListClientsOfAgent(ctx context.Context, agentID uint) ([]*models.User, error) {
	var users []*models.User
	sub := r.db.Model(&models.ChatRoom{}).Select("user_id").Where("agent_id = ?", agentID)
	err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("name ASC").
		Find(&users).Error
	return users, err
}
