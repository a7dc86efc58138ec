package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomChannel is the pub/sub channel for a chat room
func RoomChannel(roomID uint) string {
	return fmt.Sprintf("chat:room:%d", roomID)
}

// ChatEvent is published on the room channel for every new message
type ChatEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message"`
}

// ChatService handles rooms between users and agents
type ChatService struct {
	chatRepo  repositories.ChatRepository
	userRepo  repositories.UserRepository
	publisher ChatPublisher
	now       func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	chatRepo repositories.ChatRepository,
	userRepo repositories.UserRepository,
	publisher ChatPublisher,
) *ChatService {
	return &ChatService{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateOrGetRoom returns the room between the caller and the target, creating it on first contact.
// A user may only open a room with an agent and vice versa.
func (s *ChatService) CreateOrGetRoom(ctx context.Context, actor Actor, targetID uint) (*models.ChatRoom, error) {
	if targetID == 0 || targetID == actor.UserID {
		return nil, domain.Validation("invalid target")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Validation("invalid target")
		}
		return nil, domain.Internal("load target", err)
	}

	var userID, agentID uint
	switch {
	case actor.Role == domain.RoleUser && target.Role == domain.RoleAgent:
		userID, agentID = actor.UserID, target.ID
	case actor.Role == domain.RoleAgent && target.Role == domain.RoleUser:
		userID, agentID = target.ID, actor.UserID
	default:
		return nil, domain.Validation("invalid target")
	}

	room, err := s.chatRepo.FindRoom(ctx, userID, agentID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Internal("find room", err)
	}

	room = &models.ChatRoom{UserID: userID, AgentID: agentID}
	if err := s.chatRepo.CreateRoom(ctx, room); err != nil {
		// concurrent first contact; the other request created it
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, ferr := s.chatRepo.FindRoom(ctx, userID, agentID); ferr == nil {
				return existing, nil
			}
		}
		return nil, domain.Internal("create room", err)
	}

	logger.FromContext(ctx).Info("chat room created",
		zap.Uint("room_id", room.ID),
		zap.Uint("user_id", userID),
		zap.Uint("agent_id", agentID),
	)
	return room, nil
}

// SendMessage appends a message to a room the caller belongs to and publishes it
func (s *ChatService) SendMessage(ctx context.Context, actor Actor, roomID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if roomID == 0 || content == "" {
		return nil, domain.Validation("room id and content are required")
	}

	room, err := s.memberRoom(ctx, actor, roomID, false)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		RoomID:     room.ID,
		SenderID:   actor.UserID,
		SenderRole: actor.Role,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, domain.Internal("create message", err)
	}
	if err := s.chatRepo.TouchRoom(ctx, room.ID, msg.CreatedAt); err != nil {
		logger.FromContext(ctx).Warn("touch room", zap.Uint("room_id", room.ID), zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, RoomChannel(room.ID), ChatEvent{Type: "newMessage", Message: msg}); err != nil {
		logger.FromContext(ctx).Warn("publish chat event", zap.Uint("room_id", room.ID), zap.Error(err))
	}
	return msg, nil
}

// GetMessages lists a room's messages oldest first and marks the other side's as read.
// Admins may read any room for moderation.
func (s *ChatService) GetMessages(ctx context.Context, actor Actor, roomID uint, params *pagination.Params) (*pagination.Response, error) {
	room, err := s.memberRoom(ctx, actor, roomID, true)
	if err != nil {
		return nil, err
	}

	msgs, total, err := s.chatRepo.ListMessages(ctx, room.ID, params.Offset, params.Limit)
	if err != nil {
		return nil, domain.Internal("list messages", err)
	}

	if room.HasMember(actor.UserID) {
		if err := s.chatRepo.MarkRead(ctx, room.ID, actor.UserID); err != nil {
			logger.FromContext(ctx).Warn("mark read", zap.Uint("room_id", room.ID), zap.Error(err))
		}
	}
	return pagination.NewResponse(msgs, params, total), nil
}

// MyChats lists the caller's rooms, most recent activity first
func (s *ChatService) MyChats(ctx context.Context, actor Actor) ([]*models.ChatRoom, error) {
	rooms, err := s.chatRepo.ListRoomsForMember(ctx, actor.UserID)
	if err != nil {
		return nil, domain.Internal("list rooms", err)
	}
	return rooms, nil
}

// AdminChatSummary is a room with its latest messages
type AdminChatSummary struct {
	Room           *models.ChatRoom  `json:"room"`
	RecentMessages []*models.Message `json:"recentMessages"`
}

const adminRecentMessages = 5

// AllChats lists every room with its most recent messages (admin moderation)
func (s *ChatService) AllChats(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	rooms, total, err := s.chatRepo.ListRooms(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, domain.Internal("list rooms", err)
	}

	items := make([]*AdminChatSummary, 0, len(rooms))
	for _, room := range rooms {
		_, count, err := s.chatRepo.ListMessages(ctx, room.ID, 0, 1)
		if err != nil {
			return nil, domain.Internal("count messages", err)
		}
		offset := int(count) - adminRecentMessages
		if offset < 0 {
			offset = 0
		}
		recent, _, err := s.chatRepo.ListMessages(ctx, room.ID, offset, adminRecentMessages)
		if err != nil {
			return nil, domain.Internal("list messages", err)
		}
		items = append(items, &AdminChatSummary{Room: room, RecentMessages: recent})
	}
	return pagination.NewResponse(items, params, total), nil
}

// memberRoom loads a room the actor may access
func (s *ChatService) memberRoom(ctx context.Context, actor Actor, roomID uint, adminMayRead bool) (*models.ChatRoom, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Forbidden("access denied to room")
		}
		return nil, domain.Internal("load room", err)
	}
	if room.HasMember(actor.UserID) || (adminMayRead && actor.Role == domain.RoleAdmin) {
		return room, nil
	}
	return nil, domain.Forbidden("access denied to room")
}
