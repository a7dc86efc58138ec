package handlers

import (
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/pagination"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles user/agent chat endpoints
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateRoomRequest names the other side of the conversation
type CreateRoomRequest struct {
	TargetID uint `json:"targetId"`
}

// SendMessageRequest represents a new chat message
type SendMessageRequest struct {
	RoomID  uint   `json:"roomId"`
	Content string `json:"content"`
}

// CreateRoom finds or creates the room with the target
// @Summary Create or get chat room
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRoomRequest true "Target user"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /chat/room [post]
func (h *ChatHandler) CreateRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	room, err := h.chatService.CreateOrGetRoom(c.UserContext(), actorOf(c), req.TargetID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "room ready", room)
}

// SendMessage posts a message into a room
// @Summary Send message
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /chat/message [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	msg, err := h.chatService.SendMessage(c.UserContext(), actorOf(c), req.RoomID, req.Content)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "message sent", msg)
}

// Messages lists a room's messages
// @Summary Get room messages
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param roomId path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /chat/room/{roomId}/messages [get]
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	roomID, err := paramID(c, "roomId")
	if err != nil {
		return handleError(c, err)
	}
	msgs, err := h.chatService.GetMessages(c.UserContext(), actorOf(c), roomID, pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "messages retrieved", msgs)
}

// MyChats lists the caller's rooms
// @Summary My chats
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /chat/my-chats [get]
func (h *ChatHandler) MyChats(c *fiber.Ctx) error {
	rooms, err := h.chatService.MyChats(c.UserContext(), actorOf(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "chats retrieved", rooms)
}

// AllChats lists all rooms with recent messages (Admin only)
// @Summary All chats
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /chat/admin/chats [get]
func (h *ChatHandler) AllChats(c *fiber.Ctx) error {
	result, err := h.chatService.AllChats(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "chats retrieved", result)
}
