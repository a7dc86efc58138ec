package services

import (
	"context"
	"errors"
	"testing"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/pagination"
)

func TestChatRoomsAndMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := Actor{UserID: f.verifiedUser(t, "U", "u@x.com", domain.RoleUser), Role: domain.RoleUser}
	agent := Actor{UserID: f.verifiedUser(t, "Ag", "ag@x.com", domain.RoleAgent), Role: domain.RoleAgent}
	stranger := Actor{UserID: f.verifiedUser(t, "S", "s@x.com", domain.RoleUser), Role: domain.RoleUser}
	admin := Actor{UserID: f.admin(t), Role: domain.RoleAdmin}

	room, err := f.chat.CreateOrGetRoom(ctx, user, agent.UserID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	again, err := f.chat.CreateOrGetRoom(ctx, agent, user.UserID)
	if err != nil || again.ID != room.ID {
		t.Fatalf("expected the same room from the other side, got %v %v", again, err)
	}

	if _, err := f.chat.CreateOrGetRoom(ctx, user, stranger.UserID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("user to user must be refused, got %v", err)
	}
	if _, err := f.chat.CreateOrGetRoom(ctx, user, user.UserID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self chat must be refused, got %v", err)
	}

	if _, err := f.chat.SendMessage(ctx, user, room.ID, "  hello  "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.chat.SendMessage(ctx, agent, room.ID, "hi there"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.chat.SendMessage(ctx, user, room.ID, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty content must be refused, got %v", err)
	}
	if _, err := f.chat.SendMessage(ctx, stranger, room.ID, "let me in"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non member must be refused, got %v", err)
	}
	if _, err := f.chat.SendMessage(ctx, admin, room.ID, "moderating"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin may read but not write, got %v", err)
	}

	if len(f.publisher.channels) != 2 || f.publisher.channels[0] != RoomChannel(room.ID) {
		t.Fatalf("expected two events on the room channel, got %v", f.publisher.channels)
	}

	resp, err := f.chat.GetMessages(ctx, user, room.ID, pagination.NewParams(1, 50))
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	msgs := resp.Items.([]*models.Message)
	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[1].SenderID != agent.UserID {
		t.Fatalf("expected oldest-first messages, got %d", len(msgs))
	}

	// reading marks the other side's messages
	resp, _ = f.chat.GetMessages(ctx, admin, room.ID, pagination.NewParams(1, 50))
	msgs = resp.Items.([]*models.Message)
	if msgs[0].IsRead || !msgs[1].IsRead {
		t.Fatalf("only the agent's message should be read, got %v %v", msgs[0].IsRead, msgs[1].IsRead)
	}

	if _, err := f.chat.GetMessages(ctx, stranger, room.ID, pagination.NewParams(1, 50)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non member read must be refused, got %v", err)
	}
}

func TestChatPublishFailureDoesNotFailSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := Actor{UserID: f.verifiedUser(t, "U", "u@x.com", domain.RoleUser), Role: domain.RoleUser}
	agent := f.verifiedUser(t, "Ag", "ag@x.com", domain.RoleAgent)
	room, _ := f.chat.CreateOrGetRoom(ctx, user, agent)

	f.publisher.err = errors.New("redis down")
	if _, err := f.chat.SendMessage(ctx, user, room.ID, "still stored"); err != nil {
		t.Fatalf("send must succeed without realtime delivery: %v", err)
	}
}

func TestMyChatsAndAdminOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := Actor{UserID: f.verifiedUser(t, "U1", "u1@x.com", domain.RoleUser), Role: domain.RoleUser}
	u2 := Actor{UserID: f.verifiedUser(t, "U2", "u2@x.com", domain.RoleUser), Role: domain.RoleUser}
	agent := Actor{UserID: f.verifiedUser(t, "Ag", "ag@x.com", domain.RoleAgent), Role: domain.RoleAgent}

	r1, _ := f.chat.CreateOrGetRoom(ctx, u1, agent.UserID)
	r2, _ := f.chat.CreateOrGetRoom(ctx, u2, agent.UserID)
	for i := 0; i < 7; i++ {
		if _, err := f.chat.SendMessage(ctx, u1, r1.ID, "ping"); err != nil {
			t.Fatal(err)
		}
	}

	rooms, err := f.chat.MyChats(ctx, agent)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Fatalf("agent should see both rooms, got %d", len(rooms))
	}
	mine, _ := f.chat.MyChats(ctx, u2)
	if len(mine) != 1 || mine[0].ID != r2.ID {
		t.Fatalf("user should only see their own room")
	}

	resp, err := f.chat.AllChats(ctx, pagination.NewParams(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range resp.Items.([]*AdminChatSummary) {
		want := 0
		if s.Room.ID == r1.ID {
			want = adminRecentMessages
		}
		if len(s.RecentMessages) != want {
			t.Fatalf("room %d: expected %d recent messages, got %d", s.Room.ID, want, len(s.RecentMessages))
		}
	}
}
