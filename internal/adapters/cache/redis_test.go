package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	c := NewRedisCache(client)

	var miss page
	found, err := c.Get(ctx, "properties:all:1:20", &miss)
	if err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := c.Set(ctx, "properties:all:1:20", page{Items: []string{"a"}, Total: 1}, time.Minute); err != nil {
		t.Fatal(err)
	}
	var got page
	found, err = c.Get(ctx, "properties:all:1:20", &got)
	if err != nil || !found || got.Total != 1 || got.Items[0] != "a" {
		t.Fatalf("unexpected hit: %+v found=%v err=%v", got, found, err)
	}

	mr.FastForward(2 * time.Minute)
	found, _ = c.Get(ctx, "properties:all:1:20", &got)
	if found {
		t.Fatal("entry must expire after its TTL")
	}
}

func TestRedisCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	c := NewRedisCache(client)

	for i := 1; i <= 450; i++ {
		_ = c.Set(ctx, fmt.Sprintf("cars:all:%d:20", i), i, time.Minute)
	}
	_ = c.Set(ctx, "properties:all:1:20", 1, time.Minute)

	if err := c.DeletePrefix(ctx, "cars:all"); err != nil {
		t.Fatal(err)
	}
	if keys := mr.Keys(); len(keys) != 1 || keys[0] != "properties:all:1:20" {
		t.Fatalf("expected only the property page to survive, got %d keys", len(keys))
	}

	if err := c.Delete(ctx, "properties:all:1:20"); err != nil {
		t.Fatal(err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatal("delete did not remove the key")
	}
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)

	sub := client.Subscribe(ctx, "chat:room:1")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatal(err)
	}

	if err := NewRedisPublisher(client).Publish(ctx, "chat:room:1", map[string]string{"type": "newMessage"}); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-sub.Channel():
		var event map[string]string
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil || event["type"] != "newMessage" {
			t.Fatalf("unexpected payload %q", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
