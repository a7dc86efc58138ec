package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"atw-marketplace/internal/adapters/persistence/memory"
	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/password"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode:     "dev",
		FrontendURL: "http://front.test",
		AdminEmail:  "admin-alerts@x.com",
		JWT:         config.JWTConfig{Secret: "test-secret", ExpiresIn: 2 * time.Hour},
		Auth: config.AuthConfig{
			BcryptCost:               bcrypt.MinCost,
			RequireEmailVerification: true,
			ResetTokenTTL:            time.Hour,
		},
		Redis:    config.RedisConfig{CacheTTL: 5 * time.Minute},
		Paystack: config.PaystackConfig{BaseURL: "http://paystack.test"},
		Cron:     config.CronConfig{ResetTokenPurge: "@every 15m"},
	}
}

// recordingDispatcher captures queued emails
type recordingDispatcher struct {
	mu     sync.Mutex
	emails []Email
}

func (d *recordingDispatcher) Enqueue(e Email) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emails = append(d.emails, e)
}

func (d *recordingDispatcher) sent() []Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Email(nil), d.emails...)
}

func (d *recordingDispatcher) byKind(kind string) []Email {
	var out []Email
	for _, e := range d.sent() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// jsonCache round-trips values through JSON like the Redis adapter does
type jsonCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	hits    int
	failGet bool
}

func newJSONCache() *jsonCache { return &jsonCache{data: map[string][]byte{}} }

func (c *jsonCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return false, errors.New("cache down")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *jsonCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *jsonCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *jsonCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *jsonCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// recordingPublisher captures published chat events
type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return p.err
}

// stubGateway is a scripted payment gateway
type stubGateway struct {
	initErr    error
	verifyErr  error
	verifyResp *VerifyPaymentResult
	lastInit   InitializePaymentRequest
}

func (g *stubGateway) Initialize(_ context.Context, req InitializePaymentRequest) (*InitializePaymentResult, error) {
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &InitializePaymentResult{
		AuthorizationURL: "https://checkout.test/" + req.Reference,
		AccessCode:       "code-" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *stubGateway) Verify(_ context.Context, reference string) (*VerifyPaymentResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResp != nil {
		return g.verifyResp, nil
	}
	return &VerifyPaymentResult{Reference: reference, Status: "success", AmountMinor: 100, Currency: "NGN"}, nil
}

// fixture wires every service over one in-memory store
type fixture struct {
	cfg        *config.Config
	store      *memory.Store
	dispatcher *recordingDispatcher
	cache      *jsonCache
	publisher  *recordingPublisher
	gateway    *stubGateway

	auth      *AuthService
	agents    *AgentService
	users     *UserService
	listings  *ListingService
	chat      *ChatService
	payments  *PaymentService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig())
}

func newFixtureWithConfig(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	f := &fixture{
		cfg:        cfg,
		store:      memory.NewStore(),
		dispatcher: &recordingDispatcher{},
		cache:      newJSONCache(),
		publisher:  &recordingPublisher{},
		gateway:    &stubGateway{},
	}
	notifier := NewNotificationService(f.dispatcher, cfg, zap.NewNop())

	f.auth = NewAuthService(f.store.Users(), notifier, cfg)
	f.agents = NewAgentService(f.store.Applications(), f.store.Users(), notifier)
	f.users = NewUserService(f.store.Users())
	f.listings = NewListingService(f.store.Properties(), f.store.Cars(), f.cache, cfg)
	f.chat = NewChatService(f.store.Chats(), f.store.Users(), f.publisher)
	f.payments = NewPaymentService(f.store.Payments(), f.gateway, cfg)
	f.dashboard = NewDashboardService(f.store.Users(), f.store.Applications(), f.store.Properties(), f.store.Cars(), f.store.Chats())
	return f
}

// verifiedUser registers and verifies an account, returning its id
func (f *fixture) verifiedUser(t *testing.T, name, email string, role domain.Role) uint {
	t.Helper()
	ctx := context.Background()
	u, err := f.auth.Register(ctx, RegisterInput{Name: name, Email: email, Password: "secret1", Role: role})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	stored, err := f.store.Users().GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("load %s: %v", email, err)
	}
	if err := f.auth.VerifyEmail(ctx, *stored.VerificationToken); err != nil {
		t.Fatalf("verify %s: %v", email, err)
	}
	return u.ID
}

// admin inserts an admin directly; admins cannot self-register
func (f *fixture) admin(t *testing.T) uint {
	t.Helper()
	hashed, err := password.NewHasher(bcrypt.MinCost).Hash("admin-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{Name: "Admin", Email: "admin@x.com", Password: hashed, Role: domain.RoleAdmin, IsVerified: true}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return u.ID
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
