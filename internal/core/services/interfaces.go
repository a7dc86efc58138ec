package services

import (
	"context"
	"time"
)

// Note: each service implementation lives in its own *_service.go file.
// The interfaces below are the outbound ports adapters implement.

// Email is one outbound message
type Email struct {
	To      string
	Subject string
	HTML    string
	Kind    string // verification, reset, admin-alert, approval, rejection
}

// Mailer delivers an email synchronously
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// EmailDispatcher accepts emails for best-effort background delivery.
// Enqueue never blocks the caller and never reports delivery failures.
type EmailDispatcher interface {
	Enqueue(email Email)
}

// Cache is a key-value store with expiry used for cache-aside reads
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix drops every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// ChatPublisher fans out chat events to real-time subscribers
type ChatPublisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// InitializePaymentRequest is sent to the payment gateway
type InitializePaymentRequest struct {
	Email       string
	AmountMinor int64 // smallest currency unit (kobo)
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

// InitializePaymentResult is the gateway's checkout handle
type InitializePaymentResult struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	Reference        string `json:"reference"`
}

// VerifyPaymentResult is the gateway's view of a transaction
type VerifyPaymentResult struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
	PaidAt      *time.Time
}

// PaymentGateway initializes and verifies card payments
type PaymentGateway interface {
	Initialize(ctx context.Context, req InitializePaymentRequest) (*InitializePaymentResult, error)
	Verify(ctx context.Context, reference string) (*VerifyPaymentResult, error)
}
