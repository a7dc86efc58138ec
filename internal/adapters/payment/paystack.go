package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/services"
)

// ErrNotConfigured is returned by every call when PAYSTACK_SECRET_KEY is empty
var ErrNotConfigured = errors.New("paystack secret key not configured")

// PaystackClient talks to the Paystack transaction API
type PaystackClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewPaystackClient creates a client from PAYSTACK_* settings
func NewPaystackClient(cfg config.PaystackConfig) *PaystackClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.paystack.co"
	}
	return &PaystackClient{
		baseURL:   base,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeBody struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	PaidAt    *time.Time `json:"paid_at"`
}

// Initialize opens a checkout for the given amount in kobo
func (c *PaystackClient) Initialize(ctx context.Context, req services.InitializePaymentRequest) (*services.InitializePaymentResult, error) {
	body := initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	var data initializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}
	return &services.InitializePaymentResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify fetches the current state of a transaction
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*services.VerifyPaymentResult, error) {
	var data verifyData
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, err
	}
	return &services.VerifyPaymentResult{
		Reference:   data.Reference,
		Status:      data.Status,
		AmountMinor: data.Amount,
		Currency:    data.Currency,
		PaidAt:      data.PaidAt,
	}, nil
}

func (c *PaystackClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	if c.secretKey == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paystack %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return fmt.Errorf("paystack %s: status %d: decode: %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || !env.Status {
		return fmt.Errorf("paystack %s: status %d: %s", path, resp.StatusCode, env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("paystack %s: decode data: %w", path, err)
	}
	return nil
}
