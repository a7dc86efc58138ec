package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService initializes and verifies gateway payments and keeps a local ledger
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	gateway     PaymentGateway
	callbackURL string
}

// NewPaymentService creates a new payment service
func NewPaymentService(paymentRepo repositories.PaymentRepository, gateway PaymentGateway, cfg *config.Config) *PaymentService {
	callback := cfg.Paystack.CallbackURL
	if callback == "" {
		callback = cfg.FrontendURL + "/payment/verify"
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		callbackURL: callback,
	}
}

// InitializePaymentInput is the checkout request; Amount is in major units (naira)
type InitializePaymentInput struct {
	Email       string  `json:"email"`
	Amount      float64 `json:"amount"`
	CallbackURL string  `json:"callbackUrl"`
}

// Initialize records a pending payment and opens a gateway checkout
func (s *PaymentService) Initialize(ctx context.Context, userID uint, in InitializePaymentInput) (*InitializePaymentResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") || !(in.Amount > 0) || math.IsInf(in.Amount, 0) {
		return nil, domain.Validation("valid email and positive amount are required")
	}

	callback := in.CallbackURL
	if callback == "" {
		callback = s.callbackURL
	}

	payment := &models.Payment{
		Reference: "ATW-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]),
		Email:     email,
		Amount:    in.Amount,
		Currency:  "NGN",
		Status:    domain.PaymentPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, domain.Internal("create payment", err)
	}

	result, err := s.gateway.Initialize(ctx, InitializePaymentRequest{
		Email:       email,
		AmountMinor: toMinor(in.Amount),
		Reference:   payment.Reference,
		CallbackURL: callback,
		Metadata:    map[string]interface{}{"user_id": userID},
	})
	if err != nil {
		payment.Status = domain.PaymentFailed
		if uerr := s.paymentRepo.Update(ctx, payment); uerr != nil {
			logger.FromContext(ctx).Warn("mark payment failed", zap.String("reference", payment.Reference), zap.Error(uerr))
		}
		return nil, domain.Upstream("payment initialization failed", err)
	}

	payment.AuthorizationURL = result.AuthorizationURL
	payment.AccessCode = result.AccessCode
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, domain.Internal("update payment", err)
	}

	logger.FromContext(ctx).Info("payment initialized",
		zap.String("reference", payment.Reference),
		zap.Uint("user_id", userID),
	)
	return result, nil
}

// Verify asks the gateway for the transaction status and syncs the local ledger
func (s *PaymentService) Verify(ctx context.Context, reference string) (*models.Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.Validation("reference is required")
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, domain.Upstream("payment verification failed", err)
	}

	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// initialized elsewhere (dashboard, another client); report without a ledger row
		return &models.Payment{
			Reference: result.Reference,
			Amount:    fromMinor(result.AmountMinor),
			Currency:  result.Currency,
			Status:    mapGatewayStatus(result.Status),
			PaidAt:    result.PaidAt,
		}, nil
	case err != nil:
		return nil, domain.Internal("load payment", err)
	}

	payment.Status = mapGatewayStatus(result.Status)
	payment.PaidAt = result.PaidAt
	if result.Currency != "" {
		payment.Currency = result.Currency
	}
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, domain.Internal("update payment", err)
	}
	return payment, nil
}

// List lists recorded payments (admin)
func (s *PaymentService) List(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	items, total, err := s.paymentRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, domain.Internal("list payments", err)
	}
	return pagination.NewResponse(items, params, total), nil
}

func toMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinor(minor int64) float64 {
	return float64(minor) / 100
}

func mapGatewayStatus(status string) domain.PaymentStatus {
	switch domain.PaymentStatus(strings.ToLower(status)) {
	case domain.PaymentSuccess:
		return domain.PaymentSuccess
	case domain.PaymentFailed:
		return domain.PaymentFailed
	case domain.PaymentAbandoned:
		return domain.PaymentAbandoned
	default:
		return domain.PaymentPending
	}
}
