package services

import (
	"blinkpay/blink-debit-client-go/internal/app/auth"
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"blinkpay/blink-debit-client-go/internal/app/validation"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const quickPaymentsPath = basePath + "/quick-payments"

// QuickPaymentService creates a consent and its payment in one step.
type QuickPaymentService struct {
	client *apiClient
}

func NewQuickPaymentService(t transport.Transport, tokens auth.TokenSupplier, logger *slog.Logger) *QuickPaymentService {
	return &QuickPaymentService{
		client: newAPIClient(t, tokens, logger, "quick_payments"),
	}
}

func (s *QuickPaymentService) CreateQuickPayment(ctx context.Context, req *models.QuickPaymentRequest, opts ...CallOption) (*models.CreateQuickPaymentResponse, error) {
	if err := validation.QuickPayment(req); err != nil {
		return nil, err
	}

	return call[models.CreateQuickPaymentResponse](ctx, s.client, http.MethodPost, quickPaymentsPath, req, opts)
}

func (s *QuickPaymentService) GetQuickPayment(ctx context.Context, quickPaymentID uuid.UUID, opts ...CallOption) (*models.QuickPaymentResponse, error) {
	if err := validation.RequiredID(quickPaymentID, "Quick payment ID"); err != nil {
		return nil, err
	}

	return call[models.QuickPaymentResponse](ctx, s.client, http.MethodGet, quickPaymentsPath+"/"+quickPaymentID.String(), nil, opts)
}

func (s *QuickPaymentService) RevokeQuickPayment(ctx context.Context, quickPaymentID uuid.UUID, opts ...CallOption) error {
	if err := validation.RequiredID(quickPaymentID, "Quick payment ID"); err != nil {
		return err
	}

	return callNoContent(ctx, s.client, http.MethodDelete, quickPaymentsPath+"/"+quickPaymentID.String(), opts)
}
