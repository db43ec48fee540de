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

const paymentsPath = basePath + "/payments"

type PaymentService struct {
	client *apiClient
}

func NewPaymentService(t transport.Transport, tokens auth.TokenSupplier, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		client: newAPIClient(t, tokens, logger, "payments"),
	}
}

// CreatePayment pays against an authorised single or enduring consent.
func (s *PaymentService) CreatePayment(ctx context.Context, req *models.PaymentRequest, opts ...CallOption) (*models.PaymentResponse, error) {
	if err := validation.Payment(req); err != nil {
		return nil, err
	}

	return call[models.PaymentResponse](ctx, s.client, http.MethodPost, paymentsPath, req, opts)
}

// CreateWestpacPayment pays against a Westpac consent, which needs the
// account reference together with the payment's PCR and amount.
func (s *PaymentService) CreateWestpacPayment(ctx context.Context, req *models.PaymentRequest, opts ...CallOption) (*models.PaymentResponse, error) {
	if err := validation.WestpacPayment(req); err != nil {
		return nil, err
	}

	return call[models.PaymentResponse](ctx, s.client, http.MethodPost, paymentsPath, req, opts)
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID, opts ...CallOption) (*models.Payment, error) {
	if err := validation.RequiredID(paymentID, "Payment ID"); err != nil {
		return nil, err
	}

	return call[models.Payment](ctx, s.client, http.MethodGet, paymentsPath+"/"+paymentID.String(), nil, opts)
}
