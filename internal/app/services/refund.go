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

const refundsPath = basePath + "/refunds"

type RefundService struct {
	client *apiClient
}

func NewRefundService(t transport.Transport, tokens auth.TokenSupplier, logger *slog.Logger) *RefundService {
	return &RefundService{
		client: newAPIClient(t, tokens, logger, "refunds"),
	}
}

func (s *RefundService) CreateRefund(ctx context.Context, detail models.RefundDetail, opts ...CallOption) (*models.RefundResponse, error) {
	if err := validation.Refund(detail); err != nil {
		return nil, err
	}

	return call[models.RefundResponse](ctx, s.client, http.MethodPost, refundsPath, detail, opts)
}

func (s *RefundService) GetRefund(ctx context.Context, refundID uuid.UUID, opts ...CallOption) (*models.Refund, error) {
	if err := validation.RequiredID(refundID, "Refund ID"); err != nil {
		return nil, err
	}

	return call[models.Refund](ctx, s.client, http.MethodGet, refundsPath+"/"+refundID.String(), nil, opts)
}
