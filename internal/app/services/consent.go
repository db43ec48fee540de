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

const (
	singleConsentsPath   = basePath + "/single-consents"
	enduringConsentsPath = basePath + "/enduring-consents"
)

// ConsentService manages single and enduring consents.
type ConsentService struct {
	client *apiClient
}

func NewConsentService(t transport.Transport, tokens auth.TokenSupplier, logger *slog.Logger) *ConsentService {
	return &ConsentService{
		client: newAPIClient(t, tokens, logger, "consents"),
	}
}

func (s *ConsentService) CreateSingleConsent(ctx context.Context, req *models.SingleConsentRequest, opts ...CallOption) (*models.CreateConsentResponse, error) {
	if err := validation.SingleConsent(req); err != nil {
		return nil, err
	}

	return call[models.CreateConsentResponse](ctx, s.client, http.MethodPost, singleConsentsPath, req, opts)
}

func (s *ConsentService) GetSingleConsent(ctx context.Context, consentID uuid.UUID, opts ...CallOption) (*models.Consent, error) {
	if err := validation.RequiredID(consentID, "Consent ID"); err != nil {
		return nil, err
	}

	return call[models.Consent](ctx, s.client, http.MethodGet, singleConsentsPath+"/"+consentID.String(), nil, opts)
}

func (s *ConsentService) RevokeSingleConsent(ctx context.Context, consentID uuid.UUID, opts ...CallOption) error {
	if err := validation.RequiredID(consentID, "Consent ID"); err != nil {
		return err
	}

	return callNoContent(ctx, s.client, http.MethodDelete, singleConsentsPath+"/"+consentID.String(), opts)
}

func (s *ConsentService) CreateEnduringConsent(ctx context.Context, req *models.EnduringConsentRequest, opts ...CallOption) (*models.CreateConsentResponse, error) {
	if err := validation.EnduringConsent(req); err != nil {
		return nil, err
	}

	return call[models.CreateConsentResponse](ctx, s.client, http.MethodPost, enduringConsentsPath, req, opts)
}

func (s *ConsentService) GetEnduringConsent(ctx context.Context, consentID uuid.UUID, opts ...CallOption) (*models.Consent, error) {
	if err := validation.RequiredID(consentID, "Consent ID"); err != nil {
		return nil, err
	}

	return call[models.Consent](ctx, s.client, http.MethodGet, enduringConsentsPath+"/"+consentID.String(), nil, opts)
}

func (s *ConsentService) RevokeEnduringConsent(ctx context.Context, consentID uuid.UUID, opts ...CallOption) error {
	if err := validation.RequiredID(consentID, "Consent ID"); err != nil {
		return err
	}

	return callNoContent(ctx, s.client, http.MethodDelete, enduringConsentsPath+"/"+consentID.String(), opts)
}
