package fakeapi

import (
	"blinkpay/blink-debit-client-go/internal/models"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	authoriseURL  = "https://fake.blinkdebit.test/authorise/"
	accountNumber = "99-6121-6548271-00"
)

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	return sonic.Unmarshal(data, v)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid identifier")
		return uuid.Nil, false
	}

	return id, true
}

func (s *Server) IssueToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokenRequests++
	ttl := s.tokenTTL
	s.mu.Unlock()

	var req tokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed token request")
		return
	}

	if req.GrantType != "client_credentials" || req.ClientID != s.clientID || req.ClientSecret != s.clientSecret {
		writeError(w, r, http.StatusUnauthorized, "Invalid client credentials")
		return
	}

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.ClientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}).SignedString(s.signingKey)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl / time.Second),
	})
}

func redirectURI(flow *models.AuthFlow, id uuid.UUID) string {
	if flow == nil {
		return ""
	}
	if _, ok := flow.Detail.(*models.Decoupled); ok {
		return ""
	}

	return authoriseURL + id.String()
}

func (s *Server) createConsent(w http.ResponseWriter, r *http.Request, kind models.ConsentDetailType) {
	var detail models.ConsentDetailValue
	if err := decodeBody(r, &detail); err != nil || detail.ConsentDetail == nil {
		writeError(w, r, http.StatusBadRequest, "Malformed consent request")
		return
	}
	if detail.ConsentDetailType() != kind {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Expected a %s consent", kind))
		return
	}

	var flow *models.AuthFlow
	switch d := detail.ConsentDetail.(type) {
	case *models.SingleConsentRequest:
		flow = d.Flow
	case *models.EnduringConsentRequest:
		flow = d.Flow
	}

	id := s.storeConsent(kind, detail, flow)
	writeJSON(w, http.StatusCreated, models.CreateConsentResponse{
		ConsentID:   id,
		RedirectURI: redirectURI(flow, id),
	})
}

func (s *Server) storeConsent(kind models.ConsentDetailType, detail models.ConsentDetailValue, flow *models.AuthFlow) uuid.UUID {
	status := models.ConsentStatusAwaitingAuthorisation
	if flow != nil {
		if _, ok := flow.Detail.(*models.Gateway); ok {
			status = models.ConsentStatusGatewayAwaitingSubmission
		}
	}

	now := time.Now().UTC()
	id := uuid.New()

	s.mu.Lock()
	s.consents[id] = &consentRecord{
		kind: kind,
		consent: &models.Consent{
			ConsentID:              id,
			Status:                 status,
			CreationTimestamp:      now,
			StatusUpdatedTimestamp: now,
			Detail:                 detail,
			Payments:               []models.Payment{},
			Refunds:                []models.Refund{},
		},
	}
	s.mu.Unlock()

	return id
}

func (s *Server) getConsent(w http.ResponseWriter, r *http.Request, kind models.ConsentDetailType) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.consents[id]
	if !ok || rec.kind != kind || s.quickPayments[id] {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Consent with ID [%s] does not exist", id))
		return
	}

	writeJSON(w, http.StatusOK, rec.consent)
}

func (s *Server) revokeConsent(w http.ResponseWriter, r *http.Request, kind models.ConsentDetailType, quick bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.consents[id]
	if !ok || rec.kind != kind || s.quickPayments[id] != quick {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Consent with ID [%s] does not exist", id))
		return
	}
	if rec.consent.Status.Terminal() {
		writeError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("Consent [%s] is already %s", id, rec.consent.Status))
		return
	}

	rec.consent.Status = models.ConsentStatusRevoked
	rec.consent.StatusUpdatedTimestamp = time.Now().UTC()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) CreateSingleConsent(w http.ResponseWriter, r *http.Request) {
	s.createConsent(w, r, models.ConsentDetailTypeSingle)
}

func (s *Server) GetSingleConsent(w http.ResponseWriter, r *http.Request) {
	s.getConsent(w, r, models.ConsentDetailTypeSingle)
}

func (s *Server) RevokeSingleConsent(w http.ResponseWriter, r *http.Request) {
	s.revokeConsent(w, r, models.ConsentDetailTypeSingle, false)
}

func (s *Server) CreateEnduringConsent(w http.ResponseWriter, r *http.Request) {
	s.createConsent(w, r, models.ConsentDetailTypeEnduring)
}

func (s *Server) GetEnduringConsent(w http.ResponseWriter, r *http.Request) {
	s.getConsent(w, r, models.ConsentDetailTypeEnduring)
}

func (s *Server) RevokeEnduringConsent(w http.ResponseWriter, r *http.Request) {
	s.revokeConsent(w, r, models.ConsentDetailTypeEnduring, false)
}

func (s *Server) CreateQuickPayment(w http.ResponseWriter, r *http.Request) {
	var detail models.ConsentDetailValue
	if err := decodeBody(r, &detail); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed quick payment request")
		return
	}

	single, ok := detail.ConsentDetail.(*models.SingleConsentRequest)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Malformed quick payment request")
		return
	}

	id := s.storeConsent(models.ConsentDetailTypeSingle, detail, single.Flow)

	s.mu.Lock()
	s.quickPayments[id] = true
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.CreateQuickPaymentResponse{
		QuickPaymentID: id,
		RedirectURI:    redirectURI(single.Flow, id),
	})
}

func (s *Server) GetQuickPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.consents[id]
	if !ok || !s.quickPayments[id] {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Quick payment with ID [%s] does not exist", id))
		return
	}

	writeJSON(w, http.StatusOK, models.QuickPaymentResponse{
		QuickPaymentID: id,
		Consent:        *rec.consent,
	})
}

func (s *Server) RevokeQuickPayment(w http.ResponseWriter, r *http.Request) {
	s.revokeConsent(w, r, models.ConsentDetailTypeSingle, true)
}

func (s *Server) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed payment request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.consents[req.ConsentID]
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Consent with ID [%s] does not exist", req.ConsentID))
		return
	}
	if rec.consent.Status != models.ConsentStatusAuthorised {
		writeError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("Consent [%s] is %s", req.ConsentID, rec.consent.Status))
		return
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		PaymentID:              uuid.New(),
		Type:                   models.PaymentTypeSingle,
		Status:                 models.PaymentStatusAcceptedSettlementCompleted,
		CreationTimestamp:      now,
		StatusUpdatedTimestamp: now,
		AcceptedTimestamp:      &now,
		Detail:                 req,
		Refunds:                []models.Refund{},
	}
	if rec.kind == models.ConsentDetailTypeEnduring {
		payment.Type = models.PaymentTypeEnduring
	} else {
		rec.consent.Status = models.ConsentStatusConsumed
		rec.consent.StatusUpdatedTimestamp = now
	}

	s.payments[payment.PaymentID] = payment
	rec.consent.Payments = append(rec.consent.Payments, *payment)

	writeJSON(w, http.StatusCreated, models.PaymentResponse{PaymentID: payment.PaymentID})
}

func (s *Server) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[id]
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Payment with ID [%s] does not exist", id))
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) CreateRefund(w http.ResponseWriter, r *http.Request) {
	var detail models.RefundDetailValue
	if err := decodeBody(r, &detail); err != nil || detail.RefundDetail == nil {
		writeError(w, r, http.StatusBadRequest, "Malformed refund request")
		return
	}

	var paymentID uuid.UUID
	switch d := detail.RefundDetail.(type) {
	case *models.FullRefundRequest:
		paymentID = d.PaymentID
	case *models.PartialRefundRequest:
		paymentID = d.PaymentID
	case *models.AccountNumberRefundRequest:
		paymentID = d.PaymentID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Payment with ID [%s] does not exist", paymentID))
		return
	}

	now := time.Now().UTC()
	refund := &models.Refund{
		RefundID:               uuid.New(),
		Status:                 models.RefundStatusProcessing,
		CreationTimestamp:      now,
		StatusUpdatedTimestamp: now,
		Detail:                 detail,
	}
	if detail.RefundDetailType() == models.RefundDetailTypeAccountNumber {
		refund.Status = models.RefundStatusCompleted
		refund.AccountNumber = accountNumber
	}

	s.refunds[refund.RefundID] = refund
	payment.Refunds = append(payment.Refunds, *refund)

	writeJSON(w, http.StatusCreated, models.RefundResponse{RefundID: refund.RefundID})
}

func (s *Server) GetRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	refund, ok := s.refunds[id]
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("Refund with ID [%s] does not exist", id))
		return
	}

	writeJSON(w, http.StatusOK, refund)
}

func (s *Server) GetMeta(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	meta := s.meta
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write(meta)
}
