// Package fakeapi is an in-memory stand-in for the Blink Debit API, served
// over HTTP for tests and local runs of the CLI.
package fakeapi

import (
	"blinkpay/blink-debit-client-go/internal/models"
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const apiPrefix = "/payments/v1"

// Request is a recorded call to one of the /payments/v1 routes.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type fault struct {
	status int
	body   string
}

type consentRecord struct {
	kind    models.ConsentDetailType
	consent *models.Consent
}

type Server struct {
	router *chi.Mux

	clientID     string
	clientSecret string
	signingKey   []byte
	tokenTTL     time.Duration

	mu            sync.Mutex
	consents      map[uuid.UUID]*consentRecord
	quickPayments map[uuid.UUID]bool
	payments      map[uuid.UUID]*models.Payment
	refunds       map[uuid.UUID]*models.Refund
	meta          []byte
	faults        []fault
	delay         time.Duration
	requests      []Request
	tokenRequests int
}

func NewServer(clientID, clientSecret string) *Server {
	srv := &Server{
		router:        chi.NewRouter(),
		clientID:      clientID,
		clientSecret:  clientSecret,
		signingKey:    []byte(uuid.NewString()),
		tokenTTL:      time.Hour,
		consents:      make(map[uuid.UUID]*consentRecord),
		quickPayments: make(map[uuid.UUID]bool),
		payments:      make(map[uuid.UUID]*models.Payment),
		refunds:       make(map[uuid.UUID]*models.Refund),
	}
	srv.meta, _ = sonic.Marshal(defaultMetadata())

	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.router.Post("/oauth2/token", s.IssueToken)

	s.router.Route(apiPrefix, func(r chi.Router) {
		r.Use(s.record, s.injectFaults, s.authenticate)

		r.Post("/single-consents", s.CreateSingleConsent)
		r.Get("/single-consents/{id}", s.GetSingleConsent)
		r.Delete("/single-consents/{id}", s.RevokeSingleConsent)

		r.Post("/enduring-consents", s.CreateEnduringConsent)
		r.Get("/enduring-consents/{id}", s.GetEnduringConsent)
		r.Delete("/enduring-consents/{id}", s.RevokeEnduringConsent)

		r.Post("/quick-payments", s.CreateQuickPayment)
		r.Get("/quick-payments/{id}", s.GetQuickPayment)
		r.Delete("/quick-payments/{id}", s.RevokeQuickPayment)

		r.Post("/payments", s.CreatePayment)
		r.Get("/payments/{id}", s.GetPayment)

		r.Post("/refunds", s.CreateRefund)
		r.Get("/refunds/{id}", s.GetRefund)

		r.Get("/meta", s.GetMeta)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Fail makes the next API call answer with status and the raw body. Faults
// queue up and are consumed in order.
func (s *Server) Fail(status int, body string) {
	s.mu.Lock()
	s.faults = append(s.faults, fault{status: status, body: body})
	s.mu.Unlock()
}

// SetDelay holds every API call for d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// SetMeta replaces the body served by the metadata route.
func (s *Server) SetMeta(raw string) {
	s.mu.Lock()
	s.meta = []byte(raw)
	s.mu.Unlock()
}

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	s.tokenTTL = ttl
	s.mu.Unlock()
}

func (s *Server) SetConsentStatus(id uuid.UUID, status models.ConsentStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.consents[id]
	if !ok {
		return false
	}

	rec.consent.Status = status
	rec.consent.StatusUpdatedTimestamp = time.Now().UTC()
	return true
}

func (s *Server) SetPaymentStatus(id uuid.UUID, status models.PaymentStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[id]
	if !ok {
		return false
	}

	payment.Status = status
	payment.StatusUpdatedTimestamp = time.Now().UTC()
	return true
}

// Requests returns every recorded API call in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokenRequests
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *fault
		if len(s.faults) > 0 {
			head := s.faults[0]
			s.faults = s.faults[1:]
			f = &head
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(strings.TrimSpace(f.body), "{") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(f.status)
		w.Write([]byte(f.body))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return s.signingKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, models.ErrorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

func defaultMetadata() []models.BankMetadata {
	return []models.BankMetadata{
		{
			Name:         models.BankPNZ,
			PaymentLimit: models.NewAmount("50000"),
			Features: models.BankMetadataFeatures{
				EnduringConsent: &models.EnduringConsentFeature{Enabled: true, ConsentIndefinite: false},
				DecoupledFlow: &models.DecoupledFlowFeature{
					Enabled: true,
					AvailableIdentifiers: []models.AvailableIdentifier{
						{Type: models.IdentifierPhoneNumber, Name: "Phone Number"},
						{Type: models.IdentifierConsentID, Name: "Consent ID"},
					},
					RequestTimeout: "PT4M",
				},
			},
			RedirectFlow: &models.BankMetadataRedirectFlow{Enabled: true, RequestTimeout: "PT10M"},
		},
		{
			Name: models.BankWestpac,
			Features: models.BankMetadataFeatures{
				EnduringConsent: &models.EnduringConsentFeature{Enabled: false},
				DecoupledFlow:   &models.DecoupledFlowFeature{Enabled: false},
			},
			RedirectFlow: &models.BankMetadataRedirectFlow{Enabled: true, RequestTimeout: "PT10M"},
		},
	}
}
