package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentTypeSingle   PaymentType = "single"
	PaymentTypeEnduring PaymentType = "enduring"
)

type PaymentStatus string

const (
	PaymentStatusPending                     PaymentStatus = "Pending"
	PaymentStatusAcceptedSettlementInProcess PaymentStatus = "AcceptedSettlementInProcess"
	PaymentStatusAcceptedSettlementCompleted PaymentStatus = "AcceptedSettlementCompleted"
	PaymentStatusRejected                    PaymentStatus = "Rejected"
)

// PaymentRequest pays against an authorised consent. Single consents need
// only ConsentID, enduring consents carry EnduringPayment, and Westpac
// payments carry AccountReferenceID.
type PaymentRequest struct {
	ConsentID          uuid.UUID               `json:"consent_id"`
	EnduringPayment    *EnduringPaymentRequest `json:"enduring_payment,omitempty"`
	AccountReferenceID *uuid.UUID              `json:"account_reference_id,omitempty"`
	Pcr                *Pcr                    `json:"pcr,omitempty"`
	Amount             *Amount                 `json:"amount,omitempty"`
}

type EnduringPaymentRequest struct {
	Pcr    *Pcr    `json:"pcr"`
	Amount *Amount `json:"amount"`
}

type PaymentResponse struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

type Payment struct {
	PaymentID              uuid.UUID      `json:"payment_id"`
	Type                   PaymentType    `json:"type"`
	Status                 PaymentStatus  `json:"status"`
	CreationTimestamp      time.Time      `json:"creation_timestamp"`
	StatusUpdatedTimestamp time.Time      `json:"status_updated_timestamp"`
	AcceptedTimestamp      *time.Time     `json:"accepted_timestamp,omitempty"`
	Detail                 PaymentRequest `json:"detail"`
	Refunds                []Refund       `json:"refunds"`
}
