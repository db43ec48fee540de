package models

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type ConsentDetailType string

const (
	ConsentDetailTypeSingle   ConsentDetailType = "single"
	ConsentDetailTypeEnduring ConsentDetailType = "enduring"
)

type Period string

const (
	PeriodAnnual      Period = "annual"
	PeriodDaily       Period = "daily"
	PeriodFortnightly Period = "fortnightly"
	PeriodMonthly     Period = "monthly"
	PeriodWeekly      Period = "weekly"
)

type ConsentStatus string

const (
	ConsentStatusGatewayAwaitingSubmission ConsentStatus = "GatewayAwaitingSubmission"
	ConsentStatusGatewayTimeout            ConsentStatus = "GatewayTimeout"
	ConsentStatusAwaitingAuthorisation     ConsentStatus = "AwaitingAuthorisation"
	ConsentStatusAuthorised                ConsentStatus = "Authorised"
	ConsentStatusConsumed                  ConsentStatus = "Consumed"
	ConsentStatusRejected                  ConsentStatus = "Rejected"
	ConsentStatusRevoked                   ConsentStatus = "Revoked"
	ConsentStatusExpired                   ConsentStatus = "Expired"
)

// Terminal reports whether no further status transition can make the consent
// usable.
func (s ConsentStatus) Terminal() bool {
	switch s {
	case ConsentStatusRejected, ConsentStatusRevoked, ConsentStatusExpired, ConsentStatusGatewayTimeout:
		return true
	}

	return false
}

// ConsentDetail is implemented by *SingleConsentRequest and
// *EnduringConsentRequest only.
type ConsentDetail interface {
	ConsentDetailType() ConsentDetailType
	isConsentDetail()
}

// SingleConsentRequest authorises exactly one payment.
type SingleConsentRequest struct {
	Flow   *AuthFlow `json:"flow"`
	Pcr    *Pcr      `json:"pcr"`
	Amount *Amount   `json:"amount"`
}

// EnduringConsentRequest authorises recurring payments up to
// MaximumAmountPeriod per Period, starting at FromTimestamp.
type EnduringConsentRequest struct {
	Flow                 *AuthFlow  `json:"flow"`
	Period               Period     `json:"period"`
	FromTimestamp        *time.Time `json:"from_timestamp"`
	ExpiryTimestamp      *time.Time `json:"expiry_timestamp,omitempty"`
	MaximumAmountPeriod  *Amount    `json:"maximum_amount_period"`
	MaximumAmountPayment *Amount    `json:"maximum_amount_payment,omitempty"`
}

// QuickPaymentRequest creates a single consent and pays it in one step.
type QuickPaymentRequest struct {
	Flow   *AuthFlow `json:"flow"`
	Pcr    *Pcr      `json:"pcr"`
	Amount *Amount   `json:"amount"`
}

func (*SingleConsentRequest) ConsentDetailType() ConsentDetailType   { return ConsentDetailTypeSingle }
func (*EnduringConsentRequest) ConsentDetailType() ConsentDetailType { return ConsentDetailTypeEnduring }

func (*SingleConsentRequest) isConsentDetail()   {}
func (*EnduringConsentRequest) isConsentDetail() {}

type wireSingleConsent struct {
	Type   ConsentDetailType `json:"type"`
	Flow   *AuthFlow         `json:"flow"`
	Pcr    *Pcr              `json:"pcr"`
	Amount *Amount           `json:"amount"`
}

type wireEnduringConsent struct {
	Type                 ConsentDetailType `json:"type"`
	Flow                 *AuthFlow         `json:"flow"`
	Period               Period            `json:"period"`
	FromTimestamp        *time.Time        `json:"from_timestamp"`
	ExpiryTimestamp      *time.Time        `json:"expiry_timestamp,omitempty"`
	MaximumAmountPeriod  *Amount           `json:"maximum_amount_period"`
	MaximumAmountPayment *Amount           `json:"maximum_amount_payment,omitempty"`
}

func (r SingleConsentRequest) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireSingleConsent{
		Type:   ConsentDetailTypeSingle,
		Flow:   r.Flow,
		Pcr:    r.Pcr,
		Amount: r.Amount,
	})
}

func (r QuickPaymentRequest) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireSingleConsent{
		Type:   ConsentDetailTypeSingle,
		Flow:   r.Flow,
		Pcr:    r.Pcr,
		Amount: r.Amount,
	})
}

func (r EnduringConsentRequest) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireEnduringConsent{
		Type:                 ConsentDetailTypeEnduring,
		Flow:                 r.Flow,
		Period:               r.Period,
		FromTimestamp:        r.FromTimestamp,
		ExpiryTimestamp:      r.ExpiryTimestamp,
		MaximumAmountPeriod:  r.MaximumAmountPeriod,
		MaximumAmountPayment: r.MaximumAmountPayment,
	})
}

// ConsentDetailValue carries a ConsentDetail through JSON using the "type"
// discriminator.
type ConsentDetailValue struct {
	ConsentDetail
}

func (v ConsentDetailValue) MarshalJSON() ([]byte, error) {
	if v.ConsentDetail == nil {
		return []byte("null"), nil
	}

	return sonic.Marshal(v.ConsentDetail)
}

func (v *ConsentDetailValue) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type ConsentDetailType `json:"type"`
	}
	if err := sonic.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case "":
		v.ConsentDetail = nil
		return nil
	case ConsentDetailTypeSingle:
		var d SingleConsentRequest
		if err := sonic.Unmarshal(data, &d); err != nil {
			return err
		}
		v.ConsentDetail = &d
	case ConsentDetailTypeEnduring:
		var d EnduringConsentRequest
		if err := sonic.Unmarshal(data, &d); err != nil {
			return err
		}
		v.ConsentDetail = &d
	default:
		return fmt.Errorf("unknown consent detail type %q", probe.Type)
	}

	return nil
}

type CreateConsentResponse struct {
	ConsentID   uuid.UUID `json:"consent_id"`
	RedirectURI string    `json:"redirect_uri,omitempty"`
}

type Consent struct {
	ConsentID              uuid.UUID          `json:"consent_id"`
	Status                 ConsentStatus      `json:"status"`
	CreationTimestamp      time.Time          `json:"creation_timestamp"`
	StatusUpdatedTimestamp time.Time          `json:"status_updated_timestamp"`
	Detail                 ConsentDetailValue `json:"detail"`
	Payments               []Payment          `json:"payments"`
	Refunds                []Refund           `json:"refunds"`
}

type CreateQuickPaymentResponse struct {
	QuickPaymentID uuid.UUID `json:"quick_payment_id"`
	RedirectURI    string    `json:"redirect_uri,omitempty"`
}

type QuickPaymentResponse struct {
	QuickPaymentID uuid.UUID `json:"quick_payment_id"`
	Consent        Consent   `json:"consent"`
}
