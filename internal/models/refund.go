package models

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type RefundDetailType string

const (
	RefundDetailTypeAccountNumber RefundDetailType = "account_number"
	RefundDetailTypeFull          RefundDetailType = "full_refund"
	RefundDetailTypePartial       RefundDetailType = "partial_refund"
)

type RefundStatus string

const (
	RefundStatusProcessing RefundStatus = "Processing"
	RefundStatusCompleted  RefundStatus = "Completed"
	RefundStatusFailed     RefundStatus = "Failed"
)

// RefundDetail is implemented by *FullRefundRequest, *PartialRefundRequest
// and *AccountNumberRefundRequest only.
type RefundDetail interface {
	RefundDetailType() RefundDetailType
	isRefundDetail()
}

// FullRefundRequest refunds the whole payment to the payer's account.
type FullRefundRequest struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	Pcr             *Pcr      `json:"pcr"`
	ConsentRedirect string    `json:"consent_redirect,omitempty"`
}

type PartialRefundRequest struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	Pcr             *Pcr      `json:"pcr"`
	Amount          *Amount   `json:"amount"`
	ConsentRedirect string    `json:"consent_redirect,omitempty"`
}

// AccountNumberRefundRequest only retrieves the payer's account number; no
// money moves.
type AccountNumberRefundRequest struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

func (*FullRefundRequest) RefundDetailType() RefundDetailType    { return RefundDetailTypeFull }
func (*PartialRefundRequest) RefundDetailType() RefundDetailType { return RefundDetailTypePartial }
func (*AccountNumberRefundRequest) RefundDetailType() RefundDetailType {
	return RefundDetailTypeAccountNumber
}

func (*FullRefundRequest) isRefundDetail()          {}
func (*PartialRefundRequest) isRefundDetail()       {}
func (*AccountNumberRefundRequest) isRefundDetail() {}

type wireRefundDetail struct {
	Type            RefundDetailType `json:"type"`
	PaymentID       uuid.UUID        `json:"payment_id"`
	Pcr             *Pcr             `json:"pcr,omitempty"`
	Amount          *Amount          `json:"amount,omitempty"`
	ConsentRedirect string           `json:"consent_redirect,omitempty"`
}

func (r FullRefundRequest) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireRefundDetail{
		Type:            RefundDetailTypeFull,
		PaymentID:       r.PaymentID,
		Pcr:             r.Pcr,
		ConsentRedirect: r.ConsentRedirect,
	})
}

func (r PartialRefundRequest) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireRefundDetail{
		Type:            RefundDetailTypePartial,
		PaymentID:       r.PaymentID,
		Pcr:             r.Pcr,
		Amount:          r.Amount,
		ConsentRedirect: r.ConsentRedirect,
	})
}

func (r AccountNumberRefundRequest) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireRefundDetail{
		Type:      RefundDetailTypeAccountNumber,
		PaymentID: r.PaymentID,
	})
}

// RefundDetailValue carries a RefundDetail through JSON using the "type"
// discriminator.
type RefundDetailValue struct {
	RefundDetail
}

func (v RefundDetailValue) MarshalJSON() ([]byte, error) {
	if v.RefundDetail == nil {
		return []byte("null"), nil
	}

	return sonic.Marshal(v.RefundDetail)
}

func (v *RefundDetailValue) UnmarshalJSON(data []byte) error {
	var w wireRefundDetail
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.Type {
	case "":
		v.RefundDetail = nil
	case RefundDetailTypeFull:
		v.RefundDetail = &FullRefundRequest{PaymentID: w.PaymentID, Pcr: w.Pcr, ConsentRedirect: w.ConsentRedirect}
	case RefundDetailTypePartial:
		v.RefundDetail = &PartialRefundRequest{PaymentID: w.PaymentID, Pcr: w.Pcr, Amount: w.Amount, ConsentRedirect: w.ConsentRedirect}
	case RefundDetailTypeAccountNumber:
		v.RefundDetail = &AccountNumberRefundRequest{PaymentID: w.PaymentID}
	default:
		return fmt.Errorf("unknown refund detail type %q", w.Type)
	}

	return nil
}

type RefundResponse struct {
	RefundID uuid.UUID `json:"refund_id"`
}

type Refund struct {
	RefundID               uuid.UUID         `json:"refund_id"`
	Status                 RefundStatus      `json:"status"`
	CreationTimestamp      time.Time         `json:"creation_timestamp"`
	StatusUpdatedTimestamp time.Time         `json:"status_updated_timestamp"`
	AccountNumber          string            `json:"account_number,omitempty"`
	Detail                 RefundDetailValue `json:"detail"`
}
