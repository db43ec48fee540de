// Package validation rejects malformed requests before they reach the
// network. Every routine is fail-fast: it reports the first violated rule in
// a fixed order and nothing else.
package validation

import (
	"blinkpay/blink-debit-client-go/internal/models"

	"github.com/google/uuid"
)

// Flow checks an authorisation flow and its detail variant.
func Flow(flow *models.AuthFlow) error {
	if flow == nil {
		return invalid("Authorisation flow must not be null")
	}

	switch d := flow.Detail.(type) {
	case *models.Redirect:
		if d == nil {
			break
		}
		return redirect(d)
	case *models.Decoupled:
		if d == nil {
			break
		}
		return decoupled(d)
	case *models.Gateway:
		if d == nil {
			break
		}
		return gateway(d)
	}

	return invalid("Authorisation flow detail must not be null")
}

func redirect(d *models.Redirect) error {
	if d.Bank == "" {
		return invalid("Bank must not be null")
	}

	if isBlank(d.RedirectURI) {
		return invalid("Redirect URI must not be blank")
	}

	return nil
}

func decoupled(d *models.Decoupled) error {
	if d.Bank == "" {
		return invalid("Bank must not be null")
	}

	if d.IdentifierType == "" {
		return invalid("Identifier type must not be null")
	}

	if isBlank(d.IdentifierValue) {
		return invalid("Identifier value must not be blank")
	}

	if isBlank(d.CallbackURL) {
		return invalid("Callback/webhook URL must not be blank")
	}

	return nil
}

func gateway(d *models.Gateway) error {
	if isBlank(d.RedirectURI) {
		return invalid("Redirect URI must not be blank")
	}

	switch h := d.FlowHint.(type) {
	case *models.RedirectFlowHint:
		if h == nil {
			break
		}
		if h.Bank == "" {
			return invalid("Flow hint bank must not be null")
		}
		return nil
	case *models.DecoupledFlowHint:
		if h == nil {
			break
		}
		if h.Bank == "" {
			return invalid("Flow hint bank must not be null")
		}
		if h.IdentifierType == "" {
			return invalid("Identifier type must not be null")
		}
		if isBlank(h.IdentifierValue) {
			return invalid("Identifier value must not be blank")
		}
		return nil
	case nil:
	default:
		return invalid("Flow hint type must not be null")
	}

	return invalid("Flow hint must not be null")
}

func SingleConsent(r *models.SingleConsentRequest) error {
	if r == nil {
		return invalid("Single consent request must not be null")
	}

	if err := Flow(r.Flow); err != nil {
		return err
	}

	if err := Pcr(r.Pcr); err != nil {
		return err
	}

	return Amount(r.Amount)
}

func QuickPayment(r *models.QuickPaymentRequest) error {
	if r == nil {
		return invalid("Quick payment request must not be null")
	}

	if err := Flow(r.Flow); err != nil {
		return err
	}

	if err := Pcr(r.Pcr); err != nil {
		return err
	}

	return Amount(r.Amount)
}

func EnduringConsent(r *models.EnduringConsentRequest) error {
	if r == nil {
		return invalid("Enduring consent request must not be null")
	}

	if err := Flow(r.Flow); err != nil {
		return err
	}

	if r.Period == "" {
		return invalid("Period must not be null")
	}

	if r.FromTimestamp == nil {
		return invalid("Start date must not be null")
	}

	if r.ExpiryTimestamp != nil && !r.ExpiryTimestamp.After(*r.FromTimestamp) {
		return invalid("Expiry date must be after start date")
	}

	if err := Amount(r.MaximumAmountPeriod); err != nil {
		return err
	}

	if r.MaximumAmountPayment != nil {
		return Amount(r.MaximumAmountPayment)
	}

	return nil
}

// Payment checks a request for a single, enduring or Westpac payment. PCR
// and amount are checked only where the request carries them.
func Payment(r *models.PaymentRequest) error {
	if r == nil {
		return invalid("Payment request must not be null")
	}

	if r.ConsentID == uuid.Nil {
		return invalid("Consent ID must not be null")
	}

	if r.EnduringPayment != nil {
		if err := Pcr(r.EnduringPayment.Pcr); err != nil {
			return err
		}
		if err := Amount(r.EnduringPayment.Amount); err != nil {
			return err
		}
	}

	if r.Pcr != nil {
		if err := Pcr(r.Pcr); err != nil {
			return err
		}
	}

	if r.Amount != nil {
		if err := Amount(r.Amount); err != nil {
			return err
		}
	}

	if r.AccountReferenceID != nil && *r.AccountReferenceID == uuid.Nil {
		return invalid("Account reference ID must not be nil")
	}

	return nil
}

// WestpacPayment additionally requires the account reference, PCR and amount
// that Westpac payments carry at the top level.
func WestpacPayment(r *models.PaymentRequest) error {
	if err := Payment(r); err != nil {
		return err
	}

	if r.AccountReferenceID == nil {
		return invalid("Account reference ID must not be null")
	}
	if err := Pcr(r.Pcr); err != nil {
		return err
	}

	return Amount(r.Amount)
}

func Refund(detail models.RefundDetail) error {
	if detail == nil {
		return invalid("Refund request must not be null")
	}

	switch d := detail.(type) {
	case *models.AccountNumberRefundRequest:
		if d == nil {
			break
		}
		return RequiredID(d.PaymentID, "Payment ID")
	case *models.FullRefundRequest:
		if d == nil {
			break
		}
		if err := RequiredID(d.PaymentID, "Payment ID"); err != nil {
			return err
		}
		return Pcr(d.Pcr)
	case *models.PartialRefundRequest:
		if d == nil {
			break
		}
		if err := RequiredID(d.PaymentID, "Payment ID"); err != nil {
			return err
		}
		if err := Pcr(d.Pcr); err != nil {
			return err
		}
		return Amount(d.Amount)
	}

	return invalid("Refund detail must not be null")
}

// RequiredID rejects the nil UUID, reporting it as "<name> must not be null".
func RequiredID(id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return invalid(name + " must not be null")
	}

	return nil
}
