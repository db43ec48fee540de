package models

import (
	"fmt"

	"github.com/bytedance/sonic"
)

type Bank string

const (
	BankANZ         Bank = "ANZ"
	BankASB         Bank = "ASB"
	BankBNZ         Bank = "BNZ"
	BankCybersource Bank = "Cybersource"
	BankKiwibank    Bank = "Kiwibank"
	BankPNZ         Bank = "PNZ"
	BankWestpac     Bank = "Westpac"
)

type IdentifierType string

const (
	IdentifierPhoneNumber  IdentifierType = "phone_number"
	IdentifierMobileNumber IdentifierType = "mobile_number"
	IdentifierConsentID    IdentifierType = "consent_id"
)

type FlowType string

const (
	FlowTypeRedirect  FlowType = "redirect"
	FlowTypeDecoupled FlowType = "decoupled"
	FlowTypeGateway   FlowType = "gateway"
)

type FlowHintType string

const (
	FlowHintTypeRedirect  FlowHintType = "redirect"
	FlowHintTypeDecoupled FlowHintType = "decoupled"
)

// AuthFlow carries the authorisation mechanism used to obtain consent.
type AuthFlow struct {
	Detail FlowDetail
}

// FlowDetail is implemented by *Redirect, *Decoupled and *Gateway only.
type FlowDetail interface {
	FlowType() FlowType
	isFlowDetail()
}

// Redirect sends the customer to their bank's web or app UI.
type Redirect struct {
	Bank          Bank
	RedirectURI   string
	RedirectToApp bool
}

// Decoupled asks the bank to push an authorisation request to the customer's
// device; the outcome is delivered to CallbackURL.
type Decoupled struct {
	Bank            Bank
	IdentifierType  IdentifierType
	IdentifierValue string
	CallbackURL     string
}

// Gateway lets the customer choose their bank on a hosted page. FlowHint, when
// known, preselects the bank and the flow.
type Gateway struct {
	RedirectURI string
	FlowHint    FlowHint
}

func (*Redirect) FlowType() FlowType  { return FlowTypeRedirect }
func (*Decoupled) FlowType() FlowType { return FlowTypeDecoupled }
func (*Gateway) FlowType() FlowType   { return FlowTypeGateway }

func (*Redirect) isFlowDetail()  {}
func (*Decoupled) isFlowDetail() {}
func (*Gateway) isFlowDetail()   {}

// FlowHint is implemented by *RedirectFlowHint and *DecoupledFlowHint only.
type FlowHint interface {
	FlowHintType() FlowHintType
	isFlowHint()
}

type RedirectFlowHint struct {
	Bank Bank
}

type DecoupledFlowHint struct {
	Bank            Bank
	IdentifierType  IdentifierType
	IdentifierValue string
}

func (*RedirectFlowHint) FlowHintType() FlowHintType  { return FlowHintTypeRedirect }
func (*DecoupledFlowHint) FlowHintType() FlowHintType { return FlowHintTypeDecoupled }

func (*RedirectFlowHint) isFlowHint()  {}
func (*DecoupledFlowHint) isFlowHint() {}

type wireAuthFlow struct {
	Detail *wireFlowDetail `json:"detail"`
}

type wireFlowDetail struct {
	Type            FlowType       `json:"type"`
	Bank            Bank           `json:"bank,omitempty"`
	RedirectURI     string         `json:"redirect_uri,omitempty"`
	RedirectToApp   *bool          `json:"redirect_to_app,omitempty"`
	IdentifierType  IdentifierType `json:"identifier_type,omitempty"`
	IdentifierValue string         `json:"identifier_value,omitempty"`
	CallbackURL     string         `json:"callback_url,omitempty"`
	FlowHint        *wireFlowHint  `json:"flow_hint,omitempty"`
}

type wireFlowHint struct {
	Type            FlowHintType   `json:"type"`
	Bank            Bank           `json:"bank,omitempty"`
	IdentifierType  IdentifierType `json:"identifier_type,omitempty"`
	IdentifierValue string         `json:"identifier_value,omitempty"`
}

func (f AuthFlow) MarshalJSON() ([]byte, error) {
	detail, err := flowDetailToWire(f.Detail)
	if err != nil {
		return nil, err
	}

	return sonic.Marshal(wireAuthFlow{Detail: detail})
}

func (f *AuthFlow) UnmarshalJSON(data []byte) error {
	var w wireAuthFlow
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}

	detail, err := flowDetailFromWire(w.Detail)
	if err != nil {
		return err
	}

	f.Detail = detail
	return nil
}

func flowDetailToWire(detail FlowDetail) (*wireFlowDetail, error) {
	switch d := detail.(type) {
	case nil:
		return nil, nil
	case *Redirect:
		if d == nil {
			return nil, nil
		}
		redirectToApp := d.RedirectToApp
		return &wireFlowDetail{
			Type:          FlowTypeRedirect,
			Bank:          d.Bank,
			RedirectURI:   d.RedirectURI,
			RedirectToApp: &redirectToApp,
		}, nil
	case *Decoupled:
		if d == nil {
			return nil, nil
		}
		return &wireFlowDetail{
			Type:            FlowTypeDecoupled,
			Bank:            d.Bank,
			IdentifierType:  d.IdentifierType,
			IdentifierValue: d.IdentifierValue,
			CallbackURL:     d.CallbackURL,
		}, nil
	case *Gateway:
		if d == nil {
			return nil, nil
		}
		hint, err := flowHintToWire(d.FlowHint)
		if err != nil {
			return nil, err
		}
		return &wireFlowDetail{
			Type:        FlowTypeGateway,
			RedirectURI: d.RedirectURI,
			FlowHint:    hint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported flow detail %T", detail)
	}
}

func flowDetailFromWire(w *wireFlowDetail) (FlowDetail, error) {
	if w == nil {
		return nil, nil
	}

	switch w.Type {
	case FlowTypeRedirect:
		r := &Redirect{Bank: w.Bank, RedirectURI: w.RedirectURI}
		if w.RedirectToApp != nil {
			r.RedirectToApp = *w.RedirectToApp
		}
		return r, nil
	case FlowTypeDecoupled:
		return &Decoupled{
			Bank:            w.Bank,
			IdentifierType:  w.IdentifierType,
			IdentifierValue: w.IdentifierValue,
			CallbackURL:     w.CallbackURL,
		}, nil
	case FlowTypeGateway:
		hint, err := flowHintFromWire(w.FlowHint)
		if err != nil {
			return nil, err
		}
		return &Gateway{RedirectURI: w.RedirectURI, FlowHint: hint}, nil
	default:
		return nil, fmt.Errorf("unknown flow type %q", w.Type)
	}
}

func flowHintToWire(hint FlowHint) (*wireFlowHint, error) {
	switch h := hint.(type) {
	case nil:
		return nil, nil
	case *RedirectFlowHint:
		if h == nil {
			return nil, nil
		}
		return &wireFlowHint{Type: FlowHintTypeRedirect, Bank: h.Bank}, nil
	case *DecoupledFlowHint:
		if h == nil {
			return nil, nil
		}
		return &wireFlowHint{
			Type:            FlowHintTypeDecoupled,
			Bank:            h.Bank,
			IdentifierType:  h.IdentifierType,
			IdentifierValue: h.IdentifierValue,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported flow hint %T", hint)
	}
}

func flowHintFromWire(w *wireFlowHint) (FlowHint, error) {
	if w == nil {
		return nil, nil
	}

	switch w.Type {
	case FlowHintTypeRedirect:
		return &RedirectFlowHint{Bank: w.Bank}, nil
	case FlowHintTypeDecoupled:
		return &DecoupledFlowHint{
			Bank:            w.Bank,
			IdentifierType:  w.IdentifierType,
			IdentifierValue: w.IdentifierValue,
		}, nil
	default:
		return nil, fmt.Errorf("unknown flow hint type %q", w.Type)
	}
}
