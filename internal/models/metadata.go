package models

type BankMetadata struct {
	Name         Bank                      `json:"name"`
	PaymentLimit *Amount                   `json:"payment_limit,omitempty"`
	Features     BankMetadataFeatures      `json:"features"`
	RedirectFlow *BankMetadataRedirectFlow `json:"redirect_flow,omitempty"`
}

type BankMetadataFeatures struct {
	EnduringConsent *EnduringConsentFeature `json:"enduring_consent,omitempty"`
	DecoupledFlow   *DecoupledFlowFeature   `json:"decoupled_flow,omitempty"`
}

type EnduringConsentFeature struct {
	Enabled           bool `json:"enabled"`
	ConsentIndefinite bool `json:"consent_indefinite"`
}

type DecoupledFlowFeature struct {
	Enabled              bool                  `json:"enabled"`
	AvailableIdentifiers []AvailableIdentifier `json:"available_identifiers,omitempty"`
	RequestTimeout       string                `json:"request_timeout,omitempty"`
}

type AvailableIdentifier struct {
	Type        IdentifierType `json:"type"`
	Name        string         `json:"name"`
	Regex       string         `json:"regex,omitempty"`
	Description string         `json:"description,omitempty"`
}

type BankMetadataRedirectFlow struct {
	Enabled        bool   `json:"enabled"`
	RequestTimeout string `json:"request_timeout,omitempty"`
}

// ErrorBody is the structured error document returned by the API on non-2xx
// responses.
type ErrorBody struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Code      string `json:"code,omitempty"`
}
