package models

import "github.com/shopspring/decimal"

type Currency string

const CurrencyNZD Currency = "NZD"

// Amount is a monetary value as sent on the wire. Total is kept as the
// decimal string the API expects, e.g. "1.25".
type Amount struct {
	Currency Currency `json:"currency"`
	Total    string   `json:"total"`
}

func NewAmount(total string) *Amount {
	return &Amount{Currency: CurrencyNZD, Total: total}
}

func (a Amount) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(a.Total)
}

// Pcr holds the particulars, code and reference attached to a bank
// transaction. Code and Reference are optional.
type Pcr struct {
	Particulars string `json:"particulars"`
	Code        string `json:"code,omitempty"`
	Reference   string `json:"reference,omitempty"`
}
