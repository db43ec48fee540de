package validation

import (
	"blinkpay/blink-debit-client-go/internal/models"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxPcrLength = 12

var (
	pcrPattern   = regexp.MustCompile(`^[a-zA-Z0-9\- &#?:_/,.']*$`)
	totalPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	maxTotal     = decimal.NewFromInt(10_000_000)
)

// InvalidValueError rejects a request before it is sent. It is never
// retryable.
type InvalidValueError struct {
	Message string
}

func (e *InvalidValueError) Error() string {
	return e.Message
}

func (e *InvalidValueError) Retryable() bool {
	return false
}

func invalid(message string) error {
	return &InvalidValueError{Message: message}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Pcr checks particulars, code and reference.
func Pcr(pcr *models.Pcr) error {
	if pcr == nil {
		return invalid("PCR must not be null")
	}

	if isBlank(pcr.Particulars) {
		return invalid("Particulars must have at least 1 character")
	}

	if utf8.RuneCountInString(pcr.Particulars) > maxPcrLength {
		return invalid("Particulars must not exceed 12 characters")
	}

	if utf8.RuneCountInString(pcr.Code) > maxPcrLength {
		return invalid("Code must not exceed 12 characters")
	}

	if utf8.RuneCountInString(pcr.Reference) > maxPcrLength {
		return invalid("Reference must not exceed 12 characters")
	}

	if !pcrPattern.MatchString(pcr.Particulars) {
		return invalid("Particulars contains invalid characters")
	}

	if !pcrPattern.MatchString(pcr.Code) {
		return invalid("Code contains invalid characters")
	}

	if !pcrPattern.MatchString(pcr.Reference) {
		return invalid("Reference contains invalid characters")
	}

	return nil
}

// Amount checks currency and total. Total must be a plain non-negative
// decimal with at most two fractional digits, below 10,000,000.
func Amount(amount *models.Amount) error {
	if amount == nil {
		return invalid("Amount must not be null")
	}

	if amount.Currency == "" {
		return invalid("Currency must not be null")
	}

	if amount.Currency != models.CurrencyNZD {
		return invalid("Currency must be NZD")
	}

	if isBlank(amount.Total) {
		return invalid("Total must not be blank")
	}

	if !totalPattern.MatchString(amount.Total) {
		return invalid("Total must be a valid amount")
	}

	total, err := decimal.NewFromString(amount.Total)
	if err != nil || total.IsNegative() || total.GreaterThanOrEqual(maxTotal) {
		return invalid("Total must be a valid amount")
	}

	return nil
}
