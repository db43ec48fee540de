package validation

import (
	"blinkpay/blink-debit-client-go/internal/models"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func requireInvalid(t *testing.T, err error, message string) {
	t.Helper()

	var ive *InvalidValueError
	require.True(t, errors.As(err, &ive), "expected InvalidValueError, got %v", err)
	require.Equal(t, message, ive.Message)
	require.False(t, ive.Retryable())
}

func validPcr() *models.Pcr {
	return &models.Pcr{Particulars: "particulars", Code: "code", Reference: "reference"}
}

func redirectFlow() *models.AuthFlow {
	return &models.AuthFlow{Detail: &models.Redirect{Bank: models.BankPNZ, RedirectURI: "https://merchant/return"}}
}

func TestSingleConsent_Valid(t *testing.T) {
	err := SingleConsent(&models.SingleConsentRequest{
		Flow:   redirectFlow(),
		Pcr:    validPcr(),
		Amount: models.NewAmount("1.25"),
	})
	require.NoError(t, err)
}

func TestSingleConsent_BlankRedirectURI(t *testing.T) {
	err := SingleConsent(&models.SingleConsentRequest{
		Flow:   &models.AuthFlow{Detail: &models.Redirect{Bank: models.BankPNZ, RedirectURI: ""}},
		Pcr:    validPcr(),
		Amount: models.NewAmount("1.25"),
	})
	requireInvalid(t, err, "Redirect URI must not be blank")
}

func TestSingleConsent_FailFastOrder(t *testing.T) {
	cases := []struct {
		name    string
		req     *models.SingleConsentRequest
		message string
	}{
		{"nil request", nil, "Single consent request must not be null"},
		{"everything missing", &models.SingleConsentRequest{}, "Authorisation flow must not be null"},
		{"missing detail, pcr and amount", &models.SingleConsentRequest{Flow: &models.AuthFlow{}}, "Authorisation flow detail must not be null"},
		{"typed nil detail", &models.SingleConsentRequest{Flow: &models.AuthFlow{Detail: (*models.Redirect)(nil)}}, "Authorisation flow detail must not be null"},
		{"bank and uri missing", &models.SingleConsentRequest{Flow: &models.AuthFlow{Detail: &models.Redirect{}}}, "Bank must not be null"},
		{"pcr and amount missing", &models.SingleConsentRequest{Flow: redirectFlow()}, "PCR must not be null"},
		{"amount missing", &models.SingleConsentRequest{Flow: redirectFlow(), Pcr: validPcr()}, "Amount must not be null"},
		{"blank particulars and bad amount", &models.SingleConsentRequest{Flow: redirectFlow(), Pcr: &models.Pcr{}, Amount: &models.Amount{}}, "Particulars must have at least 1 character"},
		{"currency missing", &models.SingleConsentRequest{Flow: redirectFlow(), Pcr: validPcr(), Amount: &models.Amount{Total: "1.00"}}, "Currency must not be null"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			requireInvalid(t, SingleConsent(c.req), c.message)
		})
	}
}

func TestFlow_Decoupled(t *testing.T) {
	cases := []struct {
		detail  *models.Decoupled
		message string
	}{
		{&models.Decoupled{}, "Bank must not be null"},
		{&models.Decoupled{Bank: models.BankBNZ}, "Identifier type must not be null"},
		{&models.Decoupled{Bank: models.BankBNZ, IdentifierType: models.IdentifierPhoneNumber, IdentifierValue: " "}, "Identifier value must not be blank"},
		{&models.Decoupled{Bank: models.BankBNZ, IdentifierType: models.IdentifierPhoneNumber, IdentifierValue: "+64-259531933"}, "Callback/webhook URL must not be blank"},
	}

	for _, c := range cases {
		requireInvalid(t, Flow(&models.AuthFlow{Detail: c.detail}), c.message)
	}

	require.NoError(t, Flow(&models.AuthFlow{Detail: &models.Decoupled{
		Bank:            models.BankBNZ,
		IdentifierType:  models.IdentifierPhoneNumber,
		IdentifierValue: "+64-259531933",
		CallbackURL:     "https://merchant/callback",
	}}))
}

func TestFlow_Gateway(t *testing.T) {
	cases := []struct {
		name    string
		detail  *models.Gateway
		message string
	}{
		{"no redirect uri", &models.Gateway{FlowHint: &models.RedirectFlowHint{}}, "Redirect URI must not be blank"},
		{"no hint", &models.Gateway{RedirectURI: "https://merchant/return"}, "Flow hint must not be null"},
		{"typed nil hint", &models.Gateway{RedirectURI: "https://merchant/return", FlowHint: (*models.DecoupledFlowHint)(nil)}, "Flow hint must not be null"},
		{"hint without bank", &models.Gateway{RedirectURI: "https://merchant/return", FlowHint: &models.RedirectFlowHint{}}, "Flow hint bank must not be null"},
		{"decoupled hint without identifier type", &models.Gateway{RedirectURI: "https://merchant/return", FlowHint: &models.DecoupledFlowHint{Bank: models.BankBNZ}}, "Identifier type must not be null"},
		{"decoupled hint without identifier value", &models.Gateway{RedirectURI: "https://merchant/return", FlowHint: &models.DecoupledFlowHint{Bank: models.BankBNZ, IdentifierType: models.IdentifierMobileNumber}}, "Identifier value must not be blank"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			requireInvalid(t, Flow(&models.AuthFlow{Detail: c.detail}), c.message)
		})
	}

	require.NoError(t, Flow(&models.AuthFlow{Detail: &models.Gateway{
		RedirectURI: "https://merchant/return",
		FlowHint:    &models.RedirectFlowHint{Bank: models.BankASB},
	}}))
}

func TestPcr_LengthBound(t *testing.T) {
	for n := 13; n <= 40; n++ {
		long := strings.Repeat("a", n)
		requireInvalid(t, Pcr(&models.Pcr{Particulars: long}), "Particulars must not exceed 12 characters")
		requireInvalid(t, Pcr(&models.Pcr{Particulars: "p", Code: long}), "Code must not exceed 12 characters")
		requireInvalid(t, Pcr(&models.Pcr{Particulars: "p", Reference: long}), "Reference must not exceed 12 characters")
	}

	alphabet := "aZ09- &#?:_/,.'"
	for n := 1; n <= 12; n++ {
		s := alphabet[:n]
		require.NoError(t, Pcr(&models.Pcr{Particulars: s, Code: s, Reference: s}), "length %d: %q", n, s)
	}
}

func TestPcr_BlankParticulars(t *testing.T) {
	requireInvalid(t, Pcr(nil), "PCR must not be null")
	for _, p := range []string{"", " ", "\t"} {
		requireInvalid(t, Pcr(&models.Pcr{Particulars: p}), "Particulars must have at least 1 character")
	}
}

func TestPcr_InvalidCharacters(t *testing.T) {
	requireInvalid(t, Pcr(&models.Pcr{Particulars: "semi;colon"}), "Particulars contains invalid characters")
	requireInvalid(t, Pcr(&models.Pcr{Particulars: "ok", Code: "50%"}), "Code contains invalid characters")
	requireInvalid(t, Pcr(&models.Pcr{Particulars: "ok", Reference: "<ref>"}), "Reference contains invalid characters")
}

func TestAmount_Total(t *testing.T) {
	requireInvalid(t, Amount(nil), "Amount must not be null")
	requireInvalid(t, Amount(&models.Amount{Total: "1.25"}), "Currency must not be null")
	requireInvalid(t, Amount(&models.Amount{Currency: "AUD", Total: "1.25"}), "Currency must be NZD")
	requireInvalid(t, Amount(models.NewAmount("")), "Total must not be blank")

	for _, total := range []string{"abc.de", "1.255", "0.001", "-1.00", "1e3", "1.", ".5", "10000000.00"} {
		requireInvalid(t, Amount(models.NewAmount(total)), "Total must be a valid amount")
	}

	for _, total := range []string{"1.25", "0.00", "1", "9999999.99", "12.5"} {
		require.NoError(t, Amount(models.NewAmount(total)), total)
	}
}

func TestQuickPayment(t *testing.T) {
	requireInvalid(t, QuickPayment(nil), "Quick payment request must not be null")
	requireInvalid(t, QuickPayment(&models.QuickPaymentRequest{}), "Authorisation flow must not be null")
	require.NoError(t, QuickPayment(&models.QuickPaymentRequest{
		Flow:   redirectFlow(),
		Pcr:    validPcr(),
		Amount: models.NewAmount("1.25"),
	}))
}

func TestEnduringConsent(t *testing.T) {
	from := time.Now()
	before := from.Add(-time.Hour)

	requireInvalid(t, EnduringConsent(nil), "Enduring consent request must not be null")
	requireInvalid(t, EnduringConsent(&models.EnduringConsentRequest{Flow: redirectFlow()}), "Period must not be null")
	requireInvalid(t, EnduringConsent(&models.EnduringConsentRequest{Flow: redirectFlow(), Period: models.PeriodMonthly}), "Start date must not be null")
	requireInvalid(t, EnduringConsent(&models.EnduringConsentRequest{Flow: redirectFlow(), Period: models.PeriodMonthly, FromTimestamp: &from, ExpiryTimestamp: &before}), "Expiry date must be after start date")
	requireInvalid(t, EnduringConsent(&models.EnduringConsentRequest{Flow: redirectFlow(), Period: models.PeriodMonthly, FromTimestamp: &from}), "Amount must not be null")

	require.NoError(t, EnduringConsent(&models.EnduringConsentRequest{
		Flow:                redirectFlow(),
		Period:              models.PeriodWeekly,
		FromTimestamp:       &from,
		MaximumAmountPeriod: models.NewAmount("50.00"),
	}))
}

func TestPayment(t *testing.T) {
	consentID := uuid.New()
	nilRef := uuid.Nil

	requireInvalid(t, Payment(nil), "Payment request must not be null")
	requireInvalid(t, Payment(&models.PaymentRequest{}), "Consent ID must not be null")
	requireInvalid(t, Payment(&models.PaymentRequest{ConsentID: consentID, EnduringPayment: &models.EnduringPaymentRequest{}}), "PCR must not be null")
	requireInvalid(t, Payment(&models.PaymentRequest{ConsentID: consentID, EnduringPayment: &models.EnduringPaymentRequest{Pcr: validPcr()}}), "Amount must not be null")
	requireInvalid(t, Payment(&models.PaymentRequest{ConsentID: consentID, AccountReferenceID: &nilRef}), "Account reference ID must not be nil")

	require.NoError(t, Payment(&models.PaymentRequest{ConsentID: consentID}))
	require.NoError(t, Payment(&models.PaymentRequest{
		ConsentID:       consentID,
		EnduringPayment: &models.EnduringPaymentRequest{Pcr: validPcr(), Amount: models.NewAmount("10.00")},
	}))
}

func TestWestpacPayment(t *testing.T) {
	consentID := uuid.New()
	ref := uuid.New()

	requireInvalid(t, WestpacPayment(nil), "Payment request must not be null")
	requireInvalid(t, WestpacPayment(&models.PaymentRequest{ConsentID: consentID}), "Account reference ID must not be null")
	requireInvalid(t, WestpacPayment(&models.PaymentRequest{ConsentID: consentID, AccountReferenceID: &ref}), "PCR must not be null")
	requireInvalid(t, WestpacPayment(&models.PaymentRequest{ConsentID: consentID, AccountReferenceID: &ref, Pcr: validPcr()}), "Amount must not be null")

	require.NoError(t, WestpacPayment(&models.PaymentRequest{
		ConsentID:          consentID,
		AccountReferenceID: &ref,
		Pcr:                validPcr(),
		Amount:             models.NewAmount("25.00"),
	}))
}

func TestRefund(t *testing.T) {
	paymentID := uuid.New()

	requireInvalid(t, Refund(nil), "Refund request must not be null")
	requireInvalid(t, Refund((*models.FullRefundRequest)(nil)), "Refund detail must not be null")
	requireInvalid(t, Refund(&models.AccountNumberRefundRequest{}), "Payment ID must not be null")
	requireInvalid(t, Refund(&models.FullRefundRequest{}), "Payment ID must not be null")
	requireInvalid(t, Refund(&models.FullRefundRequest{PaymentID: paymentID}), "PCR must not be null")
	requireInvalid(t, Refund(&models.PartialRefundRequest{PaymentID: paymentID, Pcr: validPcr()}), "Amount must not be null")

	require.NoError(t, Refund(&models.AccountNumberRefundRequest{PaymentID: paymentID}))
	require.NoError(t, Refund(&models.FullRefundRequest{PaymentID: paymentID, Pcr: validPcr()}))
	require.NoError(t, Refund(&models.PartialRefundRequest{PaymentID: paymentID, Pcr: validPcr(), Amount: models.NewAmount("0.50")}))
}
