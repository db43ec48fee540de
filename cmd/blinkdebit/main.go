package main

import (
	"blinkpay/blink-debit-client-go/internal/app/blinkdebit"
	"blinkpay/blink-debit-client-go/internal/app/services"
	"blinkpay/blink-debit-client-go/internal/config"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const usage = `usage: blinkdebit <command> [flags]

commands:
  meta               list banks and their supported flows
  single-consent     create a single consent
  enduring-consent   create an enduring consent
  quick-payment      create a quick payment
  payment            pay against an authorised consent
  refund             refund a payment
  get-consent        fetch a consent
  revoke-consent     revoke a consent
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}
	cfg := config.NewConfig()

	logger := slog.Default().With(slog.String("app", "blinkdebit"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := blinkdebit.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	out, err := run(ctx, client, os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		client.Close()
		os.Exit(1)
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to encode output:", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

type flowFlags struct {
	bank        string
	redirectURI string
	particulars string
	code        string
	reference   string
	amount      string
	await       time.Duration
	correlation string
}

func (f *flowFlags) register(fs *flag.FlagSet, withPcr bool) {
	fs.StringVar(&f.bank, "bank", string(models.BankPNZ), "bank to authorise with")
	fs.StringVar(&f.redirectURI, "redirect-uri", "", "where the customer returns after authorising")
	fs.StringVar(&f.amount, "amount", "", "amount in NZD, e.g. 1.25")
	fs.DurationVar(&f.await, "await", 0, "wait this long for the outcome")
	fs.StringVar(&f.correlation, "correlation-id", "", "x-correlation-id to send")
	if withPcr {
		fs.StringVar(&f.particulars, "particulars", "", "statement particulars")
		fs.StringVar(&f.code, "code", "", "statement code")
		fs.StringVar(&f.reference, "reference", "", "statement reference")
	}
}

func (f *flowFlags) flow() *models.AuthFlow {
	return &models.AuthFlow{Detail: &models.Redirect{Bank: models.Bank(f.bank), RedirectURI: f.redirectURI}}
}

func (f *flowFlags) pcr() *models.Pcr {
	return &models.Pcr{Particulars: f.particulars, Code: f.code, Reference: f.reference}
}

func (f *flowFlags) options() []services.CallOption {
	if f.correlation == "" {
		return nil
	}

	return []services.CallOption{services.WithCorrelationID(f.correlation)}
}

func parseID(s, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}

	return id, nil
}

func run(ctx context.Context, client *blinkdebit.Client, cmd string, args []string) (any, error) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	var f flowFlags

	switch cmd {
	case "meta":
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return client.GetMeta(ctx).Collect()

	case "single-consent":
		f.register(fs, true)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		created, err := client.CreateSingleConsent(ctx, &models.SingleConsentRequest{
			Flow:   f.flow(),
			Pcr:    f.pcr(),
			Amount: models.NewAmount(f.amount),
		}, f.options()...)
		if err != nil || f.await == 0 {
			return created, err
		}
		return client.AwaitAuthorisedSingleConsent(ctx, created.ConsentID, f.await)

	case "enduring-consent":
		f.register(fs, false)
		period := fs.String("period", string(models.PeriodMonthly), "annual, daily, fortnightly, monthly or weekly")
		maxPayment := fs.String("max-payment", "", "optional maximum amount of one payment")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		from := time.Now().UTC()
		req := &models.EnduringConsentRequest{
			Flow:                f.flow(),
			Period:              models.Period(*period),
			FromTimestamp:       &from,
			MaximumAmountPeriod: models.NewAmount(f.amount),
		}
		if *maxPayment != "" {
			req.MaximumAmountPayment = models.NewAmount(*maxPayment)
		}

		created, err := client.CreateEnduringConsent(ctx, req, f.options()...)
		if err != nil || f.await == 0 {
			return created, err
		}
		return client.AwaitAuthorisedEnduringConsent(ctx, created.ConsentID, f.await)

	case "quick-payment":
		f.register(fs, true)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		created, err := client.CreateQuickPayment(ctx, &models.QuickPaymentRequest{
			Flow:   f.flow(),
			Pcr:    f.pcr(),
			Amount: models.NewAmount(f.amount),
		}, f.options()...)
		if err != nil || f.await == 0 {
			return created, err
		}
		return client.AwaitSuccessfulQuickPayment(ctx, created.QuickPaymentID, f.await)

	case "payment":
		f.register(fs, true)
		consentID := fs.String("consent-id", "", "authorised consent to pay against")
		enduring := fs.Bool("enduring", false, "pay against an enduring consent using -particulars and -amount")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		id, err := parseID(*consentID, "consent id")
		if err != nil {
			return nil, err
		}

		req := &models.PaymentRequest{ConsentID: id}
		if *enduring {
			req.EnduringPayment = &models.EnduringPaymentRequest{Pcr: f.pcr(), Amount: models.NewAmount(f.amount)}
		}

		created, err := client.CreatePayment(ctx, req, f.options()...)
		if err != nil || f.await == 0 {
			return created, err
		}
		return client.AwaitSuccessfulPayment(ctx, created.PaymentID, f.await)

	case "refund":
		f.register(fs, true)
		paymentID := fs.String("payment-id", "", "payment to refund")
		kind := fs.String("type", string(models.RefundDetailTypeFull), "full_refund, partial_refund or account_number")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		id, err := parseID(*paymentID, "payment id")
		if err != nil {
			return nil, err
		}

		var detail models.RefundDetail
		switch models.RefundDetailType(*kind) {
		case models.RefundDetailTypeFull:
			detail = &models.FullRefundRequest{PaymentID: id, Pcr: f.pcr(), ConsentRedirect: f.redirectURI}
		case models.RefundDetailTypePartial:
			detail = &models.PartialRefundRequest{PaymentID: id, Pcr: f.pcr(), Amount: models.NewAmount(f.amount), ConsentRedirect: f.redirectURI}
		case models.RefundDetailTypeAccountNumber:
			detail = &models.AccountNumberRefundRequest{PaymentID: id}
		default:
			return nil, fmt.Errorf("unknown refund type %q", *kind)
		}

		return client.CreateRefund(ctx, detail, f.options()...)

	case "get-consent", "revoke-consent":
		consentID := fs.String("id", "", "consent id")
		enduring := fs.Bool("enduring", false, "the consent is an enduring consent")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		id, err := parseID(*consentID, "consent id")
		if err != nil {
			return nil, err
		}

		switch {
		case cmd == "get-consent" && *enduring:
			return client.GetEnduringConsent(ctx, id)
		case cmd == "get-consent":
			return client.GetSingleConsent(ctx, id)
		case *enduring:
			return map[string]string{"revoked": id.String()}, client.RevokeEnduringConsent(ctx, id)
		default:
			return map[string]string{"revoked": id.String()}, client.RevokeSingleConsent(ctx, id)
		}
	}

	return nil, fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}
