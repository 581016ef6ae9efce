package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

var (
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrIgnoredEvent    = errors.New("event does not represent a successful payment")
	ErrInvalidPayload  = errors.New("invalid webhook payload")
)

// Payment is a provider-neutral successful payment.
type Payment struct {
	Provider       string          `validate:"required"`
	ContractNumber string          `validate:"required"`
	Amount         decimal.Decimal `validate:"-"`
	Reference      string          `validate:"required"`
	Method         string          `validate:"required"`
	PaidAt         time.Time
}

// Mapper turns one provider's raw event into a Payment, or ErrIgnoredEvent.
type Mapper interface {
	Map(payload []byte) (*Payment, error)
}

type Ledger interface {
	GetByContract(ctx context.Context, contractNumber string) (*advance.Advance, error)
	RecordPayment(ctx context.Context, p advance.PaymentParams) (*advance.PaymentResult, error)
}

type Processor struct {
	ledger   Ledger
	mappers  map[string]Mapper
	validate *validator.Validate
}

func NewProcessor(ledger Ledger) *Processor {
	return &Processor{
		ledger: ledger,
		mappers: map[string]Mapper{
			"flutterwave": Flutterwave{},
			"paystack":    Paystack{},
		},
		validate: validator.New(),
	}
}

// Handle maps one provider event to at most one RecordPayment call.
func (p *Processor) Handle(ctx context.Context, provider string, payload []byte) (*advance.PaymentResult, error) {
	provider = strings.ToLower(provider)

	m, ok := p.mappers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	pay, err := m.Map(payload)
	if err != nil {
		return nil, err
	}

	pay.Provider = provider

	if err := p.validate.Struct(pay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if !pay.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive amount %s", ErrInvalidPayload, pay.Amount)
	}

	adv, err := p.ledger.GetByContract(ctx, pay.ContractNumber)
	if err != nil {
		return nil, fmt.Errorf("resolving contract %s: %w", pay.ContractNumber, err)
	}

	res, err := p.ledger.RecordPayment(ctx, advance.PaymentParams{
		AdvanceID:   adv.ID,
		Amount:      pay.Amount,
		Method:      pay.Method,
		Reference:   pay.Reference,
		ProcessedAt: pay.PaidAt,
		Actor:       "webhook:" + provider,
	})
	if err != nil {
		return nil, fmt.Errorf("recording %s payment %s: %w", provider, pay.Reference, err)
	}

	slog.Info("webhook payment applied",
		"module", "webhook",
		"provider", provider,
		"advance_id", adv.ID,
		"reference", pay.Reference,
		"fully_paid", res.FullyPaid,
	)

	return res, nil
}

func normalizeMethod(raw string) string {
	raw = strings.ToLower(raw)

	switch {
	case strings.Contains(raw, "mobile"), strings.Contains(raw, "mpesa"):
		return "MOBILE_MONEY"
	case strings.Contains(raw, "card"):
		return "CARD"
	case strings.Contains(raw, "bank"), strings.Contains(raw, "transfer"), raw == "account":
		return "BANK_TRANSFER"
	case raw == "":
		return ""
	default:
		return strings.ToUpper(raw)
	}
}
