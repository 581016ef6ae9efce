package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Flutterwave struct{}

type flutterwaveEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID          int64           `json:"id"`
		TxRef       string          `json:"tx_ref"`
		FlwRef      string          `json:"flw_ref"`
		Amount      decimal.Decimal `json:"amount"`
		Status      string          `json:"status"`
		PaymentType string          `json:"payment_type"`
		CreatedAt   time.Time       `json:"created_at"`
	} `json:"data"`
}

// Map expects amounts in major units and the contract number in tx_ref.
func (Flutterwave) Map(payload []byte) (*Payment, error) {
	var ev flutterwaveEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if ev.Event != "charge.completed" || !strings.EqualFold(ev.Data.Status, "successful") {
		return nil, fmt.Errorf("%w: %s/%s", ErrIgnoredEvent, ev.Event, ev.Data.Status)
	}

	ref := ev.Data.FlwRef
	if ref == "" && ev.Data.ID != 0 {
		ref = strconv.FormatInt(ev.Data.ID, 10)
	}

	return &Payment{
		ContractNumber: strings.TrimSpace(ev.Data.TxRef),
		Amount:         ev.Data.Amount,
		Reference:      ref,
		Method:         normalizeMethod(ev.Data.PaymentType),
		PaidAt:         ev.Data.CreatedAt,
	}, nil
}

type Paystack struct{}

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string          `json:"reference"`
		Amount    decimal.Decimal `json:"amount"`
		Status    string          `json:"status"`
		Channel   string          `json:"channel"`
		PaidAt    time.Time       `json:"paid_at"`
		Metadata  struct {
			ContractNumber string `json:"contract_number"`
		} `json:"metadata"`
	} `json:"data"`
}

// Map converts Paystack's minor-unit amounts to major units.
func (Paystack) Map(payload []byte) (*Payment, error) {
	var ev paystackEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if ev.Event != "charge.success" || !strings.EqualFold(ev.Data.Status, "success") {
		return nil, fmt.Errorf("%w: %s/%s", ErrIgnoredEvent, ev.Event, ev.Data.Status)
	}

	return &Payment{
		ContractNumber: strings.TrimSpace(ev.Data.Metadata.ContractNumber),
		Amount:         ev.Data.Amount.Shift(-2),
		Reference:      ev.Data.Reference,
		Method:         normalizeMethod(ev.Data.Channel),
		PaidAt:         ev.Data.PaidAt,
	}, nil
}
