package advance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
)

type advanceResponse struct {
	ID               uuid.UUID       `json:"id"`
	ContractNumber   string          `json:"contract_number"`
	Principal        decimal.Decimal `json:"principal"`
	AccruedInterest  decimal.Decimal `json:"accrued_interest"`
	AmountRepaid     decimal.Decimal `json:"amount_repaid"`
	LateFeesPaid     decimal.Decimal `json:"late_fees_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	DueDate          string          `json:"due_date"`
	Status           advance.Status  `json:"status"`
	RepaymentMethod  string          `json:"repayment_method,omitempty"`
	RepaymentRef     string          `json:"repayment_reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

func toAdvanceResponse(a *advance.Advance) advanceResponse {
	return advanceResponse{
		ID:               a.ID,
		ContractNumber:   a.ContractNumber,
		Principal:        a.Principal,
		AccruedInterest:  a.AccruedInterest,
		AmountRepaid:     a.AmountRepaid,
		LateFeesPaid:     a.LateFeesPaid,
		RemainingBalance: a.RemainingBalance,
		DueDate:          a.DueDate.Format(time.DateOnly),
		Status:           a.Status,
		RepaymentMethod:  a.RepaymentMethod,
		RepaymentRef:     a.RepaymentRef,
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

type transactionResponse struct {
	ID               uuid.UUID               `json:"id"`
	Type             advance.TransactionType `json:"type"`
	Amount           decimal.Decimal         `json:"amount"`
	BalanceBefore    decimal.Decimal         `json:"balance_before"`
	BalanceAfter     decimal.Decimal         `json:"balance_after"`
	LateFeePortion   decimal.Decimal         `json:"late_fee_portion"`
	PrincipalPortion decimal.Decimal         `json:"principal_portion"`
	Method           string                  `json:"method"`
	Reference        string                  `json:"reference,omitempty"`
	ProcessedAt      time.Time               `json:"processed_at"`
	ProcessedBy      string                  `json:"processed_by"`
}

func toTransactionResponse(tx *advance.Transaction) transactionResponse {
	return transactionResponse{
		ID:               tx.ID,
		Type:             tx.Type,
		Amount:           tx.Amount,
		BalanceBefore:    tx.BalanceBefore,
		BalanceAfter:     tx.BalanceAfter,
		LateFeePortion:   tx.LateFeePortion,
		PrincipalPortion: tx.PrincipalPortion,
		Method:           tx.Method,
		Reference:        tx.Reference,
		ProcessedAt:      tx.ProcessedAt,
		ProcessedBy:      tx.ProcessedBy,
	}
}

type statusChangeResponse struct {
	From      advance.Status `json:"from"`
	To        advance.Status `json:"to"`
	Reason    string         `json:"reason"`
	Actor     string         `json:"actor"`
	CreatedAt time.Time      `json:"created_at"`
}

type historyResponse struct {
	Transactions  []transactionResponse  `json:"transactions"`
	StatusChanges []statusChangeResponse `json:"status_changes"`
	Attempts      []*collection.Attempt  `json:"collection_attempts"`
}

func toHistoryResponse(h *advance.History, attempts []*collection.Attempt) historyResponse {
	resp := historyResponse{
		Transactions:  make([]transactionResponse, 0, len(h.Transactions)),
		StatusChanges: make([]statusChangeResponse, 0, len(h.StatusChanges)),
		Attempts:      attempts,
	}

	if resp.Attempts == nil {
		resp.Attempts = []*collection.Attempt{}
	}

	for _, tx := range h.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}

	for _, c := range h.StatusChanges {
		resp.StatusChanges = append(resp.StatusChanges, statusChangeResponse{
			From:      c.From,
			To:        c.To,
			Reason:    c.Reason,
			Actor:     c.Actor,
			CreatedAt: c.CreatedAt,
		})
	}

	return resp
}

type paymentResponse struct {
	Transaction     transactionResponse `json:"transaction"`
	PreviousBalance decimal.Decimal     `json:"previous_balance"`
	NewBalance      decimal.Decimal     `json:"new_balance"`
	LateFee         decimal.Decimal     `json:"late_fee"`
	FullyPaid       bool                `json:"fully_paid"`
	Status          advance.Status      `json:"status"`
}

func toPaymentResponse(res *advance.PaymentResult) paymentResponse {
	return paymentResponse{
		Transaction:     toTransactionResponse(res.Transaction),
		PreviousBalance: res.PreviousBalance,
		NewBalance:      res.NewBalance,
		LateFee:         res.LateFee,
		FullyPaid:       res.FullyPaid,
		Status:          res.Status,
	}
}

type extensionResponse struct {
	PreviousDueDate    string          `json:"previous_due_date"`
	NewDueDate         string          `json:"new_due_date"`
	ExtensionDays      int             `json:"extension_days"`
	AdditionalInterest decimal.Decimal `json:"additional_interest"`
	NewBalance         decimal.Decimal `json:"new_balance"`
	Status             advance.Status  `json:"status"`
}

func toExtensionResponse(res *advance.ExtensionResult) extensionResponse {
	return extensionResponse{
		PreviousDueDate:    res.PreviousDueDate.Format(time.DateOnly),
		NewDueDate:         res.NewDueDate.Format(time.DateOnly),
		ExtensionDays:      res.ExtensionDays,
		AdditionalInterest: res.AdditionalInterest,
		NewBalance:         res.NewBalance,
		Status:             res.Status,
	}
}
