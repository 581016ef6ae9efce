package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectAdvanceColumns = `
	a.id, a.contract_number, a.contact_id, a.pool_id, a.principal, a.accrued_interest,
	a.amount_repaid, a.late_fees_paid, a.remaining_balance, a.due_date, a.status,
	a.repayment_method, a.repayment_ref, a.notes, a.created_at, a.updated_at
`

// scanAdvance expects the column order of selectAdvanceColumns.
func scanAdvance(s scanner) (*advance.Advance, error) {
	var a advance.Advance

	var status string

	var method, ref sql.NullString

	if err := s.Scan(
		&a.ID, &a.ContractNumber, &a.ContactID, &a.PoolID, &a.Principal, &a.AccruedInterest,
		&a.AmountRepaid, &a.LateFeesPaid, &a.RemainingBalance, &a.DueDate, &status,
		&method, &ref, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Status = advance.Status(status)
	a.RepaymentMethod = method.String
	a.RepaymentRef = ref.String

	return &a, nil
}

func getAdvance(ctx context.Context, q queryer, where string, arg any, suffix string) (*advance.Advance, error) {
	query := `SELECT ` + selectAdvanceColumns + ` FROM advances a WHERE ` + where + suffix

	a, err := scanAdvance(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, advance.ErrNotFound
		}

		return nil, fmt.Errorf("getting advance: %w", err)
	}

	return a, nil
}

func (s *Store) GetAdvance(ctx context.Context, id uuid.UUID) (*advance.Advance, error) {
	return getAdvance(ctx, s.db, "a.id = $1", id, "")
}

func (s *Store) GetAdvanceByContract(ctx context.Context, contractNumber string) (*advance.Advance, error) {
	return getAdvance(ctx, s.db, "a.contract_number = $1", contractNumber, "")
}

// ListOutstanding returns every advance that still carries a collectible balance.
func (s *Store) ListOutstanding(ctx context.Context) ([]*advance.Advance, error) {
	query := `SELECT ` + selectAdvanceColumns + `
		FROM advances a
		WHERE a.status = ANY($1)
		ORDER BY a.due_date ASC`

	rows, err := s.db.QueryContext(ctx, query, statusArray(advance.OpenStatuses))
	if err != nil {
		return nil, fmt.Errorf("listing outstanding advances: %w", err)
	}
	defer rows.Close()

	var advs []*advance.Advance

	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning advance: %w", err)
		}

		advs = append(advs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating advance rows: %w", err)
	}

	return advs, nil
}

func (s *Store) ListTransactions(ctx context.Context, advanceID uuid.UUID) ([]*advance.Transaction, error) {
	query := `
		SELECT id, advance_id, type, amount, balance_before, balance_after, late_fee_portion,
			principal_portion, method, reference, processed_at, processed_by
		FROM advance_transactions
		WHERE advance_id = $1
		ORDER BY processed_at ASC`

	rows, err := s.db.QueryContext(ctx, query, advanceID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*advance.Transaction

	for rows.Next() {
		var tx advance.Transaction

		var txType string

		var ref sql.NullString

		if err := rows.Scan(
			&tx.ID, &tx.AdvanceID, &txType, &tx.Amount, &tx.BalanceBefore, &tx.BalanceAfter,
			&tx.LateFeePortion, &tx.PrincipalPortion, &tx.Method, &ref, &tx.ProcessedAt, &tx.ProcessedBy,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		tx.Type = advance.TransactionType(txType)
		tx.Reference = ref.String
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) ListStatusHistory(ctx context.Context, advanceID uuid.UUID) ([]*advance.StatusHistory, error) {
	query := `
		SELECT id, advance_id, from_status, to_status, reason, actor, created_at
		FROM advance_status_history
		WHERE advance_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, advanceID)
	if err != nil {
		return nil, fmt.Errorf("listing status history: %w", err)
	}
	defer rows.Close()

	var out []*advance.StatusHistory

	for rows.Next() {
		var h advance.StatusHistory

		var from, to string

		if err := rows.Scan(&h.ID, &h.AdvanceID, &from, &to, &h.Reason, &h.Actor, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning status history: %w", err)
		}

		h.From = advance.Status(from)
		h.To = advance.Status(to)
		out = append(out, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history rows: %w", err)
	}

	return out, nil
}

// TransitionStatus moves every advance in one of the from statuses with a due date before
// dueBefore to the target status, and records one history row per moved advance.
// Rows already in the target status are never touched, so re-running is a no-op.
func (s *Store) TransitionStatus(ctx context.Context, from []advance.Status, to advance.Status, dueBefore time.Time, reason string) (int64, error) {
	query := `
		WITH moved AS (
			UPDATE advances a
			SET status = $1, updated_at = NOW()
			FROM advances prev
			WHERE prev.id = a.id AND a.status = ANY($2) AND a.status <> $1 AND a.due_date < $3
			RETURNING a.id, prev.status AS from_status
		)
		INSERT INTO advance_status_history (advance_id, from_status, to_status, reason, actor)
		SELECT id, from_status, $1, $4, 'daily-status-job' FROM moved`

	res, err := s.db.ExecContext(ctx, query, to, statusArray(from), advance.DateOf(dueBefore), reason)
	if err != nil {
		return 0, fmt.Errorf("transitioning to %s: %w", to, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting transitions: %w", err)
	}

	return n, nil
}

func statusArray(statuses []advance.Status) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}

	return out
}

func advanceLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("advance"))
	h.Write([]byte{0})
	h.Write(id[:])

	return int64(h.Sum64())
}

type updateTx struct {
	tx *sql.Tx
	id uuid.UUID
}

// BeginUpdate opens a transaction holding a per-advance advisory lock until commit or rollback,
// so concurrent payments for the same advance are applied one after another.
func (s *Store) BeginUpdate(ctx context.Context, advanceID uuid.UUID) (advance.UpdateTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning update tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", advanceLockKey(advanceID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring advance lock: %w", err)
	}

	return &updateTx{tx: dbTx, id: advanceID}, nil
}

func (u *updateTx) Commit() error   { return u.tx.Commit() }
func (u *updateTx) Rollback() error { return u.tx.Rollback() }

func (u *updateTx) Advance(ctx context.Context) (*advance.Advance, error) {
	return getAdvance(ctx, u.tx, "a.id = $1", u.id, " FOR UPDATE")
}

func (u *updateTx) CreateTransaction(ctx context.Context, tx *advance.Transaction) error {
	query := `
		INSERT INTO advance_transactions (advance_id, type, amount, balance_before, balance_after,
			late_fee_portion, principal_portion, method, reference, processed_at, processed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := u.tx.QueryRowContext(ctx, query,
		tx.AdvanceID,
		tx.Type,
		tx.Amount,
		tx.BalanceBefore,
		tx.BalanceAfter,
		tx.LateFeePortion,
		tx.PrincipalPortion,
		tx.Method,
		nullString(tx.Reference),
		tx.ProcessedAt,
		tx.ProcessedBy,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (u *updateTx) UpdateAdvance(ctx context.Context, a *advance.Advance) error {
	query := `
		UPDATE advances
		SET accrued_interest = $1, amount_repaid = $2, late_fees_paid = $3, remaining_balance = $4,
			due_date = $5, status = $6, repayment_method = $7, repayment_ref = $8, notes = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		a.AccruedInterest,
		a.AmountRepaid,
		a.LateFeesPaid,
		a.RemainingBalance,
		advance.DateOf(a.DueDate),
		a.Status,
		nullString(a.RepaymentMethod),
		nullString(a.RepaymentRef),
		a.Notes,
		a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating advance: %w", err)
	}

	return nil
}

// ApplyPoolRepayment uses relative updates so concurrent completions on the same pool never lose a delta.
func (u *updateTx) ApplyPoolRepayment(ctx context.Context, poolID uuid.UUID, repaid, principal decimal.Decimal) error {
	query := `
		UPDATE liquidity_pools
		SET available_capital = available_capital + $1,
			deployed_capital = deployed_capital - $2,
			total_repaid = total_repaid + $1,
			completed_advances = completed_advances + 1,
			active_advances = GREATEST(active_advances - 1, 0),
			updated_at = NOW()
		WHERE id = $3
	`

	res, err := u.tx.ExecContext(ctx, query, repaid, principal, poolID)
	if err != nil {
		return fmt.Errorf("updating pool: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting pool rows: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("liquidity pool %s not found", poolID)
	}

	return nil
}

func (u *updateTx) AppendStatusHistory(ctx context.Context, h *advance.StatusHistory) error {
	query := `
		INSERT INTO advance_status_history (advance_id, from_status, to_status, reason, actor)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := u.tx.QueryRowContext(ctx, query, h.AdvanceID, h.From, h.To, h.Reason, h.Actor).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending status history: %w", err)
	}

	return nil
}

func (u *updateTx) TransactionExists(ctx context.Context, method, reference string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM advance_transactions
			WHERE advance_id = $1 AND method = $2 AND reference = $3
		)`

	var exists bool
	if err := u.tx.QueryRowContext(ctx, query, u.id, method, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking transaction reference: %w", err)
	}

	return exists, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
