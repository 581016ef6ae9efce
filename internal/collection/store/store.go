package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCandidates(ctx context.Context, statuses []advance.Status, dueOnOrBefore time.Time) ([]collection.Candidate, error) {
	query := `
		SELECT a.id, a.contract_number, a.contact_id, a.pool_id, a.principal, a.accrued_interest,
			a.amount_repaid, a.late_fees_paid, a.remaining_balance, a.due_date, a.status,
			COALESCE(c.name, ''), COALESCE(c.phone, ''), COALESCE(c.chat_id, ''),
			COALESCE(c.email, ''), COALESCE(c.push_token, ''),
			COALESCE(c.chat_enabled, FALSE), COALESCE(c.sms_enabled, FALSE),
			COALESCE(c.email_enabled, FALSE), COALESCE(c.push_enabled, FALSE),
			COALESCE(c.voice_enabled, FALSE)
		FROM advances a
		LEFT JOIN farmer_contacts c ON c.id = a.contact_id
		WHERE a.status = ANY($1)
			AND a.remaining_balance > 0
			AND a.due_date <= $2
		ORDER BY a.due_date ASC, a.contract_number ASC`

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	rows, err := s.db.QueryContext(ctx, query, names, advance.DateOf(dueOnOrBefore))
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()

	var (
		candidates []collection.Candidate
		ids        []string
		index      = make(map[uuid.UUID]int)
	)

	for rows.Next() {
		var a advance.Advance

		var c collection.Contact

		var status string

		if err := rows.Scan(
			&a.ID, &a.ContractNumber, &a.ContactID, &a.PoolID, &a.Principal, &a.AccruedInterest,
			&a.AmountRepaid, &a.LateFeesPaid, &a.RemainingBalance, &a.DueDate, &status,
			&c.Name, &c.Phone, &c.ChatID, &c.Email, &c.PushToken,
			&c.ChatEnabled, &c.SMSEnabled, &c.EmailEnabled, &c.PushEnabled, &c.VoiceEnabled,
		); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}

		a.Status = advance.Status(status)

		index[a.ID] = len(candidates)
		ids = append(ids, a.ID.String())
		candidates = append(candidates, collection.Candidate{
			Advance:         &a,
			Contact:         c,
			AttemptsByStage: make(map[collection.Stage]int),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidate rows: %w", err)
	}

	if len(ids) == 0 {
		return candidates, nil
	}

	if err := s.countAttempts(ctx, ids, index, candidates); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (s *Store) countAttempts(ctx context.Context, ids []string, index map[uuid.UUID]int, candidates []collection.Candidate) error {
	query := `
		SELECT advance_id, stage, COUNT(*)
		FROM collection_attempts
		WHERE advance_id = ANY($1::uuid[]) AND status <> 'SKIPPED'
		GROUP BY advance_id, stage`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("counting attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID

		var stage string

		var n int

		if err := rows.Scan(&id, &stage, &n); err != nil {
			return fmt.Errorf("scanning attempt count: %w", err)
		}

		if i, ok := index[id]; ok {
			candidates[i].AttemptsByStage[collection.Stage(stage)] = n
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating attempt counts: %w", err)
	}

	return nil
}

func (s *Store) AttemptExists(ctx context.Context, advanceID uuid.UUID, stage collection.Stage, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM collection_attempts
			WHERE advance_id = $1 AND stage = $2 AND attempt_date = $3 AND status <> 'SKIPPED'
		)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, advanceID, string(stage), advance.DateOf(day)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking attempt: %w", err)
	}

	return exists, nil
}

// CreateAttempt numbers the attempt after the prior non-skipped attempts for the same stage.
func (s *Store) CreateAttempt(ctx context.Context, a *collection.Attempt) error {
	query := `
		INSERT INTO collection_attempts (
			advance_id, stage, channel, status, attempt_number, attempt_date, message_id, error
		)
		SELECT $1, $2, $3, $4,
			(SELECT COUNT(*) + 1 FROM collection_attempts
				WHERE advance_id = $1 AND stage = $2 AND status <> 'SKIPPED'),
			$5, $6, $7
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		a.AdvanceID, string(a.Stage), string(a.Channel), string(a.Status),
		advance.DateOf(a.AttemptDate), nullString(a.MessageID), nullString(a.Error),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating attempt: %w", err)
	}

	return nil
}

func (s *Store) ListAttempts(ctx context.Context, advanceID uuid.UUID) ([]*collection.Attempt, error) {
	query := `
		SELECT id, advance_id, stage, channel, status, attempt_date, message_id, error, created_at
		FROM collection_attempts
		WHERE advance_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, advanceID)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*collection.Attempt

	for rows.Next() {
		var a collection.Attempt

		var stage, channel, status string

		var msgID, errText sql.NullString

		if err := rows.Scan(&a.ID, &a.AdvanceID, &stage, &channel, &status, &a.AttemptDate, &msgID, &errText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}

		a.Stage = collection.Stage(stage)
		a.Channel = collection.Channel(channel)
		a.Status = collection.AttemptStatus(status)
		a.MessageID = msgID.String
		a.Error = errText.String

		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempt rows: %w", err)
	}

	return attempts, nil
}

func (s *Store) SaveRun(ctx context.Context, r *collection.RunSummary) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}

	query := `
		INSERT INTO collection_runs (id, run_date, started_at, finished_at, processed, summary)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.db.ExecContext(ctx, query,
		r.ID, r.RunDate, r.StartedAt, r.FinishedAt, r.Processed, payload,
	); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	return nil
}

// LatestRun returns the most recent run summary, or nil if none has been recorded.
func (s *Store) LatestRun(ctx context.Context) (*collection.RunSummary, error) {
	var payload []byte

	err := s.db.QueryRowContext(ctx, `SELECT summary FROM collection_runs ORDER BY started_at DESC LIMIT 1`).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("getting latest run: %w", err)
	}

	var r collection.RunSummary
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decoding run summary: %w", err)
	}

	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
