package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/harvest/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch prefers the longest learned pattern contained in the description.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (string, error) {
	query := `
		SELECT contract_number
		FROM description_mappings
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var contract string

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&contract)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return contract, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, contractNumber string) error {
	query := `
		INSERT INTO description_mappings (raw_pattern, contract_number, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := s.db.ExecContext(ctx, query, rawPattern, contractNumber); err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context) ([]matching.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, raw_pattern, contract_number, created_at
		FROM description_mappings
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var out []matching.Mapping

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.ID, &m.RawPattern, &m.ContractNumber, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mapping rows: %w", err)
	}

	return out, nil
}
