// internal/storage/postgres/claim_store.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"launchpilot/internal/storage"
)

// ClaimStore implements storage.ClaimStore on PostgreSQL.
type ClaimStore struct {
	pool *Pool
}

func NewClaimStore(pool *Pool) *ClaimStore {
	return &ClaimStore{pool: pool}
}

var _ storage.ClaimStore = (*ClaimStore)(nil)

const claimColumns = `
	id, wallet, mint, pool, kind, outcome, claimable,
	signatures, claim_error, created_at`

const insertClaimQuery = `
	INSERT INTO claims (
		wallet, mint, pool, kind, outcome, claimable,
		signatures, claim_error
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8
	)
`

func (s *ClaimStore) Insert(ctx context.Context, r *storage.ClaimRecord) error {
	_, err := s.pool.Exec(ctx, insertClaimQuery,
		r.Wallet, r.Mint, r.Pool, r.Kind, r.Outcome, r.Claimable,
		r.Signatures, r.ClaimError,
	)
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	return nil
}

// InsertBulk stores one claim run as a unit: either the whole run is
// recorded or none of it.
func (s *ClaimStore) InsertBulk(ctx context.Context, records []*storage.ClaimRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		_, err := tx.Exec(ctx, insertClaimQuery,
			r.Wallet, r.Mint, r.Pool, r.Kind, r.Outcome, r.Claimable,
			r.Signatures, r.ClaimError,
		)
		if err != nil {
			return fmt.Errorf("failed to insert claim in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func (s *ClaimStore) ListByWallet(ctx context.Context, wallet string) ([]*storage.ClaimRecord, error) {
	query := `
		SELECT` + claimColumns + `
		FROM claims
		WHERE wallet = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var records []*storage.ClaimRecord
	for rows.Next() {
		r, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claim rows: %w", err)
	}
	return records, nil
}

func scanClaim(row pgx.Row) (*storage.ClaimRecord, error) {
	var r storage.ClaimRecord
	err := row.Scan(
		&r.ID, &r.Wallet, &r.Mint, &r.Pool, &r.Kind, &r.Outcome, &r.Claimable,
		&r.Signatures, &r.ClaimError, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
