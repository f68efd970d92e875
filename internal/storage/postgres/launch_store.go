// internal/storage/postgres/launch_store.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"launchpilot/internal/storage"
)

// LaunchStore implements storage.LaunchStore on PostgreSQL.
type LaunchStore struct {
	pool *Pool
}

func NewLaunchStore(pool *Pool) *LaunchStore {
	return &LaunchStore{pool: pool}
}

var _ storage.LaunchStore = (*LaunchStore)(nil)

const launchColumns = `
	launch_id, wallet, name, symbol, mint, config_key, metadata_uri, launch_url,
	partner_wallet, fee_share_signature, signature, state,
	buy_lamports, slot, created_at`

func (s *LaunchStore) Insert(ctx context.Context, r *storage.LaunchRecord) error {
	query := `
		INSERT INTO launches (
			launch_id, wallet, name, symbol, mint, config_key, metadata_uri, launch_url,
			partner_wallet, fee_share_signature, signature, state,
			buy_lamports, slot
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.LaunchID, r.Wallet, r.Name, r.Symbol, r.Mint, r.ConfigKey, r.MetadataURI, r.LaunchURL,
		r.PartnerWallet, r.FeeShareSignature, r.Signature, r.State,
		r.BuyLamports, r.Slot,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert launch: %w", err)
	}
	return nil
}

func (s *LaunchStore) GetByMint(ctx context.Context, mint string) (*storage.LaunchRecord, error) {
	query := `
		SELECT` + launchColumns + `
		FROM launches
		WHERE mint = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	r, err := scanLaunch(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get launch by mint: %w", err)
	}
	return r, nil
}

func (s *LaunchStore) ListByWallet(ctx context.Context, wallet string) ([]*storage.LaunchRecord, error) {
	query := `
		SELECT` + launchColumns + `
		FROM launches
		WHERE wallet = $1
		ORDER BY created_at DESC, launch_id DESC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to list launches: %w", err)
	}
	defer rows.Close()

	var records []*storage.LaunchRecord
	for rows.Next() {
		r, err := scanLaunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan launch row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate launch rows: %w", err)
	}
	return records, nil
}

func scanLaunch(row pgx.Row) (*storage.LaunchRecord, error) {
	var r storage.LaunchRecord
	err := row.Scan(
		&r.LaunchID, &r.Wallet, &r.Name, &r.Symbol, &r.Mint, &r.ConfigKey, &r.MetadataURI, &r.LaunchURL,
		&r.PartnerWallet, &r.FeeShareSignature, &r.Signature, &r.State,
		&r.BuyLamports, &r.Slot, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
