// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a record whose key
	// already exists. Launch and claim history is append-only.
	ErrDuplicateKey = errors.New("duplicate key: history is append-only")
)

// LaunchRecord is one launch attempt as persisted. Failed attempts
// are stored too; the state column tells them apart.
type LaunchRecord struct {
	LaunchID          uuid.UUID
	Wallet            string
	Name              string
	Symbol            string
	Mint              string
	ConfigKey         string
	MetadataURI       string
	LaunchURL         string
	PartnerWallet     string
	FeeShareSignature string
	Signature         string
	State             string
	BuyLamports       int64
	Slot              int64
	CreatedAt         time.Time
}

// ClaimRecord is the outcome of claiming one position during a claim
// run. Claimable is the raw base-unit amount as reported by the API,
// kept as text because it can exceed 64 bits.
type ClaimRecord struct {
	ID         int64
	Wallet     string
	Mint       string
	Pool       string
	Kind       string
	Outcome    string
	Claimable  string
	Signatures []string
	ClaimError string
	CreatedAt  time.Time
}

// LaunchStore provides access to launch history.
type LaunchStore interface {
	// Insert adds a launch attempt. Returns ErrDuplicateKey when the
	// launch ID is already recorded.
	Insert(ctx context.Context, r *LaunchRecord) error

	// GetByMint retrieves the latest launch attempt for a mint.
	// Returns ErrNotFound if no launch is recorded for it.
	GetByMint(ctx context.Context, mint string) (*LaunchRecord, error)

	// ListByWallet retrieves all launches of a wallet, newest first.
	ListByWallet(ctx context.Context, wallet string) ([]*LaunchRecord, error)
}

// ClaimStore provides access to claim history.
type ClaimStore interface {
	// Insert adds a single claim outcome.
	Insert(ctx context.Context, r *ClaimRecord) error

	// InsertBulk adds all outcomes of one claim run atomically.
	InsertBulk(ctx context.Context, records []*ClaimRecord) error

	// ListByWallet retrieves all claim outcomes of a wallet, newest first.
	ListByWallet(ctx context.Context, wallet string) ([]*ClaimRecord, error)
}
