// internal/storage/postgres/launch_store_test.go
package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpilot/internal/storage"
)

func sampleLaunch(wallet, mint string) *storage.LaunchRecord {
	return &storage.LaunchRecord{
		LaunchID:    uuid.New(),
		Wallet:      wallet,
		Name:        "Test Token",
		Symbol:      "TEST",
		Mint:        mint,
		ConfigKey:   "ConfigKey111",
		MetadataURI: "ipfs://bafy-metadata",
		LaunchURL:   "https://launchpad.example/coin/TEST",
		Signature:   "sig-launch-1",
		State:       "CONFIRMED",
		BuyLamports: 500_000_000,
		Slot:        7777,
	}
}

func TestLaunchStoreInsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLaunchStore(pool)

	record := sampleLaunch("CreatorWallet111", "Mint111")
	require.NoError(t, store.Insert(ctx, record))

	got, err := store.GetByMint(ctx, "Mint111")
	require.NoError(t, err)

	assert.Equal(t, record.LaunchID, got.LaunchID)
	assert.Equal(t, record.Wallet, got.Wallet)
	assert.Equal(t, record.Symbol, got.Symbol)
	assert.Equal(t, record.LaunchURL, got.LaunchURL)
	assert.Equal(t, record.Signature, got.Signature)
	assert.Equal(t, record.State, got.State)
	assert.Equal(t, record.BuyLamports, got.BuyLamports)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestLaunchStoreDuplicateLaunchID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLaunchStore(pool)

	record := sampleLaunch("CreatorWallet111", "Mint111")
	require.NoError(t, store.Insert(ctx, record))

	err := store.Insert(ctx, record)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestLaunchStoreGetByMintNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLaunchStore(pool)
	_, err := store.GetByMint(context.Background(), "NoSuchMint")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLaunchStoreListByWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLaunchStore(pool)

	require.NoError(t, store.Insert(ctx, sampleLaunch("WalletA", "MintA1")))
	require.NoError(t, store.Insert(ctx, sampleLaunch("WalletA", "MintA2")))
	require.NoError(t, store.Insert(ctx, sampleLaunch("WalletB", "MintB1")))

	records, err := store.ListByWallet(ctx, "WalletA")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "WalletA", r.Wallet)
	}

	records, err = store.ListByWallet(ctx, "WalletC")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLaunchStoreKeepsFailedAttempts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLaunchStore(pool)

	failed := sampleLaunch("CreatorWallet111", "Mint111")
	failed.State = "FAILED"
	failed.Signature = ""
	require.NoError(t, store.Insert(ctx, failed))

	// A later successful attempt for the same mint wins GetByMint.
	confirmed := sampleLaunch("CreatorWallet111", "Mint111")
	require.NoError(t, store.Insert(ctx, confirmed))

	got, err := store.GetByMint(ctx, "Mint111")
	require.NoError(t, err)
	assert.Equal(t, confirmed.LaunchID, got.LaunchID)

	records, err := store.ListByWallet(ctx, "CreatorWallet111")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
