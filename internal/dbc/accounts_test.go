// internal/dbc/accounts_test.go
package dbc

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func encodeAccount(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bin.NewBinEncoder(&buf).Encode(v))
	return buf.Bytes()
}

func samplePool() *VirtualPool {
	return &VirtualPool{
		Discriminator:    virtualPoolDiscriminator,
		Config:           solana.NewWallet().PublicKey(),
		Creator:          solana.NewWallet().PublicKey(),
		BaseMint:         solana.NewWallet().PublicKey(),
		BaseVault:        solana.NewWallet().PublicKey(),
		QuoteVault:       solana.NewWallet().PublicKey(),
		BaseReserve:      1_000_000_000,
		QuoteReserve:     30_000_000_000,
		SqrtPrice:        uint128.From64(79228162514264),
		ActivationPoint:  250_000_000,
		PartnerBaseFee:   111,
		PartnerQuoteFee:  222,
		CreatorBaseFee:   333,
		CreatorQuoteFee:  444,
		IsMigrated:       0,
	}
}

func TestVirtualPoolRoundTrip(t *testing.T) {
	pool := samplePool()
	data := encodeAccount(t, pool)

	// The declared account size must match the real serialized size,
	// otherwise the dataSize scan filter silently matches nothing.
	require.Len(t, data, VirtualPoolAccountSize)

	decoded, err := DecodeVirtualPool(data)
	require.NoError(t, err)
	assert.Equal(t, pool.Config, decoded.Config)
	assert.Equal(t, pool.Creator, decoded.Creator)
	assert.Equal(t, pool.BaseMint, decoded.BaseMint)
	assert.Equal(t, pool.SqrtPrice, decoded.SqrtPrice)
	assert.False(t, decoded.Migrated())

	base, quote := decoded.CreatorClaimable()
	assert.Equal(t, int64(333), base.Int64())
	assert.Equal(t, int64(444), quote.Int64())
}

func TestVirtualPoolCreatorOffset(t *testing.T) {
	pool := samplePool()
	data := encodeAccount(t, pool)

	// The memcmp filter in ListPoolsByCreator depends on this offset.
	assert.Equal(t, pool.Creator.Bytes(), data[creatorFieldOffset:creatorFieldOffset+32])
}

func TestDecodeVirtualPoolBadDiscriminator(t *testing.T) {
	pool := samplePool()
	pool.Discriminator = [8]uint8{1, 2, 3, 4, 5, 6, 7, 8}

	_, err := DecodeVirtualPool(encodeAccount(t, pool))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discriminator")
}

func TestDecodeVirtualPoolShortData(t *testing.T) {
	_, err := DecodeVirtualPool(make([]byte, 32))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestPoolConfigRoundTrip(t *testing.T) {
	cfg := &PoolConfig{
		Discriminator:           poolConfigDiscriminator,
		QuoteMint:               WrappedSOLMint,
		FeeClaimer:              solana.NewWallet().PublicKey(),
		Owner:                   solana.NewWallet().PublicKey(),
		CreatorFeeBps:           1000,
		PartnerFeeBps:           9000,
		MigrationQuoteThreshold: 85_000_000_000,
	}
	data := encodeAccount(t, cfg)
	require.Len(t, data, PoolConfigAccountSize)

	decoded, err := DecodePoolConfig(data)
	require.NoError(t, err)
	assert.Equal(t, WrappedSOLMint, decoded.QuoteMint)
	assert.Equal(t, uint16(1000), decoded.CreatorFeeBps)
	assert.Equal(t, uint16(9000), decoded.PartnerFeeBps)
}

func TestDerivePoolAddressOrderIndependent(t *testing.T) {
	config := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	a, err := DerivePoolAddress(config, mint, WrappedSOLMint)
	require.NoError(t, err)
	b, err := DerivePoolAddress(config, WrappedSOLMint, mint)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
}
