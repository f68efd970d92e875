// internal/dbc/accounts.go
package dbc

import (
	"fmt"

	cosmath "cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

const (
	// VirtualPoolAccountSize is the serialized size of a VirtualPool
	// account; used for dataSize filtering in program scans.
	VirtualPoolAccountSize = 264

	PoolConfigAccountSize = 120

	// creatorFieldOffset is where Creator sits inside VirtualPool:
	// discriminator (8) + config (32).
	creatorFieldOffset = 40
)

// VirtualPool is the on-chain bonding-curve pool account.
type VirtualPool struct {
	Discriminator    [8]uint8         // 8
	Config           solana.PublicKey // 32
	Creator          solana.PublicKey // 32
	BaseMint         solana.PublicKey // 32
	BaseVault        solana.PublicKey // 32
	QuoteVault       solana.PublicKey // 32
	BaseReserve      uint64           // 8
	QuoteReserve     uint64           // 8
	SqrtPrice        uint128.Uint128  // 16
	ActivationPoint  uint64           // 8
	ProtocolBaseFee  uint64           // 8
	ProtocolQuoteFee uint64           // 8
	PartnerBaseFee   uint64           // 8
	PartnerQuoteFee  uint64           // 8
	CreatorBaseFee   uint64           // 8
	CreatorQuoteFee  uint64           // 8
	PoolType         uint8            // 1
	IsMigrated       uint8            // 1
	Padding          [6]uint8         // 6
}

// PoolConfig is the per-creator launch configuration account the
// launchpad references in every pool it creates.
type PoolConfig struct {
	Discriminator           [8]uint8         // 8
	QuoteMint               solana.PublicKey // 32
	FeeClaimer              solana.PublicKey // 32
	Owner                   solana.PublicKey // 32
	CreatorFeeBps           uint16           // 2
	PartnerFeeBps           uint16           // 2
	CurveType               uint8            // 1
	Padding                 [3]uint8         // 3
	MigrationQuoteThreshold uint64           // 8
}

func DecodeVirtualPool(data []byte) (*VirtualPool, error) {
	if len(data) < VirtualPoolAccountSize {
		return nil, fmt.Errorf("virtual pool data too short: expected %d bytes, got %d", VirtualPoolAccountSize, len(data))
	}

	pool := &VirtualPool{}
	if err := bin.NewBinDecoder(data).Decode(pool); err != nil {
		return nil, fmt.Errorf("decode virtual pool: %w", err)
	}
	if pool.Discriminator != virtualPoolDiscriminator {
		return nil, fmt.Errorf("unexpected account discriminator %v", pool.Discriminator)
	}
	return pool, nil
}

func DecodePoolConfig(data []byte) (*PoolConfig, error) {
	if len(data) < PoolConfigAccountSize {
		return nil, fmt.Errorf("pool config data too short: expected %d bytes, got %d", PoolConfigAccountSize, len(data))
	}

	cfg := &PoolConfig{}
	if err := bin.NewBinDecoder(data).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode pool config: %w", err)
	}
	if cfg.Discriminator != poolConfigDiscriminator {
		return nil, fmt.Errorf("unexpected account discriminator %v", cfg.Discriminator)
	}
	return cfg, nil
}

// Migrated reports whether the pool graduated from the curve to the
// AMM. Creator fees on a migrated pool are claimed through the AMM
// position, not the curve.
func (p *VirtualPool) Migrated() bool {
	return p.IsMigrated == 1
}

// CreatorClaimable returns the creator's unclaimed fees in base and
// quote token raw units.
func (p *VirtualPool) CreatorClaimable() (base, quote cosmath.Int) {
	return cosmath.NewIntFromUint64(p.CreatorBaseFee), cosmath.NewIntFromUint64(p.CreatorQuoteFee)
}
