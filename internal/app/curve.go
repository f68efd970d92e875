// internal/app/curve.go
package app

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"launchpilot/internal/claim"
	"launchpilot/internal/dbc"
)

// CurvePosition is a claimable position together with the
// bonding-curve accounts decoded straight from chain state. Settled
// positions live on the AMM and carry no curve account, so OnChain
// stays nil for them.
type CurvePosition struct {
	Position claim.Position
	OnChain  *dbc.VirtualPool
	Config   *dbc.PoolConfig
}

// CurvePositions lists positions with their on-chain curve state
// attached, so the amounts the API advertises can be checked against
// what the program accounts actually hold. When the API lists nothing,
// the creator's pools are found by a program scan instead.
func (a *App) CurvePositions(ctx context.Context, mint string) ([]CurvePosition, error) {
	if err := a.connectChain(); err != nil {
		return nil, err
	}

	positions, err := a.claimer.Positions(ctx, mint)
	if err != nil {
		a.logger.Warn("Position listing failed, falling back to a chain scan", zap.Error(err))
		positions = nil
	}
	if len(positions) == 0 {
		return a.scanCreatorPools(ctx, mint)
	}

	curves := make([]CurvePosition, 0, len(positions))
	for _, position := range positions {
		curves = append(curves, a.attachCurve(ctx, position))
	}
	return curves, nil
}

// attachCurve decodes the pool and config accounts behind one
// position. Fetch failures degrade to the bare position rather than
// failing the listing.
func (a *App) attachCurve(ctx context.Context, position claim.Position) CurvePosition {
	curve := CurvePosition{Position: position}
	if position.Kind != claim.PoolKindVirtual {
		return curve
	}

	poolKey, err := solana.PublicKeyFromBase58(position.Pool)
	if err != nil {
		a.logger.Warn("Position carries an unparseable pool address",
			zap.String("pool", position.Pool), zap.Error(err))
		return curve
	}

	pool, err := a.reader.GetVirtualPool(ctx, poolKey)
	if err != nil {
		a.logger.Warn("Failed to read pool account",
			zap.String("pool", position.Pool), zap.Error(err))
		return curve
	}
	curve.OnChain = pool

	cfg, err := a.reader.GetPoolConfig(ctx, pool.Config)
	if err != nil {
		a.logger.Warn("Failed to read pool config",
			zap.String("config", pool.Config.String()), zap.Error(err))
		return curve
	}
	curve.Config = cfg
	return curve
}

// scanCreatorPools finds the wallet's pools on-chain and synthesizes
// positions from the account state alone. Claimable mirrors the
// creator's unclaimed quote fees; the base side is visible through
// OnChain.
func (a *App) scanCreatorPools(ctx context.Context, mint string) ([]CurvePosition, error) {
	summaries, err := a.reader.ListPoolsByCreator(ctx, a.wallet.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to scan creator pools: %w", err)
	}

	curves := make([]CurvePosition, 0, len(summaries))
	for _, summary := range summaries {
		if mint != "" && summary.Pool.BaseMint.String() != mint {
			continue
		}
		_, quote := summary.Pool.CreatorClaimable()
		curve := CurvePosition{
			Position: claim.Position{
				Mint:      summary.Pool.BaseMint.String(),
				Pool:      summary.Address.String(),
				Kind:      claim.PoolKindVirtual,
				Claimable: quote,
			},
			OnChain: summary.Pool,
		}
		if cfg, err := a.reader.GetPoolConfig(ctx, summary.Pool.Config); err == nil {
			curve.Config = cfg
		}
		curves = append(curves, curve)
	}
	return curves, nil
}
