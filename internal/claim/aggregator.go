// internal/claim/aggregator.go
package claim

import (
	"context"
	"errors"
	"fmt"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"launchpilot/internal/launchpad"
	"launchpilot/internal/logger"
	"launchpilot/internal/transaction"
)

// Outcome classifies how far a single position's claim got.
type Outcome string

const (
	// OutcomeClaimed: every claim transaction for the position landed
	// (including the zero-transaction case, where nothing was owed).
	OutcomeClaimed Outcome = "claimed"
	// OutcomePartial: at least one transaction landed before a
	// failure stopped the rest of this position.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed: nothing landed for this position.
	OutcomeFailed Outcome = "failed"
)

type PositionResult struct {
	Position   Position
	Signatures []string
	Outcome    Outcome
	Err        error
}

// Report collects the full claim run. Signatures holds every landed
// signature across positions in submission order.
type Report struct {
	Results    []PositionResult
	Signatures []string
	Total      cosmath.Int
}

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, result := range r.Results {
		if result.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r *Report) Claimed() int { return r.count(OutcomeClaimed) }
func (r *Report) Partial() int { return r.count(OutcomePartial) }
func (r *Report) Failed() int  { return r.count(OutcomeFailed) }

// API is the slice of the launchpad client the aggregator needs.
type API interface {
	GetPositions(ctx context.Context, wallet string, mint string) ([]launchpad.Position, error)
	CreateClaimTransactions(ctx context.Context, req launchpad.CreateClaimRequest) ([]string, error)
}

// TransactionSender submits one signed transaction and waits for it.
type TransactionSender interface {
	SendAndConfirm(ctx context.Context, tx *solana.Transaction, extraSigners ...solana.PrivateKey) (*transaction.Status, error)
}

// Aggregator claims accumulated creator fees across every position of
// the wallet, one position at a time. A failure inside a position
// abandons that position's remaining transactions but never stops the
// other positions.
type Aggregator struct {
	api    API
	sender TransactionSender
	wallet string
	logger *zap.Logger
}

func NewAggregator(api API, sender TransactionSender, wallet string, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		api:    api,
		sender: sender,
		wallet: wallet,
		logger: logger.Named("claim"),
	}
}

// ClaimAll runs a full claim pass. A non-empty mint restricts the run
// to that token's positions. The report is always returned; the error
// joins every per-position failure and is nil only when all positions
// claimed cleanly. No positions at all is a clean success.
func (a *Aggregator) ClaimAll(ctx context.Context, mint string) (*Report, error) {
	apiPositions, err := a.api.GetPositions(ctx, a.wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	report := &Report{Total: cosmath.ZeroInt()}
	if len(apiPositions) == 0 {
		a.logger.Info("🪙 No claimable positions")
		return report, nil
	}

	var failures []error
	for _, apiPos := range apiPositions {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}

		position, err := newPosition(apiPos)
		if err != nil {
			a.logger.Warn("Skipping malformed position", zap.Error(err))
			report.Results = append(report.Results, PositionResult{
				Position: Position{Mint: apiPos.Mint, Pool: apiPos.Pool},
				Outcome:  OutcomeFailed,
				Err:      err,
			})
			failures = append(failures, err)
			continue
		}
		report.Total = report.Total.Add(position.Claimable)

		result := a.claimPosition(ctx, position)
		report.Results = append(report.Results, result)
		report.Signatures = append(report.Signatures, result.Signatures...)
		if result.Err != nil {
			failures = append(failures, result.Err)
		}
	}

	a.logger.Info("🪙 Claim run finished",
		zap.Int("positions", len(report.Results)),
		zap.Int("claimed", report.Claimed()),
		zap.Int("partial", report.Partial()),
		zap.Int("failed", report.Failed()),
		zap.String("advertised_total", report.Total.String()))

	return report, errors.Join(failures...)
}

// Positions lists the wallet's claimable positions without touching
// them. A non-empty mint restricts the listing to that token.
// Malformed positions are skipped with a warning.
func (a *Aggregator) Positions(ctx context.Context, mint string) ([]Position, error) {
	apiPositions, err := a.api.GetPositions(ctx, a.wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	positions := make([]Position, 0, len(apiPositions))
	for _, apiPos := range apiPositions {
		position, err := newPosition(apiPos)
		if err != nil {
			a.logger.Warn("Skipping malformed position", zap.Error(err))
			continue
		}
		positions = append(positions, position)
	}
	return positions, nil
}

// claimPosition fetches and submits this position's claim
// transactions in order, stopping at the first failure.
func (a *Aggregator) claimPosition(ctx context.Context, position Position) PositionResult {
	result := PositionResult{Position: position}

	encoded, err := a.api.CreateClaimTransactions(ctx, launchpad.CreateClaimRequest{
		Wallet: a.wallet,
		Mint:   position.Mint,
		Pool:   position.Pool,
		Kind:   string(position.Kind),
	})
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("build claim for %s: %w", position.Mint, err)
		return result
	}

	for i, enc := range encoded {
		tx, err := launchpad.DecodeTransaction(enc)
		if err == nil {
			var status *transaction.Status
			status, err = a.sender.SendAndConfirm(ctx, tx)
			if err == nil {
				result.Signatures = append(result.Signatures, status.Signature)
				continue
			}
		}

		result.Err = fmt.Errorf("claim %s (tx %d/%d): %w", position.Mint, i+1, len(encoded), err)
		if len(result.Signatures) > 0 {
			result.Outcome = OutcomePartial
		} else {
			result.Outcome = OutcomeFailed
		}
		a.logger.Warn("⚠️ Claim interrupted for position",
			zap.String("mint", logger.ShortenAddress(position.Mint)),
			zap.String("kind", string(position.Kind)),
			zap.Int("landed", len(result.Signatures)),
			zap.Error(err))
		return result
	}

	result.Outcome = OutcomeClaimed
	a.logger.Info("✅ Position claimed",
		zap.String("mint", logger.ShortenAddress(position.Mint)),
		zap.String("kind", string(position.Kind)),
		zap.Int("transactions", len(result.Signatures)))
	return result
}
