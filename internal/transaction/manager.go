// internal/transaction/manager.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"launchpilot/internal/logger"
	"launchpilot/internal/wallet"
)

// Manager drives one transaction from signing through on-chain
// confirmation. The recent blockhash is fetched immediately before
// the send so the validity window starts as late as possible.
type Manager struct {
	client    RPCClient
	wallet    *wallet.Wallet
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
}

func NewManager(client RPCClient, w *wallet.Wallet, log *zap.Logger, config Config) *Manager {
	config.applyDefaults()
	return &Manager{
		client:    client,
		wallet:    w,
		logger:    log.Named("tx-manager"),
		config:    config,
		validator: NewValidator(log),
		monitor:   NewMonitor(client, log, config),
		metrics:   NewMetrics(),
	}
}

// SendAndConfirm stamps a fresh blockhash onto the transaction, signs
// it, submits it with preflight disabled, and waits until the
// signature reaches the configured commitment. The returned Status is
// non-nil whenever a signature exists, including on rejection.
func (tm *Manager) SendAndConfirm(ctx context.Context, tx *solana.Transaction, extraSigners ...solana.PrivateKey) (*Status, error) {
	defer tm.metrics.TrackTransaction(time.Now())

	latest, err := tm.client.GetLatestBlockhash(ctx, tm.config.Commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = latest.Value.Blockhash

	if err := tm.wallet.SignTransaction(tx, extraSigners...); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, err
	}

	signature, err := tm.sendWithRetry(ctx, tx)
	if err != nil {
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, err
	}

	tm.metrics.sentCounter.Inc()
	tm.logger.Info("📤 Transaction sent",
		zap.String("signature", logger.ShortenSignature(signature.String())))

	status, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if status != nil {
		status.LastValidBlockHeight = latest.Value.LastValidBlockHeight
	}
	if err != nil {
		if rejection, ok := err.(*RejectionError); ok {
			tm.metrics.rejectedCounter.Inc()
			tm.logger.Error("💥 Transaction rejected on-chain",
				zap.String("signature", logger.ShortenSignature(rejection.Signature)),
				zap.String("raw_error", rejection.Raw))
			return status, err
		}
		tm.logger.Warn("⚠️ Confirmation failed",
			zap.String("signature", logger.ShortenSignature(signature.String())),
			zap.Error(err))
		return status, err
	}

	tm.metrics.confirmedCounter.Inc()
	tm.logger.Info("✅ Transaction confirmed",
		zap.String("signature", logger.ShortenSignature(status.Signature)),
		zap.Uint64("slot", status.Slot))

	return status, nil
}

// sendWithRetry re-submits on transport errors. The node itself also
// re-broadcasts up to MaxSendRetries times, so a duplicate submit of
// the same signed payload is harmless.
func (tm *Manager) sendWithRetry(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	maxNodeRetries := uint(tm.config.MaxSendRetries)

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 200 * time.Millisecond
	backoffPolicy.MaxInterval = 2 * time.Second

	notify := func(err error, duration time.Duration) {
		tm.logger.Warn("Retrying transaction send",
			zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (solana.Signature, error) {
		return tm.client.SendTransaction(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: tm.config.Commitment,
			MaxRetries:          &maxNodeRetries,
		})
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(uint(tm.config.MaxSendRetries)),
		backoff.WithNotify(notify))
}
