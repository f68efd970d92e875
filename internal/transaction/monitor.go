// internal/transaction/monitor.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

type Monitor struct {
	client  RPCClient
	logger  *zap.Logger
	config  Config
	metrics *Metrics
}

func NewMonitor(client RPCClient, logger *zap.Logger, config Config) *Monitor {
	config.applyDefaults()
	return &Monitor{
		client:  client,
		logger:  logger.Named("tx-monitor"),
		config:  config,
		metrics: NewMetrics(),
	}
}

// GetTransactionStatus maps the node's status cache entry for a
// signature into a Status snapshot.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature.String(),
			Status:    "pending",
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = "finalized"
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = "confirmed"
	case rpc.ConfirmationStatusProcessed:
		txStatus.Status = "processed"
	default:
		txStatus.Status = "pending"
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = "failed"
	}

	return txStatus, nil
}

// AwaitConfirmation polls the signature until it reaches the
// configured commitment, errs on-chain, or the deadline passes. An
// on-chain error surfaces as *RejectionError with the node's payload.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	ticker := time.NewTicker(m.config.PollDelay)
	defer ticker.Stop()

	deadline := time.After(m.config.ConfirmationTime)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrConfirmationTimeout
		case <-ticker.C:
			status, err := m.GetTransactionStatus(ctx, signature)
			if err != nil {
				m.logger.Warn("Confirmation check failed", zap.Error(err))
				continue
			}

			if status.Error != "" {
				return status, &RejectionError{
					Signature: status.Signature,
					Raw:       status.Error,
				}
			}

			if commitmentRank(status.Status) >= commitmentRank(string(m.config.Commitment)) {
				return status, nil
			}
		}
	}
}
