// internal/transaction/types.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrInvalidBlockhash    = errors.New("invalid blockhash")
	ErrInvalidInstruction  = errors.New("invalid instruction")
)

// RejectionError means the cluster accepted the transaction but the
// runtime failed it. Raw keeps the node's error payload verbatim so
// callers can surface the exact on-chain failure.
type RejectionError struct {
	Signature string
	Raw       string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("transaction %s rejected on-chain: %s", e.Signature, e.Raw)
}

// RPCClient is the slice of the RPC surface the submitter needs.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

type Config struct {
	// MaxSendRetries is forwarded to the RPC node, which re-broadcasts
	// the transaction to the leader until it lands or expires.
	MaxSendRetries   int
	ConfirmationTime time.Duration
	PollDelay        time.Duration
	Commitment       rpc.CommitmentType
}

func (c *Config) applyDefaults() {
	if c.MaxSendRetries <= 0 {
		c.MaxSendRetries = 3
	}
	if c.ConfirmationTime <= 0 {
		c.ConfirmationTime = 30 * time.Second
	}
	if c.PollDelay <= 0 {
		c.PollDelay = 500 * time.Millisecond
	}
	if c.Commitment == "" {
		c.Commitment = rpc.CommitmentProcessed
	}
}

type Status struct {
	Signature            string
	Status               string
	Confirmations        uint64
	Slot                 uint64
	LastValidBlockHeight uint64
	Error                string
	Timestamp            time.Time
}

// commitmentRank orders confirmation levels so a status at or above
// the configured commitment counts as confirmed.
func commitmentRank(level string) int {
	switch level {
	case "processed":
		return 0
	case "confirmed":
		return 1
	case "finalized":
		return 2
	default:
		return -1
	}
}
