// internal/blockchain/types.go
package blockchain

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

const (
	defaultTimeout = 15 * time.Second
	maxRetries     = 3
	retryDelay     = 200 * time.Millisecond
)

// endpoint is one RPC node in the pool. A node that fails a call is
// marked inactive and skipped by the round-robin until the process
// restarts; health counters stay per-endpoint.
type endpoint struct {
	client *rpc.Client
	url    string

	mutex   sync.RWMutex
	active  bool
	metrics endpointMetrics
}

type endpointMetrics struct {
	mutex        sync.RWMutex
	successCount uint64
	errorCount   uint64
	latency      time.Duration
}

// EndpointStats is a read-only snapshot of one endpoint's health,
// exposed for startup logging and diagnostics.
type EndpointStats struct {
	URL          string
	Active       bool
	SuccessCount uint64
	ErrorCount   uint64
	AvgLatency   time.Duration
}
