// internal/blockchain/client.go
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client is a pool of Solana RPC nodes with round-robin rotation and
// a shared request rate limiter. Calls retry on the next node after a
// failure; a failing node is taken out of rotation.
type Client struct {
	endpoints []*endpoint
	mutex     sync.Mutex
	currIndex int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient создает новый экземпляр клиента Solana.
// ratePerSec bounds the aggregate request rate across all endpoints.
func NewClient(rpcURLs []string, ratePerSec int, logger *zap.Logger) (*Client, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("empty RPC URL list")
	}
	if ratePerSec <= 0 {
		ratePerSec = 10
	}

	var endpoints []*endpoint
	for _, urlStr := range rpcURLs {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}
		endpoints = append(endpoints, &endpoint{
			client: rpc.New(urlStr),
			url:    urlStr,
			active: true,
		})
	}

	if len(endpoints) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	c := &Client{
		endpoints: endpoints,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2),
		logger:    logger,
	}

	if err := c.validateConnections(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to validate connections: %w", err)
	}

	return c, nil
}

// testConnection проверяет подключение к RPC узлу.
func (c *Client) testConnection(ctx context.Context, e *endpoint) error {
	version, err := e.client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	if _, err := e.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized); err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	c.logger.Debug("Successfully connected to RPC",
		zap.String("url", e.url),
		zap.String("solana_core", version.SolanaCore))

	return nil
}

func (c *Client) validateConnections(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	for _, e := range c.endpoints {
		g.Go(func() error {
			var lastErr error
			for attempt := 0; attempt < maxRetries; attempt++ {
				start := time.Now()
				if err := c.testConnection(gCtx, e); err != nil {
					lastErr = err
					e.updateMetrics(false, time.Since(start))
					time.Sleep(retryDelay)
					continue
				}
				e.updateMetrics(true, time.Since(start))
				return nil
			}
			e.setActive(false)
			c.logger.Warn("RPC endpoint failed validation",
				zap.String("url", e.url), zap.Error(lastErr))
			return nil
		})
	}

	// Отдельные узлы могут быть недоступны, ошибкой считаем только пустой пул.
	if err := g.Wait(); err != nil {
		return err
	}
	if !c.hasActiveEndpoints() {
		return errors.New("no active RPC connections available")
	}
	return nil
}

// GetLatestBlockhash returns the freshest blockhash at the given
// commitment, along with the last block height it is valid for.
func (c *Client) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		e := c.getNextEndpoint()
		if e == nil {
			return nil, errors.New("no active RPC clients available")
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := e.client.GetLatestBlockhash(ctx, commitment)
		e.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			e.setActive(false)
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to get latest blockhash after %d attempts: %w", maxRetries, lastErr)
}

// SendTransaction submits a signed transaction. Preflight simulation
// stays disabled so the node forwards the transaction as-is; delivery
// retries are delegated to the node via opts.MaxRetries.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		e := c.getNextEndpoint()
		if e == nil {
			return solana.Signature{}, errors.New("no active RPC clients available")
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return solana.Signature{}, err
		}

		start := time.Now()
		sig, err := e.client.SendTransactionWithOpts(ctx, tx, opts)
		e.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			e.setActive(false)
			continue
		}
		return sig, nil
	}
	return solana.Signature{}, fmt.Errorf("failed to send transaction after %d attempts: %w", maxRetries, lastErr)
}

// GetSignatureStatuses reports the confirmation status of signatures
// from the node's recent status cache.
func (c *Client) GetSignatureStatuses(ctx context.Context, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		e := c.getNextEndpoint()
		if e == nil {
			return nil, errors.New("no active RPC clients available")
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := e.client.GetSignatureStatuses(ctx, false, sigs...)
		e.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			e.setActive(false)
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to get signature statuses after %d attempts: %w", maxRetries, lastErr)
}

// GetAccountInfo получает информацию об аккаунте. A missing account
// is returned as rpc.ErrNotFound without touching endpoint health.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		e := c.getNextEndpoint()
		if e == nil {
			return nil, errors.New("no active RPC clients available")
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := e.client.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		})
		if errors.Is(err, rpc.ErrNotFound) {
			e.updateMetrics(true, time.Since(start))
			return nil, rpc.ErrNotFound
		}
		e.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			e.setActive(false)
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to get account info after %d attempts: %w", maxRetries, lastErr)
}

// GetProgramAccounts lists accounts owned by a program, filtered
// server-side (memcmp/dataSize).
func (c *Client) GetProgramAccounts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		e := c.getNextEndpoint()
		if e == nil {
			return nil, errors.New("no active RPC clients available")
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := e.client.GetProgramAccountsWithOpts(ctx, program, opts)
		e.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			e.setActive(false)
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to get program accounts after %d attempts: %w", maxRetries, lastErr)
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		e := c.getNextEndpoint()
		if e == nil {
			return 0, errors.New("no active RPC clients available")
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		start := time.Now()
		result, err := e.client.GetBalance(ctx, pubkey, commitment)
		e.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			e.setActive(false)
			continue
		}
		return result.Value, nil
	}
	return 0, fmt.Errorf("failed to get balance after %d attempts: %w", maxRetries, lastErr)
}
