// internal/launch/resolver.go
package launch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"launchpilot/internal/feesplit"
	"launchpilot/internal/launchpad"
	"launchpilot/internal/transaction"
)

// TransactionSender signs, submits and confirms a transaction. Extra
// signers are appended for transactions that need more than the
// operator wallet, such as the launch transaction signed by the mint.
type TransactionSender interface {
	SendAndConfirm(ctx context.Context, tx *solana.Transaction, extraSigners ...solana.PrivateKey) (*transaction.Status, error)
}

// ConfigAPI is the slice of the launchpad API the resolver needs.
type ConfigAPI interface {
	GetLaunchConfig(ctx context.Context, wallet string) (*launchpad.ConfigResponse, error)
	CreateLaunchConfig(ctx context.Context, req launchpad.CreateConfigRequest) (*launchpad.ConfigResponse, error)
}

// Resolver fetches or creates the launch configuration for a wallet.
// Resolution is idempotent: once a wallet has a config key it is
// reused, and at most one creation transaction is ever submitted.
//
// The cache lives on the Resolver instance, not in a package global,
// so two resolvers never share or leak state between each other.
type Resolver struct {
	api    ConfigAPI
	sender TransactionSender
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]string // wallet -> config key
}

// NewResolver создает новый резолвер конфигурации запуска.
func NewResolver(api ConfigAPI, sender TransactionSender, logger *zap.Logger) *Resolver {
	return &Resolver{
		api:    api,
		sender: sender,
		logger: logger.Named("config-resolver"),
		cache:  make(map[string]string),
	}
}

// Resolve returns the config key for the wallet, creating the config
// on-chain when the wallet has none yet.
func (r *Resolver) Resolve(ctx context.Context, wallet string, split feesplit.Split) (string, error) {
	r.mu.Lock()
	key, ok := r.cache[wallet]
	r.mu.Unlock()
	if ok {
		r.logger.Debug("Config key served from cache", zap.String("config_key", key))
		return key, nil
	}

	cfg, err := r.api.GetLaunchConfig(ctx, wallet)
	switch {
	case err == nil:
		r.logger.Info("✅ Existing launch config found",
			zap.String("config_key", cfg.ConfigKey),
			zap.Int("creator_bps", cfg.CreatorBps),
			zap.Int("partner_bps", cfg.PartnerBps))
		r.store(wallet, cfg.ConfigKey)
		return cfg.ConfigKey, nil

	case errors.Is(err, launchpad.ErrConfigNotFound):
		// fall through to creation

	default:
		return "", fmt.Errorf("failed to fetch launch config: %w", err)
	}

	return r.create(ctx, wallet, split)
}

// create requests a new config from the API and submits its creation
// transaction when one is returned.
func (r *Resolver) create(ctx context.Context, wallet string, split feesplit.Split) (string, error) {
	r.logger.Info("No launch config for wallet, creating",
		zap.String("wallet", wallet),
		zap.Uint16("creator_bps", split.CreatorBps),
		zap.Uint16("partner_bps", split.PartnerBps))

	cfg, err := r.api.CreateLaunchConfig(ctx, launchpad.CreateConfigRequest{
		Wallet:     wallet,
		CreatorBps: int(split.CreatorBps),
		PartnerBps: int(split.PartnerBps),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create launch config: %w", err)
	}
	if cfg.ConfigKey == "" {
		return "", fmt.Errorf("config creation returned no config key")
	}

	if cfg.Transaction != "" {
		tx, err := launchpad.DecodeTransaction(cfg.Transaction)
		if err != nil {
			return "", fmt.Errorf("failed to decode config transaction: %w", err)
		}
		status, err := r.sender.SendAndConfirm(ctx, tx)
		if err != nil {
			return "", fmt.Errorf("failed to submit config transaction: %w", err)
		}
		r.logger.Info("✅ Launch config created",
			zap.String("config_key", cfg.ConfigKey),
			zap.String("signature", status.Signature))
	} else {
		// The API had the account already and just returned the key.
		r.logger.Info("✅ Launch config already on-chain", zap.String("config_key", cfg.ConfigKey))
	}

	r.store(wallet, cfg.ConfigKey)
	return cfg.ConfigKey, nil
}

func (r *Resolver) store(wallet, key string) {
	r.mu.Lock()
	r.cache[wallet] = key
	r.mu.Unlock()
}
