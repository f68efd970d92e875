// internal/launch/sequencer.go
package launch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"launchpilot/internal/dbc"
	"launchpilot/internal/launchpad"
	"launchpilot/internal/wallet"
)

// State is a stage of the launch sequence. The sequence only moves
// forward; there is no rollback, because metadata pins and submitted
// transactions cannot be taken back anyway.
type State string

const (
	StateStart              State = "START"
	StateConfigResolved     State = "CONFIG_RESOLVED"
	StateMetadataPublished  State = "METADATA_PUBLISHED"
	StateFeeShareConfigured State = "FEE_SHARE_CONFIGURED"
	StateLaunchSubmitted    State = "LAUNCH_SUBMITTED"
	StateConfirmed          State = "CONFIRMED"
	StateFailed             State = "FAILED"
)

// LaunchAPI is the slice of the launchpad API the sequencer itself
// calls; the resolver, publisher and fee-share stages carry their own.
type LaunchAPI interface {
	CreateLaunchTransaction(ctx context.Context, req launchpad.CreateLaunchRequest) (*launchpad.LaunchResponse, error)
}

// Sequencer runs a token launch end to end: config resolution,
// metadata upload, optional fee-share setup, then the launch
// transaction with the creator's initial buy.
type Sequencer struct {
	resolver  *Resolver
	publisher *Publisher
	feeShare  *FeeShare
	api       LaunchAPI
	sender    TransactionSender
	wallet    *wallet.Wallet
	logger    *zap.Logger
}

// NewSequencer создает новый секвенсор запуска токена.
func NewSequencer(
	resolver *Resolver,
	publisher *Publisher,
	feeShare *FeeShare,
	api LaunchAPI,
	sender TransactionSender,
	w *wallet.Wallet,
	logger *zap.Logger,
) *Sequencer {
	return &Sequencer{
		resolver:  resolver,
		publisher: publisher,
		feeShare:  feeShare,
		api:       api,
		sender:    sender,
		wallet:    w,
		logger:    logger.Named("sequencer"),
	}
}

// Launch executes the whole sequence for one token. The returned
// Result is non-nil even on failure and records how far the sequence
// got; the error wraps the failing stage in a StepError.
func (s *Sequencer) Launch(ctx context.Context, params Params) (*Result, error) {
	result := &Result{
		LaunchID:  uuid.New(),
		State:     StateStart,
		Name:      strings.TrimSpace(params.Name),
		Symbol:    params.NormalizedSymbol(),
		StartedAt: time.Now(),
	}
	log := s.logger.With(zap.String("launch_id", result.LaunchID.String()))

	if err := params.Validate(); err != nil {
		return s.fail(log, result, err)
	}

	log.Info("🚀 Starting token launch",
		zap.String("name", result.Name),
		zap.String("symbol", result.Symbol),
		zap.Float64("buy_sol", params.BuySOL),
		zap.String("fee_share_handle", params.FeeShareHandle))

	configKey, err := s.resolver.Resolve(ctx, s.wallet.String(), params.Split)
	if err != nil {
		return s.fail(log, result, err)
	}
	result.ConfigKey = configKey
	s.advance(log, result, StateConfigResolved)

	// The mint keypair is generated locally and co-signs the launch
	// transaction later.
	mint, err := solana.NewRandomPrivateKey()
	if err != nil {
		return s.fail(log, result, fmt.Errorf("failed to generate mint keypair: %w", err))
	}
	result.Mint = mint.PublicKey()
	log.Info("🪙 Mint keypair generated", zap.String("mint", result.Mint.String()))

	upload, err := s.publisher.Publish(ctx, &params)
	if err != nil {
		return s.fail(log, result, err)
	}
	result.MetadataURI = upload.MetadataURI
	result.ImageURI = upload.ImageURI
	s.advance(log, result, StateMetadataPublished)

	// Fee share runs before the launch transaction: an unresolvable
	// partner handle has to abort the launch while the token does not
	// exist yet, not after.
	if params.FeeShareHandle != "" {
		share, err := s.feeShare.Configure(ctx, s.wallet.String(), params.FeeShareHandle, result.Mint.String(), params.Split)
		if err != nil {
			return s.fail(log, result, err)
		}
		result.PartnerWallet = share.PartnerWallet
		result.FeeShareSignature = share.Signature
		result.FeeShareReused = share.Reused
		s.advance(log, result, StateFeeShareConfigured)
	} else {
		log.Info("Fee share skipped, no partner handle given")
	}

	result.BuyLamports = params.Lamports()
	resp, err := s.api.CreateLaunchTransaction(ctx, launchpad.CreateLaunchRequest{
		Wallet:      s.wallet.String(),
		Mint:        result.Mint.String(),
		ConfigKey:   result.ConfigKey,
		MetadataURI: result.MetadataURI,
		Name:        result.Name,
		Symbol:      result.Symbol,
		BuyLamports: result.BuyLamports,
	})
	if err != nil {
		return s.fail(log, result, fmt.Errorf("failed to create launch transaction: %w", err))
	}
	result.LaunchURL = resp.LaunchURL
	tx, err := launchpad.DecodeTransaction(resp.Transaction)
	if err != nil {
		return s.fail(log, result, fmt.Errorf("failed to decode launch transaction: %w", err))
	}

	status, err := s.sender.SendAndConfirm(ctx, tx, mint)
	if status != nil && status.Signature != "" {
		result.Signature = status.Signature
		result.Slot = status.Slot
		s.advance(log, result, StateLaunchSubmitted)
	}
	if err != nil {
		return s.fail(log, result, err)
	}

	s.advance(log, result, StateConfirmed)
	result.FinishedAt = time.Now()
	result.Pool = s.derivePool(log, result)

	log.Info("✅ Token launched",
		zap.String("mint", result.Mint.String()),
		zap.String("signature", result.Signature),
		zap.Uint64("buy_lamports", result.BuyLamports),
		zap.Duration("duration", result.Duration()))
	return result, nil
}

func (s *Sequencer) advance(log *zap.Logger, result *Result, next State) {
	log.Info("Launch state changed",
		zap.String("from", string(result.State)),
		zap.String("to", string(next)))
	result.State = next
}

// fail marks the result failed and wraps the error with the last
// state the sequence reached.
func (s *Sequencer) fail(log *zap.Logger, result *Result, err error) (*Result, error) {
	reached := result.State
	result.State = StateFailed
	result.FinishedAt = time.Now()

	if result.MetadataURI != "" && result.Signature == "" {
		// The pin stays even though the token never launched.
		log.Warn("⚠️ Metadata already published for a mint that will not launch",
			zap.String("mint", result.Mint.String()),
			zap.String("metadata_uri", result.MetadataURI))
	}

	log.Error("💥 Launch failed",
		zap.String("reached", string(reached)),
		zap.Error(err))
	return result, &StepError{Step: reached, Err: err}
}

// derivePool computes the bonding-curve pool address for the new
// token. Purely informational, so a derivation error just leaves the
// field empty.
func (s *Sequencer) derivePool(log *zap.Logger, result *Result) solana.PublicKey {
	configKey, err := solana.PublicKeyFromBase58(result.ConfigKey)
	if err != nil {
		log.Debug("Config key is not a valid public key", zap.String("config_key", result.ConfigKey))
		return solana.PublicKey{}
	}
	pool, err := dbc.DerivePoolAddress(configKey, result.Mint, dbc.WrappedSOLMint)
	if err != nil {
		log.Debug("Failed to derive pool address", zap.Error(err))
		return solana.PublicKey{}
	}
	return pool
}
