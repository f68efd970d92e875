// internal/launch/feeshare.go
package launch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"launchpilot/internal/dbc"
	"launchpilot/internal/feesplit"
	"launchpilot/internal/launchpad"
)

// FeeShareAPI is the slice of the launchpad API fee-share setup needs.
type FeeShareAPI interface {
	LookupFeeShareWallet(ctx context.Context, handle string) (string, error)
	CreateFeeShareConfig(ctx context.Context, req launchpad.CreateFeeShareRequest) (*launchpad.FeeShareResponse, error)
}

// FeeShareResult records what Configure did. Reused means the
// distribution was already on-chain and no transaction was submitted.
type FeeShareResult struct {
	PartnerWallet string
	Signature     string
	Reused        bool
}

// FeeShare wires a partner into the creator-fee distribution of a
// token: handle lookup, distribution submission, confirmation.
type FeeShare struct {
	api    FeeShareAPI
	sender TransactionSender
	logger *zap.Logger
}

func NewFeeShare(api FeeShareAPI, sender TransactionSender, logger *zap.Logger) *FeeShare {
	return &FeeShare{
		api:    api,
		sender: sender,
		logger: logger.Named("fee-share"),
	}
}

// Configure resolves the partner's handle to a wallet and submits the
// two-entry distribution for the mint. A handle with no registered
// wallet is terminal: there is nobody to route the partner's share to,
// so guessing a recipient is not an option.
func (f *FeeShare) Configure(ctx context.Context, creatorWallet, handle, mint string, split feesplit.Split) (*FeeShareResult, error) {
	partnerWallet, err := f.api.LookupFeeShareWallet(ctx, handle)
	if err != nil {
		return nil, err
	}

	// The split was validated when it was built, but it crosses the
	// process boundary here. Re-check before anything irreversible.
	if err := feesplit.Validate(int(split.CreatorBps), int(split.PartnerBps)); err != nil {
		return nil, err
	}

	f.logger.Info("Configuring fee share",
		zap.String("handle", handle),
		zap.String("partner_wallet", partnerWallet),
		zap.Uint16("creator_bps", split.CreatorBps),
		zap.Uint16("partner_bps", split.PartnerBps))

	resp, err := f.api.CreateFeeShareConfig(ctx, launchpad.CreateFeeShareRequest{
		Wallet:    creatorWallet,
		BaseMint:  mint,
		QuoteMint: dbc.WrappedSOLMint.String(),
		Distribution: []launchpad.FeeShareEntry{
			{Wallet: creatorWallet, Bps: int(split.CreatorBps)},
			{Wallet: partnerWallet, Bps: int(split.PartnerBps)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fee share config: %w", err)
	}

	if err := validateDistribution(resp.Distribution); err != nil {
		return nil, err
	}

	result := &FeeShareResult{PartnerWallet: partnerWallet}

	if resp.Transaction == "" {
		// Identical distribution already on-chain.
		f.logger.Info("✅ Fee share already configured, reusing", zap.String("partner_wallet", partnerWallet))
		result.Reused = true
		return result, nil
	}

	tx, err := launchpad.DecodeTransaction(resp.Transaction)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fee share transaction: %w", err)
	}
	status, err := f.sender.SendAndConfirm(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit fee share transaction: %w", err)
	}

	result.Signature = status.Signature
	f.logger.Info("✅ Fee share configured",
		zap.String("partner_wallet", partnerWallet),
		zap.String("signature", result.Signature))
	return result, nil
}

// validateDistribution re-checks what the API echoed back. A response
// that does not conserve the total would silently burn fees.
func validateDistribution(entries []launchpad.FeeShareEntry) error {
	if len(entries) == 0 {
		return nil
	}
	total := 0
	for _, e := range entries {
		if e.Bps < 0 {
			return fmt.Errorf("distribution entry for %s has negative bps %d", e.Wallet, e.Bps)
		}
		total += e.Bps
	}
	if total != feesplit.TotalBps {
		return fmt.Errorf("distribution sums to %d bps, want %d", total, feesplit.TotalBps)
	}
	return nil
}
