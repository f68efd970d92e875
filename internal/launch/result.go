// internal/launch/result.go
package launch

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Result is the full record of one launch attempt. It is filled in
// step by step, so on failure it shows exactly how far the sequence
// got and which on-chain artifacts already exist.
type Result struct {
	LaunchID uuid.UUID `json:"launch_id"`
	State    State     `json:"state"`

	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Mint   solana.PublicKey `json:"mint"`

	ConfigKey   string `json:"config_key"`
	MetadataURI string `json:"metadata_uri,omitempty"`
	ImageURI    string `json:"image_uri,omitempty"`
	LaunchURL   string `json:"launch_url,omitempty"`

	PartnerWallet     string `json:"partner_wallet,omitempty"`
	FeeShareSignature string `json:"fee_share_signature,omitempty"`
	FeeShareReused    bool   `json:"fee_share_reused,omitempty"`

	// Signature and Slot are set once the launch transaction has been
	// submitted, even when confirmation later fails.
	Signature   string           `json:"signature,omitempty"`
	Slot        uint64           `json:"slot,omitempty"`
	BuyLamports uint64           `json:"buy_lamports"`
	Pool        solana.PublicKey `json:"pool,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Confirmed reports whether the launch reached its terminal success state.
func (r *Result) Confirmed() bool {
	return r.State == StateConfirmed
}

// Duration is the wall-clock time the launch attempt took.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
