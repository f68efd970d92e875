// internal/launchpad/types.go
package launchpad

import "encoding/json"

// envelope is the wire frame every launchpad API endpoint uses:
// {"success": bool, "response": <payload>, "error": "<message>"}.
type envelope struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

// ConfigResponse describes a creator's launch configuration. When the
// configuration does not exist yet, the create endpoint returns the
// serialized transaction that will create it on-chain.
type ConfigResponse struct {
	ConfigKey   string `json:"configKey"`
	Wallet      string `json:"wallet"`
	CreatorBps  int    `json:"creatorBps"`
	PartnerBps  int    `json:"partnerBps"`
	Transaction string `json:"transaction,omitempty"`
}

type CreateConfigRequest struct {
	Wallet     string `json:"wallet"`
	CreatorBps int    `json:"creatorBps"`
	PartnerBps int    `json:"partnerBps"`
}

// TokenMetadata is the externally visible token profile uploaded to
// the metadata store before a launch.
type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
	Website     string `json:"website,omitempty"`
}

type UploadResult struct {
	MetadataURI string `json:"metadataUri"`
	ImageURI    string `json:"imageUri"`
}

type feeShareWalletResponse struct {
	Handle string `json:"handle"`
	Wallet string `json:"wallet"`
}

// FeeShareEntry is one recipient of the creator-fee distribution.
type FeeShareEntry struct {
	Wallet string `json:"wallet"`
	Bps    int    `json:"bps"`
}

// CreateFeeShareRequest submits the full distribution for a token,
// always exactly two entries: creator first, partner second. The pair
// is keyed by the token's base mint and the wrapped-native quote.
type CreateFeeShareRequest struct {
	Wallet       string          `json:"wallet"`
	BaseMint     string          `json:"baseMint"`
	QuoteMint    string          `json:"quoteMint"`
	Distribution []FeeShareEntry `json:"distribution"`
}

// FeeShareResponse may omit the transaction entirely: the API answers
// without one when an identical distribution is already on-chain.
type FeeShareResponse struct {
	Distribution []FeeShareEntry `json:"distribution"`
	Transaction  string          `json:"transaction,omitempty"`
}

type CreateLaunchRequest struct {
	Wallet      string `json:"wallet"`
	Mint        string `json:"mint"`
	ConfigKey   string `json:"configKey"`
	MetadataURI string `json:"metadataUri"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	BuyLamports uint64 `json:"buyLamports"`
}

// LaunchResponse carries the ready-to-sign launch transaction and the
// public page the token will live on once it lands.
type LaunchResponse struct {
	Transaction string `json:"transaction"`
	LaunchURL   string `json:"launchUrl,omitempty"`
}

// Position is one fee-bearing pool position of a creator. Kind tags
// which pool family the position lives in, which decides the claim
// path: "virtual" for bonding-curve pools, "settled" for pools that
// migrated to the AMM.
type Position struct {
	Mint         string `json:"mint"`
	Pool         string `json:"pool"`
	Kind         string `json:"kind"`
	ClaimableRaw string `json:"claimable"`
	Symbol       string `json:"symbol,omitempty"`
}

const (
	PoolKindVirtual = "virtual"
	PoolKindSettled = "settled"
)

type CreateClaimRequest struct {
	Wallet string `json:"wallet"`
	Mint   string `json:"mint"`
	Pool   string `json:"pool"`
	Kind   string `json:"kind"`
}

type claimTransactionsResponse struct {
	Transactions []string `json:"transactions"`
}
