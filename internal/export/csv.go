package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"launchpilot/internal/storage"
)

// writeCSV writes headers plus one row per record to a new file.
func writeCSV[T any](outputPath string, headers []string, records []T, toRow func(T) []string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(toRow(record)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func launchCSVHeaders() []string {
	return []string{
		"launch_id", "created_at", "wallet", "name", "symbol", "mint",
		"state", "signature", "config_key", "metadata_uri", "launch_url",
		"partner_wallet", "fee_share_signature", "buy_sol", "slot",
	}
}

func launchToCSV(r *storage.LaunchRecord) []string {
	return []string{
		r.LaunchID.String(),
		r.CreatedAt.Format(time.RFC3339),
		r.Wallet,
		r.Name,
		r.Symbol,
		r.Mint,
		r.State,
		r.Signature,
		r.ConfigKey,
		r.MetadataURI,
		r.LaunchURL,
		r.PartnerWallet,
		r.FeeShareSignature,
		decimal.New(r.BuyLamports, -9).String(),
		strconv.FormatInt(r.Slot, 10),
	}
}

func claimCSVHeaders() []string {
	return []string{
		"created_at", "wallet", "mint", "pool", "kind",
		"outcome", "claimable", "signatures", "error",
	}
}

func claimToCSV(r *storage.ClaimRecord) []string {
	return []string{
		r.CreatedAt.Format(time.RFC3339),
		r.Wallet,
		r.Mint,
		r.Pool,
		r.Kind,
		r.Outcome,
		r.Claimable,
		strings.Join(r.Signatures, ";"),
		r.ClaimError,
	}
}
