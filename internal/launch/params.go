// internal/launch/params.go
package launch

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"launchpilot/internal/feesplit"
)

const lamportsPerSOLExponent = 9

// Params describes a single token launch as entered by the user.
type Params struct {
	Name        string
	Symbol      string
	Description string

	// ImageURL is fetched over HTTP. ImageData is raw image bytes,
	// used when no URL is set. When neither is set the embedded
	// placeholder image is uploaded instead.
	ImageURL  string
	ImageData []byte
	ImageName string

	Twitter  string
	Telegram string
	Website  string

	// FeeShareHandle is the partner's social handle. Empty means the
	// launch is configured without fee sharing.
	FeeShareHandle string

	// BuySOL is the initial creator buy in SOL, executed inside the
	// launch transaction itself.
	BuySOL float64

	Split feesplit.Split
}

// Validate checks the fields a launch cannot proceed without.
func (p *Params) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("token name is required")
	}
	if p.NormalizedSymbol() == "" {
		return fmt.Errorf("token symbol is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("token description is required")
	}
	if p.BuySOL < 0 {
		return fmt.Errorf("initial buy cannot be negative: %f", p.BuySOL)
	}
	return nil
}

// NormalizedSymbol returns the ticker in its on-chain form: trimmed,
// a leading $ stripped, uppercased. "$wif " becomes "WIF".
func (p *Params) NormalizedSymbol() string {
	symbol := strings.TrimSpace(p.Symbol)
	symbol = strings.TrimPrefix(symbol, "$")
	return strings.ToUpper(symbol)
}

// Lamports converts the initial buy to lamports. Going through
// decimal avoids the float drift of multiplying by 1e9 directly.
func (p *Params) Lamports() uint64 {
	if p.BuySOL <= 0 {
		return 0
	}
	lamports := decimal.NewFromFloat(p.BuySOL).Mul(decimal.New(1, lamportsPerSOLExponent))
	return uint64(lamports.IntPart())
}
