// internal/claim/position.go
package claim

import (
	"fmt"

	cosmath "cosmossdk.io/math"

	"launchpilot/internal/launchpad"
)

// PoolKind tags which pool family a position lives in. The claim path
// differs between the two: virtual positions claim from the bonding
// curve, settled positions from the AMM pool the launch migrated to.
type PoolKind string

const (
	PoolKindVirtual PoolKind = "virtual"
	PoolKindSettled PoolKind = "settled"
)

func ParsePoolKind(s string) (PoolKind, error) {
	switch s {
	case "virtual":
		return PoolKindVirtual, nil
	case "settled", "damm":
		// The API names the migrated pool family after its AMM.
		return PoolKindSettled, nil
	default:
		return "", fmt.Errorf("unknown pool kind %q", s)
	}
}

// Position is one claimable fee position of the wallet.
type Position struct {
	Mint      string
	Pool      string
	Kind      PoolKind
	Symbol    string
	Claimable cosmath.Int
}

func newPosition(p launchpad.Position) (Position, error) {
	kind, err := ParsePoolKind(p.Kind)
	if err != nil {
		return Position{}, fmt.Errorf("position %s: %w", p.Mint, err)
	}

	claimable := cosmath.ZeroInt()
	if p.ClaimableRaw != "" {
		parsed, ok := cosmath.NewIntFromString(p.ClaimableRaw)
		if !ok {
			return Position{}, fmt.Errorf("position %s: unparseable claimable amount %q", p.Mint, p.ClaimableRaw)
		}
		claimable = parsed
	}

	return Position{
		Mint:      p.Mint,
		Pool:      p.Pool,
		Kind:      kind,
		Symbol:    p.Symbol,
		Claimable: claimable,
	}, nil
}

// TotalClaimable sums the advertised amounts across positions. The
// sum is informational: what actually lands is decided per position
// by the claim transactions, never by this number.
func TotalClaimable(positions []Position) cosmath.Int {
	total := cosmath.ZeroInt()
	for _, p := range positions {
		total = total.Add(p.Claimable)
	}
	return total
}
