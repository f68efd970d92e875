// internal/feesplit/split.go
package feesplit

import (
	"fmt"
	"math"
)

const (
	// TotalBps is the whole fee expressed in basis points (100%).
	TotalBps = 10000
	// DefaultCreatorBps is the creator share applied when no split is requested.
	DefaultCreatorBps = 1000
)

// Split is a conserved creator/partner fee pair; the two sides always sum to TotalBps.
type Split struct {
	CreatorBps uint16
	PartnerBps uint16
}

// InvalidSplitError reports a bps pair that violates conservation.
type InvalidSplitError struct {
	CreatorBps int
	PartnerBps int
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("invalid fee split: creator %d bps + partner %d bps must equal %d and be non-negative",
		e.CreatorBps, e.PartnerBps, TotalBps)
}

// Resolve derives the creator/partner pair from caller input.
// An explicit bps pair takes precedence over the percentage; a single explicit
// side implies the complement; a percentage maps to round(pct*100) creator bps;
// with nothing given the split falls back to DefaultCreatorBps against the rest.
// The returned pair always sums to TotalBps or the call fails with *InvalidSplitError.
func Resolve(creatorPct *float64, creatorBps, partnerBps *int) (Split, error) {
	switch {
	case creatorBps != nil && partnerBps != nil:
		return validatePair(*creatorBps, *partnerBps)
	case creatorBps != nil:
		return complement(*creatorBps, true)
	case partnerBps != nil:
		return complement(*partnerBps, false)
	case creatorPct != nil:
		creator := int(math.Round(*creatorPct * 100))
		return complement(creator, true)
	default:
		return Split{CreatorBps: DefaultCreatorBps, PartnerBps: TotalBps - DefaultCreatorBps}, nil
	}
}

// Validate checks an already-built pair without deriving anything.
func Validate(creatorBps, partnerBps int) error {
	_, err := validatePair(creatorBps, partnerBps)
	return err
}

func validatePair(creator, partner int) (Split, error) {
	if creator < 0 || partner < 0 || creator+partner != TotalBps {
		return Split{}, &InvalidSplitError{CreatorBps: creator, PartnerBps: partner}
	}
	return Split{CreatorBps: uint16(creator), PartnerBps: uint16(partner)}, nil
}

func complement(known int, knownIsCreator bool) (Split, error) {
	if known < 0 || known > TotalBps {
		if knownIsCreator {
			return Split{}, &InvalidSplitError{CreatorBps: known, PartnerBps: TotalBps - known}
		}
		return Split{}, &InvalidSplitError{CreatorBps: TotalBps - known, PartnerBps: known}
	}
	if knownIsCreator {
		return Split{CreatorBps: uint16(known), PartnerBps: uint16(TotalBps - known)}, nil
	}
	return Split{CreatorBps: uint16(TotalBps - known), PartnerBps: uint16(known)}, nil
}
