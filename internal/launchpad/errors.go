// internal/launchpad/errors.go
package launchpad

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound signals that a creator has no launch
	// configuration yet and one must be created.
	ErrConfigNotFound = errors.New("launch configuration not found")

	// ErrPartnerWalletNotFound means the fee-share handle does not
	// resolve to a wallet. This is terminal for a launch: the partner
	// must register before any fee split can reference them.
	ErrPartnerWalletNotFound = errors.New("partner wallet not found for handle")
)

// APIError carries a non-success answer from the launchpad API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("launchpad API error: status %d", e.Status)
	}
	return fmt.Sprintf("launchpad API error: status %d: %s", e.Status, e.Message)
}
