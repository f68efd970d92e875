// internal/license/keygen_test.go
package license

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestValidateRequiresKey(t *testing.T) {
	v := NewValidator(Options{}, zap.NewNop())
	if err := v.Validate(context.Background(), ""); err == nil {
		t.Error("expected error for empty license key")
	}
}

func TestValidateBasicMode(t *testing.T) {
	// No product token configured: offline check only.
	v := NewValidator(Options{}, zap.NewNop())

	if err := v.Validate(context.Background(), "LPLT-1234-5678-ABCD"); err != nil {
		t.Errorf("expected basic validation to pass: %v", err)
	}
	if err := v.Validate(context.Background(), "short"); err == nil {
		t.Error("expected error for short license key")
	}
}

func TestShortenKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LPLT-1234-5678-ABCD", "LPLT-123..."},
		{"ABCDEFGH", "ABCDEFGH"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := shortenKey(tt.in); got != tt.want {
			t.Errorf("shortenKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
