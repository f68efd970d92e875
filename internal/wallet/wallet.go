// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet holds the signing keypair for launch and claim transactions.
// The key is read-only after construction and shared by every component.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// New creates a wallet from a base58-encoded private key.
func New(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Wallet{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// SignTransaction signs every signer slot the wallet key or one of
// the extra keypairs can cover. Launch transactions carry the new
// mint as a second signer; everything else signs with the wallet
// alone.
func (w *Wallet) SignTransaction(tx *solana.Transaction, extraSigners ...solana.PrivateKey) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		for i := range extraSigners {
			if key.Equals(extraSigners[i].PublicKey()) {
				return &extraSigners[i]
			}
		}
		return nil
	})
	return err
}

// String returns the wallet's public key.
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
