package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromBase58(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := New(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)
	assert.Equal(t, key.PublicKey().String(), w.String())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("not-base58!!!")
	require.Error(t, err)

	// Valid base58 but wrong length.
	_, err = New("3mJr7AoUXx2Wqd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length")
}

func TestSignTransaction(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := New(key.String())
	require.NoError(t, err)

	recipient, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, w.PublicKey, recipient.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}
