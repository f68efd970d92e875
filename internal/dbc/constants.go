// internal/dbc/constants.go
package dbc

import "github.com/gagliardetto/solana-go"

const dbcProgramAddress = "Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"

var (
	// ProgramID is the dynamic bonding curve program every launch
	// trades on until migration.
	ProgramID = solana.MustPublicKeyFromBase58(dbcProgramAddress)

	// WrappedSOLMint is the quote side of every launch pool.
	WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

var (
	virtualPoolDiscriminator = [8]uint8{213, 224, 5, 209, 98, 69, 119, 92}
	poolConfigDiscriminator  = [8]uint8{26, 108, 14, 123, 116, 230, 129, 43}
)
