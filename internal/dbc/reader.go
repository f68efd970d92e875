// internal/dbc/reader.go
package dbc

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// ErrAccountNotFound means the requested account does not exist at
// the queried commitment.
var ErrAccountNotFound = errors.New("account not found on-chain")

// AccountFetcher is the slice of the RPC surface the reader needs.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetProgramAccounts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
}

// Reader decodes bonding-curve program accounts straight from chain
// state. It is the source of truth the launchpad API answers are
// checked against.
type Reader struct {
	client AccountFetcher
	logger *zap.Logger
}

func NewReader(client AccountFetcher, logger *zap.Logger) *Reader {
	return &Reader{
		client: client,
		logger: logger.Named("dbc-reader"),
	}
}

// PoolSummary pairs a pool account with its address.
type PoolSummary struct {
	Address solana.PublicKey
	Pool    *VirtualPool
}

func (r *Reader) GetPoolConfig(ctx context.Context, configKey solana.PublicKey) (*PoolConfig, error) {
	data, err := r.fetchAccountData(ctx, configKey)
	if err != nil {
		return nil, err
	}
	return DecodePoolConfig(data)
}

func (r *Reader) GetVirtualPool(ctx context.Context, pool solana.PublicKey) (*VirtualPool, error) {
	data, err := r.fetchAccountData(ctx, pool)
	if err != nil {
		return nil, err
	}
	return DecodeVirtualPool(data)
}

func (r *Reader) fetchAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := r.client.GetAccountInfo(ctx, pubkey)
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey.String())
	}
	return result.Value.Data.GetBinary(), nil
}

// ListPoolsByCreator scans the program for every pool the creator
// owns, filtering server-side on account size and the creator field.
func (r *Reader) ListPoolsByCreator(ctx context.Context, creator solana.PublicKey) ([]PoolSummary, error) {
	dataSize := uint64(VirtualPoolAccountSize)
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{DataSize: dataSize},
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: creatorFieldOffset,
					Bytes:  creator.Bytes(),
				},
			},
		},
	}

	accounts, err := r.client.GetProgramAccounts(ctx, ProgramID, opts)
	if err != nil {
		return nil, fmt.Errorf("scan pools by creator: %w", err)
	}

	summaries := make([]PoolSummary, 0, len(accounts))
	for _, keyed := range accounts {
		pool, err := DecodeVirtualPool(keyed.Account.Data.GetBinary())
		if err != nil {
			r.logger.Warn("Skipping undecodable pool account",
				zap.String("address", keyed.Pubkey.String()), zap.Error(err))
			continue
		}
		summaries = append(summaries, PoolSummary{Address: keyed.Pubkey, Pool: pool})
	}

	r.logger.Debug("Scanned creator pools",
		zap.String("creator", creator.String()),
		zap.Int("found", len(summaries)))

	return summaries, nil
}

// DerivePoolAddress computes the pool PDA for a config and token
// pair. The two mints are ordered bytewise so the address does not
// depend on argument order.
func DerivePoolAddress(config, mintA, mintB solana.PublicKey) (solana.PublicKey, error) {
	first, second := mintA, mintB
	if bytes.Compare(first.Bytes(), second.Bytes()) < 0 {
		first, second = second, first
	}

	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("pool"),
		config.Bytes(),
		first.Bytes(),
		second.Bytes(),
	}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive pool address: %w", err)
	}
	return addr, nil
}
