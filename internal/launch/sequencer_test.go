// internal/launch/sequencer_test.go
package launch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchpilot/internal/feesplit"
	"launchpilot/internal/launchpad"
	"launchpilot/internal/transaction"
	"launchpilot/internal/wallet"
)

func encodedServerTx(t *testing.T) string {
	t.Helper()
	payer := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build(),
		},
		solana.MustHashFromBase58("GfVcyD4kkTrj4bKc7WA9sZCin9JDbdT4Zkd3EittNR1W"),
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

// mockSender fakes the transaction pipeline. Transactions succeed
// with sequential signatures unless a call index is scripted to fail.
type mockSender struct {
	calls      int
	failAt     map[int]error
	rejectAt   map[int]string // call index -> raw on-chain error
	lastExtras []solana.PrivateKey
}

func (s *mockSender) SendAndConfirm(ctx context.Context, tx *solana.Transaction, extraSigners ...solana.PrivateKey) (*transaction.Status, error) {
	s.calls++
	s.lastExtras = extraSigners

	status := &transaction.Status{
		Signature: fmt.Sprintf("sig-%d", s.calls),
		Status:    "processed",
		Slot:      7777,
	}
	if raw, ok := s.rejectAt[s.calls]; ok {
		status.Status = "failed"
		status.Error = raw
		return status, &transaction.RejectionError{Signature: status.Signature, Raw: raw}
	}
	if err := s.failAt[s.calls]; err != nil {
		return nil, err
	}
	return status, nil
}

// fakeLaunchpad implements every API slice the sequencer stages need.
type fakeLaunchpad struct {
	configKey    string
	getCfgErr    error
	createCfgTx  string
	gotCreateCfg launchpad.CreateConfigRequest

	metaCalls int
	gotMeta   launchpad.TokenMetadata

	feeWallet    string
	feeLookupErr error
	feeResp      *launchpad.FeeShareResponse
	lookupCalls  int
	gotFeeShare  launchpad.CreateFeeShareRequest

	launchTx    string
	launchURL   string
	launchCalls int
	gotLaunch   launchpad.CreateLaunchRequest
}

func (f *fakeLaunchpad) GetLaunchConfig(ctx context.Context, w string) (*launchpad.ConfigResponse, error) {
	if f.getCfgErr != nil {
		return nil, f.getCfgErr
	}
	return &launchpad.ConfigResponse{ConfigKey: f.configKey, Wallet: w}, nil
}

func (f *fakeLaunchpad) CreateLaunchConfig(ctx context.Context, req launchpad.CreateConfigRequest) (*launchpad.ConfigResponse, error) {
	f.gotCreateCfg = req
	return &launchpad.ConfigResponse{ConfigKey: f.configKey, Transaction: f.createCfgTx}, nil
}

func (f *fakeLaunchpad) UploadTokenMetadata(ctx context.Context, meta launchpad.TokenMetadata, imageName string, image []byte) (*launchpad.UploadResult, error) {
	f.metaCalls++
	f.gotMeta = meta
	return &launchpad.UploadResult{MetadataURI: "ipfs://bafy-metadata", ImageURI: "ipfs://bafy-image"}, nil
}

func (f *fakeLaunchpad) LookupFeeShareWallet(ctx context.Context, handle string) (string, error) {
	f.lookupCalls++
	if f.feeLookupErr != nil {
		return "", f.feeLookupErr
	}
	return f.feeWallet, nil
}

func (f *fakeLaunchpad) CreateFeeShareConfig(ctx context.Context, req launchpad.CreateFeeShareRequest) (*launchpad.FeeShareResponse, error) {
	f.gotFeeShare = req
	if f.feeResp != nil {
		return f.feeResp, nil
	}
	return &launchpad.FeeShareResponse{Distribution: req.Distribution}, nil
}

func (f *fakeLaunchpad) CreateLaunchTransaction(ctx context.Context, req launchpad.CreateLaunchRequest) (*launchpad.LaunchResponse, error) {
	f.launchCalls++
	f.gotLaunch = req
	return &launchpad.LaunchResponse{Transaction: f.launchTx, LaunchURL: f.launchURL}, nil
}

func newTestSequencer(t *testing.T, api *fakeLaunchpad, sender *mockSender) *Sequencer {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := wallet.New(key.String())
	require.NoError(t, err)

	log := zap.NewNop()
	return NewSequencer(
		NewResolver(api, sender, log),
		NewPublisher(api, log),
		NewFeeShare(api, sender, log),
		api, sender, w, log,
	)
}

func defaultSplit(t *testing.T) feesplit.Split {
	t.Helper()
	split, err := feesplit.Resolve(nil, nil, nil)
	require.NoError(t, err)
	return split
}

func TestLaunchEndToEndWithoutFeeShare(t *testing.T) {
	api := &fakeLaunchpad{
		configKey: solana.NewWallet().PublicKey().String(),
		launchTx:  encodedServerTx(t),
		launchURL: "https://launchpad.example/coin/TEST",
	}
	sender := &mockSender{}
	seq := newTestSequencer(t, api, sender)

	result, err := seq.Launch(context.Background(), Params{
		Name:        "Test Token",
		Symbol:      "$test",
		Description: "a test token",
		BuySOL:      0.5,
		Split:       defaultSplit(t),
	})
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, result.State)
	assert.True(t, result.Confirmed())
	assert.Equal(t, "https://launchpad.example/coin/TEST", result.LaunchURL)

	// The launch request ties everything together.
	assert.Equal(t, "TEST", api.gotLaunch.Symbol)
	assert.Equal(t, api.configKey, api.gotLaunch.ConfigKey)
	assert.Equal(t, result.Mint.String(), api.gotLaunch.Mint)
	assert.Equal(t, "ipfs://bafy-metadata", api.gotLaunch.MetadataURI)
	assert.Equal(t, uint64(500_000_000), api.gotLaunch.BuyLamports)
	assert.Equal(t, 1, api.metaCalls)
	assert.Equal(t, 1, api.launchCalls)

	// No partner handle: fee share never touched.
	assert.Zero(t, api.lookupCalls)

	// Existing config, so the only transaction is the launch itself,
	// co-signed by the freshly generated mint.
	assert.Equal(t, 1, sender.calls)
	require.Len(t, sender.lastExtras, 1)
	assert.Equal(t, result.Mint, sender.lastExtras[0].PublicKey())

	assert.Equal(t, "sig-1", result.Signature)
	assert.False(t, result.Pool.IsZero())
	assert.False(t, result.Mint.IsZero())
}

func TestLaunchPartnerNotFoundAbortsBeforeLaunchTransaction(t *testing.T) {
	api := &fakeLaunchpad{
		configKey:    solana.NewWallet().PublicKey().String(),
		feeLookupErr: fmt.Errorf("%w: ghosthandle", launchpad.ErrPartnerWalletNotFound),
	}
	sender := &mockSender{}
	seq := newTestSequencer(t, api, sender)

	result, err := seq.Launch(context.Background(), Params{
		Name:           "Test Token",
		Symbol:         "TEST",
		Description:    "a test token",
		FeeShareHandle: "ghosthandle",
		Split:          defaultSplit(t),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, launchpad.ErrPartnerWalletNotFound))

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StateMetadataPublished, stepErr.Step)

	assert.Equal(t, StateFailed, result.State)
	assert.Zero(t, api.launchCalls, "launch transaction must never be requested")
	assert.Zero(t, sender.calls, "nothing must be submitted on-chain")

	// The metadata upload had already happened and stays orphaned.
	assert.Equal(t, 1, api.metaCalls)
	assert.NotEmpty(t, result.MetadataURI)
	assert.Empty(t, result.Signature)
}

func TestLaunchDefaultSplitFlowsIntoConfigCreation(t *testing.T) {
	api := &fakeLaunchpad{
		configKey:   solana.NewWallet().PublicKey().String(),
		getCfgErr:   launchpad.ErrConfigNotFound,
		createCfgTx: encodedServerTx(t),
		launchTx:    encodedServerTx(t),
	}
	sender := &mockSender{}
	seq := newTestSequencer(t, api, sender)

	result, err := seq.Launch(context.Background(), Params{
		Name:        "Test Token",
		Symbol:      "TEST",
		Description: "a test token",
		Split:       defaultSplit(t),
	})
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, result.State)

	// Nothing was requested, so the 10%/90% default applies.
	assert.Equal(t, 1000, api.gotCreateCfg.CreatorBps)
	assert.Equal(t, 9000, api.gotCreateCfg.PartnerBps)

	// Config creation plus the launch itself.
	assert.Equal(t, 2, sender.calls)
}

func TestLaunchWithFeeShare(t *testing.T) {
	api := &fakeLaunchpad{
		configKey: solana.NewWallet().PublicKey().String(),
		feeWallet: "PartnerWallet222",
		feeResp:   &launchpad.FeeShareResponse{}, // no tx, distribution reused
		launchTx:  encodedServerTx(t),
	}
	sender := &mockSender{}
	seq := newTestSequencer(t, api, sender)

	result, err := seq.Launch(context.Background(), Params{
		Name:           "Test Token",
		Symbol:         "TEST",
		Description:    "a test token",
		FeeShareHandle: "partner",
		Split:          defaultSplit(t),
	})
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, result.State)
	assert.Equal(t, "PartnerWallet222", result.PartnerWallet)
	assert.True(t, result.FeeShareReused)
	assert.Equal(t, result.Mint.String(), api.gotFeeShare.BaseMint)
}

func TestLaunchRejectedTransactionRecordsSignature(t *testing.T) {
	api := &fakeLaunchpad{
		configKey: solana.NewWallet().PublicKey().String(),
		launchTx:  encodedServerTx(t),
	}
	sender := &mockSender{rejectAt: map[int]string{1: `{"InstructionError":[2,{"Custom":6001}]}`}}
	seq := newTestSequencer(t, api, sender)

	result, err := seq.Launch(context.Background(), Params{
		Name:        "Test Token",
		Symbol:      "TEST",
		Description: "a test token",
		Split:       defaultSplit(t),
	})

	require.Error(t, err)
	var rejection *transaction.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Contains(t, rejection.Raw, "InstructionError")

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StateLaunchSubmitted, stepErr.Step)

	// Submitted but failed: the signature is still part of the record.
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "sig-1", result.Signature)
}

func TestLaunchInvalidParamsFailsImmediately(t *testing.T) {
	api := &fakeLaunchpad{}
	sender := &mockSender{}
	seq := newTestSequencer(t, api, sender)

	result, err := seq.Launch(context.Background(), Params{Symbol: "TEST"})

	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StateStart, stepErr.Step)
	assert.Equal(t, StateFailed, result.State)
	assert.Zero(t, api.metaCalls)
	assert.Zero(t, sender.calls)
}
