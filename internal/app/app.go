// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"launchpilot/internal/blockchain"
	"launchpilot/internal/claim"
	"launchpilot/internal/config"
	"launchpilot/internal/dbc"
	"launchpilot/internal/export"
	"launchpilot/internal/launch"
	"launchpilot/internal/launchpad"
	"launchpilot/internal/license"
	"launchpilot/internal/logger"
	"launchpilot/internal/storage"
	"launchpilot/internal/storage/migrations"
	"launchpilot/internal/storage/postgres"
	"launchpilot/internal/transaction"
	"launchpilot/internal/wallet"
)

// errNoStorage is returned by export commands when no database is
// configured; there is no history to export without one.
var errNoStorage = errors.New("postgres_url is not configured: exports read launch history from Postgres")

// App wires configuration, wallet, RPC pool, launchpad client and
// storage into the commands the CLI exposes. The RPC half is built
// lazily so that export commands work offline.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	closeLog func()
	wallet   *wallet.Wallet
	exporter *export.Exporter

	// Built by connectChain on first on-chain command.
	client    *blockchain.Client
	manager   *transaction.Manager
	api       *launchpad.Client
	reader    *dbc.Reader
	sequencer *launch.Sequencer
	claimer   *claim.Aggregator

	// Built by Start when postgres_url is set.
	pool     *postgres.Pool
	launches storage.LaunchStore
	claims   storage.ClaimStore
}

// New загружает конфигурацию и собирает офлайн-часть приложения.
// Everything that needs the network (RPC pool, Postgres) is deferred
// to Start and connectChain.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	w, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		closeLog: closeLog,
		wallet:   w,
		exporter: export.NewExporter(log),
	}, nil
}

// Logger exposes the root logger for the CLI layer.
func (a *App) Logger() *zap.Logger { return a.logger }

// WalletAddress is the creator wallet this app operates as.
func (a *App) WalletAddress() string { return a.wallet.String() }

// DefaultBuySOL is the configured initial-buy fallback.
func (a *App) DefaultBuySOL() float64 { return a.cfg.DefaultBuySOL }

// Start validates the license and connects optional services. Without
// a license key the app runs in dev mode; without postgres_url it runs
// without launch history.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.LicenseKey == "" {
		a.logger.Warn("⚠️ No license key configured, running in dev mode")
	} else {
		validator := license.NewValidator(license.Options{
			AccountID:    a.cfg.KeygenAccountID,
			ProductToken: a.cfg.KeygenProductToken,
			ProductID:    a.cfg.KeygenProductID,
		}, a.logger)
		if err := validator.Validate(ctx, a.cfg.LicenseKey); err != nil {
			return fmt.Errorf("license validation failed: %w", err)
		}
	}

	if a.cfg.PostgresURL != "" {
		pool, err := postgres.NewPool(ctx, a.cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := migrations.Run(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		a.pool = pool
		a.launches = postgres.NewLaunchStore(pool)
		a.claims = postgres.NewClaimStore(pool)
		a.logger.Info("📦 Launch history storage connected")
	}

	if a.cfg.MetricsAddr != "" {
		a.startMetricsServer()
	}

	return nil
}

// connectChain builds the RPC-backed half of the app on first use.
func (a *App) connectChain() error {
	if a.sequencer != nil {
		return nil
	}

	client, err := blockchain.NewClient(a.cfg.RPCList, a.cfg.RPCRateLimit, a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC nodes: %w", err)
	}
	stats := client.Stats()
	active := 0
	for _, s := range stats {
		if s.Active {
			active++
		}
	}
	a.logger.Info("📡 Connected to Solana RPC",
		zap.Int("active_endpoints", active),
		zap.Int("configured", len(stats)))

	manager := transaction.NewManager(client, a.wallet, a.logger, transaction.Config{
		MaxSendRetries:   a.cfg.SendRetries,
		ConfirmationTime: time.Duration(a.cfg.ConfirmTimeout) * time.Second,
		PollDelay:        time.Duration(a.cfg.PollDelay) * time.Millisecond,
		Commitment:       rpc.CommitmentProcessed,
	})

	api := launchpad.NewClient(a.cfg.APIBaseURL, a.cfg.APIKey, a.logger)

	resolver := launch.NewResolver(api, manager, a.logger)
	publisher := launch.NewPublisher(api, a.logger)
	feeShare := launch.NewFeeShare(api, manager, a.logger)

	a.client = client
	a.manager = manager
	a.api = api
	a.reader = dbc.NewReader(client, a.logger)
	a.sequencer = launch.NewSequencer(resolver, publisher, feeShare, api, manager, a.wallet, a.logger)
	a.claimer = claim.NewAggregator(api, manager, a.wallet.String(), a.logger)
	return nil
}

// Launch runs the full launch sequence and records the attempt.
// Recording is best effort: a dead database must not turn a confirmed
// launch into a reported failure.
func (a *App) Launch(ctx context.Context, params launch.Params) (*launch.Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := a.connectChain(); err != nil {
		return nil, err
	}
	if err := a.checkLaunchFunds(ctx, params.Lamports()); err != nil {
		return nil, err
	}

	result, launchErr := a.sequencer.Launch(ctx, params)
	if result != nil && a.launches != nil {
		if err := a.launches.Insert(ctx, launchRecord(result, a.wallet.String())); err != nil {
			a.logger.Warn("Failed to record launch", zap.Error(err))
		}
	}
	return result, launchErr
}

// launchCostBuffer covers the launch transaction fee plus the rent for
// the accounts the pool creation allocates, on top of the initial buy.
const launchCostBuffer uint64 = 10_000_000

// checkLaunchFunds fails fast when the wallet clearly cannot pay for
// the launch. An RPC hiccup does not block the launch; the submit path
// surfaces real problems.
func (a *App) checkLaunchFunds(ctx context.Context, buyLamports uint64) error {
	balance, err := a.client.GetBalance(ctx, a.wallet.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		a.logger.Warn("Balance check skipped", zap.Error(err))
		return nil
	}
	needed := buyLamports + launchCostBuffer
	if balance < needed {
		return fmt.Errorf("insufficient balance: %s SOL on %s, launch needs at least %s SOL",
			decimal.New(int64(balance), -9), a.wallet, decimal.New(int64(needed), -9))
	}
	return nil
}

// Claim runs a claim pass over the wallet's positions and records the
// outcome of every position. A non-empty mint restricts the run.
func (a *App) Claim(ctx context.Context, mint string) (*claim.Report, error) {
	if err := a.connectChain(); err != nil {
		return nil, err
	}

	report, claimErr := a.claimer.ClaimAll(ctx, mint)
	if report != nil && a.claims != nil && len(report.Results) > 0 {
		if err := a.claims.InsertBulk(ctx, claimRecords(report, a.wallet.String())); err != nil {
			a.logger.Warn("Failed to record claim run", zap.Error(err))
		}
	}
	return report, claimErr
}

// Positions lists claimable positions without claiming anything.
func (a *App) Positions(ctx context.Context, mint string) ([]claim.Position, error) {
	if err := a.connectChain(); err != nil {
		return nil, err
	}
	return a.claimer.Positions(ctx, mint)
}

// ExportLaunches writes the wallet's launch history to a report file
// and returns its path.
func (a *App) ExportLaunches(ctx context.Context, options export.Options) (string, error) {
	if a.launches == nil {
		return "", errNoStorage
	}
	records, err := a.launches.ListByWallet(ctx, a.wallet.String())
	if err != nil {
		return "", fmt.Errorf("failed to load launch history: %w", err)
	}
	if options.OutputDir == "" {
		options.OutputDir = a.cfg.ReportDir
	}
	return a.exporter.ExportLaunches(records, options)
}

// ExportClaims writes the wallet's claim history to a report file and
// returns its path.
func (a *App) ExportClaims(ctx context.Context, options export.Options) (string, error) {
	if a.claims == nil {
		return "", errNoStorage
	}
	records, err := a.claims.ListByWallet(ctx, a.wallet.String())
	if err != nil {
		return "", fmt.Errorf("failed to load claim history: %w", err)
	}
	if options.OutputDir == "" {
		options.OutputDir = a.cfg.ReportDir
	}
	return a.exporter.ExportClaims(records, options)
}

// ExportDailyReport writes the combined activity report for one day.
// The returned path is empty when the day had no activity.
func (a *App) ExportDailyReport(ctx context.Context, date time.Time) (string, error) {
	if a.launches == nil || a.claims == nil {
		return "", errNoStorage
	}
	launches, err := a.launches.ListByWallet(ctx, a.wallet.String())
	if err != nil {
		return "", fmt.Errorf("failed to load launch history: %w", err)
	}
	claims, err := a.claims.ListByWallet(ctx, a.wallet.String())
	if err != nil {
		return "", fmt.Errorf("failed to load claim history: %w", err)
	}
	return a.exporter.ExportDailyReport(launches, claims, date, a.cfg.ReportDir)
}

// startMetricsServer exposes Prometheus metrics and a health probe.
func (a *App) startMetricsServer() {
	addr := a.cfg.MetricsAddr
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		a.logger.Info("Starting metrics server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
}

// Close releases the database pool and flushes the log sinks.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if err := a.logger.Sync(); err != nil {
		// Console sinks reject Sync on some platforms.
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

// launchRecord flattens a sequencer result into its storage row.
func launchRecord(result *launch.Result, walletAddr string) *storage.LaunchRecord {
	mint := ""
	if !result.Mint.IsZero() {
		mint = result.Mint.String()
	}
	return &storage.LaunchRecord{
		LaunchID:          result.LaunchID,
		Wallet:            walletAddr,
		Name:              result.Name,
		Symbol:            result.Symbol,
		Mint:              mint,
		ConfigKey:         result.ConfigKey,
		MetadataURI:       result.MetadataURI,
		LaunchURL:         result.LaunchURL,
		PartnerWallet:     result.PartnerWallet,
		FeeShareSignature: result.FeeShareSignature,
		Signature:         result.Signature,
		State:             string(result.State),
		BuyLamports:       int64(result.BuyLamports),
		Slot:              int64(result.Slot),
		CreatedAt:         result.StartedAt,
	}
}

// claimRecords flattens a claim report into one row per position.
func claimRecords(report *claim.Report, walletAddr string) []*storage.ClaimRecord {
	records := make([]*storage.ClaimRecord, 0, len(report.Results))
	for _, res := range report.Results {
		claimable := "0"
		if !res.Position.Claimable.IsNil() {
			claimable = res.Position.Claimable.String()
		}
		signatures := res.Signatures
		if signatures == nil {
			// A nil slice would land as SQL NULL in the signatures column.
			signatures = []string{}
		}
		record := &storage.ClaimRecord{
			Wallet:     walletAddr,
			Mint:       res.Position.Mint,
			Pool:       res.Position.Pool,
			Kind:       string(res.Position.Kind),
			Outcome:    string(res.Outcome),
			Claimable:  claimable,
			Signatures: signatures,
		}
		if res.Err != nil {
			record.ClaimError = res.Err.Error()
		}
		records = append(records, record)
	}
	return records
}
