// cmd/launchpilot/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"launchpilot/internal/app"
	"launchpilot/internal/claim"
	"launchpilot/internal/export"
	"launchpilot/internal/feesplit"
	"launchpilot/internal/launch"
)

// withApp builds and starts the application for one command
// invocation and tears it down afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	configPath, _ := cmd.Flags().GetString("config")
	a, err := app.New(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Start(cmd.Context()); err != nil {
		return err
	}
	return fn(cmd.Context(), a)
}

func newLaunchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a token with metadata, optional fee share and an initial buy",
		RunE:  runLaunch,
	}

	cmd.Flags().String("name", "", "token name (required)")
	cmd.Flags().String("symbol", "", "token ticker symbol (required)")
	cmd.Flags().String("description", "", "token description")
	cmd.Flags().String("image-url", "", "token image URL")
	cmd.Flags().String("image-file", "", "token image file path")
	cmd.Flags().String("twitter", "", "Twitter / X link")
	cmd.Flags().String("telegram", "", "Telegram link")
	cmd.Flags().String("website", "", "website link")
	cmd.Flags().String("fee-share", "", "partner X handle for fee sharing")
	cmd.Flags().Float64("buy-sol", 0, "initial buy in SOL (defaults to config)")
	cmd.Flags().Float64("creator-pct", 0, "creator share of launchpad fees in percent")
	cmd.Flags().Int("creator-bps", 0, "creator share in basis points")
	cmd.Flags().Int("partner-bps", 0, "partner share in basis points")
	cmd.Flags().Bool("json", false, "print the launch result as JSON")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")

	return cmd
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	split, err := splitFromFlags(flags)
	if err != nil {
		return err
	}

	params := launch.Params{Split: split}
	params.Name, _ = flags.GetString("name")
	params.Symbol, _ = flags.GetString("symbol")
	params.Description, _ = flags.GetString("description")
	params.ImageURL, _ = flags.GetString("image-url")
	params.Twitter, _ = flags.GetString("twitter")
	params.Telegram, _ = flags.GetString("telegram")
	params.Website, _ = flags.GetString("website")
	params.FeeShareHandle, _ = flags.GetString("fee-share")

	if imagePath, _ := flags.GetString("image-file"); imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("failed to read image file: %w", err)
		}
		params.ImageData = data
		params.ImageName = filepath.Base(imagePath)
	}

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if flags.Changed("buy-sol") {
			params.BuySOL, _ = flags.GetFloat64("buy-sol")
		} else {
			params.BuySOL = a.DefaultBuySOL()
		}

		result, launchErr := a.Launch(ctx, params)
		if result != nil {
			if asJSON, _ := flags.GetBool("json"); asJSON {
				printJSON(result)
			} else {
				printLaunchResult(result)
			}
		}
		return launchErr
	})
}

// splitFromFlags resolves the fee split from whichever share flags
// were actually set; unset flags stay nil so the default applies.
func splitFromFlags(flags *pflag.FlagSet) (feesplit.Split, error) {
	var creatorPct *float64
	if flags.Changed("creator-pct") {
		v, _ := flags.GetFloat64("creator-pct")
		creatorPct = &v
	}
	var creatorBps, partnerBps *int
	if flags.Changed("creator-bps") {
		v, _ := flags.GetInt("creator-bps")
		creatorBps = &v
	}
	if flags.Changed("partner-bps") {
		v, _ := flags.GetInt("partner-bps")
		partnerBps = &v
	}
	return feesplit.Resolve(creatorPct, creatorBps, partnerBps)
}

func printLaunchResult(result *launch.Result) {
	fmt.Printf("state:      %s\n", result.State)
	if !result.Mint.IsZero() {
		fmt.Printf("mint:       %s\n", result.Mint)
	}
	if result.ConfigKey != "" {
		fmt.Printf("config:     %s\n", result.ConfigKey)
	}
	if result.MetadataURI != "" {
		fmt.Printf("metadata:   %s\n", result.MetadataURI)
	}
	if result.PartnerWallet != "" {
		fmt.Printf("partner:    %s\n", result.PartnerWallet)
	}
	if result.Signature != "" {
		fmt.Printf("signature:  %s\n", result.Signature)
	}
	if !result.Pool.IsZero() {
		fmt.Printf("pool:       %s\n", result.Pool)
	}
	if result.LaunchURL != "" {
		fmt.Printf("page:       %s\n", result.LaunchURL)
	}
	fmt.Printf("took:       %s\n", result.Duration().Round(time.Millisecond))
}

func newClaimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim accumulated creator fees across all positions",
		RunE:  runClaim,
	}
	cmd.Flags().String("mint", "", "claim only this token's positions")
	return cmd
}

func runClaim(cmd *cobra.Command, _ []string) error {
	mint, _ := cmd.Flags().GetString("mint")

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		report, claimErr := a.Claim(ctx, mint)
		if report != nil {
			printClaimReport(report)
		}
		return claimErr
	})
}

func printClaimReport(report *claim.Report) {
	if len(report.Results) == 0 {
		fmt.Println("no claimable positions")
		return
	}
	for _, res := range report.Results {
		fmt.Printf("%-8s %s (%s)", res.Outcome, res.Position.Mint, res.Position.Kind)
		if res.Err != nil {
			fmt.Printf("  %v", res.Err)
		}
		fmt.Println()
		for _, sig := range res.Signatures {
			fmt.Printf("         %s\n", sig)
		}
	}
	fmt.Printf("claimed %d, partial %d, failed %d of %d positions\n",
		report.Claimed(), report.Partial(), report.Failed(), len(report.Results))
}

func newPositionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List claimable fee positions without claiming them",
		RunE:  runPositions,
	}
	cmd.Flags().String("mint", "", "list only this token's positions")
	cmd.Flags().Bool("curve", false, "read bonding-curve state from chain for each position")
	return cmd
}

func runPositions(cmd *cobra.Command, _ []string) error {
	mint, _ := cmd.Flags().GetString("mint")
	curve, _ := cmd.Flags().GetBool("curve")

	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if curve {
			return runCurvePositions(ctx, a, mint)
		}

		positions, err := a.Positions(ctx, mint)
		if err != nil {
			return err
		}
		if len(positions) == 0 {
			fmt.Println("no claimable positions")
			return nil
		}
		for _, p := range positions {
			fmt.Printf("%-10s %-8s %s  claimable %s\n", orUnknown(p.Symbol), p.Kind, p.Mint, p.Claimable)
		}
		// The advertised sum is informational; claims settle per position.
		fmt.Printf("advertised total: %s base units across %d positions\n",
			claim.TotalClaimable(positions), len(positions))
		return nil
	})
}

func runCurvePositions(ctx context.Context, a *app.App, mint string) error {
	curves, err := a.CurvePositions(ctx, mint)
	if err != nil {
		return err
	}
	if len(curves) == 0 {
		fmt.Println("no positions or pools found")
		return nil
	}
	for _, cp := range curves {
		fmt.Printf("%-10s %-8s %s\n", orUnknown(cp.Position.Symbol), cp.Position.Kind, cp.Position.Mint)
		fmt.Printf("  pool:    %s\n", cp.Position.Pool)
		if cp.OnChain == nil {
			fmt.Println("  curve:   no curve account (settled on the AMM)")
			continue
		}
		base, quote := cp.OnChain.CreatorClaimable()
		fmt.Printf("  fees:    %s base / %s quote unclaimed\n", base, quote)
		fmt.Printf("  reserve: %d base / %d quote\n", cp.OnChain.BaseReserve, cp.OnChain.QuoteReserve)
		if cp.OnChain.Migrated() {
			fmt.Println("  curve:   migrated to the AMM")
		}
		if cp.Config != nil {
			fmt.Printf("  split:   creator %d bps / partner %d bps\n",
				cp.Config.CreatorFeeBps, cp.Config.PartnerFeeBps)
		}
	}
	return nil
}

func orUnknown(symbol string) string {
	if symbol == "" {
		return "?"
	}
	return symbol
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export launch and claim history to report files",
	}
	cmd.AddCommand(newExportLaunchesCommand())
	cmd.AddCommand(newExportClaimsCommand())
	cmd.AddCommand(newExportDailyCommand())
	return cmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "csv", "report format: csv or json")
	cmd.Flags().String("from", "", "include records at or after this time (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("to", "", "include records up to this time (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("mint", "", "filter by token mint")
	cmd.Flags().String("out", "", "output directory (defaults to config report_dir)")
}

func newExportLaunchesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launches",
		Short: "Export launch history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := exportOptions(cmd)
			if err != nil {
				return err
			}
			options.StateFilter, _ = cmd.Flags().GetString("state")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				path, err := a.ExportLaunches(ctx, options)
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			})
		},
	}
	addExportFlags(cmd)
	cmd.Flags().String("state", "", "filter by final state (CONFIRMED, FAILED)")
	return cmd
}

func newExportClaimsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Export claim history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := exportOptions(cmd)
			if err != nil {
				return err
			}
			options.OutcomeFilter, _ = cmd.Flags().GetString("outcome")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				path, err := a.ExportClaims(ctx, options)
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			})
		},
	}
	addExportFlags(cmd)
	cmd.Flags().String("outcome", "", "filter by outcome (claimed, partial, failed)")
	return cmd
}

func newExportDailyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Export the combined daily activity report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			date := time.Now()
			if value, _ := cmd.Flags().GetString("date"); value != "" {
				parsed, err := time.Parse("2006-01-02", value)
				if err != nil {
					return fmt.Errorf("unparseable date %q (want YYYY-MM-DD)", value)
				}
				date = parsed
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				path, err := a.ExportDailyReport(ctx, date)
				if err != nil {
					return err
				}
				if path == "" {
					fmt.Println("no activity on that day")
					return nil
				}
				fmt.Println(path)
				return nil
			})
		},
	}
	cmd.Flags().String("date", "", "day to report (YYYY-MM-DD, defaults to today)")
	return cmd
}

func exportOptions(cmd *cobra.Command) (export.Options, error) {
	flags := cmd.Flags()
	options := export.Options{}

	format, _ := flags.GetString("format")
	switch export.Format(format) {
	case export.FormatCSV, export.FormatJSON:
		options.Format = export.Format(format)
	default:
		return options, fmt.Errorf("unknown format %q (want csv or json)", format)
	}

	from, _ := flags.GetString("from")
	start, _, err := parseTimeFlag(from)
	if err != nil {
		return options, err
	}
	options.StartTime = start

	to, _ := flags.GetString("to")
	end, dateOnly, err := parseTimeFlag(to)
	if err != nil {
		return options, err
	}
	if dateOnly {
		// A bare end date means the whole day, inclusive.
		end = end.Add(24*time.Hour - time.Second)
	}
	options.EndTime = end

	options.MintFilter, _ = flags.GetString("mint")
	options.OutputDir, _ = flags.GetString("out")
	return options, nil
}

// parseTimeFlag accepts a bare date or a full RFC3339 timestamp. The
// second return value reports the bare-date form.
func parseTimeFlag(value string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, nil
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, true, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unparseable time %q (want YYYY-MM-DD or RFC3339)", value)
	}
	return ts, false, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
