package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"launchpilot/internal/storage"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options configures the export behavior
type Options struct {
	Format        Format
	StartTime     time.Time
	EndTime       time.Time
	MintFilter    string // Filter by token mint
	StateFilter   string // Filter launches by final state
	OutcomeFilter string // Filter claims by outcome
	OutputDir     string
}

// Exporter writes launch and claim history to report files
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new history exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger,
	}
}

// ExportLaunches exports launch records based on the provided options
func (e *Exporter) ExportLaunches(records []*storage.LaunchRecord, options Options) (string, error) {
	filtered := e.filterLaunches(records, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no launches match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	filename := e.generateFilename("launches", options.StateFilter, options.MintFilter, options.Format)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = writeCSV(outputPath, launchCSVHeaders(), filtered, launchToCSV)
	case FormatJSON:
		err = e.exportLaunchesJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	e.logger.Info("Launches exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// ExportClaims exports claim records based on the provided options
func (e *Exporter) ExportClaims(records []*storage.ClaimRecord, options Options) (string, error) {
	filtered := e.filterClaims(records, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no claims match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	filename := e.generateFilename("claims", options.OutcomeFilter, options.MintFilter, options.Format)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = writeCSV(outputPath, claimCSVHeaders(), filtered, claimToCSV)
	case FormatJSON:
		err = e.exportClaimsJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	e.logger.Info("Claims exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterLaunches applies filters to the launch list
func (e *Exporter) filterLaunches(records []*storage.LaunchRecord, options Options) []*storage.LaunchRecord {
	var filtered []*storage.LaunchRecord

	for _, r := range records {
		if !options.StartTime.IsZero() && r.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && r.CreatedAt.After(options.EndTime) {
			continue
		}
		if options.MintFilter != "" && r.Mint != options.MintFilter {
			continue
		}
		if options.StateFilter != "" && r.State != options.StateFilter {
			continue
		}

		filtered = append(filtered, r)
	}

	return filtered
}

// filterClaims applies filters to the claim list
func (e *Exporter) filterClaims(records []*storage.ClaimRecord, options Options) []*storage.ClaimRecord {
	var filtered []*storage.ClaimRecord

	for _, r := range records {
		if !options.StartTime.IsZero() && r.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && r.CreatedAt.After(options.EndTime) {
			continue
		}
		if options.MintFilter != "" && r.Mint != options.MintFilter {
			continue
		}
		if options.OutcomeFilter != "" && r.Outcome != options.OutcomeFilter {
			continue
		}

		filtered = append(filtered, r)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (e *Exporter) generateFilename(kind, filter, mint string, format Format) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := kind + "_all"
	if filter != "" {
		prefix = fmt.Sprintf("%s_%s", kind, filter)
	}

	if mint != "" {
		short := mint
		if len(short) > 8 {
			short = short[:8]
		}
		prefix += "_" + short
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, format)
}

// exportLaunchesJSON exports launches to JSON format with a summary
func (e *Exporter) exportLaunchesJSON(records []*storage.LaunchRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime  time.Time               `json:"export_time"`
		LaunchCount int                     `json:"launch_count"`
		Launches    []*storage.LaunchRecord `json:"launches"`
		Summary     LaunchSummary           `json:"summary"`
	}{
		ExportTime:  time.Now(),
		LaunchCount: len(records),
		Launches:    records,
		Summary:     e.summarizeLaunches(records),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// exportClaimsJSON exports claims to JSON format with a summary
func (e *Exporter) exportClaimsJSON(records []*storage.ClaimRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time              `json:"export_time"`
		ClaimCount int                    `json:"claim_count"`
		Claims     []*storage.ClaimRecord `json:"claims"`
		Summary    ClaimSummary           `json:"summary"`
	}{
		ExportTime: time.Now(),
		ClaimCount: len(records),
		Claims:     records,
		Summary:    e.summarizeClaims(records),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// LaunchSummary contains summary statistics for exported launches
type LaunchSummary struct {
	TotalLaunches int       `json:"total_launches"`
	Confirmed     int       `json:"confirmed"`
	Failed        int       `json:"failed"`
	WithFeeShare  int       `json:"with_fee_share"`
	UniqueMints   int       `json:"unique_mints"`
	TotalBuySOL   string    `json:"total_buy_sol"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// summarizeLaunches calculates summary statistics for the export
func (e *Exporter) summarizeLaunches(records []*storage.LaunchRecord) LaunchSummary {
	summary := LaunchSummary{
		TotalLaunches: len(records),
		TotalBuySOL:   "0",
	}

	if len(records) == 0 {
		return summary
	}

	summary.StartDate = records[0].CreatedAt
	summary.EndDate = records[len(records)-1].CreatedAt

	mintSet := make(map[string]bool)
	totalBuy := decimal.Zero

	for _, r := range records {
		mintSet[r.Mint] = true

		switch r.State {
		case "CONFIRMED":
			summary.Confirmed++
		case "FAILED":
			summary.Failed++
		}

		if r.PartnerWallet != "" {
			summary.WithFeeShare++
		}

		totalBuy = totalBuy.Add(decimal.New(r.BuyLamports, -9))
	}

	summary.UniqueMints = len(mintSet)
	summary.TotalBuySOL = totalBuy.String()

	return summary
}

// ClaimSummary contains summary statistics for exported claims
type ClaimSummary struct {
	TotalPositions  int       `json:"total_positions"`
	Claimed         int       `json:"claimed"`
	Partial         int       `json:"partial"`
	Failed          int       `json:"failed"`
	TotalSignatures int       `json:"total_signatures"`
	UniqueMints     int       `json:"unique_mints"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}

// summarizeClaims calculates summary statistics for the export
func (e *Exporter) summarizeClaims(records []*storage.ClaimRecord) ClaimSummary {
	summary := ClaimSummary{
		TotalPositions: len(records),
	}

	if len(records) == 0 {
		return summary
	}

	summary.StartDate = records[0].CreatedAt
	summary.EndDate = records[len(records)-1].CreatedAt

	mintSet := make(map[string]bool)

	for _, r := range records {
		mintSet[r.Mint] = true
		summary.TotalSignatures += len(r.Signatures)

		switch r.Outcome {
		case "claimed":
			summary.Claimed++
		case "partial":
			summary.Partial++
		case "failed":
			summary.Failed++
		}
	}

	summary.UniqueMints = len(mintSet)

	return summary
}

// DailyReport represents one day of launch and claim activity
type DailyReport struct {
	Date            time.Time               `json:"date"`
	LaunchCount     int                     `json:"launch_count"`
	ClaimCount      int                     `json:"claim_count"`
	LaunchSummary   LaunchSummary           `json:"launch_summary"`
	ClaimSummary    ClaimSummary            `json:"claim_summary"`
	HourlyBreakdown []HourlyStats           `json:"hourly_breakdown"`
	Launches        []*storage.LaunchRecord `json:"launches"`
	Claims          []*storage.ClaimRecord  `json:"claims"`
}

// HourlyStats represents launch activity within one hour
type HourlyStats struct {
	Hour        int     `json:"hour"`
	LaunchCount int     `json:"launch_count"`
	ClaimCount  int     `json:"claim_count"`
	VolumeSOL   float64 `json:"volume_sol"`
}

// ExportDailyReport exports a summary report for a single day
func (e *Exporter) ExportDailyReport(launches []*storage.LaunchRecord, claims []*storage.ClaimRecord, date time.Time, outputDir string) (string, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	options := Options{StartTime: startOfDay, EndTime: endOfDay}
	dayLaunches := e.filterLaunches(launches, options)
	dayClaims := e.filterClaims(claims, options)

	if len(dayLaunches) == 0 && len(dayClaims) == 0 {
		e.logger.Info("No activity for daily report", zap.Time("date", startOfDay))
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("daily_report_%s.json", startOfDay.Format("20060102"))
	outputPath := filepath.Join(outputDir, filename)

	report := DailyReport{
		Date:            startOfDay,
		LaunchCount:     len(dayLaunches),
		ClaimCount:      len(dayClaims),
		LaunchSummary:   e.summarizeLaunches(dayLaunches),
		ClaimSummary:    e.summarizeClaims(dayClaims),
		HourlyBreakdown: e.calculateHourlyBreakdown(dayLaunches, dayClaims),
		Launches:        dayLaunches,
		Claims:          dayClaims,
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	e.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("launches", len(dayLaunches)),
		zap.Int("claims", len(dayClaims)))

	return outputPath, nil
}

// calculateHourlyBreakdown calculates per-hour activity statistics
func (e *Exporter) calculateHourlyBreakdown(launches []*storage.LaunchRecord, claims []*storage.ClaimRecord) []HourlyStats {
	hourlyMap := make(map[int]*HourlyStats)

	hourOf := func(ts time.Time) *HourlyStats {
		hour := ts.Hour()
		stats, exists := hourlyMap[hour]
		if !exists {
			stats = &HourlyStats{Hour: hour}
			hourlyMap[hour] = stats
		}
		return stats
	}

	for _, r := range launches {
		stats := hourOf(r.CreatedAt)
		stats.LaunchCount++
		stats.VolumeSOL += float64(r.BuyLamports) / 1e9
	}
	for _, r := range claims {
		hourOf(r.CreatedAt).ClaimCount++
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, exists := hourlyMap[hour]; exists {
			breakdown = append(breakdown, *stats)
		}
	}

	return breakdown
}
