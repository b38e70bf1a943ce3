package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	StartTime    time.Time
	EndTime      time.Time
	PairFilter   string // Filter by pair id
	SideFilter   types.Side
	SourceFilter launchpad.TradeSource
	OutputDir    string
}

// TradeExporter writes trade history to files
type TradeExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewTradeExporter creates a new trade exporter
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	return &TradeExporter{
		logger: logger,
		now:    time.Now,
	}
}

// ExportTrades exports trades based on the provided options
func (te *TradeExporter) ExportTrades(trades []launchpad.Trade, options ExportOptions) (string, error) {
	filtered := te.filterTrades(trades, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no trades match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].ID < filtered[j].ID
	})

	outputPath := filepath.Join(options.OutputDir, te.generateFilename(options))
	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = te.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = te.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (te *TradeExporter) filterTrades(trades []launchpad.Trade, options ExportOptions) []launchpad.Trade {
	var filtered []launchpad.Trade
	for _, trade := range trades {
		if !options.StartTime.IsZero() && trade.Timestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && !trade.Timestamp.Before(options.EndTime) {
			continue
		}
		if options.PairFilter != "" && trade.PairID != options.PairFilter {
			continue
		}
		if options.SideFilter != 0 && trade.Side != options.SideFilter {
			continue
		}
		if options.SourceFilter != "" && trade.Source != options.SourceFilter {
			continue
		}
		filtered = append(filtered, trade)
	}
	return filtered
}

// generateFilename creates a filename based on export options
func (te *TradeExporter) generateFilename(options ExportOptions) string {
	timestamp := te.now().Format("20060102_150405")

	prefix := "trades_all"
	if options.SideFilter.Valid() {
		prefix = "trades_" + strings.ToLower(options.SideFilter.String())
	}
	if options.PairFilter != "" {
		prefix += "_" + strings.NewReplacer("/", "-").Replace(options.PairFilter)
	}
	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// CSVHeaders returns the column names of a CSV export.
func CSVHeaders() []string {
	return []string{
		"id", "height", "timestamp", "pair_id", "source", "side", "price",
		"amount", "quote_amount", "buyer", "seller", "order_id", "maker_order_id",
		"maker_fee", "taker_fee",
	}
}

// CSVRecord renders one trade as a CSV row.
func CSVRecord(tr launchpad.Trade) []string {
	return []string{
		strconv.FormatUint(tr.ID, 10),
		strconv.FormatUint(tr.Height, 10),
		tr.Timestamp.UTC().Format(time.RFC3339),
		tr.PairID,
		string(tr.Source),
		tr.Side.String(),
		tr.Price.String(),
		tr.Amount.String(),
		tr.QuoteAmount.String(),
		tr.Buyer,
		tr.Seller,
		strconv.FormatUint(tr.OrderID, 10),
		strconv.FormatUint(tr.MakerOrderID, 10),
		tr.MakerFee.String(),
		tr.TakerFee.String(),
	}
}

func (te *TradeExporter) exportToCSV(trades []launchpad.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, trade := range trades {
		if err := writer.Write(CSVRecord(trade)); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (te *TradeExporter) exportToJSON(trades []launchpad.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time         `json:"export_time"`
		TradeCount int               `json:"trade_count"`
		Trades     []launchpad.Trade `json:"trades"`
		Summary    ExportSummary     `json:"summary"`
	}{
		ExportTime: te.now(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    CalculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportSummary contains summary statistics for exported trades.
// Volumes are in base units.
type ExportSummary struct {
	TotalTrades int       `json:"total_trades"`
	BuyCount    int       `json:"buy_count"`
	SellCount   int       `json:"sell_count"`
	CurveTrades int       `json:"curve_trades"`
	BookTrades  int       `json:"book_trades"`
	UniquePairs int       `json:"unique_pairs"`
	UniqueUsers int       `json:"unique_users"`
	BuyVolume   math.Int  `json:"buy_volume"`
	SellVolume  math.Int  `json:"sell_volume"`
	TotalVolume math.Int  `json:"total_volume"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// CalculateSummary aggregates trades ordered oldest first.
func CalculateSummary(trades []launchpad.Trade) ExportSummary {
	summary := ExportSummary{
		TotalTrades: len(trades),
		BuyVolume:   math.ZeroInt(),
		SellVolume:  math.ZeroInt(),
		TotalVolume: math.ZeroInt(),
	}
	if len(trades) == 0 {
		return summary
	}
	summary.StartDate = trades[0].Timestamp
	summary.EndDate = trades[len(trades)-1].Timestamp

	pairs := make(map[string]struct{})
	users := make(map[string]struct{})
	for _, trade := range trades {
		pairs[trade.PairID] = struct{}{}
		switch trade.Source {
		case launchpad.SourceCurve:
			summary.CurveTrades++
		case launchpad.SourceBook:
			summary.BookTrades++
		}
		if trade.Side == types.SideBuy {
			summary.BuyCount++
			summary.BuyVolume = summary.BuyVolume.Add(trade.QuoteAmount)
			users[trade.Buyer] = struct{}{}
		} else {
			summary.SellCount++
			summary.SellVolume = summary.SellVolume.Add(trade.QuoteAmount)
			users[trade.Seller] = struct{}{}
		}
	}
	summary.UniquePairs = len(pairs)
	summary.UniqueUsers = len(users)
	summary.TotalVolume = summary.BuyVolume.Add(summary.SellVolume)
	return summary
}

// DailyReport represents a daily trading report
type DailyReport struct {
	Date            time.Time         `json:"date"`
	TradeCount      int               `json:"trade_count"`
	Summary         ExportSummary     `json:"summary"`
	HourlyBreakdown []HourlyStats     `json:"hourly_breakdown"`
	Trades          []launchpad.Trade `json:"trades"`
}

// HourlyStats represents trading statistics for an hour
type HourlyStats struct {
	Hour       int      `json:"hour"`
	TradeCount int      `json:"trade_count"`
	BuyCount   int      `json:"buy_count"`
	SellCount  int      `json:"sell_count"`
	Volume     math.Int `json:"volume"`
}

// ExportDailyReport writes the UTC day containing date as one JSON report.
func (te *TradeExporter) ExportDailyReport(trades []launchpad.Trade, date time.Time, outputDir string) (string, error) {
	date = date.UTC()
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	filtered := te.filterTrades(trades, ExportOptions{
		StartTime: startOfDay,
		EndTime:   startOfDay.Add(24 * time.Hour),
	})
	if len(filtered) == 0 {
		te.logger.Info("No trades for daily report", zap.Time("date", startOfDay))
		return "", nil
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, fmt.Sprintf("daily_report_%s.json", startOfDay.Format("20060102")))
	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	report := DailyReport{
		Date:            startOfDay,
		TradeCount:      len(filtered),
		Trades:          filtered,
		Summary:         CalculateSummary(filtered),
		HourlyBreakdown: calculateHourlyBreakdown(filtered),
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	te.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("trades", len(filtered)))

	return outputPath, nil
}

func calculateHourlyBreakdown(trades []launchpad.Trade) []HourlyStats {
	hourlyMap := make(map[int]*HourlyStats)
	for _, trade := range trades {
		hour := trade.Timestamp.UTC().Hour()
		stats, exists := hourlyMap[hour]
		if !exists {
			stats = &HourlyStats{Hour: hour, Volume: math.ZeroInt()}
			hourlyMap[hour] = stats
		}
		stats.TradeCount++
		stats.Volume = stats.Volume.Add(trade.QuoteAmount)
		if trade.Side == types.SideBuy {
			stats.BuyCount++
		} else {
			stats.SellCount++
		}
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, exists := hourlyMap[hour]; exists {
			breakdown = append(breakdown, *stats)
		}
	}
	return breakdown
}
