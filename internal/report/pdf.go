package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/quantlab-io/quantsandbox/internal/types"
)

// Disclaimer appears on every generated report and in CLI output.
const Disclaimer = "This report is for educational purposes only and is not financial advice."

// Generator writes PDF reports for one ticker into an output directory.
// Charts are rendered to intermediate PNG files and embedded.
type Generator struct {
	symbol  string
	outDir  string
	plotter *Plotter
	now     func() time.Time
}

// NewGenerator creates a Generator writing into outDir, creating it if needed.
func NewGenerator(symbol, outDir string) (*Generator, error) {
	plotter, err := NewPlotter(symbol, outDir)
	if err != nil {
		return nil, err
	}

	return &Generator{
		symbol:  symbol,
		outDir:  outDir,
		plotter: plotter,
		now:     time.Now,
	}, nil
}

// BacktestReportName returns the timestamped filename used for a single
// backtest report of the generator's ticker.
func (g *Generator) BacktestReportName() string {
	return fmt.Sprintf("backtest_report_%s_%s.pdf", g.symbol, g.now().Format("20060102_150405"))
}

// ExplorationReportName returns the timestamped filename used for a grid
// search report of the generator's ticker.
func (g *Generator) ExplorationReportName() string {
	return fmt.Sprintf("exploration_report_%s_%s.pdf", g.symbol, g.now().Format("20060102_150405"))
}

// GenerateBacktestReport writes a report for a single strategy run: a
// summary page followed by the strategy and equity charts. Returns the
// written file path.
func (g *Generator) GenerateBacktestReport(result *types.StrategyResult, suggestion *types.Suggestion, riskFreeSource string) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Backtest Report %s", g.symbol), false)

	g.addTitlePage(pdf, "Backtest Report")
	g.addResultSummary(pdf, result, riskFreeSource)

	if suggestion != nil {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Suggestion", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("Action: %s    Position: %s", suggestion.Action, suggestion.State), "", 1, "L", false, 0, "")
	}

	if err := g.addCharts(pdf, result); err != nil {
		return "", err
	}

	return g.write(pdf, g.BacktestReportName())
}

// GenerateExplorationReport writes a report for a full grid search: an
// executive summary ranking every combination, then an analysis section
// per strategy family charting its best candidate.
func (g *Generator) GenerateExplorationReport(momentum, meanReversion []*types.StrategyResult, best *types.StrategyResult, riskFreeSource string) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Exploration Report %s", g.symbol), false)

	g.addTitlePage(pdf, "Strategy Exploration Report")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Combinations evaluated: %d", len(momentum)+len(meanReversion)), "", 1, "L", false, 0, "")

	if best != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Best strategy: %s (Sharpe %.4f)", best.Params.Label(), best.SharpeRatio), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	g.addResultTable(pdf, "Momentum Results", momentum)
	pdf.Ln(4)
	g.addResultTable(pdf, "Mean Reversion Results", meanReversion)

	if err := g.addFamilyAnalysis(pdf, "Momentum Analysis", momentum, riskFreeSource); err != nil {
		return "", err
	}

	if err := g.addFamilyAnalysis(pdf, "Mean Reversion Analysis", meanReversion, riskFreeSource); err != nil {
		return "", err
	}

	return g.write(pdf, g.ExplorationReportName())
}

// addFamilyAnalysis renders the analysis section of one strategy family:
// a summary of its best combination followed by that combination's
// strategy and equity charts.
func (g *Generator) addFamilyAnalysis(pdf *fpdf.Fpdf, title string, results []*types.StrategyResult, riskFreeSource string) error {
	best := bestOf(results)
	if best == nil {
		return nil
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
	g.addResultSummary(pdf, best, riskFreeSource)

	return g.addCharts(pdf, best)
}

// bestOf returns the result with the strictly highest Sharpe ratio,
// keeping the earliest on ties. Nil for an empty slice.
func bestOf(results []*types.StrategyResult) *types.StrategyResult {
	var best *types.StrategyResult

	for _, result := range results {
		if best == nil || result.SharpeRatio > best.SharpeRatio {
			best = result
		}
	}

	return best
}

func (g *Generator) addTitlePage(pdf *fpdf.Fpdf, title string) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Ticker: %s", g.symbol), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", g.now().Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, Disclaimer, "", "C", false)
	pdf.Ln(6)
}

func (g *Generator) addResultSummary(pdf *fpdf.Fpdf, result *types.StrategyResult, riskFreeSource string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, result.Params.Label(), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Final portfolio value: %.2f", result.FinalEquity()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Sharpe ratio: %.4f", result.SharpeRatio), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Max drawdown: %.2f%%", result.MaxDrawdown*100), "", 1, "L", false, 0, "")

	if riskFreeSource != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Risk free rate source: %s", riskFreeSource), "", 1, "L", false, 0, "")
	}
}

func (g *Generator) addResultTable(pdf *fpdf.Fpdf, title string, results []*types.StrategyResult) {
	if len(results) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 6, "Strategy", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Final Value", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Sharpe", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Max Drawdown", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, result := range results {
		pdf.CellFormat(80, 6, result.Params.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", result.FinalEquity()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.4f", result.SharpeRatio), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f%%", result.MaxDrawdown*100), "1", 1, "R", false, 0, "")
	}
}

func (g *Generator) addCharts(pdf *fpdf.Fpdf, result *types.StrategyResult) error {
	strategyPNG, err := g.plotter.PlotStrategy(result, fmt.Sprintf("strategy_%s.png", result.ID))
	if err != nil {
		return err
	}
	defer os.Remove(strategyPNG)

	equityPNG, err := g.plotter.PlotEquity(result, fmt.Sprintf("equity_%s.png", result.ID))
	if err != nil {
		return err
	}
	defer os.Remove(equityPNG)

	for _, png := range []string{strategyPNG, equityPNG} {
		pdf.AddPage()
		pdf.ImageOptions(png, 10, 30, 190, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	return nil
}

func (g *Generator) write(pdf *fpdf.Fpdf, name string) (string, error) {
	path := filepath.Join(g.outDir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
