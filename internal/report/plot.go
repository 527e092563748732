// Package report renders strategy charts and PDF summaries from computed
// results. It only reads StrategyResult data; failures here never affect
// the backtest itself.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/quantlab-io/quantsandbox/internal/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	priceColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	meanColor  = color.RGBA{B: 255, A: 255}
	bandColor  = color.RGBA{R: 255, A: 128}
	buyColor   = color.RGBA{G: 160, A: 255}
	sellColor  = color.RGBA{R: 200, A: 255}
)

// Plotter renders charts for one ticker into an output directory.
type Plotter struct {
	symbol string
	outDir string
}

// NewPlotter creates a Plotter writing into outDir, creating it if needed.
func NewPlotter(symbol, outDir string) (*Plotter, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	return &Plotter{symbol: symbol, outDir: outDir}, nil
}

// PlotStrategy draws price, rolling mean, bands (when present) and the
// buy/sell markers of a result. Returns the written file path.
func (p *Plotter) PlotStrategy(result *types.StrategyResult, name string) (string, error) {
	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("%s - %s", p.symbol, result.Params.Label())
	plt.X.Label.Text = "Date"
	plt.Y.Label.Text = "Price"
	plt.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	price := make(plotter.XYs, 0, len(result.Rows))
	mean := make(plotter.XYs, 0, len(result.Rows))
	lower := make(plotter.XYs, 0, len(result.Rows))
	upper := make(plotter.XYs, 0, len(result.Rows))

	for _, row := range result.Rows {
		x := float64(row.Time.Unix())
		price = append(price, plotter.XY{X: x, Y: row.Close})

		if !row.Warmup {
			mean = append(mean, plotter.XY{X: x, Y: row.RollingMean})

			if result.Params.Kind == types.StrategyMeanReversion {
				lower = append(lower, plotter.XY{X: x, Y: row.LowerBand})
				upper = append(upper, plotter.XY{X: x, Y: row.UpperBand})
			}
		}
	}

	if err := addLine(plt, price, priceColor, fmt.Sprintf("%s Price", p.symbol)); err != nil {
		return "", err
	}

	if err := addLine(plt, mean, meanColor, "Rolling Mean"); err != nil {
		return "", err
	}

	if len(lower) > 0 {
		if err := addLine(plt, lower, bandColor, "Lower Band"); err != nil {
			return "", err
		}

		if err := addLine(plt, upper, bandColor, "Upper Band"); err != nil {
			return "", err
		}
	}

	if err := p.addTradeMarkers(plt, result, func(row types.SignalRow) float64 { return row.Close }); err != nil {
		return "", err
	}

	path := filepath.Join(p.outDir, name)
	if err := plt.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save strategy plot: %w", err)
	}

	return path, nil
}

// PlotEquity draws the portfolio value curve of a result with buy/sell
// markers. Returns the written file path.
func (p *Plotter) PlotEquity(result *types.StrategyResult, name string) (string, error) {
	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("%s - Portfolio Evolution - %s", p.symbol, result.Params.Label())
	plt.X.Label.Text = "Date"
	plt.Y.Label.Text = "Portfolio Value"
	plt.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	curve := make(plotter.XYs, 0, len(result.Equity))
	for _, point := range result.Equity {
		curve = append(curve, plotter.XY{X: float64(point.Time.Unix()), Y: point.Value})
	}

	if err := addLine(plt, curve, meanColor, "Portfolio Value"); err != nil {
		return "", err
	}

	equityAt := make(map[int64]float64, len(result.Equity))
	for _, point := range result.Equity {
		equityAt[point.Time.Unix()] = point.Value
	}

	if err := p.addTradeMarkers(plt, result, func(row types.SignalRow) float64 {
		return equityAt[row.Time.Unix()]
	}); err != nil {
		return "", err
	}

	path := filepath.Join(p.outDir, name)
	if err := plt.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save equity plot: %w", err)
	}

	return path, nil
}

func (p *Plotter) addTradeMarkers(plt *plot.Plot, result *types.StrategyResult, yValue func(types.SignalRow) float64) error {
	buys := make(plotter.XYs, 0)
	sells := make(plotter.XYs, 0)

	for _, row := range result.Rows {
		switch row.Position {
		case types.PositionBuy:
			buys = append(buys, plotter.XY{X: float64(row.Time.Unix()), Y: yValue(row)})
		case types.PositionSell:
			sells = append(sells, plotter.XY{X: float64(row.Time.Unix()), Y: yValue(row)})
		}
	}

	if len(buys) > 0 {
		scatter, err := plotter.NewScatter(buys)
		if err != nil {
			return fmt.Errorf("failed to build buy markers: %w", err)
		}

		scatter.GlyphStyle.Color = buyColor
		scatter.GlyphStyle.Shape = draw.PyramidGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(4)
		plt.Add(scatter)
		plt.Legend.Add("Buy", scatter)
	}

	if len(sells) > 0 {
		scatter, err := plotter.NewScatter(sells)
		if err != nil {
			return fmt.Errorf("failed to build sell markers: %w", err)
		}

		scatter.GlyphStyle.Color = sellColor
		scatter.GlyphStyle.Shape = draw.CrossGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(4)
		plt.Add(scatter)
		plt.Legend.Add("Sell", scatter)
	}

	return nil
}

func addLine(plt *plot.Plot, xys plotter.XYs, lineColor color.Color, label string) error {
	if len(xys) == 0 {
		return nil
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to build line %q: %w", label, err)
	}

	line.LineStyle.Color = lineColor
	plt.Add(line)
	plt.Legend.Add(label, line)

	return nil
}
