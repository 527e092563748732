package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quantlab-io/quantsandbox/internal/config"
	"github.com/quantlab-io/quantsandbox/internal/explorer"
	"github.com/quantlab-io/quantsandbox/internal/logger"
	"github.com/quantlab-io/quantsandbox/internal/metrics"
	"github.com/quantlab-io/quantsandbox/internal/report"
	"github.com/quantlab-io/quantsandbox/internal/store"
	"github.com/quantlab-io/quantsandbox/internal/suggest"
	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/quantlab-io/quantsandbox/pkg/marketdata"
	"github.com/quantlab-io/quantsandbox/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const defaultTicker = "BTC-USD"

func main() {
	cmd := &cli.Command{
		Name:  "quantsandbox",
		Usage: "Educational trading strategy sandbox",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the yaml configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			backtestCommand(),
			exploreCommand(),
			downloadCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func backtestCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "Run a single strategy backtest",
		Flags: append(rangeFlags(),
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   fmt.Sprintf("Strategy to run (%s, %s)", types.StrategyMomentum, types.StrategyMeanReversion),
				Value:   string(types.StrategyMomentum),
			},
			&cli.IntFlag{
				Name:    "window",
				Aliases: []string{"w"},
				Usage:   "Rolling mean window in bars",
				Value:   20,
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Mean reversion band width as a fraction of the mean",
				Value: 0.02,
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Write a PDF report with strategy and equity charts",
			},
		),
		Action: backtestAction,
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, appLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ticker, start, end := resolveRange(cmd)

	bars, err := fetchBars(ctx, cfg, appLogger, ticker, start, end)
	if err != nil {
		return err
	}

	rate, rateSource := metrics.ResolveRate(ctx, metrics.NewTreasuryYieldProvider(""), cfg.Metrics.RiskFreeFallback)
	fmt.Printf("Risk free rate: %.4f (%s)\n\n", rate, rateSource)

	gridExplorer, err := explorer.NewExplorer(ticker, bars, cfg.InitialCapital, rate, cfg.Metrics.PeriodsPerYear, appLogger)
	if err != nil {
		return err
	}

	params := types.StrategyParams{
		Kind:      types.StrategyKind(cmd.String("strategy")),
		Window:    int(cmd.Int("window")),
		Threshold: cmd.Float("threshold"),
	}

	result, err := gridExplorer.Evaluate(params)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printResult(result)

	suggestion := types.NewSuggestion(result)
	printSuggestion(suggestion)

	if cmd.Bool("report") {
		generator, err := report.NewGenerator(ticker, cfg.ReportPath)
		if err != nil {
			return err
		}

		path, err := generator.GenerateBacktestReport(result, &suggestion, rateSource)
		if err != nil {
			return err
		}

		fmt.Printf("\nReport written to %s\n", path)
	}

	return nil
}

func exploreCommand() *cli.Command {
	return &cli.Command{
		Name:  "explore",
		Usage: "Grid search momentum and mean reversion parameters",
		Flags: append(rangeFlags(),
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Write a PDF report covering the full grid",
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: "Write a yaml run summary to the given path",
			},
		),
		Action: exploreAction,
	}
}

func exploreAction(ctx context.Context, cmd *cli.Command) error {
	cfg, appLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ticker, start, end := resolveRange(cmd)

	bars, err := fetchBars(ctx, cfg, appLogger, ticker, start, end)
	if err != nil {
		return err
	}

	rate, rateSource := metrics.ResolveRate(ctx, metrics.NewTreasuryYieldProvider(""), cfg.Metrics.RiskFreeFallback)
	fmt.Printf("Risk free rate: %.4f (%s)\n\n", rate, rateSource)

	gridExplorer, err := explorer.NewExplorer(ticker, bars, cfg.InitialCapital, rate, cfg.Metrics.PeriodsPerYear, appLogger, explorer.WithProgressBar())
	if err != nil {
		return err
	}

	momentum, bestMomentum, err := gridExplorer.ExploreMomentum(cfg.Explore.Windows)
	if err != nil {
		return fmt.Errorf("momentum exploration failed: %w", err)
	}

	meanReversion, bestMeanReversion, err := gridExplorer.ExploreMeanReversion(cfg.Explore.Windows, cfg.Explore.Thresholds)
	if err != nil {
		return fmt.Errorf("mean reversion exploration failed: %w", err)
	}

	printResultTable("Momentum", momentum)
	printResultTable("Mean Reversion", meanReversion)

	best := explorer.Winner(bestMomentum, bestMeanReversion)

	fmt.Printf("Best momentum:       %s (Sharpe %.4f)\n", bestMomentum.Params.Label(), bestMomentum.SharpeRatio)
	fmt.Printf("Best mean reversion: %s (Sharpe %.4f)\n", bestMeanReversion.Params.Label(), bestMeanReversion.SharpeRatio)
	fmt.Printf("Overall winner:      %s\n\n", best.Params.Label())

	suggestion := types.NewSuggestion(best)
	printSuggestion(suggestion)

	if path := cmd.String("summary"); path != "" {
		summary := types.RunSummary{
			ID:        uuid.New().String(),
			Timestamp: time.Now().UTC(),
			Symbol:    ticker,
			Results:   append(append([]types.StrategyResult{}, momentum...), meanReversion...),
			Best: map[types.StrategyKind]types.StrategyResult{
				types.StrategyMomentum:      *bestMomentum,
				types.StrategyMeanReversion: *bestMeanReversion,
			},
			Suggestion: suggestion,
		}

		if err := summary.Write(path); err != nil {
			return err
		}

		fmt.Printf("\nRun summary written to %s\n", path)
	}

	if cmd.Bool("report") {
		generator, err := report.NewGenerator(ticker, cfg.ReportPath)
		if err != nil {
			return err
		}

		path, err := generator.GenerateExplorationReport(resultPointers(momentum), resultPointers(meanReversion), best, rateSource)
		if err != nil {
			return err
		}

		fmt.Printf("\nReport written to %s\n", path)
	}

	return nil
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical bars into the local store",
		Flags: append(rangeFlags(),
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.ProviderPolygon, provider.ProviderBinance),
			},
		),
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, appLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	if providerFlag := cmd.String("provider"); providerFlag != "" {
		cfg.Provider = providerFlag
	}

	ticker, start, end := resolveRange(cmd)

	barStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer barStore.Close()

	client, err := newMarketClient(cfg, barStore)
	if err != nil {
		return err
	}

	bars, err := client.Download(ctx, marketdata.FetchParams{
		Ticker:    ticker,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return downloadFailure(ctx, cfg, appLogger, ticker, err)
	}

	count, err := barStore.Count(ticker)
	if err != nil {
		return err
	}

	fmt.Printf("\nDownloaded %d bars for %s (%s to %s), %d stored in total\n",
		len(bars), ticker, bars[0].Time.Format("2006-01-02"), bars[len(bars)-1].Time.Format("2006-01-02"), count)

	return nil
}

// setup loads the configuration and builds the application logger shared
// by every subcommand.
func setup(cmd *cli.Command) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}

	var appLogger *logger.Logger
	if cmd.Bool("verbose") {
		appLogger, err = logger.NewDevelopmentLogger()
	} else {
		appLogger, err = logger.NewLogger()
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, appLogger, nil
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "ticker",
			Aliases: []string{"t"},
			Usage:   fmt.Sprintf("Ticker symbol. Defaults to %s.", defaultTicker),
		},
		&cli.TimestampFlag{
			Name:  "start",
			Usage: "Start date in `YYYY-MM-DD` format. Defaults to one year ago.",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.TimestampFlag{
			Name:  "end",
			Usage: "End date in `YYYY-MM-DD` format. Defaults to today.",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
	}
}

// resolveRange applies the default ticker and one year date range when the
// corresponding flags are omitted.
func resolveRange(cmd *cli.Command) (ticker string, start, end time.Time) {
	ticker = cmd.String("ticker")
	if ticker == "" {
		ticker = defaultTicker
		fmt.Printf("No ticker given, defaulting to %s\n", ticker)
	}

	end = cmd.Timestamp("end")
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}

	start = cmd.Timestamp("start")
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}

	return ticker, start, end
}

func openStore(cfg config.Config) (*store.DuckDBStore, error) {
	if err := os.MkdirAll(cfg.DataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return store.NewDuckDBStore(filepath.Join(cfg.DataPath, "bars.duckdb"))
}

func newMarketClient(cfg config.Config, barStore store.BarStore) (*marketdata.Client, error) {
	return marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(cfg.Provider),
		PolygonAPIKey: cfg.PolygonAPIKey,
	}, barStore, true)
}

// fetchBars loads the series for the ticker, preferring the local store.
// On a download failure the advisor chain proposes alternative tickers.
func fetchBars(ctx context.Context, cfg config.Config, appLogger *logger.Logger, ticker string, start, end time.Time) ([]types.PriceBar, error) {
	barStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer barStore.Close()

	client, err := newMarketClient(cfg, barStore)
	if err != nil {
		return nil, err
	}

	bars, err := client.Fetch(ctx, marketdata.FetchParams{
		Ticker:    ticker,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, downloadFailure(ctx, cfg, appLogger, ticker, err)
	}

	fmt.Printf("Loaded %d bars for %s\n", len(bars), ticker)

	return bars, nil
}

// downloadFailure wraps a provider error with alternative ticker
// suggestions from the advisor chain.
func downloadFailure(ctx context.Context, cfg config.Config, appLogger *logger.Logger, ticker string, cause error) error {
	chain := suggest.NewChain(appLogger,
		suggest.NewGeminiAdvisor(cfg.GeminiAPIKey, ""),
		suggest.NewOpenAIAdvisor(cfg.OpenAIAPIKey),
		suggest.NewPatternAdvisor(),
	)

	suggestions, err := chain.SuggestTickers(ctx, ticker)
	if err != nil || len(suggestions) == 0 {
		if err != nil && !errors.Is(err, suggest.ErrNoSuggestions) {
			appLogger.Warn("ticker suggestion failed", zap.Error(err))
		}

		return fmt.Errorf("failed to load data for %s: %w", ticker, cause)
	}

	return fmt.Errorf("failed to load data for %s (did you mean %s?): %w",
		ticker, strings.Join(suggestions, ", "), cause)
}

func printResult(result *types.StrategyResult) {
	fmt.Printf("%s on %s\n", result.Params.Label(), result.Symbol)
	fmt.Printf("  Final portfolio value: %.2f\n", result.FinalEquity())
	fmt.Printf("  Sharpe ratio:          %.4f\n", result.SharpeRatio)
	fmt.Printf("  Max drawdown:          %.2f%%\n", result.MaxDrawdown*100)
}

func printResultTable(title string, results []types.StrategyResult) {
	fmt.Printf("%s results:\n", title)
	fmt.Printf("  %-36s %12s %10s %14s\n", "Strategy", "Final Value", "Sharpe", "Max Drawdown")

	for i := range results {
		result := &results[i]
		fmt.Printf("  %-36s %12.2f %10.4f %13.2f%%\n",
			result.Params.Label(), result.FinalEquity(), result.SharpeRatio, result.MaxDrawdown*100)
	}

	fmt.Println()
}

func printSuggestion(suggestion types.Suggestion) {
	fmt.Printf("Suggestion: %s (current position: %s)\n", suggestion.Action, suggestion.State)
	fmt.Println(report.Disclaimer)
}

func resultPointers(results []types.StrategyResult) []*types.StrategyResult {
	pointers := make([]*types.StrategyResult, len(results))
	for i := range results {
		pointers[i] = &results[i]
	}

	return pointers
}
