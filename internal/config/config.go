package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ExploreConfig holds the parameter grids for the grid search.
type ExploreConfig struct {
	// Windows are the rolling mean window sizes to test.
	Windows []int `yaml:"windows" validate:"required,min=1,dive,gt=0"`
	// Thresholds are the mean reversion band widths to test.
	Thresholds []float64 `yaml:"thresholds" validate:"required,min=1,dive,gt=0,lt=1"`
}

// MetricsConfig holds the risk metric settings.
type MetricsConfig struct {
	// RiskFreeFallback is the annual rate used when the live fetch fails.
	RiskFreeFallback float64 `yaml:"risk_free_fallback" validate:"gte=0,lt=1"`
	// PeriodsPerYear is the annualization factor for the data frequency.
	PeriodsPerYear int `yaml:"periods_per_year" validate:"required,gt=0"`
}

// Config is the sandbox configuration.
type Config struct {
	// InitialCapital is the starting cash of the simulated portfolio.
	InitialCapital float64 `yaml:"initial_capital" validate:"required,gt=0"`
	// DataPath is the directory holding the DuckDB bar store.
	DataPath string `yaml:"data_path" validate:"required"`
	// ReportPath is the directory reports and plots are written to.
	ReportPath string `yaml:"report_path" validate:"required"`
	// Provider selects the market data provider: polygon or binance.
	Provider string `yaml:"provider" validate:"required,oneof=polygon binance"`
	// Explore holds the default parameter grids.
	Explore ExploreConfig `yaml:"explore"`
	// Metrics holds the risk metric settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// API keys come from the environment, not the config file.
	PolygonAPIKey string `yaml:"-"`
	OpenAIAPIKey  string `yaml:"-"`
	GeminiAPIKey  string `yaml:"-"`
}

// Default returns the configuration used when no config file is given.
// The parameter grids mirror the classic sandbox defaults.
func Default() Config {
	return Config{
		InitialCapital: 100,
		DataPath:       "data",
		ReportPath:     "reports",
		Provider:       "binance",
		Explore: ExploreConfig{
			Windows:    []int{10, 20, 30, 50},
			Thresholds: []float64{0.01, 0.02, 0.03, 0.05},
		},
		Metrics: MetricsConfig{
			RiskFreeFallback: 0.02,
			PeriodsPerYear:   252,
		},
	}
}

// Load reads configuration from the given yaml file, falling back to
// defaults for a missing path, and merges API keys from the environment.
// A .env file next to the binary is honored when present.
func Load(path string) (Config, error) {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.PolygonAPIKey = os.Getenv("POLYGON_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiAPIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	return ""
}
