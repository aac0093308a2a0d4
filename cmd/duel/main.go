package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockDuel/internal/advisor"
	"StockDuel/internal/analysis"
	"StockDuel/internal/collector"
	"StockDuel/internal/config"
	"StockDuel/internal/discovery"
	"StockDuel/internal/model"
	"StockDuel/internal/strategy"
)

var configPath string

// rootCmd is the base command for the StockDuel CLI
var rootCmd = &cobra.Command{
	Use:   "duel",
	Short: "Compare two stocks on growth, fundamentals and a composite score",
	Long: `StockDuel discovers a country's actively traded stocks, compares two of them
on normalized growth and six fundamental metrics, ranks them with a composite
score and asks a language model for a short written comparison.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config (default $CONFIG_PATH or "+config.DefaultPath+")")
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path, loads and validates it, and applies
// the logging settings.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	setupLogging(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func setupLogging(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if !pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// app holds the wired components shared by the subcommands.
type app struct {
	cfg        *config.Config
	discoverer *discovery.Discoverer
	analyzer   *analysis.Analyzer
}

type sources struct {
	metrics      collector.MetricsProvider
	screener     collector.Screener
	constituents collector.ConstituentSource
	namer        collector.Namer
}

func newSources(cfg *config.Config) sources {
	if cfg.DataSource.Name == "mock" {
		m := newOfflineMock()
		return sources{metrics: m, screener: m, constituents: m, namer: m}
	}
	y := collector.NewYahooProvider(cfg.Proxy, cfg.DataSource.Timeout, cfg.DataSource.RequestsPerSecond)
	w := collector.NewWikipediaIndex(cfg.Discovery.Indexes, cfg.Proxy)
	return sources{metrics: y, screener: y, constituents: w, namer: y}
}

// newOfflineMock serves a small fixed market for trying the tool without network access.
func newOfflineMock() *collector.MockProvider {
	return &collector.MockProvider{
		Listings: map[string][]collector.Listing{
			"most_actives": {
				{Name: "Apple Inc.", Symbol: "AAPL"},
				{Name: "Microsoft Corporation", Symbol: "MSFT"},
				{Name: "NVIDIA Corporation", Symbol: "NVDA"},
			},
		},
		Indexes: map[model.TickerSymbol][]model.TickerSymbol{
			"^NSEI": {"RELIANCE.NS", "TCS.NS", "INFY.NS"},
		},
		Names: map[model.TickerSymbol]string{
			"AAPL":        "Apple Inc.",
			"MSFT":        "Microsoft Corporation",
			"NVDA":        "NVIDIA Corporation",
			"RELIANCE.NS": "Reliance Industries Limited",
		},
	}
}

// newApp wires the components. withAdvice=false skips building the LLM client.
func newApp(ctx context.Context, cfg *config.Config, withAdvice bool) (*app, error) {
	ties, err := strategy.ParseTiePolicy(cfg.Analysis.TiePolicy)
	if err != nil {
		return nil, err
	}
	src := newSources(cfg)
	log.Debug().Str("data_source", src.metrics.Name()).Msg("data source ready")

	d := discovery.New(src.screener, src.constituents, src.namer, cfg.Discovery.Countries)
	d.Count = cfg.Discovery.ScreenerCount

	var adv analysis.Advisor
	if withAdvice {
		completer, err := advisor.NewCompleter(ctx, cfg.Advisor.Provider, cfg.Advisor.APIKey, cfg.Advisor.Model)
		if err != nil {
			// Missing credentials only cost the narrative.
			log.Warn().Err(err).Str("provider", cfg.Advisor.Provider).Msg("advisor disabled")
		} else if completer != nil {
			adv = advisor.New(completer, cfg.Advisor.Timeout)
		}
	}

	a := analysis.NewAnalyzer(
		collector.NewCollector(src.metrics, src.namer),
		strategy.NewComparator(ties),
		strategy.NewScorer(ties, cfg.Analysis.SignificanceThreshold),
		adv,
	)
	a.Parallel = cfg.Parallel()
	return &app{cfg: cfg, discoverer: d, analyzer: a}, nil
}
