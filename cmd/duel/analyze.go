package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockDuel/internal/analysis"
	"StockDuel/internal/model"
	"StockDuel/internal/notifier"
)

var (
	analyzePeriod   string
	analyzeNoAdvice bool
	analyzeRaw      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL_A SYMBOL_B",
	Short: "Compare two stocks",
	Long: `Fetch price history and fundamentals of two stocks, compare them metric by
metric, compute the composite investment score and, unless --no-advice is set,
ask the configured language model for a written comparison.

Example usage:
  duel analyze AAPL MSFT
  duel analyze RELIANCE.NS TCS.NS --period 5y
  duel analyze AAPL MSFT --no-advice --raw`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "History window: 3mo, 6mo, 1y, 5y, 10y (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoAdvice, "no-advice", false, "Skip the language model analysis")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "Print raw markdown instead of rendering it")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	period := cfg.Analysis.DefaultPeriod
	if analyzePeriod != "" {
		if period, err = model.ParsePeriod(analyzePeriod); err != nil {
			return err
		}
	}

	a, err := newApp(cmd.Context(), cfg, !analyzeNoAdvice)
	if err != nil {
		return err
	}
	report, err := a.analyzer.Run(cmd.Context(), analysis.Request{
		A:          model.TickerSymbol(args[0]),
		B:          model.TickerSymbol(args[1]),
		Period:     period,
		SkipAdvice: analyzeNoAdvice,
	})
	if err != nil {
		return err
	}

	md := notifier.FormatReportMarkdown(report)
	if analyzeRaw {
		_, err = fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable, printing raw")
		_, err = fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		log.Warn().Err(err).Msg("render markdown failed, printing raw")
		out = md
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
