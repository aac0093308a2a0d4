package main

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockDuel/internal/notifier"
	"StockDuel/internal/scheduler"
)

var watchRunOnStart bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Send scheduled comparisons to Telegram and answer chat commands",
	Long: `Re-run every pair listed under schedule.pairs on the schedule.watch_cron
schedule and send the reports to the configured Telegram chat. The bot also
answers /compare, /discover and /help until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateWatch(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

		sched := scheduler.NewScheduler(ctx, a.analyzer, a.discoverer, tn, cfg.Schedule.Pairs, cfg.Analysis.DefaultPeriod)
		if err := sched.Register(cfg.Schedule.WatchCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		if watchRunOnStart {
			go sched.RunWatchNow()
		}

		log.Info().Str("cron", cfg.Schedule.WatchCron).Msg("StockDuel is running, press Ctrl+C to stop")
		<-ctx.Done()
		log.Info().Msg("shutdown signal received, stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchRunOnStart, "run-now", false, "Run the watched pairs once at startup")
}
