package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockDuel/internal/analysis"
	"StockDuel/internal/model"
	"StockDuel/internal/notifier"
)

// Pair is one watched comparison.
type Pair struct {
	A      model.TickerSymbol `yaml:"a" validate:"required"`
	B      model.TickerSymbol `yaml:"b" validate:"required"`
	Period model.Period       `yaml:"period"`
}

// Sender delivers an HTML message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Runner executes one analysis.
type Runner interface {
	Run(ctx context.Context, req analysis.Request) (*model.Report, error)
}

// Discoverer lists a country's stocks.
type Discoverer interface {
	Discover(ctx context.Context, country string) model.CompanyDirectory
}

// Scheduler re-runs the watched pairs on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Analyzer   Runner
	Discoverer Discoverer
	Notifier   Sender
	Pairs      []Pair
	Period     model.Period
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Runner, d Discoverer, n Sender, pairs []Pair, period model.Period) *Scheduler {
	if period == "" {
		period = model.Period1Year
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Analyzer:   a,
		Discoverer: d,
		Notifier:   n,
		Pairs:      pairs,
		Period:     period,
		Ctx:        ctx,
	}
}

// Register adds the watch task.
func (s *Scheduler) Register(watchCron string) error {
	if _, err := s.Cron.AddFunc(watchCron, s.RunWatchNow); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("pairs", len(s.Pairs)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunWatchNow analyzes every watched pair from scratch and sends each report.
func (s *Scheduler) RunWatchNow() {
	log.Info().Msg("running watch task")
	for _, p := range s.Pairs {
		if s.Ctx.Err() != nil {
			return
		}
		period := p.Period
		if period == "" {
			period = s.Period
		}
		s.trySend(s.compare(s.Ctx, p.A, p.B, period))
	}
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/compare@MyBot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/compare":
		if len(args) < 2 || len(args) > 3 {
			return "Usage: /compare AAPL MSFT [period]"
		}
		period := s.Period
		if len(args) == 3 {
			p, err := model.ParsePeriod(args[2])
			if err != nil {
				return notifier.Escape(err.Error())
			}
			period = p
		}
		return s.compare(ctx, model.TickerSymbol(args[0]), model.TickerSymbol(args[1]), period)
	case "/discover":
		if len(args) != 1 {
			return "Usage: /discover US"
		}
		country := strings.ToUpper(args[0])
		return notifier.FormatDirectory(country, s.Discoverer.Discover(ctx, country))
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) compare(ctx context.Context, a, b model.TickerSymbol, period model.Period) string {
	report, err := s.Analyzer.Run(ctx, analysis.Request{A: a, B: b, Period: period})
	if err != nil {
		var inputErr *analysis.InputError
		if errors.As(err, &inputErr) {
			return "⚠️ " + notifier.Escape(inputErr.Error())
		}
		log.Error().Err(err).Str("a", string(a)).Str("b", string(b)).Msg("analysis failed")
		return "❌ analysis failed: " + notifier.Escape(err.Error())
	}
	return notifier.FormatReportHTML(report)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
