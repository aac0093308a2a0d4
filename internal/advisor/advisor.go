package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"StockDuel/internal/model"
)

// Completer is a single non-streaming text completion call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

const systemPrompt = `You are a financial analyst comparing two publicly traded stocks for a retail investor.
Use only the metrics provided. Explain what each metric says about the companies, point out
missing data, and finish with a short, balanced conclusion. Do not give personalised advice.`

// Advisor turns two metric sets into a natural-language comparison.
type Advisor struct {
	completer Completer
	timeout   time.Duration
}

// New creates an Advisor on top of completer. timeout <= 0 means no
// deadline beyond the caller's context.
func New(completer Completer, timeout time.Duration) *Advisor {
	return &Advisor{completer: completer, timeout: timeout}
}

// Advise returns the analysis text. It never fails: a completer error is
// returned as "Error generating analysis: <reason>".
func (a *Advisor) Advise(ctx context.Context, nameA string, metricsA model.MetricSet, nameB string, metricsB model.MetricSet) string {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.completer.Complete(ctx, systemPrompt, UserPrompt(nameA, metricsA, nameB, metricsB))
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty response from %s", a.completer.Name())
	}
	if err != nil {
		log.Warn().Err(err).Str("provider", a.completer.Name()).Msg("advisor failed")
		return ErrorText(err)
	}
	return strings.TrimSpace(text)
}

// ErrorText is the fixed form an advisory failure is displayed as.
func ErrorText(err error) string {
	return fmt.Sprintf("Error generating analysis: %v", err)
}

// UserPrompt lists both stocks' metrics in display form.
func UserPrompt(nameA string, metricsA model.MetricSet, nameB string, metricsB model.MetricSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare %s and %s.\n", nameA, nameB)
	writeMetrics(&b, nameA, metricsA)
	writeMetrics(&b, nameB, metricsB)
	b.WriteString("\nWhich one looks like the better investment based on these numbers, and why?")
	return b.String()
}

func writeMetrics(b *strings.Builder, name string, ms model.MetricSet) {
	fmt.Fprintf(b, "\n%s:\n", name)
	for _, m := range model.MetricOrder {
		fmt.Fprintf(b, "- %s: %s\n", m.Title(), ms.Get(m).Display(m))
	}
}
