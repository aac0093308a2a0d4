package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockDuel/internal/calculator"
	"StockDuel/internal/model"
)

// trendPoints is how many growth values the trend line shows.
const trendPoints = 5

// FormatReportMarkdown renders a report for the terminal.
func FormatReportMarkdown(r *model.Report) string {
	var b strings.Builder
	a, bb := r.A.Stock, r.B.Stock

	fmt.Fprintf(&b, "# %s vs %s\n\n", a.Label(), bb.Label())
	fmt.Fprintf(&b, "_%s (%s) vs %s (%s), %s, generated %s, run %s_\n\n",
		a.Label(), a.Symbol, bb.Label(), bb.Symbol, r.Period.Label(),
		r.GeneratedAt.Format("2006-01-02 15:04"), shortID(r.RunID))

	b.WriteString("## Growth of 100 invested\n\n")
	b.WriteString("| Stock | Trend | Total return | High | Low | Position in range |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, v := range []model.StockView{r.A, r.B} {
		g := summarizeGrowth(v)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", v.Stock.Label(), g.trend, g.total, g.high, g.low, g.position)
	}

	b.WriteString("\n## Financial metrics\n\n")
	fmt.Fprintf(&b, "| Metric | | %s | %s | Winner |\n", a.Label(), bb.Label())
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range r.Comparison.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Metric.Title(), row.Interpretation, row.ValueA, row.ValueB, rowWinner(r.Comparison, row))
	}
	fmt.Fprintf(&b, "\n**Overall winner:** %s\n", overallLine(r.Comparison))

	b.WriteString("\n## Investment score\n\n")
	b.WriteString("| Stock | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %.2f |\n", r.Scores.A.Name, r.Scores.A.Score)
	fmt.Fprintf(&b, "| %s | %.2f |\n", r.Scores.B.Name, r.Scores.B.Score)
	fmt.Fprintf(&b, "\n**Better investment:** %s\n", scoreLine(r.Scores))

	if r.Narrative != "" {
		b.WriteString("\n## Analysis\n\n")
		b.WriteString(r.Narrative)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatReportHTML renders a report as a Telegram HTML message.
func FormatReportHTML(r *model.Report) string {
	var b strings.Builder
	a, bb := r.A.Stock, r.B.Stock

	fmt.Fprintf(&b, "📊 <b>%s vs %s</b> | %s\n\n", Escape(a.Label()), Escape(bb.Label()), Escape(r.Period.Label()))

	b.WriteString("📈 <b>Growth of 100 invested</b>\n")
	for _, v := range []model.StockView{r.A, r.B} {
		g := summarizeGrowth(v)
		fmt.Fprintf(&b, "%s: %s (%s, range %s to %s)\n", Escape(v.Stock.Label()), Escape(g.trend), g.total, g.low, g.high)
	}

	b.WriteString("\n📋 <b>Financial metrics</b>\n")
	for _, row := range r.Comparison.Rows {
		fmt.Fprintf(&b, "• %s: %s vs %s → %s\n",
			row.Metric.Title(), Escape(row.ValueA), Escape(row.ValueB), Escape(rowWinner(r.Comparison, row)))
	}
	fmt.Fprintf(&b, "Overall winner: <b>%s</b>\n", Escape(overallLine(r.Comparison)))

	b.WriteString("\n🏆 <b>Investment score</b>\n")
	fmt.Fprintf(&b, "%s: %.2f | %s: %.2f\n", Escape(r.Scores.A.Name), r.Scores.A.Score, Escape(r.Scores.B.Name), r.Scores.B.Score)
	fmt.Fprintf(&b, "Better investment: <b>%s</b>\n", Escape(scoreLine(r.Scores)))

	if r.Narrative != "" {
		fmt.Fprintf(&b, "\n💬 <b>Analysis</b>\n%s\n", Escape(r.Narrative))
	}
	return b.String()
}

// FormatDirectory lists a discovery result, one company per line.
func FormatDirectory(country string, dir model.CompanyDirectory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>Stocks for %s</b> (%d)\n\n", Escape(country), len(dir))
	for _, name := range dir.Names() {
		fmt.Fprintf(&b, "%s: <code>%s</code>\n", Escape(name), Escape(string(dir[name])))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /compare AAPL MSFT [period]: compare two stocks (3mo, 6mo, 1y, 5y, 10y)\n" +
		"• /discover US: list active stocks of a country\n" +
		"• /help: show this message"
}

type growthSummary struct {
	trend, total, high, low, position string
}

func summarizeGrowth(v model.StockView) growthSummary {
	na := model.NotAvailable
	if v.Growth == nil || v.Range == nil {
		return growthSummary{trend: na, total: na, high: na, low: na, position: na}
	}
	var parts []string
	for _, p := range calculator.Sample(*v.Growth, trendPoints) {
		parts = append(parts, fmt.Sprintf("%.1f", p.Close))
	}
	g := growthSummary{
		trend:    strings.Join(parts, " → "),
		total:    fmt.Sprintf("%+.2f%%", v.Range.TotalReturn),
		high:     fmt.Sprintf("%.1f", v.Range.High),
		low:      fmt.Sprintf("%.1f", v.Range.Low),
		position: na,
	}
	if pos, err := calculator.Position(v.Growth.Last(), v.Range.High, v.Range.Low); err == nil {
		g.position = fmt.Sprintf("%.0f%%", pos*100)
	}
	return g
}

func rowWinner(c model.Comparison, row model.ComparisonRow) string {
	switch row.Winner {
	case model.WinnerA:
		return c.A.Label()
	case model.WinnerB:
		return c.B.Label()
	}
	return "-"
}

func overallLine(c model.Comparison) string {
	name := c.OverallName()
	if name == "" {
		name = "tie"
	}
	return fmt.Sprintf("%s (%d vs %d metrics)", name, c.WinsA, c.WinsB)
}

func scoreLine(s model.ScoreReport) string {
	name := s.WinnerName()
	if name == "" {
		name = "tie"
	}
	return fmt.Sprintf("%s, %s (difference %.2f)", name, s.Advantage, s.A.Difference)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Escape quotes text for a Telegram HTML message.
func Escape(s string) string { return html.EscapeString(s) }
