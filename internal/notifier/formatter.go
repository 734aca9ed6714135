package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TrendScope/internal/model"
	"TrendScope/internal/recorder"
)

var ratingIcons = map[model.Rating]string{
	model.RatingExcellent: "🟢",
	model.RatingVeryGood:  "🟢",
	model.RatingGood:      "🟡",
	model.RatingFair:      "🟠",
	model.RatingPoor:      "🔴",
	model.RatingError:     "⚠️",
}

// FormatScoreReport formats one analysis into a Telegram message.
func FormatScoreReport(res *model.AnalysisResult) string {
	var b strings.Builder
	s := res.TotalScore

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(res.Symbol), res.AnalyzedAt.Format("2006-01-02")))
	if s.Rating == model.RatingError {
		b.WriteString(fmt.Sprintf("%s Analysis failed: %s\n", ratingIcons[model.RatingError], html.EscapeString(res.Equation)))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s <b>Score: %.2f</b> (%s)\n", ratingIcons[s.Rating], s.Score, s.Rating))
	b.WriteString(fmt.Sprintf("Raw: %.2f | Scale ×%.3f\n\n", s.RawScore, s.Scaling.Factor))

	trend := s.Components.Trend
	b.WriteString("📈 <b>Components:</b>\n")
	b.WriteString(fmt.Sprintf("  Trend: %.1f (%s, credibility %d/5)\n",
		trend.Score, trend.Details.Type, trend.Details.CredibilityLevel))
	b.WriteString(fmt.Sprintf("  Return: %.1f (%+.2f%%/yr)\n",
		s.Components.Return.Score, s.Components.Return.Value*100))
	b.WriteString(fmt.Sprintf("  Volatility: %.1f (%.2f%%/yr)\n\n",
		s.Components.Volatility.Score, s.Components.Volatility.Value*100))

	b.WriteString(fmt.Sprintf("R²: %.3f\n", res.RSquared))
	b.WriteString(fmt.Sprintf("<code>%s</code>\n", html.EscapeString(res.Equation)))
	if res.Benchmark.Source == model.BenchmarkFallback {
		b.WriteString("\n⚠️ Benchmark unavailable, reference values used\n")
	}
	return b.String()
}

// FormatRunSummary formats a watchlist run as one ranked line per symbol.
func FormatRunSummary(results []model.AnalysisResult, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>Watchlist scores</b> | %s\n\n", at.Format("2006-01-02")))
	if len(results) == 0 {
		b.WriteString("No symbols analyzed.\n")
		return b.String()
	}
	for _, r := range results {
		s := r.TotalScore
		if s.Rating == model.RatingError {
			b.WriteString(fmt.Sprintf("%s %s: error\n", ratingIcons[model.RatingError], html.EscapeString(r.Symbol)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s: %.2f %s (R² %.2f)\n",
			ratingIcons[s.Rating], html.EscapeString(r.Symbol), s.Score, s.Rating, r.RSquared))
	}
	return b.String()
}

// FormatCrossovers lists crossover events, most recent last.
func FormatCrossovers(symbol string, events []model.CrossoverEvent) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✂️ <b>%s crossovers</b>\n\n", html.EscapeString(symbol)))
	if len(events) == 0 {
		b.WriteString("None in range.\n")
		return b.String()
	}
	for _, e := range events {
		arrow := "⬆️"
		if e.Direction == model.CrossDown {
			arrow = "⬇️"
		}
		b.WriteString(fmt.Sprintf("%s %s @ %.2f (level %.2f)\n", arrow, e.Date.Format("2006-01-02"), e.Price, e.Value))
	}
	return b.String()
}

// FormatHistory formats recorded scores, newest first.
func FormatHistory(symbol string, records []recorder.ScoreRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕑 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	if len(records) == 0 {
		b.WriteString("No recorded analyses.\n")
		return b.String()
	}
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%s  %.2f %s\n", r.AnalyzedAt.Format("2006-01-02 15:04"), r.Score, r.Rating))
	}
	return b.String()
}
