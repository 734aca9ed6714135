package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"TrendScope/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(14)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

var ratingColors = map[model.Rating]lipgloss.Color{
	model.RatingExcellent: "#10B981",
	model.RatingVeryGood:  "#22C55E",
	model.RatingGood:      "#EAB308",
	model.RatingFair:      "#F59E0B",
	model.RatingPoor:      "#EF4444",
	model.RatingError:     "#EF4444",
}

func ratingStyle(r model.Rating) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ratingColors[r])
}

func field(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func renderAnalysis(res *model.AnalysisResult) string {
	var b strings.Builder
	s := res.TotalScore

	b.WriteString(field("Score", ratingStyle(s.Rating).Render(fmt.Sprintf("%.2f %s", s.Score, s.Rating))))
	if s.Rating == model.RatingError {
		b.WriteString(field("Reason", res.Equation))
		return titleStyle.Render(res.Symbol) + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
	}
	b.WriteString(field("Raw", fmt.Sprintf("%.2f (×%.3f vs benchmark %.2f)", s.RawScore, s.Scaling.Factor, s.Scaling.BenchmarkBase)))
	trend := s.Components.Trend
	b.WriteString(field("Trend", fmt.Sprintf("%.1f  %s, credibility %d/5", trend.Score, trend.Details.Type, trend.Details.CredibilityLevel)))
	b.WriteString(field("Return", fmt.Sprintf("%.1f  %+.2f%%/yr", s.Components.Return.Score, s.Components.Return.Value*100)))
	b.WriteString(field("Volatility", fmt.Sprintf("%.1f  %.2f%%/yr", s.Components.Volatility.Score, s.Components.Volatility.Value*100)))
	b.WriteString(field("R²", fmt.Sprintf("%.4f", res.RSquared)))
	b.WriteString(field("Fit", res.Equation))
	if n := len(res.Predictions); n > 0 {
		b.WriteString(field("Forecast", fmt.Sprintf("%.2f (%.2f - %.2f)", res.Predictions[n-1], res.LowerBand[n-1], res.UpperBand[n-1])))
	}
	if res.Benchmark.Source == model.BenchmarkFallback {
		b.WriteString(warnStyle.Render("benchmark unavailable, reference values used") + "\n")
	}
	return titleStyle.Render(res.Symbol) + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderRolling(symbol string, rows []model.WindowRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %10s %10s %10s %8s %8s %7s\n", "date", "close", "high", "low", "pos%", "retr%", "r2%"))
	for _, r := range rows {
		r2 := "-"
		if r.R2Pct != nil {
			r2 = fmt.Sprintf("%.1f", *r.R2Pct)
		}
		b.WriteString(fmt.Sprintf("%-10s %10.2f %10.2f %10.2f %8.1f %8.1f %7s\n",
			r.Date.Format(dateLayout), r.Close, r.High, r.Low, r.PricePositionPct, r.RetracementRatioPct, r2))
	}
	return titleStyle.Render(symbol+" rolling windows") + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderCrossovers(symbol string, events []model.CrossoverEvent) string {
	var b strings.Builder
	if len(events) == 0 {
		b.WriteString("no crossovers in range")
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %-4s  price %.2f  level %.2f", e.Date.Format(dateLayout), e.Direction, e.Price, e.Value)
		if e.Direction == model.CrossUp {
			line = upStyle.Render(line)
		} else {
			line = downStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return titleStyle.Render(symbol+" crossovers") + "\n" + panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
