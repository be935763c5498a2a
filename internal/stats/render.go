package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handlens/handlens/ev"
	"github.com/handlens/handlens/history"
)

// Static styles for the session summary
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// Render formats the session as a bordered summary for terminal output.
func (s *Session) Render() string {
	if s.Actions == 0 {
		return labelStyle.Render("no analyzed actions")
	}

	lines := []string{
		titleStyle.Render("SESSION SUMMARY"),
		"",
		row("Hands", fmt.Sprintf("%d", s.Hands)),
		row("Hero actions", fmt.Sprintf("%d", s.Actions)),
		row("Faults", fmt.Sprintf("%d", s.Faults)),
		row("Confidence", fmt.Sprintf("%.2f", s.MeanConfidence())),
		"",
		sectionStyle.Render("EV (bb per action)"),
		row("Mean", fmt.Sprintf("%+.3f", s.MeanEV())),
		row("Median", fmt.Sprintf("%+.3f", s.MedianEV())),
		row("Std dev", fmt.Sprintf("%.3f", s.EVStdDev())),
		row("Std error", fmt.Sprintf("%.3f", s.EVStdError())),
	}

	low, high := s.EVConfidenceInterval95()
	lines = append(lines,
		row("95% CI", fmt.Sprintf("[%+.3f, %+.3f]", low, high)),
		row("P5/P25/P75/P95", fmt.Sprintf("%+.2f / %+.2f / %+.2f / %+.2f",
			s.EVPercentile(0.05), s.EVPercentile(0.25),
			s.EVPercentile(0.75), s.EVPercentile(0.95))),
		"",
		sectionStyle.Render("Verdicts"),
	)

	for v := ev.VerdictPositive; v <= ev.VerdictNegative; v++ {
		count := fmt.Sprintf("%d (%.0f%%)", s.VerdictCount(v), s.VerdictShare(v)*100)
		lines = append(lines, row(v.String(), verdictStyle(v).Render(count)))
	}
	lines = append(lines,
		row("Mean delta", fmt.Sprintf("%.3f bb", s.MeanDelta())),
		"",
		sectionStyle.Render("By street"),
		labelStyle.Render(fmt.Sprintf("%-8s %8s %12s %10s", "street", "actions", "mean delta", "mean ev")),
	)

	for st := history.Preflop; st <= history.River; st++ {
		b := s.Streets[st]
		if b.Actions == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-8s %8d %12.3f %10.3f",
			st.String(), b.Actions, s.StreetMeanDelta(st), s.StreetMeanEV(st)))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("%-16s", label)), value)
}

func verdictStyle(v ev.Verdict) lipgloss.Style {
	switch v {
	case ev.VerdictPositive:
		return positiveStyle
	case ev.VerdictNegative:
		return negativeStyle
	default:
		return neutralStyle
	}
}
