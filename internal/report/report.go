// Package report renders one day's usage summary for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/wintrackr/internal/store"
	"github.com/sadopc/wintrackr/internal/summary"
)

type Options struct {
	Width int
	// Plain disables styling and the chart, for pipes and files.
	Plain bool
	// TopTitles limits the titles listed under each process; 0 lists none.
	TopTitles int
	// History adds session counts from the history database when set.
	History []store.ProcessTotal
}

// Render formats s.
func Render(s *summary.Summary, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	rows := s.Sorted()
	counts := make(map[string]int, len(opts.History))
	for _, h := range opts.History {
		counts[h.ProcessName] = h.SessionCount
	}

	if opts.Plain {
		return renderPlain(s, rows, counts, opts)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Activity"), "  ", mutedStyle.Render(s.Day),
	)
	if len(rows) == 0 {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  No activity recorded for this day"),
		))
	}

	w := opts.Width - 8
	chart := renderChart(rows, w)
	table := renderTable(rows, counts, opts, w)
	total := accentStyle.Render("Total " + formatSeconds(s.GrandTotal()))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", chart, "", table, "", total,
	))
}

func renderChart(rows []summary.ProcessTotal, width int) string {
	if width < 20 {
		width = 20
	}
	chart := barchart.New(width, 10)

	var bars []barchart.BarData
	for i, r := range rows {
		minutes := float64(r.Total) / 60.0
		style := lipgloss.NewStyle().Foreground(colorFor(i))
		bars = append(bars, barchart.BarData{
			Label:  truncate(r.Name, 8),
			Values: []barchart.BarValue{{Name: r.Name, Value: minutes, Style: style}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

func renderTable(rows []summary.ProcessTotal, counts map[string]int, opts Options, w int) string {
	var lines []string
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %-24s %10s %7s %9s", "Process", "Duration", "Share", "Sessions")))
	lines = append(lines, mutedStyle.Render("  "+strings.Repeat("─", min(w-4, 54))))

	var grand int64
	for _, r := range rows {
		grand += r.Total
	}

	for i, r := range rows {
		dot := lipgloss.NewStyle().Foreground(colorFor(i)).Render("●")
		lines = append(lines, fmt.Sprintf("  %s %-22s %10s %7s %9s",
			dot, truncate(r.Name, 22), formatSeconds(r.Total), share(r.Total, grand), sessionCount(counts, r.Name),
		))
		for _, t := range topTitles(r, opts.TopTitles) {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("      %-38s %10s", truncate(titleOrPlaceholder(t.Title), 38), formatSeconds(t.Seconds))))
		}
	}
	return strings.Join(lines, "\n")
}

func renderPlain(s *summary.Summary, rows []summary.ProcessTotal, counts map[string]int, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Activity %s\n", s.Day)
	if len(rows) == 0 {
		b.WriteString("No activity recorded for this day\n")
		return b.String()
	}
	grand := s.GrandTotal()
	for _, r := range rows {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", r.Name, formatSeconds(r.Total), share(r.Total, grand), sessionCount(counts, r.Name))
		for _, t := range topTitles(r, opts.TopTitles) {
			fmt.Fprintf(&b, "\t%s\t%s\n", titleOrPlaceholder(t.Title), formatSeconds(t.Seconds))
		}
	}
	fmt.Fprintf(&b, "Total\t%s\n", formatSeconds(grand))
	return b.String()
}

func topTitles(r summary.ProcessTotal, n int) []summary.TitleTotal {
	if n <= 0 {
		return nil
	}
	if len(r.Titles) > n {
		return r.Titles[:n]
	}
	return r.Titles
}

func sessionCount(counts map[string]int, name string) string {
	if n, ok := counts[name]; ok {
		return fmt.Sprintf("%d", n)
	}
	return "-"
}

func share(part, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}

func titleOrPlaceholder(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func formatSeconds(secs int64) string {
	d := time.Duration(secs) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
