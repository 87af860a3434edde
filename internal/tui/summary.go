package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"recast/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		valueWidth = max(valueWidth, lipgloss.Width(row.Value))
	}

	hline := dimStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value)))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// SummaryRows flattens a batch summary for RenderSummary. labels maps format
// ids to display labels; ids without one are shown as-is.
func SummaryRows(s processor.Summary, labels map[string]string) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Inputs", Value: fmt.Sprint(s.Inputs)},
	}

	ids := make([]string, 0, len(s.Succeeded))
	for id := range s.Succeeded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rows = append(rows, SummaryRow{Label: labelFor(id, labels), Value: fmt.Sprintf("%d ok", s.Succeeded[id])})
	}

	for _, sk := range s.Skipped {
		label := sk.Label
		if label == "" {
			label = labelFor(sk.Format, labels)
		}
		rows = append(rows, SummaryRow{Label: label, Value: fmt.Sprintf("%d skipped (%s)", sk.Count, sk.Reason)})
	}

	rows = append(rows,
		SummaryRow{Label: "Failures", Value: fmt.Sprint(s.Failed())},
		SummaryRow{Label: "Duration", Value: s.Duration.Round(time.Millisecond).String()},
	)
	return rows
}

// RenderFailures lists every failed job, one per line. Empty when nothing
// failed.
func RenderFailures(failures []processor.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	lines := []string{errStyle.Render(fmt.Sprintf("%d job(s) failed:", len(failures)))}
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			labelStyle.Render(f.Input),
			warnStyle.Render("["+f.Format+"]"),
			dimStyle.Render(f.Reason)))
	}
	return strings.Join(lines, "\n")
}

// RenderNotice styles a one-line informational message, such as a degraded
// codec tier.
func RenderNotice(msg string) string {
	return warnStyle.Render("! ") + labelStyle.Render(msg)
}

// RenderDone styles the closing line of a run.
func RenderDone(msg string) string {
	return okStyle.Render("✓ ") + labelStyle.Render(msg)
}

// RenderTable draws rows under headers with a rounded border.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func labelFor(id string, labels map[string]string) string {
	if l, ok := labels[id]; ok && l != "" {
		return l
	}
	return id
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
