package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"socialdash/internal/models"
)

const maxChartBars = 10

var chartColors = []lipgloss.Color{"39", "82", "214", "205", "141"}

// BarChart creates a horizontal bar chart
func BarChart(label string, value, max float64, width int, color lipgloss.Color) string {
	if max == 0 {
		max = value
	}

	percentage := 0.0
	if max != 0 {
		percentage = value / max
	}
	if percentage > 1 {
		percentage = 1
	}

	filledWidth := int(float64(width) * percentage)
	if filledWidth < 0 {
		filledWidth = 0
	}
	if filledWidth > width {
		filledWidth = width
	}

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return fmt.Sprintf("%s %s%s %s",
		label,
		barStyle.Render(filled),
		emptyStyle.Render(empty),
		formatNumber(value),
	)
}

// Sparkline creates a simple sparkline from values
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	for _, v := range values {
		var idx int
		if hi == lo {
			idx = len(chars) / 2
		} else {
			idx = int((v - lo) / (hi - lo) * float64(len(chars)-1))
		}
		result.WriteRune(chars[idx])
	}
	return result.String()
}

// ResultChart draws bars for the first numeric column of rows, labelled by
// the first text column. It returns "" when the result has nothing to plot.
func ResultChart(rows []models.Row, width int) string {
	if len(rows) == 0 {
		return ""
	}
	labelCol, valueCol := chartColumns(rows[0])
	if valueCol < 0 {
		return ""
	}

	n := len(rows)
	if n > maxChartBars {
		n = maxChartBars
	}

	labels := make([]string, n)
	values := make([]float64, n)
	labelWidth := 0
	var max float64
	for i := 0; i < n; i++ {
		v, _ := toFloat(rows[i].Values[valueCol])
		values[i] = v
		if v > max {
			max = v
		}
		if labelCol >= 0 {
			labels[i] = truncate(fmt.Sprint(rows[i].Values[labelCol]), 24)
		} else {
			labels[i] = fmt.Sprintf("#%d", i+1)
		}
		if w := lipgloss.Width(labels[i]); w > labelWidth {
			labelWidth = w
		}
	}

	barWidth := width - labelWidth - 14
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(rows[0].Columns[valueCol]))
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		label := labels[i] + strings.Repeat(" ", labelWidth-lipgloss.Width(labels[i]))
		b.WriteString(BarChart(label, values[i], max, barWidth, chartColors[i%len(chartColors)]))
		b.WriteString("\n")
	}
	if len(rows) > 1 {
		all := make([]float64, 0, len(rows))
		for _, r := range rows {
			if v, ok := toFloat(r.Values[valueCol]); ok {
				all = append(all, v)
			}
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("trend " + Sparkline(all)))
		b.WriteString("\n")
	}
	return b.String()
}

// chartColumns picks the first text column and first numeric column of row.
// Identifier columns are never plotted.
func chartColumns(row models.Row) (label, value int) {
	label, value = -1, -1
	for i, c := range row.Columns {
		if i >= len(row.Values) {
			break
		}
		if _, ok := toFloat(row.Values[i]); ok && value < 0 && !isIdentifier(c) {
			value = i
			continue
		}
		if _, ok := row.Values[i].(string); ok && label < 0 {
			label = i
		}
	}
	return label, value
}

func isIdentifier(column string) bool {
	return column == "id" || strings.HasSuffix(column, "_id")
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
