package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/cardflow-sh/cardflow/internal/catalog"
)

// maxBarWidth bounds the plotted portion of a chart row so labels and
// values fit beside it at narrow widths.
const maxBarWidth = 40

func (r *Renderer) barWidth() int {
	w := innerWidth(r.width) / 2
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (r *Renderer) barChart(p *catalog.BarChart) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	b.WriteString(r.plotBars(p.Data))
	b.WriteString(r.axisCaption(p.XAxisLabel, p.YAxisLabel))
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) lineChart(p *catalog.LineChart) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	// Terminal line charts read best as a labeled sparkline per point.
	b.WriteString(r.plotBars(p.Data))
	b.WriteString(r.axisCaption(p.XAxisLabel, p.YAxisLabel))
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) pieChart(p *catalog.PieChart) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")

	var total float64
	for _, d := range p.Data {
		if d.Value > 0 {
			total += d.Value
		}
	}
	labelW := labelWidth(p.Data)
	for _, d := range p.Data {
		pct := 0.0
		if total > 0 && d.Value > 0 {
			pct = d.Value / total * 100
		}
		bar := r.styles.Bar.Render(strings.Repeat("█", scaled(pct, 100, r.barWidth())))
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			pad(d.Label, labelW), bar, r.styles.Dim.Render(fmt.Sprintf("%.1f%%", pct))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) plotBars(data []catalog.DataPoint) string {
	var b strings.Builder
	var maxVal float64
	for _, d := range data {
		if d.Value > maxVal {
			maxVal = d.Value
		}
	}
	labelW := labelWidth(data)
	for _, d := range data {
		bar := r.styles.Bar.Render(strings.Repeat("█", scaled(d.Value, maxVal, r.barWidth())))
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			pad(d.Label, labelW), bar, r.styles.Dim.Render(formatValue(d.Value))))
	}
	return b.String()
}

func (r *Renderer) axisCaption(x, y string) string {
	var parts []string
	if x != "" {
		parts = append(parts, "x: "+x)
	}
	if y != "" {
		parts = append(parts, "y: "+y)
	}
	if len(parts) == 0 {
		return ""
	}
	return r.styles.Dim.Render(strings.Join(parts, "  ")) + "\n"
}

// scaled maps value onto [0, width] bar cells. Non-positive values and a
// zero maximum plot as an empty bar rather than dividing by zero.
func scaled(value, maxVal float64, width int) int {
	if value <= 0 || maxVal <= 0 {
		return 0
	}
	n := int(value / maxVal * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

func labelWidth(data []catalog.DataPoint) int {
	w := 0
	for _, d := range data {
		if lw := lipgloss.Width(d.Label); lw > w {
			w = lw
		}
	}
	if w > 20 {
		w = 20
	}
	return w
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
