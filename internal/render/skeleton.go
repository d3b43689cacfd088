package render

import (
	"strings"

	"github.com/cardflow-sh/cardflow/internal/catalog"
)

// Skeleton renders a placeholder card shown while a tool's input is still
// streaming. The shape hints at the card to come: charts get a plot-shaped
// block, tables get row lines, everything else a generic shimmer.
func (r *Renderer) Skeleton(name catalog.Name) string {
	header := r.styles.Dim.Render(string(name) + " …")
	var body string
	switch name {
	case catalog.BarChartTool, catalog.LineChartTool, catalog.PieChartTool:
		body = r.skeletonLines([]int{10, 24, 16, 30, 8})
	case catalog.DataTableTool, catalog.StatisticsSummaryTool:
		body = r.skeletonLines([]int{36, 36, 36, 36})
	default:
		body = r.skeletonLines([]int{28, 36, 20})
	}
	return r.styles.Card.Width(r.width - 2).Render(header + "\n" + body)
}

func (r *Renderer) skeletonLines(widths []int) string {
	limit := innerWidth(r.width)
	var b strings.Builder
	for i, w := range widths {
		if w > limit {
			w = limit
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.styles.Skeleton.Render(strings.Repeat("░", w)))
	}
	return b.String()
}
