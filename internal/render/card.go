// Package render turns settled tool outputs into terminal cards. Rendering
// is a pure function of the payload and the width: re-rendering the same
// output yields the same card.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/cardflow-sh/cardflow/internal/catalog"
)

// Renderer renders tool outputs as cards at a fixed width.
type Renderer struct {
	styles Styles
	md     *markdownRenderer
	width  int
}

// New creates a renderer for the given terminal width.
func New(width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	return &Renderer{
		styles: DefaultStyles(),
		md:     newMarkdownRenderer(innerWidth(width)),
		width:  width,
	}
}

// SetWidth adjusts the render width, typically on terminal resize.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 || width == r.width {
		return
	}
	r.width = width
	r.md.UpdateWidth(innerWidth(width))
}

func innerWidth(width int) int {
	w := width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// Card renders a settled tool output. A name outside the catalog falls back
// to a generic card showing the raw payload, so one unexpected tool never
// breaks the conversation view.
func (r *Renderer) Card(name catalog.Name, output json.RawMessage) string {
	body, ok := r.cardBody(name, output)
	if !ok {
		return r.Fallback(string(name), output)
	}
	header := r.styles.Dim.Render(string(name))
	return r.styles.Card.Width(r.width - 2).Render(header + "\n" + body)
}

// ErrorCard renders a failed invocation. The failure stays local to its
// card; surrounding output renders normally.
func (r *Renderer) ErrorCard(toolName, errText string) string {
	body := r.styles.Dim.Render(toolName) + "\n" +
		r.styles.Error.Render("✗ "+errText)
	return r.styles.ErrorCard.Width(r.width - 2).Render(body)
}

// Fallback renders an unrecognized tool output as pretty-printed JSON.
func (r *Renderer) Fallback(toolName string, output json.RawMessage) string {
	var pretty strings.Builder
	var v any
	if err := json.Unmarshal(output, &v); err == nil {
		if b, err := json.MarshalIndent(v, "", "  "); err == nil {
			pretty.Write(b)
		}
	}
	if pretty.Len() == 0 {
		pretty.WriteString(string(output))
	}
	body := r.styles.Dim.Render(toolName) + "\n" +
		r.styles.Value.Render(pretty.String())
	return r.styles.Card.Width(r.width - 2).Render(body)
}

// cardBody dispatches on the catalog name. The switch is exhaustive over
// the catalog; ok is false for non-members or undecodable payloads.
func (r *Renderer) cardBody(name catalog.Name, output json.RawMessage) (string, bool) {
	payload := catalog.NewPayload(name)
	if payload == nil {
		return "", false
	}
	if err := json.Unmarshal(output, payload); err != nil {
		return "", false
	}
	payload.Normalize()

	switch p := payload.(type) {
	case *catalog.ImageDescription:
		return r.imageDescription(p), true
	case *catalog.CarInfo:
		return r.carInfo(p), true
	case *catalog.FoodRecipe:
		return r.foodRecipe(p), true
	case *catalog.ArtworkInfo:
		return r.artworkInfo(p), true
	case *catalog.DocumentSummary:
		return r.documentSummary(p), true
	case *catalog.KeyPoints:
		return r.keyPoints(p), true
	case *catalog.DataTable:
		return r.dataTable(p), true
	case *catalog.BarChart:
		return r.barChart(p), true
	case *catalog.LineChart:
		return r.lineChart(p), true
	case *catalog.PieChart:
		return r.pieChart(p), true
	case *catalog.StatisticsSummary:
		return r.statisticsSummary(p), true
	case *catalog.SentimentAnalysis:
		return r.sentimentAnalysis(p), true
	case *catalog.EntityExtraction:
		return r.entityExtraction(p), true
	case *catalog.TopicSummary:
		return r.topicSummary(p), true
	case *catalog.CustomRender:
		return r.customRender(p), true
	}
	return "", false
}

func (r *Renderer) field(label, value string) string {
	if value == "" {
		return ""
	}
	return r.styles.Label.Render(label+": ") + r.styles.Value.Render(value) + "\n"
}

func (r *Renderer) tags(items []string) string {
	if len(items) == 0 {
		return ""
	}
	rendered := make([]string, len(items))
	for i, it := range items {
		rendered[i] = r.styles.Tag.Render("[" + it + "]")
	}
	return strings.Join(rendered, " ")
}

func (r *Renderer) imageDescription(p *catalog.ImageDescription) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	b.WriteString(r.styles.Value.Render(p.Description) + "\n")
	if t := r.tags(p.Objects); t != "" {
		b.WriteString(r.styles.Label.Render("Objects: ") + t + "\n")
	}
	if t := r.tags(p.Colors); t != "" {
		b.WriteString(r.styles.Label.Render("Colors: ") + t + "\n")
	}
	b.WriteString(r.field("Mood", p.Mood))
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) carInfo(p *catalog.CarInfo) string {
	var b strings.Builder
	title := strings.TrimSpace(p.Make + " " + p.Model)
	if p.Year != "" {
		title += " (" + p.Year + ")"
	}
	b.WriteString(r.styles.Title.Render(title) + "\n")
	b.WriteString(r.field("Color", p.Color))
	b.WriteString(r.field("Body", p.BodyType))
	b.WriteString(r.field("Condition", p.Condition))
	b.WriteString(r.field("Est. price", p.EstimatedPrice))
	if t := r.tags(p.Features); t != "" {
		b.WriteString(r.styles.Label.Render("Features: ") + t + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) foodRecipe(p *catalog.FoodRecipe) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.DishName) + " " + r.styles.Subtitle.Render(p.Cuisine) + "\n")
	b.WriteString(r.styles.Value.Render(p.Description) + "\n")
	meta := fmt.Sprintf("prep %s · cook %s · serves %.0f · %s", p.PrepTime, p.CookTime, p.Servings, p.Difficulty)
	b.WriteString(r.styles.Dim.Render(meta) + "\n")
	if len(p.Ingredients) > 0 {
		b.WriteString(r.styles.Label.Render("Ingredients") + "\n")
		for _, ing := range p.Ingredients {
			b.WriteString("  • " + r.styles.Value.Render(ing.Amount+" "+ing.Name) + "\n")
		}
	}
	if len(p.Instructions) > 0 {
		b.WriteString(r.styles.Label.Render("Instructions") + "\n")
		for i, step := range p.Instructions {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, r.styles.Value.Render(step)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) artworkInfo(p *catalog.ArtworkInfo) string {
	var b strings.Builder
	title := p.Title
	if p.Artist != "" {
		title += " — " + p.Artist
	}
	b.WriteString(r.styles.Title.Render(title) + "\n")
	b.WriteString(r.field("Style", p.Style))
	b.WriteString(r.field("Medium", p.Medium))
	b.WriteString(r.field("Period", p.Period))
	b.WriteString(r.styles.Value.Render(p.Description) + "\n")
	if t := r.tags(p.Techniques); t != "" {
		b.WriteString(r.styles.Label.Render("Techniques: ") + t + "\n")
	}
	if t := r.tags(p.Colors); t != "" {
		b.WriteString(r.styles.Label.Render("Colors: ") + t + "\n")
	}
	b.WriteString(r.field("Mood", p.Mood))
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) documentSummary(p *catalog.DocumentSummary) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + " " + r.styles.Dim.Render("("+p.DocumentType+")") + "\n")
	b.WriteString(r.styles.Value.Render(p.Summary) + "\n")
	var meta []string
	if p.WordCount > 0 {
		meta = append(meta, fmt.Sprintf("%.0f words", p.WordCount))
	}
	if p.PageCount > 0 {
		meta = append(meta, fmt.Sprintf("%.0f pages", p.PageCount))
	}
	if len(meta) > 0 {
		b.WriteString(r.styles.Dim.Render(strings.Join(meta, " · ")) + "\n")
	}
	if t := r.tags(p.KeyTopics); t != "" {
		b.WriteString(r.styles.Label.Render("Topics: ") + t + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) keyPoints(p *catalog.KeyPoints) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	for _, pt := range p.Points {
		style, ok := r.styles.Importance[pt.Importance]
		if !ok {
			style = r.styles.Value
		}
		b.WriteString("  • " + style.Render(pt.Heading) + "\n")
		b.WriteString("    " + r.styles.Value.Render(pt.Detail) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) dataTable(p *catalog.DataTable) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")

	widths := make([]int, len(p.Headers))
	for i, h := range p.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range p.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	if len(p.Headers) > 0 {
		cells := make([]string, len(p.Headers))
		for i, h := range p.Headers {
			cells[i] = r.styles.TableHead.Render(pad(h, widths[i]))
		}
		b.WriteString("  " + strings.Join(cells, "  ") + "\n")
	}
	for _, row := range p.Rows {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(widths) {
				w = widths[i]
			}
			cells = append(cells, r.styles.TableCell.Render(pad(cell, w)))
		}
		b.WriteString("  " + strings.Join(cells, "  ") + "\n")
	}
	if p.Caption != "" {
		b.WriteString(r.styles.Dim.Render(p.Caption) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// pad pads to display width, not byte length, so multibyte labels keep
// columns aligned.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func (r *Renderer) statisticsSummary(p *catalog.StatisticsSummary) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	for _, s := range p.Stats {
		line := "  " + r.styles.Label.Render(s.Label+": ") + r.styles.Value.Render(s.Value)
		if s.Change != "" {
			line += " " + r.trendStyle(s.Trend).Render(trendArrow(s.Trend)+s.Change)
		}
		b.WriteString(line + "\n")
	}
	if p.Description != "" {
		b.WriteString(r.styles.Dim.Render(p.Description) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) trendStyle(trend string) lipgloss.Style {
	switch trend {
	case "up":
		return r.styles.Positive
	case "down":
		return r.styles.Negative
	default:
		return r.styles.Neutral
	}
}

func trendArrow(trend string) string {
	switch trend {
	case "up":
		return "↑ "
	case "down":
		return "↓ "
	default:
		return "→ "
	}
}

func (r *Renderer) sentimentAnalysis(p *catalog.SentimentAnalysis) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Sentiment: "+p.OverallSentiment) +
		" " + r.styles.Dim.Render(fmt.Sprintf("(score %.2f)", p.Score)) + "\n")
	b.WriteString(r.styles.Value.Render(p.Text) + "\n")
	for _, a := range p.Breakdown {
		b.WriteString("  " + r.sentimentStyle(a.Sentiment).Render("["+a.Sentiment+"]") +
			" " + r.styles.Label.Render(a.Aspect+": ") +
			r.styles.Value.Render(a.Text) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) sentimentStyle(sentiment string) lipgloss.Style {
	switch sentiment {
	case "positive":
		return r.styles.Positive
	case "negative":
		return r.styles.Negative
	default:
		return r.styles.Neutral
	}
}

func (r *Renderer) entityExtraction(p *catalog.EntityExtraction) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Entities") + "\n")
	for _, e := range p.Entities {
		b.WriteString("  " + r.styles.Tag.Render("["+e.Type+"]") +
			" " + r.styles.Label.Render(e.Name) +
			" " + r.styles.Dim.Render(e.Context) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) topicSummary(p *catalog.TopicSummary) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	for _, t := range p.Topics {
		b.WriteString("  " + r.styles.Label.Render(t.Name) +
			" " + r.styles.Dim.Render(fmt.Sprintf("(%.0f%%)", t.Relevance)) + "\n")
		b.WriteString("    " + r.styles.Value.Render(t.Description) + "\n")
	}
	b.WriteString(r.field("Theme", p.OverallTheme))
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) customRender(p *catalog.CustomRender) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(p.Title) + "\n")
	switch p.Format {
	case "markdown", "":
		b.WriteString(r.md.Render(p.Content))
	case "code":
		b.WriteString(r.md.Render("```\n" + p.Content + "\n```"))
	default:
		b.WriteString(r.styles.Value.Render(p.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}
