package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Entry is one tool's declarative contract: a unique name, a model-facing
// usage hint, and the structural input schema. Entries contain no executable
// logic.
type Entry struct {
	Name        Name
	Description string
	Schema      *jsonschema.Schema

	resolved *jsonschema.Resolved
}

// Catalog is the closed, process-wide set of tool definitions.
// Built once at startup; membership never changes afterwards.
type Catalog struct {
	entries map[Name]*Entry
	order   []Name
}

// New builds the catalog and resolves every schema.
// Resolution failure is a programming error in a schema literal.
func New() (*Catalog, error) {
	c := &Catalog{entries: make(map[Name]*Entry, 15)}
	for _, n := range All() {
		e := &Entry{Name: n, Description: descriptionOf(n), Schema: schemaOf(n)}
		resolved, err := e.Schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolving schema for %s: %w", n, err)
		}
		e.resolved = resolved
		c.entries[n] = e
		c.order = append(c.order, n)
	}
	return c, nil
}

// Entry returns the contract for a tool name.
func (c *Catalog) Entry(n Name) (*Entry, bool) {
	e, ok := c.entries[n]
	return e, ok
}

// Entries returns all contracts in declaration order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.entries[n])
	}
	return out
}

// descriptionOf returns the model-facing usage hint for a tool.
func descriptionOf(n Name) string {
	switch n {
	case ImageDescriptionTool:
		return "Describe an image with details about objects, colors, and mood. Use for general images that aren't cars, food, or artwork."
	case CarInfoTool:
		return "Identify a car from an image — make, model, year, features, estimated price. Use when the image contains a vehicle."
	case FoodRecipeTool:
		return "Identify a dish from a food image and generate a recipe with ingredients and instructions."
	case ArtworkInfoTool:
		return "Analyze artwork or paintings — identify style, medium, techniques, artist if known."
	case DocumentSummaryTool:
		return "Summarize a document or PDF — title, summary, key topics, word count."
	case KeyPointsTool:
		return "Extract key points from a document with importance levels."
	case DataTableTool:
		return "Display data in a structured table with headers and rows."
	case BarChartTool:
		return "Render a bar chart for comparing discrete categories. Best for categorical comparisons."
	case LineChartTool:
		return "Render a line chart for showing trends over time or continuous data."
	case PieChartTool:
		return "Render a pie chart for showing proportions or percentage breakdowns."
	case StatisticsSummaryTool:
		return "Display statistical summary (mean, median, min, max, etc.) for numeric data."
	case SentimentAnalysisTool:
		return "Analyze sentiment of text — overall sentiment, score, and aspect-level breakdown."
	case EntityExtractionTool:
		return "Extract named entities (people, organizations, locations, dates, etc.) from text."
	case TopicSummaryTool:
		return "Identify and summarize topics in text with relevance scores."
	case RenderCustomTool:
		return "Render custom content (markdown, text, or code) when no other tool is a better fit."
	}
	return ""
}

// Schema literal helpers. Conventions (uniform across all tools):
//   - identifying text fields are required strings
//   - collection fields default to an empty sequence
//   - closed-category fields are enums
//   - numeric ranges are documentation for the model, never clamped

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func num(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: desc}
}

func numRange(desc string, minimum, maximum float64) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "number",
		Description: desc,
		Minimum:     &minimum,
		Maximum:     &maximum,
	}
}

func enum(desc string, values ...any) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc, Enum: values}
}

func arr(desc string, items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: desc,
		Items:       items,
		Default:     json.RawMessage("[]"),
	}
}

func obj(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Required: required, Properties: props}
}

// schemaOf returns the declarative input schema for a tool.
// The switch is exhaustive over the catalog.
func schemaOf(n Name) *jsonschema.Schema {
	switch n {
	case ImageDescriptionTool:
		return obj(
			[]string{"title", "description", "mood"},
			map[string]*jsonschema.Schema{
				"title":       str("Short descriptive title for the image"),
				"description": str("Detailed description of what the image contains"),
				"objects":     arr("Key objects detected in the image", str("")),
				"colors":      arr("Dominant colors in the image", str("")),
				"mood":        str("Overall mood or atmosphere of the image"),
			},
		)
	case CarInfoTool:
		return obj(
			[]string{"make", "model", "color", "bodyType"},
			map[string]*jsonschema.Schema{
				"make":           str("Car manufacturer"),
				"model":          str("Car model name"),
				"year":           str("Estimated year or year range"),
				"color":          str("Exterior color"),
				"bodyType":       str("Body type (sedan, SUV, coupe, etc.)"),
				"estimatedPrice": str("Estimated price range"),
				"features":       arr("Notable visible features", str("")),
				"condition":      str("Apparent condition"),
			},
		)
	case FoodRecipeTool:
		return obj(
			[]string{"dishName", "cuisine", "description", "prepTime", "cookTime", "servings", "difficulty"},
			map[string]*jsonschema.Schema{
				"dishName":    str("Name of the dish"),
				"cuisine":     str("Cuisine type"),
				"description": str("Brief description of the dish"),
				"ingredients": arr("List of ingredients with amounts", obj(
					[]string{"name", "amount"},
					map[string]*jsonschema.Schema{
						"name":   str(""),
						"amount": str(""),
					},
				)),
				"instructions": arr("Step-by-step cooking instructions", str("")),
				"prepTime":     str("Preparation time"),
				"cookTime":     str("Cooking time"),
				"servings":     num("Number of servings"),
				"difficulty":   enum("Difficulty level", "Easy", "Medium", "Hard"),
			},
		)
	case ArtworkInfoTool:
		return obj(
			[]string{"title", "style", "description", "mood"},
			map[string]*jsonschema.Schema{
				"title":       str("Title of the artwork"),
				"artist":      str("Artist name if identifiable"),
				"style":       str("Art style (impressionism, abstract, etc.)"),
				"medium":      str("Medium (oil, watercolor, digital, etc.)"),
				"period":      str("Time period or era"),
				"description": str("Detailed description of the artwork"),
				"colors":      arr("Color palette used", str("")),
				"mood":        str("Emotional tone of the artwork"),
				"techniques":  arr("Notable artistic techniques", str("")),
			},
		)
	case DocumentSummaryTool:
		return obj(
			[]string{"title", "summary", "documentType"},
			map[string]*jsonschema.Schema{
				"title":        str("Document title or generated title"),
				"summary":      str("Comprehensive summary of the document"),
				"wordCount":    num("Approximate word count"),
				"pageCount":    num("Number of pages"),
				"keyTopics":    arr("Main topics covered", str("")),
				"documentType": str("Type of document (report, article, etc.)"),
			},
		)
	case KeyPointsTool:
		return obj(
			[]string{"title"},
			map[string]*jsonschema.Schema{
				"title": str("Title for the key points section"),
				"points": arr("List of key points extracted from the document", obj(
					[]string{"heading", "detail", "importance"},
					map[string]*jsonschema.Schema{
						"heading":    str("Point heading"),
						"detail":     str("Detailed explanation"),
						"importance": enum("Importance level", "high", "medium", "low"),
					},
				)),
			},
		)
	case DataTableTool:
		return obj(
			[]string{"title"},
			map[string]*jsonschema.Schema{
				"title":   str("Table title"),
				"headers": arr("Column headers", str("")),
				"rows":    arr("Table data rows", arr("", str(""))),
				"caption": str("Table caption or description"),
			},
		)
	case BarChartTool, LineChartTool:
		kind := "bar"
		if n == LineChartTool {
			kind = "line"
		}
		return obj(
			[]string{"title"},
			map[string]*jsonschema.Schema{
				"title":      str("Chart title"),
				"data":       arr("Data points for the "+kind+" chart", dataPointSchema()),
				"xAxisLabel": str("X-axis label"),
				"yAxisLabel": str("Y-axis label"),
			},
		)
	case PieChartTool:
		return obj(
			[]string{"title"},
			map[string]*jsonschema.Schema{
				"title": str("Chart title"),
				"data":  arr("Data slices for the pie chart", dataPointSchema()),
			},
		)
	case StatisticsSummaryTool:
		return obj(
			[]string{"title"},
			map[string]*jsonschema.Schema{
				"title": str("Title for the statistics summary"),
				"stats": arr("List of statistics", obj(
					[]string{"label", "value"},
					map[string]*jsonschema.Schema{
						"label":  str("Statistic name"),
						"value":  str("Statistic value"),
						"change": str("Change from previous"),
						"trend":  enum("Trend direction", "up", "down", "neutral"),
					},
				)),
				"description": str("Overall description"),
			},
		)
	case SentimentAnalysisTool:
		return obj(
			[]string{"text", "overallSentiment", "score"},
			map[string]*jsonschema.Schema{
				"text":             str("The analyzed text"),
				"overallSentiment": enum("Overall sentiment", "positive", "negative", "neutral", "mixed"),
				"score":            numRange("Sentiment score from -1 (negative) to 1 (positive)", -1, 1),
				"breakdown": arr("Sentiment breakdown by aspect", obj(
					[]string{"aspect", "sentiment", "text"},
					map[string]*jsonschema.Schema{
						"aspect":    str("Aspect being analyzed"),
						"sentiment": enum("", "positive", "negative", "neutral"),
						"text":      str("Relevant text excerpt"),
					},
				)),
			},
		)
	case EntityExtractionTool:
		return obj(
			[]string{"text"},
			map[string]*jsonschema.Schema{
				"text": str("The analyzed text"),
				"entities": arr("Extracted entities", obj(
					[]string{"name", "type", "context"},
					map[string]*jsonschema.Schema{
						"name": str("Entity name"),
						"type": enum("Entity type",
							"person", "organization", "location", "date",
							"money", "product", "event", "other"),
						"context": str("Context in which the entity appears"),
					},
				)),
			},
		)
	case TopicSummaryTool:
		return obj(
			[]string{"title", "overallTheme"},
			map[string]*jsonschema.Schema{
				"title": str("Title for the topic analysis"),
				"topics": arr("Identified topics", obj(
					[]string{"name", "description", "relevance"},
					map[string]*jsonschema.Schema{
						"name":        str("Topic name"),
						"description": str("Topic description"),
						"relevance":   numRange("Relevance score 0-100", 0, 100),
					},
				)),
				"overallTheme": str("Overall theme of the content"),
			},
		)
	case RenderCustomTool:
		return obj(
			[]string{"title", "content"},
			map[string]*jsonschema.Schema{
				"title":   str("Content title"),
				"content": str("The content to render"),
				"format":  enum("Content format", "markdown", "text", "code"),
			},
		)
	}
	return nil
}

func dataPointSchema() *jsonschema.Schema {
	return obj(
		[]string{"label", "value"},
		map[string]*jsonschema.Schema{
			"label": str(""),
			"value": num(""),
		},
	)
}
