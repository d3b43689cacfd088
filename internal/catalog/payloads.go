package catalog

// Typed payloads for every catalog tool. Field sets mirror the declarative
// schemas in schemas.go exactly; renderers consume these types after the
// two-phase boundary (validate, then fill collection defaults) has run.

// Payload is implemented by every tool payload type.
//
// Normalize is phase two of the boundary contract: it replaces nil collection
// slices with empty ones so a renderer can always iterate them. It touches
// nothing else — in particular it never clamps numeric values to their
// documented ranges.
type Payload interface {
	Normalize()
}

// ImageDescription is the payload for image_description.
type ImageDescription struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objects     []string `json:"objects"`
	Colors      []string `json:"colors"`
	Mood        string   `json:"mood"`
}

func (p *ImageDescription) Normalize() {
	if p.Objects == nil {
		p.Objects = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
}

// CarInfo is the payload for car_info.
type CarInfo struct {
	Make           string   `json:"make"`
	Model          string   `json:"model"`
	Year           string   `json:"year,omitempty"`
	Color          string   `json:"color"`
	BodyType       string   `json:"bodyType"`
	EstimatedPrice string   `json:"estimatedPrice,omitempty"`
	Features       []string `json:"features"`
	Condition      string   `json:"condition,omitempty"`
}

func (p *CarInfo) Normalize() {
	if p.Features == nil {
		p.Features = []string{}
	}
}

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// FoodRecipe is the payload for food_recipe.
type FoodRecipe struct {
	DishName     string       `json:"dishName"`
	Cuisine      string       `json:"cuisine"`
	Description  string       `json:"description"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	PrepTime     string       `json:"prepTime"`
	CookTime     string       `json:"cookTime"`
	Servings     float64      `json:"servings"`
	Difficulty   string       `json:"difficulty"` // "Easy" | "Medium" | "Hard"
}

func (p *FoodRecipe) Normalize() {
	if p.Ingredients == nil {
		p.Ingredients = []Ingredient{}
	}
	if p.Instructions == nil {
		p.Instructions = []string{}
	}
}

// ArtworkInfo is the payload for artwork_info.
type ArtworkInfo struct {
	Title       string   `json:"title"`
	Artist      string   `json:"artist,omitempty"`
	Style       string   `json:"style"`
	Medium      string   `json:"medium,omitempty"`
	Period      string   `json:"period,omitempty"`
	Description string   `json:"description"`
	Colors      []string `json:"colors"`
	Mood        string   `json:"mood"`
	Techniques  []string `json:"techniques"`
}

func (p *ArtworkInfo) Normalize() {
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Techniques == nil {
		p.Techniques = []string{}
	}
}

// DocumentSummary is the payload for document_summary.
type DocumentSummary struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	WordCount    float64  `json:"wordCount,omitempty"`
	PageCount    float64  `json:"pageCount,omitempty"`
	KeyTopics    []string `json:"keyTopics"`
	DocumentType string   `json:"documentType"`
}

func (p *DocumentSummary) Normalize() {
	if p.KeyTopics == nil {
		p.KeyTopics = []string{}
	}
}

// KeyPoint is one extracted point with its importance level.
type KeyPoint struct {
	Heading    string `json:"heading"`
	Detail     string `json:"detail"`
	Importance string `json:"importance"` // "high" | "medium" | "low"
}

// KeyPoints is the payload for key_points.
type KeyPoints struct {
	Title  string     `json:"title"`
	Points []KeyPoint `json:"points"`
}

func (p *KeyPoints) Normalize() {
	if p.Points == nil {
		p.Points = []KeyPoint{}
	}
}

// DataTable is the payload for data_table.
type DataTable struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Caption string     `json:"caption,omitempty"`
}

func (p *DataTable) Normalize() {
	if p.Headers == nil {
		p.Headers = []string{}
	}
	if p.Rows == nil {
		p.Rows = [][]string{}
	}
}

// DataPoint is one labeled value of a chart series.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BarChart is the payload for bar_chart.
type BarChart struct {
	Title      string      `json:"title"`
	Data       []DataPoint `json:"data"`
	XAxisLabel string      `json:"xAxisLabel,omitempty"`
	YAxisLabel string      `json:"yAxisLabel,omitempty"`
}

func (p *BarChart) Normalize() {
	if p.Data == nil {
		p.Data = []DataPoint{}
	}
}

// LineChart is the payload for line_chart.
type LineChart struct {
	Title      string      `json:"title"`
	Data       []DataPoint `json:"data"`
	XAxisLabel string      `json:"xAxisLabel,omitempty"`
	YAxisLabel string      `json:"yAxisLabel,omitempty"`
}

func (p *LineChart) Normalize() {
	if p.Data == nil {
		p.Data = []DataPoint{}
	}
}

// PieChart is the payload for pie_chart.
type PieChart struct {
	Title string      `json:"title"`
	Data  []DataPoint `json:"data"`
}

func (p *PieChart) Normalize() {
	if p.Data == nil {
		p.Data = []DataPoint{}
	}
}

// Statistic is one row of a statistics summary.
type Statistic struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
	Trend  string `json:"trend,omitempty"` // "up" | "down" | "neutral"
}

// StatisticsSummary is the payload for statistics_summary.
type StatisticsSummary struct {
	Title       string      `json:"title"`
	Stats       []Statistic `json:"stats"`
	Description string      `json:"description,omitempty"`
}

func (p *StatisticsSummary) Normalize() {
	if p.Stats == nil {
		p.Stats = []Statistic{}
	}
}

// SentimentAspect is one aspect-level sentiment entry.
type SentimentAspect struct {
	Aspect    string `json:"aspect"`
	Sentiment string `json:"sentiment"` // "positive" | "negative" | "neutral"
	Text      string `json:"text"`
}

// SentimentAnalysis is the payload for sentiment_analysis.
// Score is documented as [-1, 1]; the catalog does not clamp violations.
type SentimentAnalysis struct {
	Text             string            `json:"text"`
	OverallSentiment string            `json:"overallSentiment"` // "positive" | "negative" | "neutral" | "mixed"
	Score            float64           `json:"score"`
	Breakdown        []SentimentAspect `json:"breakdown"`
}

func (p *SentimentAnalysis) Normalize() {
	if p.Breakdown == nil {
		p.Breakdown = []SentimentAspect{}
	}
}

// Entity is one extracted named entity.
type Entity struct {
	Name    string `json:"name"`
	Type    string `json:"type"` // person|organization|location|date|money|product|event|other
	Context string `json:"context"`
}

// EntityExtraction is the payload for entity_extraction.
type EntityExtraction struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

func (p *EntityExtraction) Normalize() {
	if p.Entities == nil {
		p.Entities = []Entity{}
	}
}

// Topic is one identified topic with a relevance score.
// Relevance is documented as [0, 100]; violations are not clamped.
type Topic struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Relevance   float64 `json:"relevance"`
}

// TopicSummary is the payload for topic_summary.
type TopicSummary struct {
	Title        string  `json:"title"`
	Topics       []Topic `json:"topics"`
	OverallTheme string  `json:"overallTheme"`
}

func (p *TopicSummary) Normalize() {
	if p.Topics == nil {
		p.Topics = []Topic{}
	}
}

// CustomRender is the payload for render_custom, the catch-all card.
type CustomRender struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format,omitempty"` // "markdown" | "text" | "code"
}

// Normalize is a no-op: render_custom has no collection fields.
func (p *CustomRender) Normalize() {}

// NewPayload returns a zero payload value for the given tool.
// The switch is exhaustive over the catalog; a non-member returns nil.
func NewPayload(n Name) Payload {
	switch n {
	case ImageDescriptionTool:
		return &ImageDescription{}
	case CarInfoTool:
		return &CarInfo{}
	case FoodRecipeTool:
		return &FoodRecipe{}
	case ArtworkInfoTool:
		return &ArtworkInfo{}
	case DocumentSummaryTool:
		return &DocumentSummary{}
	case KeyPointsTool:
		return &KeyPoints{}
	case DataTableTool:
		return &DataTable{}
	case BarChartTool:
		return &BarChart{}
	case LineChartTool:
		return &LineChart{}
	case PieChartTool:
		return &PieChart{}
	case StatisticsSummaryTool:
		return &StatisticsSummary{}
	case SentimentAnalysisTool:
		return &SentimentAnalysis{}
	case EntityExtractionTool:
		return &EntityExtraction{}
	case TopicSummaryTool:
		return &TopicSummary{}
	case RenderCustomTool:
		return &CustomRender{}
	}
	return nil
}
