// Package catalog is the single source of truth for every rendering tool's
// shape. Each entry is a declarative structural contract: the schema is
// advertised to the model so it emits well-formed invocations, and the render
// layer relies on the same contract for which fields will be present.
//
// The catalog is closed: membership is fixed at construction and never
// changes during a conversation. Tool identity is a typed constant set so
// that adding a tool is a compiler-visible exercise — every switch over
// catalog.Name must handle the new case.
package catalog

// Name identifies a tool in the catalog. Only the constants below are legal.
type Name string

// The fifteen catalog tools.
const (
	// Visual-recognition family
	ImageDescriptionTool Name = "image_description"
	CarInfoTool          Name = "car_info"
	FoodRecipeTool       Name = "food_recipe"
	ArtworkInfoTool      Name = "artwork_info"

	// Document family
	DocumentSummaryTool Name = "document_summary"
	KeyPointsTool       Name = "key_points"

	// Data-visualization family
	DataTableTool         Name = "data_table"
	BarChartTool          Name = "bar_chart"
	LineChartTool         Name = "line_chart"
	PieChartTool          Name = "pie_chart"
	StatisticsSummaryTool Name = "statistics_summary"

	// Text-analysis family
	SentimentAnalysisTool Name = "sentiment_analysis"
	EntityExtractionTool  Name = "entity_extraction"
	TopicSummaryTool      Name = "topic_summary"

	// Catch-all
	RenderCustomTool Name = "render_custom"
)

// Family groups tools by the kind of content they render.
type Family int

// Tool families, used for skeleton shape selection and prompt guidance.
const (
	FamilyVisual Family = iota
	FamilyDocument
	FamilyData
	FamilyText
	FamilyCustom
)

// All returns every catalog tool name in declaration order.
// The returned slice is freshly allocated; callers may mutate it.
func All() []Name {
	return []Name{
		ImageDescriptionTool,
		CarInfoTool,
		FoodRecipeTool,
		ArtworkInfoTool,
		DocumentSummaryTool,
		KeyPointsTool,
		DataTableTool,
		BarChartTool,
		LineChartTool,
		PieChartTool,
		StatisticsSummaryTool,
		SentimentAnalysisTool,
		EntityExtractionTool,
		TopicSummaryTool,
		RenderCustomTool,
	}
}

// FamilyOf returns the family of a tool name.
// The boolean reports whether the name is a catalog member.
func FamilyOf(n Name) (Family, bool) {
	switch n {
	case ImageDescriptionTool, CarInfoTool, FoodRecipeTool, ArtworkInfoTool:
		return FamilyVisual, true
	case DocumentSummaryTool, KeyPointsTool:
		return FamilyDocument, true
	case DataTableTool, BarChartTool, LineChartTool, PieChartTool, StatisticsSummaryTool:
		return FamilyData, true
	case SentimentAnalysisTool, EntityExtractionTool, TopicSummaryTool:
		return FamilyText, true
	case RenderCustomTool:
		return FamilyCustom, true
	}
	return 0, false
}

// Valid reports whether n is a catalog member.
func Valid(n Name) bool {
	_, ok := FamilyOf(n)
	return ok
}

func (n Name) String() string { return string(n) }
