package deck

import "fmt"

// Slide count bounds accepted for a generation request. Out-of-range
// values are clamped rather than rejected.
const (
	MinSlides = 4
	MaxSlides = 20
)

// ClampSlideCount forces n into the supported [MinSlides, MaxSlides] range.
func ClampSlideCount(n int) int {
	if n < MinSlides {
		return MinSlides
	}
	if n > MaxSlides {
		return MaxSlides
	}
	return n
}

// LayoutSuggestions recommends a layout mix for the given slide count.
// Small decks stay simple; larger decks pull in the full layout palette.
func LayoutSuggestions(numSlides int) []LayoutType {
	switch {
	case numSlides <= 4:
		return []LayoutType{LayoutTitle, LayoutContent, LayoutBulletPoints, LayoutSummary}
	case numSlides <= 6:
		return []LayoutType{LayoutTitle, LayoutContent, LayoutBulletPoints,
			LayoutTwoColumn, LayoutStatistics, LayoutSummary}
	case numSlides <= 8:
		return []LayoutType{LayoutTitle, LayoutContent, LayoutBulletPoints,
			LayoutTwoColumn, LayoutImageLeft, LayoutStatistics, LayoutTimeline, LayoutSummary}
	case numSlides <= 10:
		return []LayoutType{LayoutTitle, LayoutContent, LayoutBulletPoints,
			LayoutTwoColumn, LayoutThreeColumn, LayoutImageLeft, LayoutImageRight,
			LayoutStatistics, LayoutProcessFlow, LayoutSummary}
	default:
		return append([]LayoutType(nil), LayoutTypes...)
	}
}

// outlineTemplate is a canned middle-slide used by DefaultOutline.
type outlineTemplate struct {
	title  string
	points []string
	layout LayoutType
}

var outlineTemplates = []outlineTemplate{
	{"Overview", []string{"Core concepts", "Key characteristics", "Historical background"}, LayoutContent},
	{"Key Points", []string{"Fundamental principles", "Core technology", "Practical methods"}, LayoutBulletPoints},
	{"Strengths", []string{"Efficiency", "Scalability", "Ease of use"}, LayoutTwoColumn},
	{"Use Cases", []string{"Scenario one", "Scenario two", "Scenario three"}, LayoutThreeColumn},
	{"By the Numbers", []string{"Key metric 1", "Key metric 2", "Trend analysis"}, LayoutStatistics},
	{"Timeline", []string{"Early phase", "Growth phase", "Maturity"}, LayoutTimeline},
	{"Comparison", []string{"Traditional approach", "Modern approach"}, LayoutComparison},
	{"Core Capabilities", []string{"Capability one", "Capability two", "Capability three", "Capability four"}, LayoutIconsGrid},
	{"Headline Figure", []string{"The one number that matters"}, LayoutBigNumber},
	{"Process", []string{"Step 1", "Step 2", "Step 3", "Step 4"}, LayoutProcessFlow},
	{"Case Study", []string{"Background", "Approach", "Results"}, LayoutImageLeft},
	{"Deep Dive", []string{"Detailed analysis", "Expert perspective"}, LayoutImageRight},
	{"Perspective", []string{"A relevant quote or viewpoint"}, LayoutQuote},
}

// DefaultOutline builds a deterministic outline used when generated
// outlines are unusable. The first slide is always a title slide and
// the last is always a summary.
func DefaultOutline(topic string, numSlides int) []OutlineItem {
	numSlides = ClampSlideCount(numSlides)
	layouts := LayoutSuggestions(numSlides)

	var middle []LayoutType
	for _, l := range layouts {
		if l != LayoutTitle && l != LayoutSummary {
			middle = append(middle, l)
		}
	}

	outline := make([]OutlineItem, 0, numSlides)
	outline = append(outline, OutlineItem{
		SlideNumber: 1,
		SlideType:   LayoutTitle,
		Title:       topic,
		KeyPoints:   []string{"An introduction"},
		Notes:       "Opening slide",
	})

	for i := 1; i < numSlides-1; i++ {
		var (
			title  string
			points []string
			layout LayoutType
		)
		if i-1 < len(outlineTemplates) {
			t := outlineTemplates[i-1]
			title, points, layout = t.title, t.points, t.layout
		} else {
			title = fmt.Sprintf("Part %d", i)
			points = []string{"Key point"}
			layout = LayoutContent
			if len(middle) > 0 {
				layout = middle[(i-1)%len(middle)]
			}
		}
		outline = append(outline, OutlineItem{
			SlideNumber: i + 1,
			SlideType:   layout,
			Title:       title,
			KeyPoints:   points,
			Notes:       fmt.Sprintf("Slide %d", i+1),
		})
	}

	outline = append(outline, OutlineItem{
		SlideNumber: numSlides,
		SlideType:   LayoutSummary,
		Title:       "Summary & Outlook",
		KeyPoints:   []string{"Recap", "What comes next", "Recommended actions"},
		Notes:       "Closing slide",
	})

	return outline[:numSlides]
}

// DefaultResearchNotes returns minimal background material for a topic,
// used when the generation capability produced nothing usable.
func DefaultResearchNotes(topic string) []ResearchNote {
	return []ResearchNote{
		{Title: topic + ": overview", Content: "An introduction to " + topic, Category: "overview"},
		{Title: "Key characteristics", Content: "Main characteristics and strengths of " + topic, Category: "characteristics"},
		{Title: "Use cases", Content: "Typical applications of " + topic, Category: "applications"},
		{Title: "Trends", Content: "Where " + topic + " is heading", Category: "trends"},
	}
}

// DefaultThemeStyle is the fallback typography profile.
func DefaultThemeStyle() ThemeStyle {
	return ThemeStyle{
		StyleName:      "Clean Business",
		FontFamily:     "Helvetica",
		TitleFontSize:  44,
		BodyFontSize:   24,
		DesignElements: []string{"clean lines", "generous whitespace"},
		Mood:           "professional, clear, readable",
	}
}

// DefaultColorScheme is the fallback palette when no scheme was generated.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Primary:       "#2E86AB",
		Secondary:     "#A23B72",
		Accent:        "#F18F01",
		Background:    "#FFFFFF",
		Text:          "#333333",
		Title:         "#1A1A2E",
		GradientStart: "#667eea",
		GradientEnd:   "#764ba2",
	}
}

// DefaultLayouts derives a plain layout per outline slide: a centered
// title block with a body block underneath.
func DefaultLayouts(outline []OutlineItem) []SlideLayout {
	layouts := make([]SlideLayout, 0, len(outline))
	for _, item := range outline {
		bodyType := "text"
		if item.SlideType == LayoutBulletPoints {
			bodyType = "bullet_list"
		}
		layouts = append(layouts, SlideLayout{
			SlideNumber: item.SlideNumber,
			LayoutType:  item.SlideType,
			Elements: []Element{
				{
					Type:     "title",
					Position: map[string]int{"x": 5, "y": 5, "width": 90, "height": 15},
					Style:    map[string]any{"font_size": 44, "bold": true, "align": "center"},
				},
				{
					Type:     bodyType,
					Position: map[string]int{"x": 5, "y": 25, "width": 90, "height": 70},
					Style:    map[string]any{"font_size": 24, "bold": false, "align": "left"},
				},
			},
		})
	}
	return layouts
}

// DefaultContent falls back to the outline's key points as slide content.
func DefaultContent(outline []OutlineItem) []SlideContent {
	content := make([]SlideContent, 0, len(outline))
	for _, item := range outline {
		content = append(content, SlideContent{
			SlideNumber: item.SlideNumber,
			Title:       item.Title,
			Content:     item.KeyPoints,
		})
	}
	return content
}
