// Package deck defines the slide deck domain model shared by the
// generation pipeline, the HTTP API, and the preview client.
package deck

// LayoutType identifies the visual layout of a slide.
type LayoutType string

const (
	LayoutTitle        LayoutType = "title"
	LayoutContent      LayoutType = "content"
	LayoutBulletPoints LayoutType = "bullet_points"
	LayoutTwoColumn    LayoutType = "two_column"
	LayoutThreeColumn  LayoutType = "three_column"
	LayoutImageLeft    LayoutType = "image_left"
	LayoutImageRight   LayoutType = "image_right"
	LayoutQuote        LayoutType = "quote"
	LayoutStatistics   LayoutType = "statistics"
	LayoutTimeline     LayoutType = "timeline"
	LayoutComparison   LayoutType = "comparison"
	LayoutIconsGrid    LayoutType = "icons_grid"
	LayoutBigNumber    LayoutType = "big_number"
	LayoutProcessFlow  LayoutType = "process_flow"
	LayoutSummary      LayoutType = "summary"
)

// LayoutTypes lists every supported layout in declaration order.
var LayoutTypes = []LayoutType{
	LayoutTitle, LayoutContent, LayoutBulletPoints, LayoutTwoColumn,
	LayoutThreeColumn, LayoutImageLeft, LayoutImageRight, LayoutQuote,
	LayoutStatistics, LayoutTimeline, LayoutComparison, LayoutIconsGrid,
	LayoutBigNumber, LayoutProcessFlow, LayoutSummary,
}

// IsValidLayout reports whether t is a known layout type.
func IsValidLayout(t LayoutType) bool {
	for _, known := range LayoutTypes {
		if known == t {
			return true
		}
	}
	return false
}

// ResearchNote is one unit of background material gathered for a topic.
type ResearchNote struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ThemeStyle describes typography and mood for a deck.
type ThemeStyle struct {
	StyleName      string   `json:"style_name"`
	FontFamily     string   `json:"font_family"`
	TitleFontSize  int      `json:"title_font_size"`
	BodyFontSize   int      `json:"body_font_size"`
	DesignElements []string `json:"design_elements"`
	Mood           string   `json:"mood"`
}

// ColorScheme maps named color roles to hex values.
type ColorScheme struct {
	Primary       string `json:"primary_color"`
	Secondary     string `json:"secondary_color"`
	Accent        string `json:"accent_color"`
	Background    string `json:"background_color"`
	Text          string `json:"text_color"`
	Title         string `json:"title_color"`
	GradientStart string `json:"gradient_start,omitempty"`
	GradientEnd   string `json:"gradient_end,omitempty"`
}

// IsZero reports whether no color roles have been assigned.
func (c ColorScheme) IsZero() bool {
	return c == ColorScheme{}
}

// OutlineItem is one planned slide in the content outline.
type OutlineItem struct {
	SlideNumber int        `json:"slide_number"`
	SlideType   LayoutType `json:"slide_type"`
	Title       string     `json:"title"`
	KeyPoints   []string   `json:"key_points"`
	Notes       string     `json:"notes"`
}

// Element is a positioned element within a slide layout.
type Element struct {
	Type     string         `json:"type"`
	Position map[string]int `json:"position"`
	Style    map[string]any `json:"style"`
}

// SlideLayout is the concrete element arrangement for one slide.
type SlideLayout struct {
	SlideNumber int        `json:"slide_number"`
	LayoutType  LayoutType `json:"layout_type"`
	Elements    []Element  `json:"elements"`
}

// SlideContent is the generated textual content for one slide.
type SlideContent struct {
	SlideNumber int      `json:"slide_number"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Content     []string `json:"content"`
	Footer      string   `json:"footer,omitempty"`
}

// Slide is one fully assembled slide, read-only once the deck is built.
type Slide struct {
	SlideNumber int         `json:"slide_number"`
	SlideType   LayoutType  `json:"slide_type"`
	Layout      SlideLayout `json:"layout"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle,omitempty"`
	Content     []string    `json:"content"`
	Footer      string      `json:"footer,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// Deck is the assembled document produced by a successful pipeline run.
type Deck struct {
	Topic       string      `json:"topic"`
	ThemeStyle  ThemeStyle  `json:"theme_style"`
	ColorScheme ColorScheme `json:"color_scheme"`
	Slides      []Slide     `json:"slides"`
}
