package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/deckforge/internal/deck"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
	"git.home.luguber.info/inful/deckforge/internal/llm"
	"git.home.luguber.info/inful/deckforge/internal/observability"
)

// DeckNodes declares the deck generation graph over the given
// generation capability. Declaration order is the tie-break order
// within batches, so it is part of the event-ordering contract.
func DeckNodes(client llm.Client) []Node {
	s := &stages{client: client}
	return []Node{
		{
			ID:     StageSearchResources,
			Run:    s.searchResources,
			Status: "background material gathered",
		},
		{
			ID:     StageGenerateThemeStyle,
			Run:    s.generateThemeStyle,
			Status: "theme style ready",
		},
		{
			ID:        StageGenerateColorScheme,
			DependsOn: []string{StageGenerateThemeStyle},
			Run:       s.generateColorScheme,
			Status:    "color scheme ready",
		},
		{
			ID:        StageGenerateContentOutline,
			DependsOn: []string{StageSearchResources},
			Run:       s.generateContentOutline,
			Status:    "content outline ready",
		},
		{
			ID:        StageDesignSlideLayouts,
			DependsOn: []string{StageGenerateContentOutline, StageGenerateColorScheme},
			Run:       s.designSlideLayouts,
			Status:    "slide layouts designed",
		},
		{
			ID:        StageGenerateDetailedContent,
			DependsOn: []string{StageGenerateContentOutline},
			Run:       s.generateDetailedContent,
			Status:    "detailed content written",
		},
		{
			ID: StageAssemblePptData,
			DependsOn: []string{
				StageGenerateColorScheme,
				StageDesignSlideLayouts,
				StageGenerateDetailedContent,
			},
			Run:    s.assemblePptData,
			Status: "deck assembled",
		},
	}
}

// BuildDeckGraph is the canonical graph used by the service.
func BuildDeckGraph(client llm.Client) (*Graph, error) {
	return Build(DeckNodes(client))
}

type stages struct {
	client llm.Client
}

// generate wraps the capability call and classifies its errors:
// deadline expiry becomes a timeout failure, anything else an external
// call failure.
func (s *stages) generate(ctx context.Context, prompt string, out any) error {
	err := s.client.Generate(ctx, prompt, out)
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return dferrors.Wrap(err, dferrors.CategoryTimeout, dferrors.SeverityError, "generation call exceeded stage budget")
	}
	return dferrors.Wrap(err, dferrors.CategoryExternal, dferrors.SeverityError, "generation call failed")
}

func upstreamMissing(stageID string) error {
	return dferrors.New(dferrors.CategoryUpstream, dferrors.SeverityError,
		"missing or invalid output from upstream stage "+stageID)
}

func (s *stages) searchResources(ctx context.Context, rs *RunState) (any, error) {
	req := rs.Request
	n := req.NumSlides
	if n > 8 {
		n = 8
	}
	prompt := fmt.Sprintf(`As a subject-matter expert, produce background material for a %d-slide presentation about %q.
Return exactly %d entries as a JSON array. Each element has:
- "title": the key point's name
- "content": a 100-200 word description
- "category": one of overview, characteristics, applications, trends, cases
Return only the JSON array, nothing else.`, req.NumSlides, req.Topic, n)

	var notes []deck.ResearchNote
	if err := s.generate(ctx, prompt, &notes); err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		observability.WarnContext(ctx, "empty research results, using defaults")
		notes = deck.DefaultResearchNotes(req.Topic)
	}
	return notes, nil
}

func (s *stages) generateThemeStyle(ctx context.Context, rs *RunState) (any, error) {
	prompt := fmt.Sprintf(`Design a presentation theme for the topic %q.
Return a JSON object with fields:
{"style_name": "...", "font_family": "...", "title_font_size": 44, "body_font_size": 24, "design_elements": ["...", "..."], "mood": "..."}
Return only the JSON object, nothing else.`, rs.Request.Topic)

	var style deck.ThemeStyle
	if err := s.generate(ctx, prompt, &style); err != nil {
		return nil, err
	}
	if style.StyleName == "" {
		observability.WarnContext(ctx, "incomplete theme style, using defaults")
		style = deck.DefaultThemeStyle()
	}
	return style, nil
}

func (s *stages) generateColorScheme(ctx context.Context, rs *RunState) (any, error) {
	style, ok := PayloadAs[deck.ThemeStyle](rs, StageGenerateThemeStyle)
	if !ok {
		return nil, upstreamMissing(StageGenerateThemeStyle)
	}

	prompt := fmt.Sprintf(`Design a color scheme for a presentation about %q in the %q style.
Return a JSON object with hex color fields:
{"primary_color": "#...", "secondary_color": "#...", "accent_color": "#...", "background_color": "#...", "text_color": "#...", "title_color": "#...", "gradient_start": "#...", "gradient_end": "#..."}
Return only the JSON object, nothing else.`, rs.Request.Topic, style.StyleName)

	var scheme deck.ColorScheme
	if err := s.generate(ctx, prompt, &scheme); err != nil {
		return nil, err
	}
	if scheme.IsZero() {
		observability.WarnContext(ctx, "empty color scheme, using defaults")
		scheme = deck.DefaultColorScheme()
	}
	return scheme, nil
}

func (s *stages) generateContentOutline(ctx context.Context, rs *RunState) (any, error) {
	notes, ok := PayloadAs[[]deck.ResearchNote](rs, StageSearchResources)
	if !ok {
		return nil, upstreamMissing(StageSearchResources)
	}
	req := rs.Request

	// Use more reference material for larger decks, at least three notes.
	limit := req.NumSlides / 2
	if limit < 3 {
		limit = 3
	}
	if limit > len(notes) {
		limit = len(notes)
	}

	var refs strings.Builder
	for i, note := range notes[:limit] {
		content := note.Content
		if len(content) > 600 {
			content = content[:600]
		}
		fmt.Fprintf(&refs, "\nReference %d: %s\n%s\n", i+1, note.Title, content)
	}

	layouts := deck.LayoutSuggestions(req.NumSlides)
	layoutNames := make([]string, len(layouts))
	for i, l := range layouts {
		layoutNames[i] = string(l)
	}

	prompt := fmt.Sprintf(`Create a content outline for a presentation about %q with exactly %d slides.

Reference material:%s

Available slide layouts: %s. Slide 1 must use "title" and slide %d must use "summary"; vary the layouts in between.

Return a JSON array where each element has:
{"slide_number": N, "slide_type": "layout", "title": "...", "key_points": ["...", "..."], "notes": "speaker notes"}

Requirements: exactly %d elements, professional depth, make full use of the reference material.
Return only the JSON array, nothing else.`,
		req.Topic, req.NumSlides, refs.String(), strings.Join(layoutNames, ", "), req.NumSlides, req.NumSlides)

	var outline []deck.OutlineItem
	if err := s.generate(ctx, prompt, &outline); err != nil {
		return nil, err
	}
	if len(outline) != req.NumSlides {
		observability.WarnContext(ctx, "outline has wrong slide count, using defaults",
			slog.Int("got", len(outline)), slog.Int("want", req.NumSlides))
		outline = deck.DefaultOutline(req.Topic, req.NumSlides)
	}
	for i := range outline {
		if !deck.IsValidLayout(outline[i].SlideType) {
			outline[i].SlideType = deck.LayoutContent
		}
	}
	return outline, nil
}

func (s *stages) designSlideLayouts(ctx context.Context, rs *RunState) (any, error) {
	outline, ok := PayloadAs[[]deck.OutlineItem](rs, StageGenerateContentOutline)
	if !ok {
		return nil, upstreamMissing(StageGenerateContentOutline)
	}
	scheme, ok := PayloadAs[deck.ColorScheme](rs, StageGenerateColorScheme)
	if !ok {
		return nil, upstreamMissing(StageGenerateColorScheme)
	}

	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return nil, dferrors.Wrap(err, dferrors.CategoryUpstream, dferrors.SeverityError, "outline not serializable")
	}
	schemeJSON, _ := json.Marshal(scheme)

	prompt := fmt.Sprintf(`Design a concrete layout for each slide of this outline.

Outline: %s
Color scheme: %s

Return a JSON array where each element has:
{"slide_number": N, "layout_type": "...", "elements": [{"type": "title|subtitle|text|bullet_list|image_placeholder|shape", "position": {"x": %%, "y": %%, "width": %%, "height": %%}, "style": {"font_size": N, "bold": true, "align": "left|center|right"}}]}

Return only the JSON array, nothing else.`, outlineJSON, schemeJSON)

	var layouts []deck.SlideLayout
	if err := s.generate(ctx, prompt, &layouts); err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		observability.WarnContext(ctx, "empty layout response, using defaults")
		layouts = deck.DefaultLayouts(outline)
	}
	return layouts, nil
}

func (s *stages) generateDetailedContent(ctx context.Context, rs *RunState) (any, error) {
	outline, ok := PayloadAs[[]deck.OutlineItem](rs, StageGenerateContentOutline)
	if !ok {
		return nil, upstreamMissing(StageGenerateContentOutline)
	}
	notes, _ := PayloadAs[[]deck.ResearchNote](rs, StageSearchResources)

	var refs strings.Builder
	for i, note := range notes {
		if i >= 5 {
			break
		}
		content := note.Content
		if len(content) > 300 {
			content = content[:300]
		}
		fmt.Fprintf(&refs, "\nReference %d: %s\n", i+1, content)
	}

	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return nil, dferrors.Wrap(err, dferrors.CategoryUpstream, dferrors.SeverityError, "outline not serializable")
	}

	prompt := fmt.Sprintf(`Write detailed slide content for a presentation about %q.

Outline: %s
Reference material:%s

Return a JSON array where each element has:
{"slide_number": N, "title": "...", "subtitle": "optional", "content": ["point 1", "point 2"], "footer": "optional"}

Requirements: concise titles, 3-5 points per slide, each point at most 20 words, professional and accurate.
Return only the JSON array, nothing else.`, rs.Request.Topic, outlineJSON, refs.String())

	var content []deck.SlideContent
	if err := s.generate(ctx, prompt, &content); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		observability.WarnContext(ctx, "empty content response, falling back to outline points")
		content = deck.DefaultContent(outline)
	}
	return content, nil
}

// assemblePptData is purely local: it merges the upstream payloads into
// the final document and parks it on the run state for the orchestrator
// to hand to the artifact assembler.
func (s *stages) assemblePptData(ctx context.Context, rs *RunState) (any, error) {
	outline, ok := PayloadAs[[]deck.OutlineItem](rs, StageGenerateContentOutline)
	if !ok {
		return nil, upstreamMissing(StageGenerateContentOutline)
	}
	layouts, ok := PayloadAs[[]deck.SlideLayout](rs, StageDesignSlideLayouts)
	if !ok {
		return nil, upstreamMissing(StageDesignSlideLayouts)
	}
	content, ok := PayloadAs[[]deck.SlideContent](rs, StageGenerateDetailedContent)
	if !ok {
		return nil, upstreamMissing(StageGenerateDetailedContent)
	}
	scheme, ok := PayloadAs[deck.ColorScheme](rs, StageGenerateColorScheme)
	if !ok {
		return nil, upstreamMissing(StageGenerateColorScheme)
	}
	style, ok := PayloadAs[deck.ThemeStyle](rs, StageGenerateThemeStyle)
	if !ok {
		return nil, upstreamMissing(StageGenerateThemeStyle)
	}

	d := deck.Assemble(rs.Request.Topic, style, scheme, outline, layouts, content)
	rs.setDeck(d)
	return d, nil
}
