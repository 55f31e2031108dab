package deck

import "sort"

// Assemble merges generated content, layouts, and the outline into a
// final Deck. Content drives which slides exist; layout and outline
// entries are matched by slide number and fall back to plain defaults
// when missing. Slides are ordered by slide number.
func Assemble(topic string, style ThemeStyle, colors ColorScheme,
	outline []OutlineItem, layouts []SlideLayout, content []SlideContent) *Deck {

	layoutByNum := make(map[int]SlideLayout, len(layouts))
	for _, l := range layouts {
		layoutByNum[l.SlideNumber] = l
	}
	outlineByNum := make(map[int]OutlineItem, len(outline))
	for _, o := range outline {
		outlineByNum[o.SlideNumber] = o
	}

	d := &Deck{
		Topic:       topic,
		ThemeStyle:  style,
		ColorScheme: colors,
		Slides:      make([]Slide, 0, len(content)),
	}

	for _, c := range content {
		layout, ok := layoutByNum[c.SlideNumber]
		if !ok {
			layout = SlideLayout{SlideNumber: c.SlideNumber, LayoutType: LayoutContent}
		}
		item, ok := outlineByNum[c.SlideNumber]
		if !ok {
			item = OutlineItem{SlideNumber: c.SlideNumber, SlideType: LayoutContent}
		}

		d.Slides = append(d.Slides, Slide{
			SlideNumber: c.SlideNumber,
			SlideType:   item.SlideType,
			Layout:      layout,
			Title:       c.Title,
			Subtitle:    c.Subtitle,
			Content:     c.Content,
			Footer:      c.Footer,
			Notes:       item.Notes,
		})
	}

	sort.Slice(d.Slides, func(i, j int) bool {
		return d.Slides[i].SlideNumber < d.Slides[j].SlideNumber
	})

	return d
}
