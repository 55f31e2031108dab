package deck

// ThemePreset is a named, statically defined color palette.
type ThemePreset struct {
	Key    string      `json:"id"`
	Name   string      `json:"name"`
	Colors ColorScheme `json:"colors"`
}

// DefaultThemeKey is used when a request names an unknown theme.
const DefaultThemeKey = "business"

// ThemePresets lists the built-in palettes in presentation order.
var ThemePresets = []ThemePreset{
	{
		Key:  "business",
		Name: "Business Blue",
		Colors: ColorScheme{
			Primary:    "#2E86AB",
			Secondary:  "#1A365D",
			Accent:     "#F18F01",
			Background: "#FFFFFF",
			Text:       "#333333",
			Title:      "#1A1A2E",
		},
	},
	{
		Key:  "tech",
		Name: "Tech Purple",
		Colors: ColorScheme{
			Primary:    "#667eea",
			Secondary:  "#764ba2",
			Accent:     "#00D9FF",
			Background: "#0F0F23",
			Text:       "#E0E0E0",
			Title:      "#FFFFFF",
		},
	},
	{
		Key:  "nature",
		Name: "Nature Green",
		Colors: ColorScheme{
			Primary:    "#2D6A4F",
			Secondary:  "#40916C",
			Accent:     "#95D5B2",
			Background: "#FFFFFF",
			Text:       "#333333",
			Title:      "#1B4332",
		},
	},
	{
		Key:  "warm",
		Name: "Warm Orange",
		Colors: ColorScheme{
			Primary:    "#E85D04",
			Secondary:  "#DC2F02",
			Accent:     "#FFBA08",
			Background: "#FFFBF5",
			Text:       "#333333",
			Title:      "#370617",
		},
	},
	{
		Key:  "minimal",
		Name: "Minimal Monochrome",
		Colors: ColorScheme{
			Primary:    "#333333",
			Secondary:  "#666666",
			Accent:     "#E63946",
			Background: "#FFFFFF",
			Text:       "#333333",
			Title:      "#000000",
		},
	},
	{
		Key:  "ocean",
		Name: "Ocean Blue",
		Colors: ColorScheme{
			Primary:    "#0077B6",
			Secondary:  "#023E8A",
			Accent:     "#90E0EF",
			Background: "#FFFFFF",
			Text:       "#333333",
			Title:      "#03045E",
		},
	},
}

// ThemeByKey returns the preset for key, or false if unknown.
func ThemeByKey(key string) (ThemePreset, bool) {
	for _, p := range ThemePresets {
		if p.Key == key {
			return p, true
		}
	}
	return ThemePreset{}, false
}

// NormalizeThemeKey maps unknown theme keys to the default preset.
func NormalizeThemeKey(key string) string {
	if _, ok := ThemeByKey(key); ok {
		return key
	}
	return DefaultThemeKey
}

// ApplyTheme overrides the deck's color scheme with the named preset.
// Unknown keys leave the deck untouched.
func ApplyTheme(d *Deck, key string) {
	if p, ok := ThemeByKey(key); ok {
		d.ColorScheme = p.Colors
	}
}
