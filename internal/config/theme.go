package config

// Theme names.
const (
	ThemeLight = "LIGHT"
	ThemeDark  = "DARK"
	ThemeCyber = "CYBER"
)

// Palette is the set of colors a theme exposes to the dashboard.
type Palette struct {
	Bg       string
	Panel    string
	Text     string
	TextDim  string
	Border   string
	Primary  string
	Success  string
	Accent   string
	Danger   string
	CanvasBg string
	Dark     bool
}

// Themes maps theme names to palettes.
var Themes = map[string]Palette{
	ThemeLight: {
		Bg: "#F9FAFB", Panel: "#FFFFFF", Text: "#1F2937", TextDim: "#6B7280",
		Border: "#E5E7EB", Primary: "#3B82F6", Success: "#10B981", Accent: "#6366F1",
		Danger: "#EF4444", CanvasBg: "#F3F4F6",
	},
	ThemeDark: {
		Bg: "#111827", Panel: "#1F2937", Text: "#F9FAFB", TextDim: "#9CA3AF",
		Border: "#374151", Primary: "#60A5FA", Success: "#34D399", Accent: "#818CF8",
		Danger: "#F87171", CanvasBg: "#111827", Dark: true,
	},
	ThemeCyber: {
		Bg: "#0D1117", Panel: "#161B22", Text: "#58A6FF", TextDim: "#8B949E",
		Border: "#30363D", Primary: "#00E0FF", Success: "#7EE787", Accent: "#F778BA",
		Danger: "#FF7B72", CanvasBg: "#010409", Dark: true,
	},
}

// Colors returns the palette for the configured theme, falling back to LIGHT.
func (c *Config) Colors() Palette {
	if p, ok := Themes[c.Theme]; ok {
		return p
	}
	return Themes[ThemeLight]
}
