package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette is a named color scheme. The style variables below are
// rebuilt from the active palette by Use, so screens pick up a switch
// on their next render.
type Palette struct {
	Name      string
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Danger    color.Color
	Text      color.Color
	TextDim   color.Color
	Bg        color.Color
	BgCard    color.Color
	Line      color.Color
}

// Dark is the default scheme, tuned for long evening study sessions.
var Dark = Palette{
	Name:      "dark",
	Primary:   lipgloss.Color("#818CF8"), // Indigo
	Secondary: lipgloss.Color("#2DD4BF"), // Teal
	Accent:    lipgloss.Color("#FB923C"), // Orange
	Success:   lipgloss.Color("#4ADE80"), // Green
	Danger:    lipgloss.Color("#FB7185"), // Rose
	Text:      lipgloss.Color("#F1F5F9"), // Near white
	TextDim:   lipgloss.Color("#94A3B8"), // Slate
	Bg:        lipgloss.Color("#0F172A"), // Deep navy
	BgCard:    lipgloss.Color("#1E293B"), // Dark slate
	Line:      lipgloss.Color("#334155"), // Slate
}

// Light mirrors Dark for bright terminals.
var Light = Palette{
	Name:      "light",
	Primary:   lipgloss.Color("#4F46E5"),
	Secondary: lipgloss.Color("#0D9488"),
	Accent:    lipgloss.Color("#C2410C"),
	Success:   lipgloss.Color("#16A34A"),
	Danger:    lipgloss.Color("#E11D48"),
	Text:      lipgloss.Color("#1E293B"),
	TextDim:   lipgloss.Color("#64748B"),
	Bg:        lipgloss.Color("#F8FAFC"),
	BgCard:    lipgloss.Color("#E2E8F0"),
	Line:      lipgloss.Color("#CBD5E1"),
}

// Current is the active palette. Use its fields for one-off styling;
// prefer the prebuilt styles where one fits.
var Current = Dark

// Typography
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Hint     lipgloss.Style
)

// Layout
var (
	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style
)

// States
var (
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Correct    lipgloss.Style
	Incorrect  lipgloss.Style
)

// Components
var (
	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
)

func rebuild() {
	p := Current

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Align(lipgloss.Center)
	Body = lipgloss.NewStyle().
		Foreground(p.Text)
	Hint = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Italic(true)

	Header = lipgloss.NewStyle().
		Background(p.BgCard).
		Padding(0, 2)
	Footer = lipgloss.NewStyle().
		Background(p.BgCard).
		Padding(0, 2)
	Card = lipgloss.NewStyle().
		Background(p.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Line).
		Padding(1, 2)

	Selected = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	Unselected = lipgloss.NewStyle().
		Foreground(p.Text)
	Correct = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)
	Incorrect = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true)

	ProgressFilled = lipgloss.NewStyle().
		Background(p.Secondary)
	ProgressEmpty = lipgloss.NewStyle().
		Background(p.Line)
	ButtonActive = lipgloss.NewStyle().
		Background(p.Primary).
		Foreground(p.Text).
		Bold(true).
		Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
		Background(p.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Line).
		Padding(0, 2)
}

// Active reports the name of the palette in effect.
func Active() string {
	return Current.Name
}

// Use switches the active palette by name. Unknown names fall back to
// dark.
func Use(name string) {
	switch name {
	case Light.Name:
		Current = Light
	default:
		Current = Dark
	}
	rebuild()
}

func init() {
	rebuild()
}
