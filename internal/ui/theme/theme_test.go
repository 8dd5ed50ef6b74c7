package theme

import (
	"image/color"
	"testing"
)

// Palette colors must satisfy image/color.Color so lipgloss styles can
// take them directly.
func TestPaletteColorsUsableByStyles(t *testing.T) {
	for _, p := range []Palette{Dark, Light} {
		colors := []color.Color{
			p.Primary, p.Secondary, p.Accent, p.Success, p.Danger,
			p.Text, p.TextDim, p.Bg, p.BgCard, p.Line,
		}
		for i, c := range colors {
			if c == nil {
				t.Errorf("palette %s: color %d is nil", p.Name, i)
			}
		}
	}
}

func TestUseSwitchesPalette(t *testing.T) {
	defer Use("dark")

	Use("light")
	if Active() != "light" {
		t.Errorf("Active() = %q, want %q", Active(), "light")
	}
	if Current.Name != Light.Name {
		t.Errorf("Current = %q, want light palette", Current.Name)
	}

	if Current.Text != Light.Text {
		t.Errorf("Current.Text = %v, want %v", Current.Text, Light.Text)
	}

	Use("no-such-theme")
	if Active() != "dark" {
		t.Errorf("unknown palette: Active() = %q, want fallback to dark", Active())
	}
}
