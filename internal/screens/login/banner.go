package login

import (
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ███████╗███╗   ██╗████████╗ █████╗
 ██╔════╝ ██╔════╝████╗  ██║╚══██╔══╝██╔══██╗
 ██║  ███╗█████╗  ██╔██╗ ██║   ██║   ███████║
 ██║   ██║██╔══╝  ██║╚██╗██║   ██║   ██╔══██║
 ╚██████╔╝███████╗██║ ╚████║   ██║   ██║  ██║
  ╚═════╝ ╚══════╝╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝`

const bannerCompact = "G E N T A"

// RenderBanner returns the GENTA banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 50 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Current.Primary).
		Bold(true)

	if width < 50 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
