// Package home is the main menu screen.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/analytics"
	"github.com/gentaprep/genta-tui/internal/config"
	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/profile"
	"github.com/gentaprep/genta-tui/internal/readiness"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/screens/dashboard"
	"github.com/gentaprep/genta-tui/internal/screens/history"
	"github.com/gentaprep/genta-tui/internal/screens/sections"
	"github.com/gentaprep/genta-tui/internal/screens/settings"
	"github.com/gentaprep/genta-tui/internal/store"
	"github.com/gentaprep/genta-tui/internal/ui/components"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// statsLoadedMsg carries the local practice totals shown under the menu.
type statsLoadedMsg struct {
	Attempts int
	Correct  int
	Sessions int
}

// Deps bundles everything the home screen needs to spawn the others.
type Deps struct {
	Practice  *prac.Service
	NewRunner sections.RunnerFactory
	Readiness *readiness.Service
	Analytics *analytics.Service
	Events    store.EventRepo
	Config    *config.Config
	Profile   *profile.Service
	User      *profile.User
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps Deps
	menu components.Menu

	attempts int
	correct  int
	sessions int
	loaded   bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}

	items := []components.MenuItem{
		{Label: "LATIHAN", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{
					Screen: sections.New(deps.Practice, deps.NewRunner),
				}
			}
		}},
		{Label: "DASHBOARD", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{
					Screen: dashboard.New(deps.Readiness, deps.Analytics),
				}
			}
		}},
		{Label: "RIWAYAT", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.Practice, deps.Events)}
			}
		}},
		{Label: "PENGATURAN", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{
					Screen: settings.New(deps.Config, deps.Profile, deps.User),
				}
			}
		}},
		{Label: "KELUAR", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Events == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()

		var msg statsLoadedMsg
		if stats, err := h.deps.Events.SectionStats(ctx); err == nil {
			for _, st := range stats {
				msg.Attempts += st.Attempts
				msg.Correct += st.Correct
			}
		}
		if sessions, err := h.deps.Events.RecentSessions(ctx, 50); err == nil {
			msg.Sessions = len(sessions)
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		h.attempts = msg.Attempts
		h.correct = msg.Correct
		h.sessions = msg.Sessions
		h.loaded = true
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Primary).
		Bold(true).
		Render(h.greeting()))
	b.WriteString("\n\n")

	if h.loaded && h.attempts > 0 {
		acc := float64(h.correct) / float64(h.attempts) * 100
		stats := fmt.Sprintf("%d sesi  ·  %d soal dijawab  ·  akurasi %.0f%%",
			h.sessions, h.attempts, acc)
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.TextDim).
			Render(stats))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	return b.String()
}

func (h *HomeScreen) greeting() string {
	if h.deps.User != nil && h.deps.User.FullName != nil && *h.deps.User.FullName != "" {
		name := strings.Fields(*h.deps.User.FullName)[0]
		return "Halo, " + name + "! Siap latihan?"
	}
	return "Halo! Siap latihan?"
}

func (h *HomeScreen) Title() string {
	return "Beranda"
}
