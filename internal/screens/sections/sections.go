// Package sections is the subtest picker shown before a practice
// session starts.
package sections

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	practicescreen "github.com/gentaprep/genta-tui/internal/screens/practice"
	"github.com/gentaprep/genta-tui/internal/section"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// createdMsg is sent when the server has opened a new session.
type createdMsg struct {
	SessionID string
	Err       error
}

// RunnerFactory builds a fresh Runner per session. Injected so the
// picker stays free of recorder and logger wiring.
type RunnerFactory func() *prac.Runner

// SectionsScreen lets the learner pick one of the seven subtests.
type SectionsScreen struct {
	svc       *prac.Service
	newRunner RunnerFactory

	selected int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*SectionsScreen)(nil)
var _ screen.KeyHintProvider = (*SectionsScreen)(nil)

// New creates the section picker.
func New(svc *prac.Service, newRunner RunnerFactory) *SectionsScreen {
	return &SectionsScreen{svc: svc, newRunner: newRunner}
}

func (s *SectionsScreen) Init() tea.Cmd {
	return nil
}

func (s *SectionsScreen) Title() string {
	return "Pilih Subtes"
}

func (s *SectionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Choose"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SectionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case createdMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		runner := s.newRunner()
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{
				Screen: practicescreen.New(runner, msg.SessionID),
			}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SectionsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		s.errMsg = ""
		return s, nil
	}
	if s.busy {
		return s, nil
	}

	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(section.All)-1 {
			s.selected++
		}
	case "enter":
		s.busy = true
		return s, s.createCmd(section.All[s.selected])
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SectionsScreen) createCmd(sec section.Section) tea.Cmd {
	return func() tea.Msg {
		sess, err := s.svc.CreateSession(context.Background(), sec)
		if err != nil {
			return createdMsg{Err: err}
		}
		return createdMsg{SessionID: sess.ID}
	}
}

func (s *SectionsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.Danger).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to try again.", s.errMsg))
	}
	if s.busy {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.TextDim).
			Render("\n\n\n  Memulai sesi...")
	}

	var b strings.Builder
	b.WriteString("\n")

	var lastCat section.Category
	for i, sec := range section.All {
		if cat := sec.Category(); cat != lastCat {
			lastCat = cat
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().
					Foreground(theme.Current.TextDim).
					Bold(true).
					Render(string(cat))))
			b.WriteString("\n")
		}

		line := fmt.Sprintf("%s  %s", sec, sec.Name())
		if i == s.selected {
			line = lipgloss.NewStyle().
				Foreground(theme.Current.Primary).
				Bold(true).
				Render("▸ " + line)
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Current.Text).
				Render("  " + line)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	return b.String()
}
