// Package login is the token-entry screen shown when no saved session
// exists or the saved token stopped working.
package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/profile"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/ui/components"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// verifiedMsg is sent when the entered token has been checked against
// the account endpoint.
type verifiedMsg struct {
	User *profile.User
	Err  error
}

// NextScreen picks the screen to show for a verified account. The app
// routes first-run users to onboarding and everyone else home.
type NextScreen func(user *profile.User) screen.Screen

// LoginScreen collects and verifies an access token.
type LoginScreen struct {
	tokens  *auth.FileStore
	profSvc *profile.Service
	next    NextScreen

	input  components.TextInput
	busy   bool
	errMsg string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates the login screen.
func New(tokens *auth.FileStore, profSvc *profile.Service, next NextScreen) *LoginScreen {
	return &LoginScreen{
		tokens:  tokens,
		profSvc: profSvc,
		next:    next,
		input:   components.NewTextInput("Tempel token akses...", false, 512),
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *LoginScreen) Title() string {
	return "Masuk"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case verifiedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.input.Submit(false)
			return s, nil
		}
		s.input.Submit(true)
		nextScreen := s.next(msg.User)
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: nextScreen}
		}

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if msg.String() == "enter" {
			token := strings.TrimSpace(s.input.Value())
			if token == "" {
				return s, nil
			}
			s.busy = true
			s.errMsg = ""
			return s, s.verifyCmd(token)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// verifyCmd saves the token, then proves it works by loading the
// account. A failed check leaves the saved token in place so the next
// attempt can overwrite it.
func (s *LoginScreen) verifyCmd(token string) tea.Cmd {
	return func() tea.Msg {
		if err := s.tokens.Save(token); err != nil {
			return verifiedMsg{Err: err}
		}
		user, err := s.profSvc.Me(context.Background())
		return verifiedMsg{User: user, Err: err}
	}
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, RenderBanner(width)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Text).
		Bold(true).
		Render("Teman belajar UTBK-mu"))
	b.WriteString("\n\n")

	if s.busy {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.TextDim).
			Render("Memeriksa token..."))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.TextDim).
		Render("Ambil token akses dari genta.app/settings lalu tempel di sini."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Token: "+s.input.View()))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.Danger).
			Render(s.errMsg))
	}

	return b.String()
}
