// Package settings covers the theme switch and study plan edits.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/config"
	"github.com/gentaprep/genta-tui/internal/profile"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/ui/components"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// profileSavedMsg is sent when a study plan edit round-trips.
type profileSavedMsg struct {
	User *profile.User
	Err  error
}

type field int

const (
	fieldNone field = iota
	fieldTargetPTN
	fieldTargetScore
	fieldExamDate
	fieldStudyHours
)

var fieldPrompts = map[field]string{
	fieldTargetPTN:   "Kampus target baru:",
	fieldTargetScore: "Target skor baru (200-1000):",
	fieldExamDate:    "Tanggal ujian baru (YYYY-MM-DD):",
	fieldStudyHours:  "Jam belajar per minggu:",
}

// SettingsScreen edits the theme and the study plan.
type SettingsScreen struct {
	cfg     *config.Config
	profSvc *profile.Service
	user    *profile.User

	selected int
	editing  field
	input    components.TextInput
	busy     bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates the settings screen. The user may be nil when the profile
// failed to load; plan edits are disabled in that case.
func New(cfg *config.Config, profSvc *profile.Service, user *profile.User) *SettingsScreen {
	return &SettingsScreen{cfg: cfg, profSvc: profSvc, user: user}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Pengaturan"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	if s.editing != fieldNone {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Choose"},
		{Key: "Enter", Description: "Change"},
		{Key: "Esc", Description: "Back"},
	}
}

// rows returns the menu labels with current values folded in.
func (s *SettingsScreen) rows() []string {
	themeRow := fmt.Sprintf("Tema: %s", s.cfg.Theme)

	ptn, score, date, hours := "-", "-", "-", "-"
	if s.user != nil {
		if s.user.TargetPTN != nil {
			ptn = *s.user.TargetPTN
		}
		if s.user.TargetScore != nil {
			score = fmt.Sprintf("%d", *s.user.TargetScore)
		}
		if s.user.ExamDate != nil {
			date = s.user.ExamDate.Format("2006-01-02")
		}
		if s.user.StudyHoursPerWeek != nil {
			hours = fmt.Sprintf("%d", *s.user.StudyHoursPerWeek)
		}
	}

	return []string{
		themeRow,
		"Kampus target: " + ptn,
		"Target skor: " + score,
		"Tanggal ujian: " + date,
		"Jam belajar/minggu: " + hours,
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = saveErrorMessage(msg.Err)
			return s, nil
		}
		s.user = msg.User
		s.notice = "Tersimpan."
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.editing != fieldNone {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SettingsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	s.notice = ""

	if s.editing != fieldNone {
		switch msg.String() {
		case "esc":
			s.editing = fieldNone
			s.errMsg = ""
			return s, nil
		case "enter":
			return s.saveField()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.rows())-1 {
			s.selected++
		}
	case "enter":
		return s.activateRow()
	}
	return s, nil
}

func (s *SettingsScreen) activateRow() (screen.Screen, tea.Cmd) {
	if s.selected == 0 {
		return s.toggleTheme()
	}
	if s.user == nil {
		s.errMsg = "Profil belum dimuat; edit rencana tidak tersedia."
		return s, nil
	}

	s.editing = field(s.selected)
	numeric := s.editing == fieldTargetScore || s.editing == fieldStudyHours
	s.input = components.NewTextInput("", numeric, 64)
	s.errMsg = ""
	return s, s.input.Init()
}

// toggleTheme flips dark/light, applies it immediately, and persists the
// choice to the config file.
func (s *SettingsScreen) toggleTheme() (screen.Screen, tea.Cmd) {
	if s.cfg.Theme == theme.Light.Name {
		s.cfg.Theme = theme.Dark.Name
	} else {
		s.cfg.Theme = theme.Light.Name
	}
	theme.Use(s.cfg.Theme)
	if err := config.Save(s.cfg); err != nil {
		s.errMsg = err.Error()
	} else {
		s.notice = "Tema disimpan."
	}
	return s, nil
}

func (s *SettingsScreen) saveField() (screen.Screen, tea.Cmd) {
	raw := strings.TrimSpace(s.input.Value())
	if raw == "" {
		s.editing = fieldNone
		return s, nil
	}

	var in profile.UpdateInput
	switch s.editing {
	case fieldTargetPTN:
		in.TargetPTN = &raw
	case fieldTargetScore:
		n, err := s.input.NumericValue()
		if err != nil || n < 200 || n > 1000 {
			s.errMsg = "Skor harus angka 200-1000"
			return s, nil
		}
		in.TargetScore = &n
	case fieldExamDate:
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.errMsg = "Format tanggal YYYY-MM-DD"
			return s, nil
		}
		in.ExamDate = &t
	case fieldStudyHours:
		n, err := s.input.NumericValue()
		if err != nil || n < 1 || n > 100 {
			s.errMsg = "Jam belajar harus angka 1-100"
			return s, nil
		}
		in.StudyHoursPerWeek = &n
	}

	s.editing = fieldNone
	s.errMsg = ""
	s.busy = true
	return s, func() tea.Msg {
		user, err := s.profSvc.Update(context.Background(), in)
		return profileSavedMsg{User: user, Err: err}
	}
}

func (s *SettingsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.busy {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.TextDim).
			Render("Menyimpan..."))
		return b.String()
	}

	if s.editing != fieldNone {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Text).
			Render(fieldPrompts[s.editing]))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "> "+s.input.View()))
	} else {
		for i, row := range s.rows() {
			style := lipgloss.NewStyle().Foreground(theme.Current.Text)
			prefix := "  "
			if i == s.selected {
				style = lipgloss.NewStyle().Foreground(theme.Current.Primary).Bold(true)
				prefix = "> "
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				style.Render(prefix+row)))
			b.WriteString("\n")
		}
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Success).
			Render(s.notice))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Danger).
			Render(s.errMsg))
	}

	return b.String()
}

// saveErrorMessage prefers the server's field-level validation message
// when a 400 names the rejected field.
func saveErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		for _, msg := range apiErr.FieldErrors() {
			return msg
		}
	}
	return err.Error()
}
