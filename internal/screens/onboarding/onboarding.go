// Package onboarding is the first-run wizard that captures the study
// plan and shows the server's baseline readiness estimates.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/profile"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/section"
	"github.com/gentaprep/genta-tui/internal/ui/components"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// savedMsg is sent when the study plan has been stored server-side.
type savedMsg struct {
	Result *profile.OnboardingResult
	Err    error
}

type step int

const (
	stepTargetPTN step = iota
	stepTargetScore
	stepExamDate
	stepStudyHours
	stepDone
)

var prompts = map[step]string{
	stepTargetPTN:   "Kampus impianmu? (boleh kosong)",
	stepTargetScore: "Target skor UTBK? (200-1000, boleh kosong)",
	stepExamDate:    "Tanggal ujian? (YYYY-MM-DD, boleh kosong)",
	stepStudyHours:  "Jam belajar per minggu? (boleh kosong)",
}

// OnboardingScreen walks through the study plan questions one at a time.
type OnboardingScreen struct {
	profSvc     *profile.Service
	homeFactory func() screen.Screen

	step   step
	input  components.TextInput
	in     profile.OnboardingInput
	result *profile.OnboardingResult
	busy   bool
	errMsg string
}

var _ screen.Screen = (*OnboardingScreen)(nil)
var _ screen.KeyHintProvider = (*OnboardingScreen)(nil)

// New creates the onboarding wizard.
func New(profSvc *profile.Service, homeFactory func() screen.Screen) *OnboardingScreen {
	return &OnboardingScreen{
		profSvc:     profSvc,
		homeFactory: homeFactory,
		input:       components.NewTextInput("", false, 64),
	}
}

func (s *OnboardingScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *OnboardingScreen) Title() string {
	return "Rencana Belajar"
}

func (s *OnboardingScreen) KeyHints() []layout.KeyHint {
	if s.step == stepDone {
		return []layout.KeyHint{{Key: "Enter", Description: "Mulai"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Next"},
	}
}

func (s *OnboardingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.busy = false
		if msg.Err != nil {
			s.failSave(msg.Err)
			numeric := s.step == stepTargetScore || s.step == stepStudyHours
			s.input = components.NewTextInput("", numeric, 64)
			return s, s.input.Init()
		}
		s.result = msg.Result
		s.step = stepDone
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if s.step == stepDone {
			if msg.String() == "enter" {
				home := s.homeFactory()
				return s, func() tea.Msg {
					return router.ReplaceScreenMsg{Screen: home}
				}
			}
			return s, nil
		}
		if msg.String() == "enter" {
			return s.acceptField()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// acceptField parses the current answer, stores it, and moves to the
// next question. Empty answers leave the field unset.
func (s *OnboardingScreen) acceptField() (screen.Screen, tea.Cmd) {
	raw := strings.TrimSpace(s.input.Value())
	s.errMsg = ""

	if raw != "" {
		switch s.step {
		case stepTargetPTN:
			s.in.TargetPTN = &raw
		case stepTargetScore:
			n, err := s.input.NumericValue()
			if err != nil || n < 200 || n > 1000 {
				s.errMsg = "Skor harus angka 200-1000"
				return s, nil
			}
			s.in.TargetScore = &n
		case stepExamDate:
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				s.errMsg = "Format tanggal YYYY-MM-DD"
				return s, nil
			}
			s.in.ExamDate = &t
		case stepStudyHours:
			n, err := s.input.NumericValue()
			if err != nil || n < 1 || n > 100 {
				s.errMsg = "Jam belajar harus angka 1-100"
				return s, nil
			}
			s.in.StudyHoursPerWeek = &n
		}
	}

	if s.step == stepStudyHours {
		s.busy = true
		return s, s.saveCmd()
	}

	s.step++
	numeric := s.step == stepTargetScore || s.step == stepStudyHours
	s.input = components.NewTextInput("", numeric, 64)
	return s, s.input.Init()
}

// fieldSteps maps the backend's validation field names back to wizard
// steps so a 400 returns the user to the offending question.
var fieldSteps = map[string]step{
	"targetPtn":         stepTargetPTN,
	"targetScore":       stepTargetScore,
	"examDate":          stepExamDate,
	"studyHoursPerWeek": stepStudyHours,
}

// failSave positions the wizard after a failed save. A field-level 400
// jumps to the rejected field with its message; anything else restarts
// from the top with a generic error.
func (s *OnboardingScreen) failSave(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		for field, msg := range apiErr.FieldErrors() {
			if st, ok := fieldSteps[field]; ok {
				s.step = st
				s.errMsg = msg
				return
			}
		}
	}
	s.step = stepTargetPTN
	s.errMsg = err.Error()
}

func (s *OnboardingScreen) saveCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := s.profSvc.CompleteOnboarding(context.Background(), s.in)
		return savedMsg{Result: res, Err: err}
	}
}

func (s *OnboardingScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	if s.busy {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.TextDim).
			Render("Menyimpan rencana belajar..."))
		return b.String()
	}

	if s.step == stepDone && s.result != nil {
		return s.renderResult(width)
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Current.Primary).Bold(true).
		Render(fmt.Sprintf("Langkah %d dari 4", int(s.step)+1)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Current.Text).
		Render(prompts[s.step]))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "> "+s.input.View()))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Danger).
			Render(s.errMsg))
	}

	return b.String()
}

func (s *OnboardingScreen) renderResult(width int) string {
	res := s.result
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Current.Success).Bold(true).
		Render("Rencana belajar tersimpan!"))
	b.WriteString("\n\n")

	if len(res.InitialReadiness) > 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Secondary).
			Render("Perkiraan awal kesiapanmu:"))
		b.WriteString("\n\n")

		secs := make([]section.Section, 0, len(res.InitialReadiness))
		for sec := range res.InitialReadiness {
			secs = append(secs, sec)
		}
		sort.Slice(secs, func(i, j int) bool { return secs[i] < secs[j] })

		for _, sec := range secs {
			ir := res.InitialReadiness[sec]
			line := fmt.Sprintf("%-4s %3.0f%%  skor %d-%d",
				sec, ir.ReadinessPercentage, ir.PredictedScoreLow, ir.PredictedScoreHigh)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.Current.Text).Render(line)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Current.TextDim).
		Render("Tekan Enter untuk mulai."))

	return b.String()
}
