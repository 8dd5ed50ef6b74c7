// Package practice is the interactive screen for a live practice session.
// It drives a prac.Runner: every blocking call happens inside a tea.Cmd,
// and the screen refuses input while one is in flight.
package practice

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/screens/summary"
	"github.com/gentaprep/genta-tui/internal/ui/components"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
)

// PracticeScreen implements screen.Screen for an active session.
type PracticeScreen struct {
	runner    *prac.Runner
	sessionID string

	answers         components.AnswerList
	showQuitConfirm bool
	busy            bool
	errMsg          string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a practice screen for a session that already exists on the
// server. The runner is started on Init.
func New(runner *prac.Runner, sessionID string) *PracticeScreen {
	return &PracticeScreen{
		runner:    runner,
		sessionID: sessionID,
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	s.busy = true
	return tea.Batch(s.startCmd(), tickCmd())
}

func (s *PracticeScreen) Title() string {
	sec := s.runner.Section()
	if sec != "" {
		return "Latihan " + string(sec)
	}
	return "Latihan"
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.showQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.runner.Phase() {
	case prac.PhaseAnswering:
		return []layout.KeyHint{
			{Key: "↑/↓ a-e", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case prac.PhaseResult:
		hints := []layout.KeyHint{
			{Key: "Enter", Description: "Next question"},
		}
		if s.runner.CanRate() {
			hints = append(hints,
				layout.KeyHint{Key: "U", Description: "Feedback helpful"},
				layout.KeyHint{Key: "T", Description: "Not helpful"},
			)
		}
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Finish"})
		return hints
	case prac.PhaseExhausted:
		return []layout.KeyHint{
			{Key: "Enter", Description: "See summary"},
		}
	}
	return nil
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.resetAnswers()
		return s, nil

	case gradedMsg:
		s.busy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, prac.ErrDetailUnavailable) {
				// Graded result is still usable without the detail view.
				s.revealAnswers()
				return s, nil
			}
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.revealAnswers()
		return s, nil

	case advancedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.resetAnswers()
		return s, nil

	case ratedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case endedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(msg.Summary)}
		}

	case timerTickMsg:
		return s.handleTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *PracticeScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.runner.Phase() == prac.PhaseFinished {
		return s, nil
	}
	if !s.busy {
		s.runner.SyncFeedback()
	}
	return s, tickCmd()
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key leaves the session screen.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.busy {
		return s, nil
	}

	if s.showQuitConfirm {
		switch key {
		case "y", "Y":
			s.showQuitConfirm = false
			s.busy = true
			return s, s.endCmd()
		case "n", "N", "esc":
			s.showQuitConfirm = false
		}
		return s, nil
	}

	switch s.runner.Phase() {
	case prac.PhaseAnswering:
		switch key {
		case "esc":
			s.showQuitConfirm = true
			return s, nil
		case "enter":
			if !s.runner.CanSubmit() {
				return s, nil
			}
			s.busy = true
			return s, s.submitCmd()
		}

		var cmd tea.Cmd
		s.answers, cmd = s.answers.Update(msg)
		if a, err := prac.ParseAnswer(s.answers.Letter()); err == nil {
			s.runner.SelectAnswer(a)
		}
		return s, cmd

	case prac.PhaseResult:
		switch key {
		case "enter", " ":
			s.busy = true
			return s, s.advanceCmd()
		case "u", "U":
			if s.runner.CanRate() {
				s.busy = true
				return s, s.rateCmd(true)
			}
		case "t", "T":
			if s.runner.CanRate() {
				s.busy = true
				return s, s.rateCmd(false)
			}
		case "esc":
			s.showQuitConfirm = true
		}
		return s, nil

	case prac.PhaseExhausted:
		switch key {
		case "enter", "esc":
			s.busy = true
			return s, s.endCmd()
		}
		return s, nil
	}

	return s, nil
}

// resetAnswers rebuilds the answer list for the current question. A nil
// question means the pool ran dry and there is nothing to rebuild.
func (s *PracticeScreen) resetAnswers() {
	q := s.runner.Question()
	if q == nil {
		return
	}
	s.answers = components.NewAnswerList(q.Options())
}

// revealAnswers freezes the list with the graded outcome. Without the
// detail view only the chosen option can be marked.
func (s *PracticeScreen) revealAnswers() {
	att := s.runner.Attempt()
	if att == nil {
		return
	}
	correct := ""
	if det := s.runner.Detail(); det != nil {
		correct = string(det.CorrectAnswer)
	} else if att.IsCorrect {
		correct = string(att.SelectedAnswer)
	}
	s.answers.Reveal(correct, string(att.SelectedAnswer))
}

func (s *PracticeScreen) startCmd() tea.Cmd {
	return func() tea.Msg {
		err := s.runner.Start(context.Background(), s.sessionID)
		return startedMsg{Err: err}
	}
}

func (s *PracticeScreen) submitCmd() tea.Cmd {
	return func() tea.Msg {
		err := s.runner.Submit(context.Background())
		return gradedMsg{Err: err}
	}
}

func (s *PracticeScreen) advanceCmd() tea.Cmd {
	return func() tea.Msg {
		err := s.runner.Advance(context.Background())
		return advancedMsg{Err: err}
	}
}

func (s *PracticeScreen) rateCmd(helpful bool) tea.Cmd {
	return func() tea.Msg {
		err := s.runner.RateFeedback(context.Background(), helpful)
		return ratedMsg{Err: err}
	}
}

func (s *PracticeScreen) endCmd() tea.Cmd {
	return func() tea.Msg {
		sum, err := s.runner.Finish(context.Background())
		return endedMsg{Summary: sum, Err: err}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
