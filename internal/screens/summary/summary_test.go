package summary

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/section"
)

func testSummary() *prac.SessionSummary {
	sec := section.PK
	theta := 0.12
	return &prac.SessionSummary{
		SessionID:       "sess-1",
		Section:         &sec,
		TotalQuestions:  14,
		CorrectAnswers:  11,
		Accuracy:        float64(11) / float64(14),
		DurationMinutes: 15,
		ThetaChange:     &theta,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary())
	if s.Title() != "Rangkuman Sesi" {
		t.Errorf("Title = %q, want %q", s.Title(), "Rangkuman Sesi")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSummary())
	view := s.View(80, 24)
	if view == "" {
		t.Error("expected non-empty summary view")
	}
}

func TestSummaryScreen_EmptySession(t *testing.T) {
	s := New(&prac.SessionSummary{SessionID: "sess-2"})
	view := s.View(80, 24)
	if view == "" {
		t.Error("expected a view even for an empty session")
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testSummary())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected a command on Enter (pop)")
	}
}

func TestSummaryScreen_Navigation_Esc(t *testing.T) {
	s := New(testSummary())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a command on Esc (pop)")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testSummary())
	hints := s.KeyHints()
	if len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
