package practice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/router"
)

// testBackend serves a two-question PK session where option A is always
// the correct answer.
type testBackend struct {
	questions []string
	served    int
	ended     bool
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && path == "/api/v1/sessions/sess-1":
		json.NewEncoder(w).Encode(map[string]any{
			"id": "sess-1", "started_at": "2026-01-10T09:00:00Z",
			"questions_attempted": 0, "questions_correct": 0,
			"section": "PK",
		})

	case r.Method == http.MethodPut && strings.HasSuffix(path, "/end"):
		b.ended = true
		json.NewEncoder(w).Encode(map[string]any{
			"id": "sess-1", "started_at": "2026-01-10T09:00:00Z",
			"ended_at":            "2026-01-10T09:10:00Z",
			"duration_minutes":    10,
			"questions_attempted": b.served, "questions_correct": b.served,
			"accuracy_in_session": 1.0,
			"section":             "PK",
		})

	case r.Method == http.MethodGet && path == "/api/v1/questions/next":
		if b.served >= len(b.questions) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "NOT_FOUND", "message": "no questions left"},
			})
			return
		}
		id := b.questions[b.served]
		b.served++
		json.NewEncoder(w).Encode(map[string]any{
			"id": id, "section": "PK", "text": "Berapa 2+3?",
			"optionA": "5", "optionB": "6", "optionC": "7",
			"optionD": "8", "optionE": "9",
		})

	case r.Method == http.MethodPost && path == "/api/v1/attempts":
		var in struct {
			QuestionID     string `json:"question_id"`
			SelectedAnswer string `json:"selected_answer"`
			TimeSpent      int    `json:"time_spent_seconds"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(map[string]any{
			"id": "att-" + in.QuestionID, "question_id": in.QuestionID,
			"selected_answer": in.SelectedAnswer,
			"is_correct":      in.SelectedAnswer == "A",
			"time_spent_seconds": in.TimeSpent, "feedback_generated": false,
			"session_id": "sess-1", "created_at": "2026-01-10T09:01:00Z",
		})

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/attempts/"):
		id := strings.TrimPrefix(path, "/api/v1/attempts/")
		json.NewEncoder(w).Encode(map[string]any{
			"id": id, "question_id": strings.TrimPrefix(id, "att-"),
			"selected_answer": "A", "correct_answer": "A",
			"is_correct": true, "time_spent_seconds": 3,
			"created_at": "2026-01-10T09:01:00Z",
			"question": map[string]any{
				"id": strings.TrimPrefix(id, "att-"), "text": "Berapa 2+3?",
				"explanation": "2+3 = 5",
			},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "NOT_FOUND", "message": "no route"},
		})
	}
}

func newTestScreen(t *testing.T, questions ...string) (*PracticeScreen, *testBackend) {
	t.Helper()
	backend := &testBackend{questions: questions}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, auth.StaticToken("tok"))
	svc := prac.NewService(client)
	runner := prac.NewRunner(svc)
	return New(runner, "sess-1"), backend
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// start drives the screen through its startup command.
func start(t *testing.T, s *PracticeScreen) {
	t.Helper()
	msg := s.startCmd()()
	started, ok := msg.(startedMsg)
	if !ok {
		t.Fatalf("startCmd returned %T", msg)
	}
	if started.Err != nil {
		t.Fatalf("start: %v", started.Err)
	}
	s.Update(started)
}

func TestPracticeScreen_Title(t *testing.T) {
	s, _ := newTestScreen(t, "q-1")
	start(t, s)
	if s.Title() != "Latihan PK" {
		t.Errorf("Title = %q, want %q", s.Title(), "Latihan PK")
	}
}

func TestPracticeScreen_AnswerFlow(t *testing.T) {
	s, _ := newTestScreen(t, "q-1", "q-2")
	start(t, s)

	if s.runner.Phase() != prac.PhaseAnswering {
		t.Fatalf("phase = %v, want answering", s.runner.Phase())
	}
	view := s.View(80, 24)
	if !strings.Contains(view, "Berapa 2+3?") {
		t.Error("question text missing from view")
	}

	// Choose A and submit.
	s.Update(keyPress('a'))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected submit command on Enter")
	}
	s.Update(cmd())

	if s.runner.Phase() != prac.PhaseResult {
		t.Fatalf("phase = %v, want result", s.runner.Phase())
	}
	view = s.View(80, 24)
	if !strings.Contains(view, "Benar!") {
		t.Error("correct banner missing from result view")
	}
	if !strings.Contains(view, "2+3 = 5") {
		t.Error("explanation missing from result view")
	}

	// Advance to the second question.
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected advance command on Enter")
	}
	s.Update(cmd())

	if s.runner.Phase() != prac.PhaseAnswering {
		t.Errorf("phase = %v, want answering after advance", s.runner.Phase())
	}
}

func TestPracticeScreen_ExhaustedAdvance(t *testing.T) {
	s, _ := newTestScreen(t, "q-1")
	start(t, s)

	s.Update(keyPress('a'))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(cmd())

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	s.Update(cmd())

	if s.runner.Phase() != prac.PhaseExhausted {
		t.Fatalf("phase = %v, want exhausted", s.runner.Phase())
	}
	view := s.View(80, 24)
	if !strings.Contains(view, "Soal habis") {
		t.Error("exhausted banner missing from view")
	}
}

func TestPracticeScreen_QuitConfirm(t *testing.T) {
	s, _ := newTestScreen(t, "q-1")
	start(t, s)

	s.Update(specialKey(tea.KeyEscape))
	if !s.showQuitConfirm {
		t.Fatal("expected quit confirmation dialog")
	}

	s.Update(keyPress('n'))
	if s.showQuitConfirm {
		t.Error("expected quit confirmation to be dismissed")
	}
}

func TestPracticeScreen_QuitEndsSession(t *testing.T) {
	s, backend := newTestScreen(t, "q-1")
	start(t, s)

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected end command after quit confirmation")
	}
	msg := cmd()
	ended, ok := msg.(endedMsg)
	if !ok {
		t.Fatalf("end command returned %T", msg)
	}
	if ended.Err != nil {
		t.Fatalf("end: %v", ended.Err)
	}
	if !backend.ended {
		t.Error("session was not ended on the server")
	}

	// The summary replaces the practice screen in place.
	_, cmd = s.Update(ended)
	if cmd == nil {
		t.Fatal("expected navigation command after session end")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected a ReplaceScreenMsg to the summary screen")
	}
}

func TestPracticeScreen_SubmitRequiresSelectionLock(t *testing.T) {
	s, _ := newTestScreen(t, "q-1")
	start(t, s)

	// busy blocks all input until the in-flight command resolves.
	s.busy = true
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no command while busy")
	}
}

func TestPracticeScreen_KeyHints(t *testing.T) {
	s, _ := newTestScreen(t, "q-1")
	start(t, s)
	if len(s.KeyHints()) == 0 {
		t.Error("expected non-empty key hints")
	}
}
