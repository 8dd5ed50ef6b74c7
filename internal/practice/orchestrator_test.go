package practice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/jobs"
	"github.com/gentaprep/genta-tui/internal/section"
)

// fakeTimer and fakeScheduler let the tests fire poll timers by hand.
type fakeTimer struct {
	fn        func()
	cancelled bool
	fired     bool
}

func (t *fakeTimer) Cancel() { t.cancelled = true }

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) jobs.TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	ft := &fakeTimer{fn: fn}
	s.timers = append(s.timers, ft)
	return ft
}

// fire runs the oldest pending timer. Returns false when none remain.
func (s *fakeScheduler) fire() bool {
	s.mu.Lock()
	var next *fakeTimer
	for _, ft := range s.timers {
		if !ft.fired && !ft.cancelled {
			next = ft
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	s.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

// attemptScript configures the backend's grading of one question.
type attemptScript struct {
	correct       bool
	correctAnswer Answer
	thetaChange   *float64
	jobID         string // non-empty: feedback deferred to a processing job
	feedbackText  string // embedded directly when jobID is empty
}

// scriptedBackend is an in-process stand-in for the practice API, serving
// a fixed queue of questions and per-question grading scripts.
type scriptedBackend struct {
	t *testing.T

	mu        sync.Mutex
	questions []string
	served    int
	scripts   map[string]attemptScript // by question id

	endCalls    int
	jobChecks   map[string]int
	jobDoneAt   map[string]int // check number that flips to 200
	ratings     map[string]bool
	detailFails bool

	// When set, the first attempt submission closes submitStarted and
	// then blocks until submitRelease closes, so a test can interleave
	// other calls with an in-flight submit.
	submitStarted chan struct{}
	submitRelease chan struct{}
}

func newScriptedBackend(t *testing.T) (*scriptedBackend, *Service, *httptest.Server) {
	t.Helper()
	b := &scriptedBackend{
		t:         t,
		scripts:   map[string]attemptScript{},
		jobChecks: map[string]int{},
		jobDoneAt: map[string]int{},
		ratings:   map[string]bool{},
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, auth.StaticToken("test-token"))
	return b, NewService(client), srv
}

func (b *scriptedBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/sessions/"):
		id := strings.TrimPrefix(path, "/api/v1/sessions/")
		writeJSON(w, http.StatusOK, map[string]any{
			"id":                  id,
			"section":             "PK",
			"started_at":          "2026-01-10T08:00:00Z",
			"questions_attempted": 0,
			"questions_correct":   0,
		})

	case r.Method == http.MethodPut && strings.HasSuffix(path, "/end"):
		b.endCalls++
		attempted, correct := 0, 0
		for _, qid := range b.questions[:b.served] {
			if _, ok := b.scripts[qid]; ok {
				attempted++
				if b.scripts[qid].correct {
					correct++
				}
			}
		}
		resp := map[string]any{
			"id":                  strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/sessions/"), "/end"),
			"section":             "PK",
			"started_at":          "2026-01-10T08:00:00Z",
			"ended_at":            "2026-01-10T08:12:00Z",
			"duration_minutes":    12,
			"questions_attempted": attempted,
			"questions_correct":   correct,
		}
		if attempted > 0 {
			resp["accuracy_in_session"] = float64(correct) / float64(attempted)
		}
		writeJSON(w, http.StatusOK, resp)

	case r.Method == http.MethodGet && path == "/api/v1/questions/next":
		if b.served >= len(b.questions) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"code": "NOT_FOUND", "message": "no more questions", "status": 404,
			})
			return
		}
		qid := b.questions[b.served]
		b.served++
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      qid,
			"section": "PK",
			"text":    "Berapakah nilai x?",
			"optionA": "1", "optionB": "2", "optionC": "3", "optionD": "4", "optionE": "5",
		})

	case r.Method == http.MethodPost && path == "/api/v1/attempts":
		if b.submitStarted != nil {
			close(b.submitStarted)
			b.submitStarted = nil
		}
		if b.submitRelease != nil {
			<-b.submitRelease
		}
		var body struct {
			QuestionID       string `json:"question_id"`
			SelectedAnswer   string `json:"selected_answer"`
			TimeSpentSeconds int    `json:"time_spent_seconds"`
			SessionID        string `json:"session_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.TimeSpentSeconds < 1 || body.TimeSpentSeconds > 600 {
			b.t.Errorf("time_spent_seconds %d out of range", body.TimeSpentSeconds)
		}
		script := b.scripts[body.QuestionID]
		resp := map[string]any{
			"id":                 "att-" + body.QuestionID,
			"question_id":        body.QuestionID,
			"selected_answer":    body.SelectedAnswer,
			"is_correct":         script.correct,
			"time_spent_seconds": body.TimeSpentSeconds,
			"created_at":         "2026-01-10T08:01:00Z",
		}
		if script.thetaChange != nil {
			resp["theta_change"] = *script.thetaChange
		}
		if script.jobID != "" {
			resp["job"] = map[string]any{"job_id": script.jobID, "status": "processing"}
		}
		writeJSON(w, http.StatusOK, resp)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/attempts/"):
		if b.detailFails {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"code": "INTERNAL_ERROR", "message": "boom", "status": 500,
			})
			return
		}
		qid := strings.TrimPrefix(path, "/api/v1/attempts/att-")
		script := b.scripts[qid]
		resp := map[string]any{
			"id":              "att-" + qid,
			"question_id":     qid,
			"selected_answer": "C",
			"correct_answer":  string(script.correctAnswer),
			"is_correct":      script.correct,
			"created_at":      "2026-01-10T08:01:00Z",
			"question": map[string]any{
				"id": qid, "text": "Berapakah nilai x?", "explanation": "Substitusi nilai ke persamaan.",
			},
		}
		if script.jobID == "" && script.feedbackText != "" {
			resp["feedback"] = map[string]any{
				"id": "fb-" + qid, "feedback_text": script.feedbackText, "model_used": "feedback-v2",
			}
		}
		writeJSON(w, http.StatusOK, resp)

	case r.Method == http.MethodPut && strings.HasSuffix(path, "/feedback-rating"):
		var body struct {
			IsHelpful bool `json:"is_helpful"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/attempts/"), "/feedback-rating")
		b.ratings[id] = body.IsHelpful
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/check"):
		jobID := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/jobs/"), "/check")
		b.jobChecks[jobID]++
		if doneAt, ok := b.jobDoneAt[jobID]; !ok || b.jobChecks[jobID] < doneAt {
			writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID, "status": "processing"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"job_id": jobID,
			"status": "completed",
			"feedback": map[string]any{
				"id":            "fb-" + jobID,
				"feedback_text": "Cek kembali operasi pecahan pada langkah kedua.",
				"model_used":    "feedback-v2",
			},
		})

	default:
		b.t.Errorf("unexpected request %s %s", r.Method, path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func floatPtr(f float64) *float64 { return &f }

func TestRunner_FullSession(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1", "q-2"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerC, thetaChange: floatPtr(0.05)}
	backend.scripts["q-2"] = attemptScript{correct: false, correctAnswer: AnswerA}

	r := NewRunner(svc, WithScheduler(&fakeScheduler{}))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Phase() != PhaseAnswering {
		t.Fatalf("phase = %v, want answering", r.Phase())
	}
	if r.Section() != section.PK {
		t.Errorf("section = %v, want PK", r.Section())
	}

	// Question 1: correct.
	r.SelectAnswer(AnswerC)
	if !r.CanSubmit() {
		t.Fatal("CanSubmit should be true after selecting")
	}
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit q-1: %v", err)
	}
	if r.Phase() != PhaseResult {
		t.Fatalf("phase = %v, want result", r.Phase())
	}
	if !r.Attempt().IsCorrect {
		t.Error("q-1 attempt should be correct")
	}
	if got := r.Progress(); got.Attempted != 1 || got.Correct != 1 {
		t.Errorf("progress = %+v, want 1/1", got)
	}
	if r.Detail() == nil || r.Detail().CorrectAnswer != AnswerC {
		t.Errorf("detail = %+v, want correct answer C", r.Detail())
	}

	// Question 2: incorrect.
	if err := r.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if r.Phase() != PhaseAnswering {
		t.Fatalf("phase = %v, want answering", r.Phase())
	}
	if r.Attempt() != nil || r.Detail() != nil || r.Selected() != nil {
		t.Error("per-question state should be cleared on advance")
	}
	r.SelectAnswer(AnswerB)
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit q-2: %v", err)
	}
	if got := r.Progress(); got.Attempted != 2 || got.Correct != 1 {
		t.Errorf("progress = %+v, want 2/1", got)
	}

	summary, err := r.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if summary.TotalQuestions != 2 || summary.CorrectAnswers != 1 {
		t.Errorf("summary = %d/%d, want 2/1", summary.TotalQuestions, summary.CorrectAnswers)
	}
	if summary.Accuracy != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", summary.Accuracy)
	}
	if summary.DurationMinutes != 12 {
		t.Errorf("duration = %d, want 12", summary.DurationMinutes)
	}
	if summary.ThetaChange == nil || *summary.ThetaChange != 0.05 {
		t.Errorf("theta change = %v, want 0.05", summary.ThetaChange)
	}
	if summary.Section == nil || *summary.Section != section.PK {
		t.Errorf("section = %v, want PK", summary.Section)
	}
	if r.Phase() != PhaseFinished {
		t.Errorf("phase = %v, want finished", r.Phase())
	}

	// Finishing again must not hit the server a second time.
	again, err := r.Finish(ctx)
	if err != nil {
		t.Fatalf("second Finish: %v", err)
	}
	if again != summary {
		t.Error("second Finish should return the latched summary")
	}
	if backend.endCalls != 1 {
		t.Errorf("end calls = %d, want 1", backend.endCalls)
	}
}

func TestRunner_FeedbackPolling(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1"}
	backend.scripts["q-1"] = attemptScript{correct: false, correctAnswer: AnswerD, jobID: "job-1"}
	backend.jobDoneAt["job-1"] = 2

	sched := &fakeScheduler{}
	r := NewRunner(svc, WithScheduler(sched))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.SelectAnswer(AnswerB)
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Feedback() != nil {
		t.Fatal("feedback should not exist before the job completes")
	}
	if st := r.FeedbackState(); st.Status != jobs.StatusPolling {
		t.Fatalf("poll status = %v, want polling", st.Status)
	}

	// First check: still processing.
	sched.fire()
	r.SyncFeedback()
	if r.Feedback() != nil {
		t.Fatal("feedback should still be pending after a 202")
	}

	// Second check: completed.
	sched.fire()
	r.SyncFeedback()
	fb := r.Feedback()
	if fb == nil || fb.Text != "Cek kembali operasi pecahan pada langkah kedua." {
		t.Fatalf("feedback = %+v, want completed text", fb)
	}
	if !r.CanRate() {
		t.Fatal("fresh feedback should be ratable")
	}

	if err := r.RateFeedback(ctx, true); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	if r.CanRate() {
		t.Error("rated feedback must not be ratable again")
	}
	if got, ok := backend.ratings["att-q-1"]; !ok || !got {
		t.Errorf("backend rating = %v/%v, want true", got, ok)
	}
	if backend.jobChecks["job-1"] != 2 {
		t.Errorf("job checks = %d, want 2", backend.jobChecks["job-1"])
	}
}

func TestRunner_AdvanceDiscardsStaleFeedback(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1", "q-2"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerA, jobID: "job-1"}
	backend.scripts["q-2"] = attemptScript{correct: true, correctAnswer: AnswerB}
	backend.jobDoneAt["job-1"] = 1

	sched := &fakeScheduler{}
	r := NewRunner(svc, WithScheduler(sched))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.SelectAnswer(AnswerA)
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Advance before the job's first check ever fires.
	if err := r.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st := r.FeedbackState(); st.Status != jobs.StatusIdle {
		t.Fatalf("poll status = %v, want idle after advance", st.Status)
	}
	if sched.fire() {
		t.Error("no timer should remain fireable after advance")
	}
	if backend.jobChecks["job-1"] != 0 {
		t.Errorf("job checks = %d, want 0", backend.jobChecks["job-1"])
	}
	r.SyncFeedback()
	if r.Feedback() != nil {
		t.Error("stale feedback must not surface on the next question")
	}
}

func TestRunner_QuestionLimit(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1", "q-2"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerA}

	r := NewRunner(svc, WithScheduler(&fakeScheduler{}), WithMaxQuestions(1))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.SelectAnswer(AnswerA)
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !r.AtQuestionLimit() {
		t.Fatal("limit of 1 should be reached after one attempt")
	}
	if err := r.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if r.Phase() != PhaseExhausted {
		t.Errorf("phase = %v, want exhausted at question cap", r.Phase())
	}
	if backend.served != 1 {
		t.Errorf("questions served = %d, want 1", backend.served)
	}
}

func TestRunner_ExhaustedFromStart(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = nil

	r := NewRunner(svc, WithScheduler(&fakeScheduler{}))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Phase() != PhaseExhausted {
		t.Fatalf("phase = %v, want exhausted", r.Phase())
	}

	summary, err := r.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if summary.TotalQuestions != 0 {
		t.Errorf("summary questions = %d, want 0", summary.TotalQuestions)
	}
	if summary.ThetaChange != nil {
		t.Errorf("theta change = %v, want nil with no attempts", summary.ThetaChange)
	}
}

func TestRunner_SubmitGates(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerA}

	r := NewRunner(svc, WithScheduler(&fakeScheduler{}))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.CanSubmit() {
		t.Error("CanSubmit should be false without a selection")
	}
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit without selection should be a no-op, got %v", err)
	}
	if r.Progress().Attempted != 0 {
		t.Error("no attempt should be recorded without a selection")
	}

	r.SelectAnswer(AnswerA)
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// Selection is frozen once the result shows.
	r.SelectAnswer(AnswerE)
	if *r.Selected() != AnswerA {
		t.Errorf("selected = %v, want A preserved in result phase", *r.Selected())
	}
	// A second submit in the result phase must not double-count.
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("repeat Submit should be a no-op, got %v", err)
	}
	if r.Progress().Attempted != 1 {
		t.Errorf("attempted = %d, want 1", r.Progress().Attempted)
	}
}

func TestRunner_ConcurrentReadsDuringSubmit(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerA}
	backend.submitStarted = make(chan struct{})
	backend.submitRelease = make(chan struct{})

	r := NewRunner(svc, WithScheduler(&fakeScheduler{}))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.SelectAnswer(AnswerA)

	started := backend.submitStarted
	errc := make(chan error, 1)
	go func() { errc <- r.Submit(ctx) }()
	<-started

	// The reads a render loop performs every frame, while the submit is
	// held mid-flight by the backend.
	for i := 0; i < 200; i++ {
		_ = r.Phase()
		_ = r.Progress()
		_ = r.Selected()
		_ = r.Question()
		_ = r.Elapsed()
		_ = r.SessionElapsed()
		_ = r.FeedbackState()
	}
	if r.CanSubmit() {
		t.Error("CanSubmit should be false while a submit is in flight")
	}
	close(backend.submitRelease)

	if err := <-errc; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Phase() != PhaseResult {
		t.Fatalf("phase = %v, want result", r.Phase())
	}
	if got := r.Progress(); got.Attempted != 1 || got.Correct != 1 {
		t.Errorf("progress = %+v, want 1/1", got)
	}
}

func TestRunner_DetailFailureKeepsGradedResult(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerA}
	backend.detailFails = true

	r := NewRunner(svc, WithScheduler(&fakeScheduler{}))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.SelectAnswer(AnswerA)
	err := r.Submit(ctx)
	if !errors.Is(err, ErrDetailUnavailable) {
		t.Fatalf("Submit error = %v, want ErrDetailUnavailable", err)
	}
	if r.Phase() != PhaseResult {
		t.Errorf("phase = %v, graded result should survive a detail failure", r.Phase())
	}
	if r.Attempt() == nil || !r.Attempt().IsCorrect {
		t.Error("graded attempt should be kept")
	}
	if r.Detail() != nil {
		t.Error("detail should stay empty after the failed fetch")
	}
	if r.Progress().Attempted != 1 {
		t.Errorf("attempted = %d, want 1", r.Progress().Attempted)
	}
}

// recordedEvents is a HistoryRecorder capturing everything it is handed.
type recordedEvents struct {
	starts   []string
	attempts []AttemptEvent
	ends     []string
}

func (r *recordedEvents) RecordSessionStart(_ context.Context, id string, _ section.Section) error {
	r.starts = append(r.starts, id)
	return nil
}

func (r *recordedEvents) RecordAttempt(_ context.Context, ev AttemptEvent) error {
	r.attempts = append(r.attempts, ev)
	return nil
}

func (r *recordedEvents) RecordSessionEnd(_ context.Context, id string, _ section.Section, _, _, _ int) error {
	r.ends = append(r.ends, id)
	return nil
}

func TestRunner_RecordsHistory(t *testing.T) {
	backend, svc, _ := newScriptedBackend(t)
	backend.questions = []string{"q-1"}
	backend.scripts["q-1"] = attemptScript{correct: true, correctAnswer: AnswerC, thetaChange: floatPtr(0.02)}

	rec := &recordedEvents{}
	r := NewRunner(svc, WithScheduler(&fakeScheduler{}), WithRecorder(rec))
	ctx := context.Background()

	if err := r.Start(ctx, "sess-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.SelectAnswer(AnswerC)
	if err := r.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := r.Finish(ctx); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if len(rec.starts) != 1 || rec.starts[0] != "sess-1" {
		t.Errorf("starts = %v, want [sess-1]", rec.starts)
	}
	if len(rec.attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(rec.attempts))
	}
	ev := rec.attempts[0]
	if ev.QuestionID != "q-1" || !ev.Correct || ev.Selected != AnswerC {
		t.Errorf("attempt event = %+v", ev)
	}
	if ev.ThetaChange == nil || *ev.ThetaChange != 0.02 {
		t.Errorf("theta change = %v, want 0.02", ev.ThetaChange)
	}
	if len(rec.ends) != 1 {
		t.Errorf("ends = %v, want one entry", rec.ends)
	}
}
