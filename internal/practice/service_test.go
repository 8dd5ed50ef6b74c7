package practice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/section"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, auth.StaticToken("test-token"))
	return NewService(client), srv
}

func TestClampTimeSpent(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"zero", 0, 1},
		{"sub-second", 400 * time.Millisecond, 1},
		{"one second", time.Second, 1},
		{"ninety seconds", 90 * time.Second, 90},
		{"exactly max", 600 * time.Second, 600},
		{"just over max", 601 * time.Second, 600},
		{"idle tab", 3 * time.Hour, 600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampTimeSpent(tc.elapsed); got != tc.want {
				t.Errorf("ClampTimeSpent(%v) = %d, want %d", tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestCreateSession_RejectsUnknownSection(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	if _, err := svc.CreateSession(context.Background(), section.Section("XX")); err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestNextQuestion_ExhaustedOn404(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    "NOT_FOUND",
			"message": "no more questions",
			"status":  404,
		})
	}))
	_, err := svc.NextQuestion(context.Background(), section.PK)
	if !errors.Is(err, api.ErrNoMoreQuestions) {
		t.Fatalf("err = %v, want ErrNoMoreQuestions", err)
	}
}

func TestSubmitAttempt_ClampsBeforeSending(t *testing.T) {
	var sent map[string]any
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/attempts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&sent)
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 "att-1",
			"question_id":        "q-1",
			"selected_answer":    "C",
			"is_correct":         true,
			"time_spent_seconds": 600,
			"created_at":         "2026-01-10T08:00:00Z",
		})
	}))

	_, err := svc.SubmitAttempt(context.Background(), SubmitInput{
		QuestionID: "q-1",
		Selected:   AnswerC,
		Elapsed:    45 * time.Minute,
		SessionID:  "sess-1",
	})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if got := sent["time_spent_seconds"]; got != float64(600) {
		t.Errorf("time_spent_seconds = %v, want 600", got)
	}
	if got := sent["session_id"]; got != "sess-1" {
		t.Errorf("session_id = %v, want sess-1", got)
	}
}

func TestSubmitAttempt_UnauthorizedMidSessionStaysPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    "UNAUTHORIZED",
			"message": "token expired",
			"status":  401,
		})
	}))
	t.Cleanup(srv.Close)

	redirected := false
	client := api.New(srv.URL, auth.StaticToken("stale-token"),
		api.WithUnauthorizedHandler(func() { redirected = true }))
	svc := NewService(client)

	_, err := svc.SubmitAttempt(context.Background(), SubmitInput{
		QuestionID: "q-1",
		Selected:   AnswerC,
		Elapsed:    30 * time.Second,
		SessionID:  "sess-1",
	})
	if !api.IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401 Error", err)
	}
	if redirected {
		t.Error("a 401 mid-session must surface as an error, not redirect to sign-in")
	}
}

func TestSubmitAttempt_RejectsInvalidAnswer(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	_, err := svc.SubmitAttempt(context.Background(), SubmitInput{
		QuestionID: "q-1",
		Selected:   Answer("F"),
		Elapsed:    time.Second,
	})
	if err == nil {
		t.Fatal("expected error for invalid answer")
	}
}

func TestCheckJob_ProcessingAndDone(t *testing.T) {
	calls := 0
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/jobs/job-9/check" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]any{"job_id": "job-9", "status": "processing"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": "job-9",
			"status": "completed",
			"feedback": map[string]any{
				"id":            "fb-1",
				"feedback_text": "Perhatikan satuan pada langkah kedua.",
				"model_used":    "feedback-v2",
			},
		})
	}))

	first, err := svc.CheckJob(context.Background(), "job-9")
	if err != nil {
		t.Fatalf("CheckJob #1: %v", err)
	}
	if first.Done {
		t.Error("first check should report processing")
	}

	second, err := svc.CheckJob(context.Background(), "job-9")
	if err != nil {
		t.Fatalf("CheckJob #2: %v", err)
	}
	if !second.Done {
		t.Error("second check should report done")
	}
	if second.Feedback == nil || second.Feedback.Text != "Perhatikan satuan pada langkah kedua." {
		t.Errorf("feedback = %+v, want completed text", second.Feedback)
	}
}

func TestRateFeedback_SendsRating(t *testing.T) {
	var gotPath, gotMethod string
	var sent map[string]any
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		json.NewDecoder(r.Body).Decode(&sent)
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))

	if err := svc.RateFeedback(context.Background(), "att-1", true); err != nil {
		t.Fatalf("RateFeedback: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/v1/attempts/att-1/feedback-rating" {
		t.Errorf("request = %s %s, want PUT /api/v1/attempts/att-1/feedback-rating", gotMethod, gotPath)
	}
	if sent["is_helpful"] != true {
		t.Errorf("is_helpful = %v, want true", sent["is_helpful"])
	}
}

func TestEndSession_DecodesFinalCounters(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/sessions/sess-1/end" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":                  "sess-1",
			"section":             "PK",
			"started_at":          "2026-01-10T08:00:00Z",
			"ended_at":            "2026-01-10T08:12:00Z",
			"duration_minutes":    12,
			"questions_attempted": 8,
			"questions_correct":   6,
			"accuracy_in_session": 0.75,
		})
	}))

	sess, err := svc.EndSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if sess.QuestionsAttempted != 8 || sess.QuestionsCorrect != 6 {
		t.Errorf("counters = %d/%d, want 8/6", sess.QuestionsAttempted, sess.QuestionsCorrect)
	}
	if sess.DurationMinutes == nil || *sess.DurationMinutes != 12 {
		t.Errorf("duration = %v, want 12", sess.DurationMinutes)
	}
	if sess.Section == nil || *sess.Section != section.PK {
		t.Errorf("section = %v, want PK", sess.Section)
	}
}
