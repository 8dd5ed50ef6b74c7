package practice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/section"
)

// Service wraps the API client with the practice-session operations.
//
// Every call suppresses the client's unauthorized redirect: an expired
// token mid-session must degrade to an inline error rather than discard
// in-progress state.
type Service struct {
	client *api.Client
}

// NewService creates a practice Service on top of the API client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// CreateSession starts a new practice session for a section.
func (s *Service) CreateSession(ctx context.Context, sec section.Section) (*Session, error) {
	if !sec.Valid() {
		return nil, fmt.Errorf("create session: unknown section %q", sec)
	}
	var out Session
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodPost,
		Path:       "/api/v1/sessions",
		Body:       map[string]any{"section": sec},
		Out:        &out,
		Schema:     api.SchemaSession,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &out, nil
}

// GetSession hydrates an existing session by id, e.g. on page load after
// navigation.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodGet,
		Path:       "/api/v1/sessions/" + url.PathEscape(id),
		Out:        &out,
		Schema:     api.SchemaSession,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &out, nil
}

// EndSession finalizes the session; the server computes duration and
// accuracy. Not idempotent server-side — callers must guard against a
// second invocation (the orchestrator latches).
func (s *Service) EndSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodPut,
		Path:       "/api/v1/sessions/" + url.PathEscape(id) + "/end",
		Body:       map[string]any{},
		Out:        &out,
		Schema:     api.SchemaSession,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return &out, nil
}

// ListSessions fetches one page of past sessions for the history view.
func (s *Service) ListSessions(ctx context.Context, page, limit int) (*SessionList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out SessionList
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodGet,
		Path:       "/api/v1/sessions",
		Query:      q,
		Out:        &out,
		Schema:     api.SchemaSessionList,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return &out, nil
}

// NextQuestion fetches the next adaptive question for a section. A 404 maps
// to api.ErrNoMoreQuestions: the section is exhausted, which is a distinct
// terminal state rather than a failure.
func (s *Service) NextQuestion(ctx context.Context, sec section.Section) (*Question, error) {
	q := url.Values{}
	q.Set("section", string(sec))
	var out Question
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodGet,
		Path:       "/api/v1/questions/next",
		Query:      q,
		Out:        &out,
		Schema:     api.SchemaQuestion,
		NoRedirect: true,
	})
	if err != nil {
		if api.IsNotFound(err) {
			return nil, api.ErrNoMoreQuestions
		}
		return nil, fmt.Errorf("next question: %w", err)
	}
	return &out, nil
}

// timeSpentMin/Max bound the reported seconds; the server rejects values
// outside [1,600].
const (
	timeSpentMin = 1
	timeSpentMax = 600
)

// ClampTimeSpent converts elapsed wall-clock time into the reported
// time_spent_seconds, always an integer in [1,600].
func ClampTimeSpent(elapsed time.Duration) int {
	secs := int(elapsed / time.Second)
	if secs < timeSpentMin {
		return timeSpentMin
	}
	if secs > timeSpentMax {
		return timeSpentMax
	}
	return secs
}

// SubmitInput describes one answer submission. Elapsed is wall-clock time
// since the question was shown; the service clamps it before sending.
type SubmitInput struct {
	QuestionID string
	Selected   Answer
	Elapsed    time.Duration
	SessionID  string
}

// SubmitAttempt posts the answer. If the returned attempt carries a job in
// the "processing" state, the caller must start the feedback poller rather
// than expect embedded feedback.
func (s *Service) SubmitAttempt(ctx context.Context, in SubmitInput) (*Attempt, error) {
	if !in.Selected.Valid() {
		return nil, fmt.Errorf("submit attempt: invalid answer %q", in.Selected)
	}
	var out Attempt
	_, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/attempts",
		Body: map[string]any{
			"question_id":        in.QuestionID,
			"selected_answer":    in.Selected,
			"time_spent_seconds": ClampTimeSpent(in.Elapsed),
			"session_id":         in.SessionID,
		},
		Out:        &out,
		Schema:     api.SchemaAttempt,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("submit attempt: %w", err)
	}
	return &out, nil
}

// AttemptDetail fetches the enriched view of an attempt: disclosed correct
// answer, explanation, and feedback when already generated. Always called
// right after a successful submission, independent of any job.
func (s *Service) AttemptDetail(ctx context.Context, attemptID string) (*AttemptDetail, error) {
	var out AttemptDetail
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodGet,
		Path:       "/api/v1/attempts/" + url.PathEscape(attemptID),
		Out:        &out,
		Schema:     api.SchemaAttemptDetail,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("attempt detail: %w", err)
	}
	return &out, nil
}

// RateFeedback records whether the AI feedback helped. The backend accepts
// a rating only while is_helpful is null; the UI additionally disables the
// controls once a rating exists.
func (s *Service) RateFeedback(ctx context.Context, attemptID string, helpful bool) error {
	_, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodPut,
		Path:       "/api/v1/attempts/" + url.PathEscape(attemptID) + "/feedback-rating",
		Body:       map[string]any{"is_helpful": helpful},
		NoRedirect: true,
	})
	if err != nil {
		return fmt.Errorf("rate feedback: %w", err)
	}
	return nil
}

// JobCheck is the outcome of one job-status poll.
type JobCheck struct {
	Done     bool
	Feedback *Feedback
}

// CheckJob polls the feedback job once. 200 means done (feedback may still
// be absent), 202 means still processing; anything else is an error.
func (s *Service) CheckJob(ctx context.Context, jobID string) (*JobCheck, error) {
	var out struct {
		JobID    string    `json:"job_id"`
		Status   string    `json:"status"`
		Feedback *Feedback `json:"feedback"`
	}
	status, err := s.client.Do(ctx, api.Request{
		Method:     http.MethodPost,
		Path:       "/api/v1/jobs/" + url.PathEscape(jobID) + "/check",
		Body:       map[string]any{},
		Out:        &out,
		Schema:     api.SchemaJobCompleted,
		NoRedirect: true,
	})
	if err != nil {
		return nil, fmt.Errorf("check job: %w", err)
	}
	if status == http.StatusAccepted {
		return &JobCheck{Done: false}, nil
	}
	return &JobCheck{Done: true, Feedback: out.Feedback}, nil
}
