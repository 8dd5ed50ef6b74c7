// Package practice implements the client side of a Genta practice session:
// the typed request/response models, the session/question/attempt services,
// and the per-question orchestration state machine. All scoring (IRT theta,
// question selection, feedback generation) happens server-side; this package
// only drives the protocol.
package practice

import (
	"fmt"
	"time"

	"github.com/gentaprep/genta-tui/internal/section"
)

// Answer is one of the five multiple-choice letters.
type Answer string

const (
	AnswerA Answer = "A"
	AnswerB Answer = "B"
	AnswerC Answer = "C"
	AnswerD Answer = "D"
	AnswerE Answer = "E"
)

// Answers lists the five options in order.
var Answers = []Answer{AnswerA, AnswerB, AnswerC, AnswerD, AnswerE}

// Valid reports whether a is a known answer letter.
func (a Answer) Valid() bool {
	switch a {
	case AnswerA, AnswerB, AnswerC, AnswerD, AnswerE:
		return true
	}
	return false
}

// ParseAnswer converts a raw letter into an Answer.
func ParseAnswer(s string) (Answer, error) {
	a := Answer(s)
	if !a.Valid() {
		return "", fmt.Errorf("invalid answer %q", s)
	}
	return a, nil
}

// Session is one timed practice run bound to a single section (nil section
// means mixed). Counters are only refreshed by the server on end; during a
// session the orchestrator's LocalProgress is authoritative.
type Session struct {
	ID                 string           `json:"id"`
	StartedAt          time.Time        `json:"started_at"`
	EndedAt            *time.Time       `json:"ended_at,omitempty"`
	DurationMinutes    *int             `json:"duration_minutes,omitempty"`
	QuestionsAttempted int              `json:"questions_attempted"`
	QuestionsCorrect   int              `json:"questions_correct"`
	AccuracyInSession  *float64         `json:"accuracy_in_session,omitempty"`
	Section            *section.Section `json:"section,omitempty"`
}

// SessionList is one page of past sessions.
type SessionList struct {
	Data       []Session `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// Question is a practice prompt with five options. The correct answer is
// withheld until an attempt is submitted; IRT parameters are opaque
// metadata. Immutable once fetched.
type Question struct {
	ID             string          `json:"id"`
	Section        section.Section `json:"section"`
	SubType        *string         `json:"subType"`
	DifficultyIRT  *float64        `json:"difficultyIrt"`
	Text           string          `json:"text"`
	OptionA        string          `json:"optionA"`
	OptionB        string          `json:"optionB"`
	OptionC        string          `json:"optionC"`
	OptionD        string          `json:"optionD"`
	OptionE        string          `json:"optionE"`
	AvgTimeSeconds *int            `json:"avgTimeSeconds"`
}

// Options returns the five option texts in A..E order.
func (q *Question) Options() [5]string {
	return [5]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE}
}

// Option returns the text for one answer letter.
func (q *Question) Option(a Answer) string {
	switch a {
	case AnswerA:
		return q.OptionA
	case AnswerB:
		return q.OptionB
	case AnswerC:
		return q.OptionC
	case AnswerD:
		return q.OptionD
	case AnswerE:
		return q.OptionE
	}
	return ""
}

// Job statuses reported by the backend.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Job is a handle to a deferred server-side feedback generation. Transient:
// it exists only between attempt submission and feedback resolution.
type Job struct {
	JobID                      string `json:"job_id"`
	Status                     string `json:"status"`
	EstimatedCompletionSeconds int    `json:"estimated_completion_seconds"`
	CheckStatusURL             string `json:"check_status_url"`
}

// Attempt is the record of one submitted answer. Never mutated after
// creation; the richer detail view is fetched separately.
type Attempt struct {
	ID                string    `json:"id"`
	QuestionID        string    `json:"question_id"`
	SelectedAnswer    Answer    `json:"selected_answer"`
	IsCorrect         bool      `json:"is_correct"`
	TimeSpentSeconds  int       `json:"time_spent_seconds"`
	ThetaBefore       *float64  `json:"user_theta_before"`
	ThetaAfter        *float64  `json:"user_theta_after"`
	ThetaChange       *float64  `json:"theta_change"`
	FeedbackGenerated bool      `json:"feedback_generated"`
	SessionID         *string   `json:"session_id"`
	CreatedAt         time.Time `json:"created_at"`
	Job               *Job      `json:"job,omitempty"`
}

// Feedback is the AI-generated explanation for an attempt. IsHelpful
// transitions nil -> true/false exactly once; the rating gate is
// IsHelpful != nil.
type Feedback struct {
	ID               string `json:"id"`
	Text             string `json:"feedback_text"`
	ModelUsed        string `json:"model_used"`
	GenerationTimeMs *int   `json:"generation_time_ms"`
	IsHelpful        *bool  `json:"is_helpful"`
}

// QuestionExplanation is the question view embedded in an attempt detail,
// now safe to include the explanation.
type QuestionExplanation struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Explanation *string `json:"explanation"`
}

// AttemptDetail is the enriched post-submission view: the disclosed correct
// answer, the explanation, and feedback if already generated.
type AttemptDetail struct {
	ID               string               `json:"id"`
	QuestionID       string               `json:"question_id"`
	SelectedAnswer   Answer               `json:"selected_answer"`
	CorrectAnswer    Answer               `json:"correct_answer"`
	IsCorrect        bool                 `json:"is_correct"`
	TimeSpentSeconds int                  `json:"time_spent_seconds"`
	ThetaChange      *float64             `json:"theta_change"`
	CreatedAt        time.Time            `json:"created_at"`
	Question         *QuestionExplanation `json:"question"`
	Feedback         *Feedback            `json:"feedback"`
}

// SessionSummary is derived at session end from the finalized server
// session plus locally accumulated state. Not persisted.
type SessionSummary struct {
	SessionID       string
	Section         *section.Section
	TotalQuestions  int
	CorrectAnswers  int
	Accuracy        float64
	DurationMinutes int

	// ThetaChange is the sum of per-attempt theta deltas observed during
	// the session; nil when no attempt carried one.
	ThetaChange *float64
}
