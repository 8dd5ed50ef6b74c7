package store

import (
	"context"
	"time"
)

// SessionStartData records the opening of a practice session.
type SessionStartData struct {
	SessionID string
	Section   string
}

// SessionEndData records the close of a practice session with the
// locally counted totals.
type SessionEndData struct {
	SessionID          string
	Section            string
	QuestionsAttempted int
	QuestionsCorrect   int
	DurationSecs       int
}

// AttemptData records one graded answer.
type AttemptData struct {
	SessionID      string
	QuestionID     string
	Section        string
	SelectedAnswer string
	Correct        bool
	TimeSpentSecs  int
	ThetaChange    *float64
}

// SessionHistory is one finished session as reconstructed from the
// local event log, newest first.
type SessionHistory struct {
	SessionID          string
	Section            string
	EndedAt            time.Time
	QuestionsAttempted int
	QuestionsCorrect   int
	DurationSecs       int
}

// SectionStats aggregates local attempts for one section.
type SectionStats struct {
	Section  string
	Attempts int
	Correct  int
}

// Accuracy returns Correct/Attempts, 0 when no attempts exist.
func (s SectionStats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// EventRepo provides append and query access to the local event log.
type EventRepo interface {
	// AppendSessionStart records a session opening.
	AppendSessionStart(ctx context.Context, data SessionStartData) error

	// AppendSessionEnd records a session close with final local totals.
	AppendSessionEnd(ctx context.Context, data SessionEndData) error

	// AppendAttempt records one graded answer.
	AppendAttempt(ctx context.Context, data AttemptData) error

	// RecentSessions returns up to limit finished sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]SessionHistory, error)

	// SectionStats aggregates all locally recorded attempts per section.
	SectionStats(ctx context.Context) (map[string]SectionStats, error)

	// LastPracticed returns the timestamp of the most recent attempt for
	// a section, or the zero time when none exists.
	LastPracticed(ctx context.Context, sec string) (time.Time, error)
}
