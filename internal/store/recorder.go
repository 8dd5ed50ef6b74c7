package store

import (
	"context"

	"github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/section"
)

// Recorder adapts the local event log to the practice session's history
// hooks.
type Recorder struct {
	repo EventRepo
}

var _ practice.HistoryRecorder = (*Recorder)(nil)

func NewRecorder(repo EventRepo) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) RecordSessionStart(ctx context.Context, sessionID string, sec section.Section) error {
	return r.repo.AppendSessionStart(ctx, SessionStartData{
		SessionID: sessionID,
		Section:   string(sec),
	})
}

func (r *Recorder) RecordAttempt(ctx context.Context, ev practice.AttemptEvent) error {
	return r.repo.AppendAttempt(ctx, AttemptData{
		SessionID:      ev.SessionID,
		QuestionID:     ev.QuestionID,
		Section:        string(ev.Section),
		SelectedAnswer: string(ev.Selected),
		Correct:        ev.Correct,
		TimeSpentSecs:  ev.TimeSpentSeconds,
		ThetaChange:    ev.ThetaChange,
	})
}

func (r *Recorder) RecordSessionEnd(ctx context.Context, sessionID string, sec section.Section, attempted, correct, durationSeconds int) error {
	return r.repo.AppendSessionEnd(ctx, SessionEndData{
		SessionID:          sessionID,
		Section:            string(sec),
		QuestionsAttempted: attempted,
		QuestionsCorrect:   correct,
		DurationSecs:       durationSeconds,
	})
}
