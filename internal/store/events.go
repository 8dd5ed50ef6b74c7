package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gentaprep/genta-tui/ent"
	"github.com/gentaprep/genta-tui/ent/attemptevent"
	"github.com/gentaprep/genta-tui/ent/sessionevent"
)

// Session lifecycle actions stored in the event log.
const (
	actionStart = "start"
	actionEnd   = "end"
)

type eventRepo struct {
	client *ent.Client
	seq    *sequenceCounter
}

func (r *eventRepo) AppendSessionStart(ctx context.Context, data SessionStartData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.SessionEvent.Create().
		SetSequence(seqNum).
		SetSessionID(data.SessionID).
		SetSection(data.Section).
		SetAction(actionStart).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save session start: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEnd(ctx context.Context, data SessionEndData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.SessionEvent.Create().
		SetSequence(seqNum).
		SetSessionID(data.SessionID).
		SetSection(data.Section).
		SetAction(actionEnd).
		SetQuestionsAttempted(data.QuestionsAttempted).
		SetQuestionsCorrect(data.QuestionsCorrect).
		SetDurationSecs(data.DurationSecs).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save session end: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.AttemptEvent.Create().
		SetSequence(seqNum).
		SetSessionID(data.SessionID).
		SetQuestionID(data.QuestionID).
		SetSection(data.Section).
		SetSelectedAnswer(data.SelectedAnswer).
		SetCorrect(data.Correct).
		SetTimeSpentSecs(data.TimeSpentSecs).
		SetNillableThetaChange(data.ThetaChange).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentSessions(ctx context.Context, limit int) ([]SessionHistory, error) {
	q := r.client.SessionEvent.Query().
		Where(sessionevent.Action(actionEnd)).
		Order(ent.Desc(sessionevent.FieldSequence))
	if limit > 0 {
		q = q.Limit(limit)
	}
	events, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}

	out := make([]SessionHistory, 0, len(events))
	for _, e := range events {
		out = append(out, SessionHistory{
			SessionID:          e.SessionID,
			Section:            e.Section,
			EndedAt:            e.Timestamp,
			QuestionsAttempted: e.QuestionsAttempted,
			QuestionsCorrect:   e.QuestionsCorrect,
			DurationSecs:       e.DurationSecs,
		})
	}
	return out, nil
}

func (r *eventRepo) SectionStats(ctx context.Context) (map[string]SectionStats, error) {
	events, err := r.client.AttemptEvent.Query().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}

	stats := make(map[string]SectionStats)
	for _, e := range events {
		s := stats[e.Section]
		s.Section = e.Section
		s.Attempts++
		if e.Correct {
			s.Correct++
		}
		stats[e.Section] = s
	}
	return stats, nil
}

func (r *eventRepo) LastPracticed(ctx context.Context, sec string) (time.Time, error) {
	e, err := r.client.AttemptEvent.Query().
		Where(attemptevent.Section(sec)).
		Order(ent.Desc(attemptevent.FieldTimestamp)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("query last practiced: %w", err)
	}
	return e.Timestamp, nil
}
