package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openTestRepo(t *testing.T) EventRepo {
	t.Helper()
	repo, err := openTestStore(t).EventRepo()
	if err != nil {
		t.Fatalf("event repo: %v", err)
	}
	return repo
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSessionLifecycleEvents(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.AppendSessionStart(ctx, SessionStartData{SessionID: "sess-1", Section: "PK"}); err != nil {
		t.Fatalf("append start: %v", err)
	}
	theta := 0.05
	if err := repo.AppendAttempt(ctx, AttemptData{
		SessionID: "sess-1", QuestionID: "q-1", Section: "PK",
		SelectedAnswer: "C", Correct: true, TimeSpentSecs: 42, ThetaChange: &theta,
	}); err != nil {
		t.Fatalf("append attempt: %v", err)
	}
	if err := repo.AppendAttempt(ctx, AttemptData{
		SessionID: "sess-1", QuestionID: "q-2", Section: "PK",
		SelectedAnswer: "B", Correct: false, TimeSpentSecs: 90,
	}); err != nil {
		t.Fatalf("append attempt: %v", err)
	}
	if err := repo.AppendSessionEnd(ctx, SessionEndData{
		SessionID: "sess-1", Section: "PK",
		QuestionsAttempted: 2, QuestionsCorrect: 1, DurationSecs: 140,
	}); err != nil {
		t.Fatalf("append end: %v", err)
	}

	recent, err := repo.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("recent sessions = %d, want 1", len(recent))
	}
	got := recent[0]
	if got.SessionID != "sess-1" || got.Section != "PK" {
		t.Errorf("history = %+v", got)
	}
	if got.QuestionsAttempted != 2 || got.QuestionsCorrect != 1 || got.DurationSecs != 140 {
		t.Errorf("totals = %+v, want 2/1/140s", got)
	}
}

func TestRecentSessionsOrderAndLimit(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		if err := repo.AppendSessionEnd(ctx, SessionEndData{
			SessionID: id, Section: "PU", QuestionsAttempted: 1,
		}); err != nil {
			t.Fatalf("append end %s: %v", id, err)
		}
	}

	recent, err := repo.RecentSessions(ctx, 2)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].SessionID != "sess-3" || recent[1].SessionID != "sess-2" {
		t.Errorf("order = %s, %s; want newest first", recent[0].SessionID, recent[1].SessionID)
	}
}

func TestSectionStats(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	attempts := []AttemptData{
		{SessionID: "s1", QuestionID: "q1", Section: "PK", SelectedAnswer: "A", Correct: true, TimeSpentSecs: 10},
		{SessionID: "s1", QuestionID: "q2", Section: "PK", SelectedAnswer: "B", Correct: false, TimeSpentSecs: 20},
		{SessionID: "s2", QuestionID: "q3", Section: "LBI", SelectedAnswer: "C", Correct: true, TimeSpentSecs: 30},
	}
	for _, a := range attempts {
		if err := repo.AppendAttempt(ctx, a); err != nil {
			t.Fatalf("append attempt: %v", err)
		}
	}

	stats, err := repo.SectionStats(ctx)
	if err != nil {
		t.Fatalf("section stats: %v", err)
	}
	pk := stats["PK"]
	if pk.Attempts != 2 || pk.Correct != 1 {
		t.Errorf("PK stats = %+v, want 2 attempts 1 correct", pk)
	}
	if pk.Accuracy() != 0.5 {
		t.Errorf("PK accuracy = %v, want 0.5", pk.Accuracy())
	}
	if stats["LBI"].Attempts != 1 {
		t.Errorf("LBI stats = %+v", stats["LBI"])
	}
}

func TestLastPracticed(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	when, err := repo.LastPracticed(ctx, "PM")
	if err != nil {
		t.Fatalf("last practiced: %v", err)
	}
	if !when.IsZero() {
		t.Errorf("last practiced = %v, want zero with no attempts", when)
	}

	if err := repo.AppendAttempt(ctx, AttemptData{
		SessionID: "s1", QuestionID: "q1", Section: "PM",
		SelectedAnswer: "D", Correct: true, TimeSpentSecs: 15,
	}); err != nil {
		t.Fatalf("append attempt: %v", err)
	}
	when, err = repo.LastPracticed(ctx, "PM")
	if err != nil {
		t.Fatalf("last practiced: %v", err)
	}
	if when.IsZero() {
		t.Error("last practiced should be set after an attempt")
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	repo, err := s.EventRepo()
	if err != nil {
		t.Fatalf("event repo: %v", err)
	}
	ctx := context.Background()

	if err := repo.AppendSessionEnd(ctx, SessionEndData{SessionID: "s1", Section: "PU"}); err != nil {
		t.Fatalf("append end: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	recent, err := repo.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("recent sessions: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("recent sessions after reset = %d, want 0", len(recent))
	}
}
