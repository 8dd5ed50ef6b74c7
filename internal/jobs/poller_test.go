package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeScheduler captures scheduled callbacks so tests fire them by hand.
type fakeScheduler struct {
	pending []*fakeTimer
}

type fakeTimer struct {
	fn        func()
	cancelled bool
	fired     bool
}

func (f *fakeTimer) Cancel() { f.cancelled = true }

func (s *fakeScheduler) AfterFunc(_ time.Duration, fn func()) TimerHandle {
	t := &fakeTimer{fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// fire runs the next pending non-cancelled callback. Returns false when
// nothing is left to fire.
func (s *fakeScheduler) fire() bool {
	for _, t := range s.pending {
		if !t.fired && !t.cancelled {
			t.fired = true
			t.fn()
			return true
		}
	}
	return false
}

// fakeChecker returns scripted results in order, repeating the last one.
type fakeChecker struct {
	results []checkOutcome
	calls   int
}

type checkOutcome struct {
	res *CheckResult
	err error
}

func (c *fakeChecker) Check(context.Context, string) (*CheckResult, error) {
	i := c.calls
	if i >= len(c.results) {
		i = len(c.results) - 1
	}
	c.calls++
	out := c.results[i]
	return out.res, out.err
}

func stillProcessing() checkOutcome {
	return checkOutcome{res: &CheckResult{Done: false}}
}

func done(fb *Feedback) checkOutcome {
	return checkOutcome{res: &CheckResult{Done: true, Feedback: fb}}
}

func TestPoller_CompletesWithFeedback(t *testing.T) {
	sched := &fakeScheduler{}
	checker := &fakeChecker{results: []checkOutcome{
		stillProcessing(),
		done(&Feedback{ID: "f-1", Text: "Perhatikan pola deret.", ModelUsed: "gpt-4o-mini"}),
	}}
	p := New(checker, sched)

	p.Start(context.Background(), "j-1")
	if p.State().Status != StatusPolling {
		t.Fatalf("status = %v, want polling", p.State().Status)
	}

	sched.fire() // first check: 202
	sched.fire() // second check: done

	st := p.State()
	if st.Status != StatusCompleted {
		t.Fatalf("status = %v, want completed", st.Status)
	}
	if st.Feedback == nil || st.Feedback.ID != "f-1" {
		t.Errorf("feedback = %+v", st.Feedback)
	}
	if checker.calls != 2 {
		t.Errorf("calls = %d, want 2", checker.calls)
	}
}

func TestPoller_TimesOutAfterMaxAttempts(t *testing.T) {
	sched := &fakeScheduler{}
	checker := &fakeChecker{results: []checkOutcome{stillProcessing()}}
	p := New(checker, sched)

	p.Start(context.Background(), "j-1")
	for sched.fire() {
	}

	st := p.State()
	if st.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", st.Status)
	}
	if !errors.Is(st.Err, ErrPollTimeout) {
		t.Errorf("err = %v, want ErrPollTimeout", st.Err)
	}
	if checker.calls != MaxAttempts {
		t.Errorf("calls = %d, want exactly %d (no extra check after timeout)", checker.calls, MaxAttempts)
	}
	if st.Attempts != MaxAttempts {
		t.Errorf("attempts = %d, want %d", st.Attempts, MaxAttempts)
	}
}

func TestPoller_CheckErrorFails(t *testing.T) {
	sched := &fakeScheduler{}
	wantErr := errors.New("backend gone")
	checker := &fakeChecker{results: []checkOutcome{{err: wantErr}}}
	p := New(checker, sched)

	p.Start(context.Background(), "j-1")
	sched.fire()

	st := p.State()
	if st.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", st.Status)
	}
	if !errors.Is(st.Err, wantErr) {
		t.Errorf("err = %v", st.Err)
	}
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := New(&fakeChecker{results: []checkOutcome{stillProcessing()}}, &fakeScheduler{})

	// Stop before any Start.
	p.Stop()
	p.Stop()
	if p.State().Status != StatusIdle {
		t.Fatalf("status = %v, want idle", p.State().Status)
	}

	sched := &fakeScheduler{}
	p = New(&fakeChecker{results: []checkOutcome{stillProcessing()}}, sched)
	p.Start(context.Background(), "j-1")
	p.Stop()
	p.Stop()

	if p.State().Status != StatusIdle {
		t.Errorf("status = %v, want idle after stop", p.State().Status)
	}
	for _, timer := range sched.pending {
		if !timer.cancelled && !timer.fired {
			t.Error("a scheduled check is still pending after Stop")
		}
	}
}

func TestPoller_LateResultAfterStopIsDiscarded(t *testing.T) {
	sched := &fakeScheduler{}
	checker := &fakeChecker{results: []checkOutcome{done(&Feedback{ID: "late"})}}
	p := New(checker, sched)

	p.Start(context.Background(), "j-1")
	// The consumer advances to the next question before the check fires.
	p.Stop()

	// Simulate the already-scheduled check firing anyway (in production the
	// HTTP response can be in flight when Stop cancels the timer).
	for _, timer := range sched.pending {
		if !timer.fired {
			timer.fired = true
			timer.fn()
		}
	}

	st := p.State()
	if st.Status != StatusIdle {
		t.Errorf("status = %v, want idle (late result discarded)", st.Status)
	}
	if st.Feedback != nil {
		t.Errorf("feedback = %+v, want nil", st.Feedback)
	}
}

func TestPoller_RestartResetsCounterAndOutcome(t *testing.T) {
	sched := &fakeScheduler{}
	checker := &fakeChecker{results: []checkOutcome{
		stillProcessing(),
		done(&Feedback{ID: "f-1"}),
		stillProcessing(),
	}}
	p := New(checker, sched)

	p.Start(context.Background(), "j-1")
	sched.fire()
	sched.fire()
	if p.State().Status != StatusCompleted {
		t.Fatalf("first job should complete")
	}

	p.Start(context.Background(), "j-2")
	st := p.State()
	if st.Status != StatusPolling {
		t.Errorf("status = %v, want polling after restart", st.Status)
	}
	if st.Attempts != 0 {
		t.Errorf("attempts = %d, want 0 after restart", st.Attempts)
	}
	if st.Feedback != nil {
		t.Errorf("stale feedback carried across restart: %+v", st.Feedback)
	}
}
