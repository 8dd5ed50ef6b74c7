// Package jobs polls the backend's asynchronous feedback jobs. It is a
// small self-contained state machine: idle -> polling -> completed|failed,
// driven by a cancellable scheduler rather than closure-captured liveness
// flags, so every cancellation path is testable.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"
)

// PollInterval is the fixed delay between job-status checks.
const PollInterval = 2 * time.Second

// MaxAttempts bounds polling at 30 checks, a 60-second ceiling.
const MaxAttempts = 30

// ErrPollTimeout is synthesized when a job is still processing after
// MaxAttempts checks. It is a client-side error, not an HTTP status.
var ErrPollTimeout = errors.New("feedback generation timed out")

// Feedback is the poller's view of a completed job's payload.
type Feedback struct {
	ID               string
	Text             string
	ModelUsed        string
	GenerationTimeMs *int
}

// CheckResult is one poll outcome: done (with optional feedback) or still
// processing.
type CheckResult struct {
	Done     bool
	Feedback *Feedback
}

// Checker performs a single job-status request.
type Checker interface {
	Check(ctx context.Context, jobID string) (*CheckResult, error)
}

// Status is the poller's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusPolling
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPolling:
		return "polling"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// State is a snapshot of the poller, safe to read from the UI loop.
type State struct {
	Status   Status
	Attempts int
	Feedback *Feedback
	Err      error
}

// Poller drives the fixed-interval job polling loop. A response that
// arrives after Stop or a restart belongs to a stale generation and is
// discarded rather than applied.
type Poller struct {
	checker  Checker
	sched    Scheduler
	interval time.Duration
	maxTries int

	mu         sync.Mutex
	status     Status
	attempts   int
	feedback   *Feedback
	err        error
	timer      TimerHandle
	generation uint64
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the poll interval (tests).
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithMaxAttempts overrides the attempt ceiling (tests).
func WithMaxAttempts(n int) Option {
	return func(p *Poller) { p.maxTries = n }
}

// New creates a Poller using the given checker and scheduler.
func New(checker Checker, sched Scheduler, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		sched:    sched,
		interval: PollInterval,
		maxTries: MaxAttempts,
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current snapshot.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Status: p.status, Attempts: p.attempts, Feedback: p.feedback, Err: p.err}
}

// Start begins polling the given job, resetting any prior outcome. Valid
// from any state; an active loop is cancelled first. The first check is
// scheduled immediately.
func (p *Poller) Start(ctx context.Context, jobID string) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.cancelTimerLocked()
	p.status = StatusPolling
	p.attempts = 0
	p.feedback = nil
	p.err = nil
	p.timer = p.sched.AfterFunc(0, func() { p.check(ctx, gen, jobID) })
	p.mu.Unlock()
}

// Stop cancels any pending check. Idempotent and safe from any state,
// including before Start was ever called. An in-flight HTTP request is not
// aborted; its continuation notices the stale generation and exits.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.cancelTimerLocked()
	if p.status == StatusPolling {
		p.status = StatusIdle
	}
}

func (p *Poller) cancelTimerLocked() {
	if p.timer != nil {
		p.timer.Cancel()
		p.timer = nil
	}
}

// check performs one status request and applies the outcome, unless the
// poller moved on while the request was in flight.
func (p *Poller) check(ctx context.Context, gen uint64, jobID string) {
	res, err := p.checker.Check(ctx, jobID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen || p.status != StatusPolling {
		// Stale continuation: the consumer advanced or stopped. Discard.
		return
	}
	p.timer = nil

	switch {
	case err != nil:
		p.status = StatusFailed
		p.err = err

	case res.Done:
		p.status = StatusCompleted
		p.feedback = res.Feedback

	default:
		p.attempts++
		if p.attempts >= p.maxTries {
			p.status = StatusFailed
			p.err = ErrPollTimeout
			return
		}
		p.timer = p.sched.AfterFunc(p.interval, func() { p.check(ctx, gen, jobID) })
	}
}
