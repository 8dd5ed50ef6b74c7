package practice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/jobs"
	"github.com/gentaprep/genta-tui/internal/section"
)

// Phase is the per-question lifecycle position of a Runner.
type Phase int

const (
	// PhaseLoading means a question fetch is outstanding.
	PhaseLoading Phase = iota
	// PhaseAnswering means a question is on screen and no answer has
	// been submitted for it yet.
	PhaseAnswering
	// PhaseResult means the answer was graded and the result is shown.
	PhaseResult
	// PhaseExhausted means the bank has no more questions for the
	// session's section. The session can still be finished normally.
	PhaseExhausted
	// PhaseFinished means the session was ended and a summary built.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAnswering:
		return "answering"
	case PhaseResult:
		return "result"
	case PhaseExhausted:
		return "exhausted"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// maxQuestionsPerSession caps how many questions one sitting serves.
const maxQuestionsPerSession = 20

// ErrDetailUnavailable marks a Submit that graded the attempt but could
// not fetch the detail view. The runner is already in the result phase;
// only the explanation and embedded feedback are missing.
var ErrDetailUnavailable = errors.New("attempt detail unavailable")

// AttemptEvent is what a HistoryRecorder receives per graded answer.
type AttemptEvent struct {
	SessionID        string
	QuestionID       string
	Section          section.Section
	Selected         Answer
	Correct          bool
	TimeSpentSeconds int
	ThetaChange      *float64
}

// HistoryRecorder persists session activity locally. Recording failures
// never interrupt a session; the Runner logs and moves on.
type HistoryRecorder interface {
	RecordSessionStart(ctx context.Context, sessionID string, sec section.Section) error
	RecordAttempt(ctx context.Context, ev AttemptEvent) error
	RecordSessionEnd(ctx context.Context, sessionID string, sec section.Section, attempted, correct, durationSeconds int) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder attaches a local history recorder.
func WithRecorder(rec HistoryRecorder) RunnerOption {
	return func(r *Runner) { r.rec = rec }
}

// WithRunnerLogger attaches a logger.
func WithRunnerLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithMaxQuestions overrides the per-session question ceiling.
func WithMaxQuestions(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxQuestions = n
		}
	}
}

// WithScheduler overrides the poller's timer source, for tests.
func WithScheduler(s jobs.Scheduler) RunnerOption {
	return func(r *Runner) { r.sched = s }
}

// Runner drives one practice session through its per-question loop:
// fetch a question, collect an answer, submit, show the graded result
// (and poll for AI feedback when it is still being generated), then
// either advance to the next question or end the session.
//
// State is guarded by a mutex that is never held across a network
// call, so accessors stay responsive while a submission is in flight.
// Mutating methods are meant to be driven one at a time by a single UI
// flow; the submitting and ended flags guard against double-fires from
// repeated key presses.
type Runner struct {
	svc    *Service
	poller *jobs.Poller
	sched  jobs.Scheduler
	rec    HistoryRecorder
	log    *zap.Logger
	now    func() time.Time

	maxQuestions int

	mu sync.Mutex

	sessionID string
	sec       section.Section
	startedAt time.Time

	phase           Phase
	question        *Question
	questionShownAt time.Time
	selected        *Answer
	attempt         *Attempt
	detail          *AttemptDetail
	feedback        *Feedback

	local     LocalProgress
	thetaSum  float64
	thetaSeen bool

	submitting bool
	ended      bool
	summary    *SessionSummary
}

// NewRunner builds a Runner over svc. The poller is started only when a
// submitted attempt reports a feedback job that is still processing.
func NewRunner(svc *Service, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:          svc,
		log:          zap.NewNop(),
		now:          time.Now,
		maxQuestions: maxQuestionsPerSession,
		phase:        PhaseLoading,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sched == nil {
		r.sched = jobs.NewScheduler()
	}
	r.poller = jobs.New(checkerFunc(r.checkJob), r.sched)
	return r
}

type checkerFunc func(ctx context.Context, jobID string) (*jobs.CheckResult, error)

func (f checkerFunc) Check(ctx context.Context, jobID string) (*jobs.CheckResult, error) {
	return f(ctx, jobID)
}

// checkJob adapts the API job check to the poller's result shape.
func (r *Runner) checkJob(ctx context.Context, jobID string) (*jobs.CheckResult, error) {
	res, err := r.svc.CheckJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := &jobs.CheckResult{Done: res.Done}
	if res.Feedback != nil {
		out.Feedback = &jobs.Feedback{
			ID:               res.Feedback.ID,
			Text:             res.Feedback.Text,
			ModelUsed:        res.Feedback.ModelUsed,
			GenerationTimeMs: res.Feedback.GenerationTimeMs,
		}
	}
	return out, nil
}

// Start hydrates the session and fetches the first question.
func (r *Runner) Start(ctx context.Context, sessionID string) error {
	sess, err := r.svc.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Section == nil {
		return errors.New("session has no section")
	}

	r.mu.Lock()
	r.sessionID = sess.ID
	r.sec = *sess.Section
	r.startedAt = r.now()
	r.mu.Unlock()

	if r.rec != nil {
		if rerr := r.rec.RecordSessionStart(ctx, sess.ID, *sess.Section); rerr != nil {
			r.log.Warn("record session start failed", zap.Error(rerr))
		}
	}
	return r.loadQuestion(ctx)
}

func (r *Runner) loadQuestion(ctx context.Context) error {
	r.mu.Lock()
	r.phase = PhaseLoading
	sec := r.sec
	r.mu.Unlock()

	q, err := r.svc.NextQuestion(ctx, sec)
	if errors.Is(err, api.ErrNoMoreQuestions) {
		r.mu.Lock()
		r.phase = PhaseExhausted
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.question = q
	r.questionShownAt = r.now()
	r.phase = PhaseAnswering
	r.mu.Unlock()
	return nil
}

// SelectAnswer records the highlighted choice. Ignored outside the
// answering phase so a result screen cannot mutate the graded answer.
func (r *Runner) SelectAnswer(a Answer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseAnswering || !a.Valid() {
		return
	}
	r.selected = &a
}

// CanSubmit reports whether Submit would act right now.
func (r *Runner) CanSubmit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canSubmitLocked()
}

func (r *Runner) canSubmitLocked() bool {
	return r.phase == PhaseAnswering && r.selected != nil && !r.submitting
}

// Submit grades the selected answer. On success the runner moves to the
// result phase, local counters update, and when the attempt carries a
// feedback job that is still processing the poller starts. The graded
// result survives a failed detail fetch; only the explanation and
// feedback stay empty in that case.
func (r *Runner) Submit(ctx context.Context) error {
	r.mu.Lock()
	if !r.canSubmitLocked() {
		r.mu.Unlock()
		return nil
	}
	r.submitting = true
	in := SubmitInput{
		QuestionID: r.question.ID,
		Selected:   *r.selected,
		Elapsed:    r.now().Sub(r.questionShownAt),
		SessionID:  r.sessionID,
	}
	sec := r.sec
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.submitting = false
		r.mu.Unlock()
	}()

	attempt, err := r.svc.SubmitAttempt(ctx, in)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.attempt = attempt
	r.local.Record(attempt.IsCorrect)
	if attempt.ThetaChange != nil {
		r.thetaSum += *attempt.ThetaChange
		r.thetaSeen = true
	}
	r.phase = PhaseResult
	r.mu.Unlock()

	if r.rec != nil {
		if rerr := r.rec.RecordAttempt(ctx, AttemptEvent{
			SessionID:        in.SessionID,
			QuestionID:       in.QuestionID,
			Section:          sec,
			Selected:         in.Selected,
			Correct:          attempt.IsCorrect,
			TimeSpentSeconds: attempt.TimeSpentSeconds,
			ThetaChange:      attempt.ThetaChange,
		}); rerr != nil {
			r.log.Warn("record attempt failed", zap.Error(rerr))
		}
	}

	detail, err := r.svc.AttemptDetail(ctx, attempt.ID)
	if err != nil {
		r.log.Warn("attempt detail fetch failed", zap.String("attempt_id", attempt.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDetailUnavailable, err)
	}

	r.mu.Lock()
	r.detail = detail
	r.feedback = detail.Feedback
	startPoll := r.feedback == nil && attempt.Job != nil &&
		(attempt.Job.Status == JobQueued || attempt.Job.Status == JobProcessing)
	r.mu.Unlock()

	if startPoll {
		r.poller.Start(ctx, attempt.Job.JobID)
	}
	return nil
}

// SyncFeedback folds the poller's latest snapshot into the runner.
// Meant to be called on the UI's tick while a result is shown.
func (r *Runner) SyncFeedback() {
	st := r.poller.State()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseResult || r.feedback != nil {
		return
	}
	if st.Status == jobs.StatusCompleted && st.Feedback != nil {
		r.feedback = &Feedback{
			ID:               st.Feedback.ID,
			Text:             st.Feedback.Text,
			ModelUsed:        st.Feedback.ModelUsed,
			GenerationTimeMs: st.Feedback.GenerationTimeMs,
		}
	}
}

// CanRate reports whether the shown feedback can still be rated.
// Feedback is rated at most once.
func (r *Runner) CanRate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canRateLocked()
}

func (r *Runner) canRateLocked() bool {
	return r.feedback != nil && r.feedback.IsHelpful == nil
}

// RateFeedback submits a helpfulness rating for the current feedback.
func (r *Runner) RateFeedback(ctx context.Context, helpful bool) error {
	r.mu.Lock()
	if !r.canRateLocked() || r.attempt == nil {
		r.mu.Unlock()
		return nil
	}
	attemptID := r.attempt.ID
	r.mu.Unlock()

	if err := r.svc.RateFeedback(ctx, attemptID, helpful); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.feedback != nil {
		h := helpful
		r.feedback.IsHelpful = &h
	}
	return nil
}

// AtQuestionLimit reports whether the session served its question cap.
func (r *Runner) AtQuestionLimit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.atQuestionLimitLocked()
}

func (r *Runner) atQuestionLimitLocked() bool {
	return r.local.Attempted >= r.maxQuestions
}

// Advance discards the current question's state, stops any feedback
// poll still running, and fetches the next question. At the question
// cap or when the bank is exhausted the session must be finished
// instead.
func (r *Runner) Advance(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != PhaseResult {
		r.mu.Unlock()
		return nil
	}
	if r.atQuestionLimitLocked() {
		r.phase = PhaseExhausted
		r.mu.Unlock()
		return nil
	}
	r.question = nil
	r.selected = nil
	r.attempt = nil
	r.detail = nil
	r.feedback = nil
	r.mu.Unlock()

	r.poller.Stop()
	return r.loadQuestion(ctx)
}

// Finish ends the session exactly once and returns the summary. Later
// calls return the same summary without touching the server again.
func (r *Runner) Finish(ctx context.Context) (*SessionSummary, error) {
	r.mu.Lock()
	if r.ended {
		summary := r.summary
		r.mu.Unlock()
		return summary, nil
	}
	sessionID := r.sessionID
	r.mu.Unlock()

	r.poller.Stop()
	sess, err := r.svc.EndSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.ended = true
	r.summary = r.buildSummaryLocked(sess)
	r.phase = PhaseFinished
	summary := r.summary
	sec := r.sec
	attempted := r.local.Attempted
	correct := r.local.Correct
	duration := int(r.now().Sub(r.startedAt).Seconds())
	r.mu.Unlock()

	if r.rec != nil {
		if rerr := r.rec.RecordSessionEnd(ctx, sessionID, sec, attempted, correct, duration); rerr != nil {
			r.log.Warn("record session end failed", zap.Error(rerr))
		}
	}
	return summary, nil
}

func (r *Runner) buildSummaryLocked(sess *Session) *SessionSummary {
	sec := r.sec
	s := &SessionSummary{
		SessionID:      sess.ID,
		Section:        &sec,
		TotalQuestions: sess.QuestionsAttempted,
		CorrectAnswers: sess.QuestionsCorrect,
	}
	if s.TotalQuestions == 0 && r.local.Attempted > 0 {
		// The server did not fold the counters in yet; trust ours.
		s.TotalQuestions = r.local.Attempted
		s.CorrectAnswers = r.local.Correct
	}
	switch {
	case sess.AccuracyInSession != nil:
		s.Accuracy = *sess.AccuracyInSession
	case s.TotalQuestions > 0:
		s.Accuracy = float64(s.CorrectAnswers) / float64(s.TotalQuestions)
	}
	switch {
	case sess.DurationMinutes != nil:
		s.DurationMinutes = *sess.DurationMinutes
	case sess.EndedAt != nil:
		s.DurationMinutes = int(sess.EndedAt.Sub(sess.StartedAt).Minutes())
	default:
		s.DurationMinutes = int(r.now().Sub(r.startedAt).Minutes())
	}
	if r.thetaSeen {
		t := r.thetaSum
		s.ThetaChange = &t
	}
	return s
}

// Accessors for the UI layer. Safe to call from the render loop while a
// command goroutine is mid-flight.

func (r *Runner) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Runner) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *Runner) Section() section.Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sec
}

func (r *Runner) Question() *Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.question
}

func (r *Runner) Selected() *Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

func (r *Runner) Attempt() *Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt
}

func (r *Runner) Detail() *AttemptDetail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detail
}

func (r *Runner) Feedback() *Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feedback
}

func (r *Runner) Progress() LocalProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.local
}

func (r *Runner) FeedbackState() jobs.State {
	return r.poller.State()
}

func (r *Runner) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.questionShownAt)
}

func (r *Runner) SessionElapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.startedAt)
}
