package practice

import (
	"time"

	prac "github.com/gentaprep/genta-tui/internal/practice"
)

// startedMsg is sent when the session has been loaded and the first
// question fetched.
type startedMsg struct {
	Err error
}

// gradedMsg is sent when an attempt submission round-trip completes.
type gradedMsg struct {
	Err error
}

// advancedMsg is sent when the next question has been fetched.
type advancedMsg struct {
	Err error
}

// ratedMsg is sent when a feedback rating has been saved.
type ratedMsg struct {
	Err error
}

// endedMsg is sent when the session has been closed on the server.
type endedMsg struct {
	Summary *prac.SessionSummary
	Err     error
}

// timerTickMsg is sent every second to refresh the timer and pull
// feedback poller state.
type timerTickMsg time.Time
