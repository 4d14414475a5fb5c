// Package tracker implements the session detection state machine.
package tracker

import "time"

// ActiveSession is the interval currently being tracked.
type ActiveSession struct {
	StartTime   time.Time
	ProcessName string
	Title       string
}

// Session is a finished activity interval. DurationSeconds is always >= 1.
type Session struct {
	StartTime       time.Time
	EndTime         time.Time
	ProcessName     string
	Title           string
	DurationSeconds int64
}

// trackerState is the current state of the session machine.
type trackerState int

const (
	stateIdle trackerState = iota
	stateTracking
)

// Tracker turns a stream of normalized observations into sessions. It is
// not safe for concurrent use; callers serialize access.
type Tracker struct {
	state   trackerState
	current ActiveSession
}

func New() *Tracker {
	return &Tracker{state: stateIdle}
}

// Observe feeds one sample of the foreground process and its canonical
// title taken at the given instant. It returns the session closed by this
// sample, if any.
func (t *Tracker) Observe(process, title string, at time.Time) (Session, bool) {
	if t.state == stateIdle {
		t.open(process, title, at)
		return Session{}, false
	}

	if process == t.current.ProcessName && title == t.current.Title {
		return Session{}, false
	}

	s, ok := t.close(at)
	t.open(process, title, at)
	return s, ok
}

// Shutdown closes the open session at the given instant and returns the
// tracker to idle. Calling it again while idle is a no-op.
func (t *Tracker) Shutdown(at time.Time) (Session, bool) {
	if t.state == stateIdle {
		return Session{}, false
	}
	s, ok := t.close(at)
	t.state = stateIdle
	t.current = ActiveSession{}
	return s, ok
}

// Current returns the open session.
func (t *Tracker) Current() (ActiveSession, bool) {
	return t.current, t.state == stateTracking
}

func (t *Tracker) open(process, title string, at time.Time) {
	t.state = stateTracking
	t.current = ActiveSession{
		StartTime:   at,
		ProcessName: process,
		Title:       title,
	}
}

func (t *Tracker) close(at time.Time) (Session, bool) {
	duration := DurationSeconds(t.current.StartTime, at)
	if duration <= 0 {
		return Session{}, false
	}
	return Session{
		StartTime:       t.current.StartTime,
		EndTime:         at,
		ProcessName:     t.current.ProcessName,
		Title:           t.current.Title,
		DurationSeconds: duration,
	}, true
}

// DurationSeconds returns whole seconds between start and end, truncated
// toward zero.
func DurationSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}
