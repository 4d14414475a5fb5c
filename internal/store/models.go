package store

import "time"

// SessionRecord is one finished session as stored in the history.
type SessionRecord struct {
	ID          string
	Day         string
	ProcessName string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	Duration    int64 // seconds
	CreatedAt   time.Time
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	Day         string
	ProcessName string
	Limit       int
}

// ProcessTotal represents aggregated time per process for one day.
type ProcessTotal struct {
	ProcessName  string
	TotalSeconds int64
	SessionCount int
}
