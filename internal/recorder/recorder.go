// Package recorder persists finished sessions: it appends them to the daily
// log, aggregates them into the day's usage summary and optionally mirrors
// them into the SQLite history.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/wintrackr/internal/dailylog"
	"github.com/sadopc/wintrackr/internal/store"
	"github.com/sadopc/wintrackr/internal/summary"
	"github.com/sadopc/wintrackr/internal/tracker"
)

// History receives a copy of every recorded session.
type History interface {
	RecordSession(ctx context.Context, rec *store.SessionRecord) error
}

type Options struct {
	Log        *dailylog.Log
	SummaryDir string
	History    History // optional
	Now        func() time.Time
	Logger     *slog.Logger
}

// Recorder is not safe for concurrent use; the agent serializes calls.
type Recorder struct {
	log        *dailylog.Log
	summaryDir string
	history    History
	now        func() time.Time
	logger     *slog.Logger

	current *summary.Summary
}

func New(opts Options) *Recorder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		log:        opts.Log,
		summaryDir: opts.SummaryDir,
		history:    opts.History,
		now:        opts.Now,
		logger:     opts.Logger,
	}
}

func (r *Recorder) today() string {
	return r.now().Format(summary.DayLayout)
}

// LoadSummary returns the stored process map of day. A missing or corrupt
// snapshot yields an empty map.
func (r *Recorder) LoadSummary(day string) summary.Processes {
	path := summary.Path(r.summaryDir, day)
	procs, err := summary.Load(path)
	if err != nil {
		r.logger.Warn("summary_load_failed", "day", day, "path", path, "error", err.Error())
	}
	return procs
}

// Start loads today's summary. It is called once before the first session.
func (r *Recorder) Start() {
	day := r.today()
	r.current = summary.New(day, r.LoadSummary(day))
	r.logger.Info("summary_loaded", "day", day, "grand_total_seconds", r.current.GrandTotal())
}

// Summary returns the in-memory summary of the current day.
func (r *Recorder) Summary() *summary.Summary {
	if r.current == nil {
		r.Start()
	}
	return r.current
}

// rollover switches the in-memory summary to day, saving the previous day
// first.
func (r *Recorder) rollover(day string) error {
	if r.current == nil {
		r.Start()
	}
	if r.current.Day == day {
		return nil
	}

	prev := r.current
	r.current = summary.New(day, r.LoadSummary(day))
	r.logger.Info("day_rollover", "from", prev.Day, "to", day)

	if err := summary.Save(summary.Path(r.summaryDir, prev.Day), prev); err != nil {
		return fmt.Errorf("save summary for %s: %w", prev.Day, err)
	}
	return nil
}

// OnSession records one finished session under the day in which it is
// written. The summary is updated even when the log append fails so that
// the next flush keeps the time; the failure is still returned.
func (r *Recorder) OnSession(ctx context.Context, s tracker.Session) error {
	day := r.today()
	rollErr := r.rollover(day)

	var logErr error
	if err := r.log.Append(day, s); err != nil {
		logErr = fmt.Errorf("append daily log: %w", err)
	}

	r.current.Add(s.ProcessName, s.Title, s.DurationSeconds)

	var histErr error
	if r.history != nil {
		rec := &store.SessionRecord{
			Day:         day,
			ProcessName: s.ProcessName,
			Title:       s.Title,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Duration:    s.DurationSeconds,
		}
		if err := r.history.RecordSession(ctx, rec); err != nil {
			histErr = fmt.Errorf("record history: %w", err)
		}
	}

	r.logger.Info("session_closed",
		"process", s.ProcessName,
		"title", s.Title,
		"start", s.StartTime.Format(dailylog.TimeLayout),
		"duration_seconds", s.DurationSeconds,
	)
	return errors.Join(rollErr, logErr, histErr)
}

// FlushSummary replaces the stored snapshot of the current day with the
// in-memory summary. It is safe to call repeatedly.
func (r *Recorder) FlushSummary(_ context.Context) error {
	rollErr := r.rollover(r.today())

	path := summary.Path(r.summaryDir, r.current.Day)
	if err := summary.Save(path, r.current); err != nil {
		return errors.Join(rollErr, fmt.Errorf("flush summary: %w", err))
	}
	r.logger.Debug("summary_flushed", "day", r.current.Day, "grand_total_seconds", r.current.GrandTotal())
	return rollErr
}
