package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/sadopc/wintrackr/internal/dailylog"
	"github.com/sadopc/wintrackr/internal/store"
)

// ErrNoHistory is returned for lookups that need the history database when
// none is available.
var ErrNoHistory = errors.New("session history is not available")

// Session returns the single session with the given ID. Daily logs carry no
// IDs, so this needs the history database.
func Session(ctx context.Context, hs *store.Store, id string) ([]store.SessionRecord, error) {
	if hs == nil {
		return nil, ErrNoHistory
	}
	rec, err := hs.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return []store.SessionRecord{*rec}, nil
}

// Sessions returns the sessions of day, from the history database when hs
// is non-nil and from the daily log otherwise.
func Sessions(ctx context.Context, hs *store.Store, log *dailylog.Log, day string) ([]store.SessionRecord, error) {
	if hs != nil {
		return hs.ListSessions(ctx, store.SessionFilter{Day: day})
	}
	return FromDailyLog(log, day)
}

// FromDailyLog reads day's CSV log into session records. Records read this
// way carry no ID.
func FromDailyLog(log *dailylog.Log, day string) ([]store.SessionRecord, error) {
	rows, err := log.ReadDay(day)
	if err != nil {
		return nil, err
	}

	records := make([]store.SessionRecord, 0, len(rows))
	for i, row := range rows {
		s, err := dailylog.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("daily log %s row %d: %w", day, i+2, err)
		}
		records = append(records, store.SessionRecord{
			Day:         day,
			ProcessName: s.ProcessName,
			Title:       s.Title,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Duration:    s.DurationSeconds,
		})
	}
	return records, nil
}
