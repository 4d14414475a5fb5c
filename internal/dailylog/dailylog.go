// Package dailylog appends finished sessions to one CSV file per day.
package dailylog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sadopc/wintrackr/internal/tracker"
)

// TimeLayout formats the start_time column.
const TimeLayout = "2006-01-02 15:04:05"

// Header is written as the first row of every new log.
var Header = []string{"start_time", "process_name", "window_title", "duration_seconds"}

// Log writes daily activity files into a directory.
type Log struct {
	dir string
}

func New(dir string) *Log {
	return &Log{dir: dir}
}

// Path returns the log file for day.
func (l *Log) Path(day string) string {
	return filepath.Join(l.dir, day+"-Activity.csv")
}

// Append adds s as one row to the log of day, creating the file with a
// header if it does not exist or is empty.
func (l *Log) Append(day string, s tracker.Session) error {
	path := l.Path(day)
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open daily log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat daily log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write log header: %w", err)
		}
	}
	if err := w.Write(Row(s)); err != nil {
		return fmt.Errorf("write log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush daily log: %w", err)
	}
	return f.Close()
}

// Row renders s in the log column order.
func Row(s tracker.Session) []string {
	return []string{
		s.StartTime.Local().Format(TimeLayout),
		s.ProcessName,
		s.Title,
		strconv.FormatInt(s.DurationSeconds, 10),
	}
}

// ReadDay returns the data rows of day's log, without the header. A missing
// log yields no rows.
func (l *Log) ReadDay(day string) ([][]string, error) {
	f, err := os.Open(l.Path(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open daily log: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read daily log: %w", err)
	}
	if len(records) > 0 {
		records = records[1:]
	}
	return records, nil
}

// ParseRow is the inverse of Row.
func ParseRow(row []string) (tracker.Session, error) {
	if len(row) != len(Header) {
		return tracker.Session{}, fmt.Errorf("log row has %d columns, want %d", len(row), len(Header))
	}
	start, err := time.ParseInLocation(TimeLayout, row[0], time.Local)
	if err != nil {
		return tracker.Session{}, fmt.Errorf("parse start_time: %w", err)
	}
	secs, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return tracker.Session{}, fmt.Errorf("parse duration_seconds: %w", err)
	}
	return tracker.Session{
		StartTime:       start,
		EndTime:         start.Add(time.Duration(secs) * time.Second),
		ProcessName:     row[1],
		Title:           row[2],
		DurationSeconds: secs,
	}, nil
}
