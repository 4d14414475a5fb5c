package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/wintrackr/internal/store"
)

type jsonExport struct {
	ExportedAt   string      `json:"exported_at"`
	Count        int         `json:"count"`
	TotalSeconds int64       `json:"total_seconds"`
	Sessions     []jsonEntry `json:"sessions"`
}

type jsonEntry struct {
	ID          string `json:"id,omitempty"`
	Day         string `json:"day"`
	Process     string `json:"process"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(records []store.SessionRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, records, time.Now()); err != nil {
		return err
	}
	return f.Close()
}

// WriteJSON writes records to w as one indented document stamped with now.
func WriteJSON(w io.Writer, records []store.SessionRecord, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(records),
	}

	for _, r := range records {
		export.TotalSeconds += r.Duration
		export.Sessions = append(export.Sessions, jsonEntry{
			ID:          r.ID,
			Day:         r.Day,
			Process:     r.ProcessName,
			Title:       r.Title,
			StartTime:   r.StartTime.Local().Format(time.RFC3339),
			EndTime:     r.EndTime.Local().Format(time.RFC3339),
			DurationSec: r.Duration,
			Duration:    formatDuration(r.Duration),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
