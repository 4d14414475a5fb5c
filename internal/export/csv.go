package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/wintrackr/internal/store"
)

var csvHeader = []string{"ID", "Day", "Process", "Title", "Start", "End", "Duration (s)", "Duration"}

func ToCSV(records []store.SessionRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes records to w with a header row.
func WriteCSV(w io.Writer, records []store.SessionRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.Day,
			r.ProcessName,
			r.Title,
			r.StartTime.Local().Format(time.RFC3339),
			r.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", r.Duration),
			formatDuration(r.Duration),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
