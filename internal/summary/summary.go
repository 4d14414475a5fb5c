// Package summary holds the per-day usage summary and its JSON snapshot.
package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DayLayout formats the day identity of a summary.
const DayLayout = "2006-01-02"

// ProcessUsage is the time spent in one process, split by title.
type ProcessUsage struct {
	TotalTime int64            `json:"total_time"`
	Details   map[string]int64 `json:"details"`
}

// Processes maps a process name to its usage.
type Processes map[string]*ProcessUsage

// Summary is the usage of one calendar day.
type Summary struct {
	Day       string
	Processes Processes
}

func New(day string, procs Processes) *Summary {
	if procs == nil {
		procs = Processes{}
	}
	return &Summary{Day: day, Processes: procs}
}

// Add credits secs to process and title, creating entries as needed.
func (s *Summary) Add(process, title string, secs int64) {
	p, ok := s.Processes[process]
	if !ok {
		p = &ProcessUsage{Details: map[string]int64{}}
		s.Processes[process] = p
	}
	if p.Details == nil {
		p.Details = map[string]int64{}
	}
	p.TotalTime += secs
	p.Details[title] += secs
}

// GrandTotal sums the totals of all processes.
func (s *Summary) GrandTotal() int64 {
	var total int64
	for _, p := range s.Processes {
		total += p.TotalTime
	}
	return total
}

// ProcessTotal is one row of a sorted summary.
type ProcessTotal struct {
	Name   string
	Total  int64
	Titles []TitleTotal
}

type TitleTotal struct {
	Title   string
	Seconds int64
}

// Sorted returns processes and their titles ordered by time spent,
// largest first, ties broken by name.
func (s *Summary) Sorted() []ProcessTotal {
	out := make([]ProcessTotal, 0, len(s.Processes))
	for name, p := range s.Processes {
		pt := ProcessTotal{Name: name, Total: p.TotalTime}
		for title, secs := range p.Details {
			pt.Titles = append(pt.Titles, TitleTotal{Title: title, Seconds: secs})
		}
		sort.Slice(pt.Titles, func(i, j int) bool {
			if pt.Titles[i].Seconds != pt.Titles[j].Seconds {
				return pt.Titles[i].Seconds > pt.Titles[j].Seconds
			}
			return pt.Titles[i].Title < pt.Titles[j].Title
		})
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type snapshot struct {
	GrandTotal int64     `json:"grand_total_seconds"`
	Processes  Processes `json:"processes"`
}

// Encode renders the snapshot document for s.
func Encode(s *Summary) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot{
		GrandTotal: s.GrandTotal(),
		Processes:  s.Processes,
	}, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot document. A bare process map without the
// enclosing metadata is accepted too. Process totals are recomputed from
// their details.
func Decode(data []byte) (Processes, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	body := data
	if raw, ok := top["processes"]; ok {
		body = raw
	}

	var procs Processes
	if err := json.Unmarshal(body, &procs); err != nil {
		return nil, fmt.Errorf("decode processes: %w", err)
	}

	out := Processes{}
	for name, p := range procs {
		if p == nil {
			continue
		}
		usage := &ProcessUsage{Details: map[string]int64{}}
		for title, secs := range p.Details {
			usage.Details[title] = secs
			usage.TotalTime += secs
		}
		out[name] = usage
	}
	return out, nil
}

// Load reads the snapshot at path. A missing file yields an empty map and
// no error; an unreadable or corrupt file yields an empty map and the error.
func Load(path string) (Processes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Processes{}, nil
		}
		return Processes{}, fmt.Errorf("read summary: %w", err)
	}
	procs, err := Decode(data)
	if err != nil {
		return Processes{}, err
	}
	return procs, nil
}

// Save replaces the snapshot at path with s.
func Save(path string, s *Summary) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}

	// Write atomically via temp file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}

// Path returns the snapshot file for day inside dir.
func Path(dir, day string) string {
	return filepath.Join(dir, day+".json")
}
