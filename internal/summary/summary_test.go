package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertInvariant(t *testing.T, s *Summary) {
	t.Helper()
	var grand int64
	for name, p := range s.Processes {
		var sum int64
		for _, secs := range p.Details {
			sum += secs
		}
		assert.Equal(t, sum, p.TotalTime, "process %s total", name)
		grand += p.TotalTime
	}
	assert.Equal(t, grand, s.GrandTotal())
}

// ============================================================
// Aggregation
// ============================================================

func TestAddCreatesEntries(t *testing.T) {
	s := New("2026-10-19", nil)
	s.Add("chrome.exe", "Gmail", 50)

	require.Contains(t, s.Processes, "chrome.exe")
	assert.Equal(t, int64(50), s.Processes["chrome.exe"].TotalTime)
	assert.Equal(t, int64(50), s.Processes["chrome.exe"].Details["Gmail"])
}

func TestAddAccumulates(t *testing.T) {
	s := New("2026-10-19", nil)
	s.Add("chrome.exe", "Gmail", 50)
	s.Add("chrome.exe", "Gmail", 25)
	s.Add("chrome.exe", "GitHub", 10)
	s.Add("Code.exe", "main.go", 300)
	s.Add("Code.exe", "", 7)

	assert.Equal(t, int64(85), s.Processes["chrome.exe"].TotalTime)
	assert.Equal(t, int64(75), s.Processes["chrome.exe"].Details["Gmail"])
	assert.Equal(t, int64(7), s.Processes["Code.exe"].Details[""])
	assert.Equal(t, int64(392), s.GrandTotal())
	assertInvariant(t, s)
}

func TestAddRepairsNilDetails(t *testing.T) {
	s := New("2026-10-19", Processes{"a": {}})
	s.Add("a", "x", 3)
	assert.Equal(t, int64(3), s.Processes["a"].Details["x"])
}

func TestSorted(t *testing.T) {
	s := New("2026-10-19", nil)
	s.Add("b", "t1", 10)
	s.Add("a", "t2", 10)
	s.Add("c", "t3", 5)
	s.Add("c", "t4", 40)

	rows := s.Sorted()
	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[0].Name)
	assert.Equal(t, "t4", rows[0].Titles[0].Title)
	assert.Equal(t, "a", rows[1].Name, "ties ordered by name")
	assert.Equal(t, "b", rows[2].Name)
}

// ============================================================
// Snapshot encoding
// ============================================================

func TestEncodeLayout(t *testing.T) {
	s := New("2026-10-19", nil)
	s.Add("chrome.exe", "Gmail", 50)
	s.Add("Code.exe", "main.go", 20)

	data, err := Encode(s)
	require.NoError(t, err)

	var doc struct {
		GrandTotal int64 `json:"grand_total_seconds"`
		Processes  map[string]struct {
			TotalTime int64            `json:"total_time"`
			Details   map[string]int64 `json:"details"`
		} `json:"processes"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, int64(70), doc.GrandTotal)
	assert.Equal(t, int64(50), doc.Processes["chrome.exe"].TotalTime)
	assert.Equal(t, int64(20), doc.Processes["Code.exe"].Details["main.go"])
	assert.Contains(t, string(data), "\n    \"grand_total_seconds\"")
}

func TestDecodeLegacyBareMap(t *testing.T) {
	procs, err := Decode([]byte(`{"chrome.exe": {"total_time": 5, "details": {"Gmail": 5}}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), procs["chrome.exe"].Details["Gmail"])
}

func TestDecodeRecomputesTotals(t *testing.T) {
	procs, err := Decode([]byte(`{"grand_total_seconds": 999, "processes": {"a": {"total_time": 999, "details": {"x": 4, "y": 6}}}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(10), procs["a"].TotalTime)
	assertInvariant(t, New("d", procs))
}

func TestDecodeCorrupt(t *testing.T) {
	for _, doc := range []string{"", "{", "[]", `{"processes": 3}`, `{"a": "b"}`} {
		_, err := Decode([]byte(doc))
		assert.Error(t, err, "doc %q", doc)
	}
}

// ============================================================
// Files
// ============================================================

func TestSaveAndLoad(t *testing.T) {
	path := Path(filepath.Join(t.TempDir(), "DailyUsage"), "2026-10-19")
	s := New("2026-10-19", nil)
	s.Add("chrome.exe", "Gmail", 50)

	require.NoError(t, Save(path, s))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	procs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(50), procs["chrome.exe"].TotalTime)

	// Saving again replaces the snapshot.
	s.Add("chrome.exe", "Gmail", 10)
	require.NoError(t, Save(path, s))
	procs, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(60), procs["chrome.exe"].TotalTime)
}

func TestLoadMissing(t *testing.T) {
	procs, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, procs)
}

func TestLoadCorruptYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"empty.json":     "",
		"malformed.json": `{"processes": {"a": `,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		procs, err := Load(path)
		assert.Error(t, err)
		assert.NotNil(t, procs)
		assert.Empty(t, procs)
	}
}

func TestSaveBadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := Save(filepath.Join(blocker, "sub", "x.json"), New("d", nil))
	assert.Error(t, err)
}
