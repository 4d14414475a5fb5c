package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================
// Browsers
// ============================================================

func TestNormalizeBrowser(t *testing.T) {
	n := New(DefaultRules())

	tests := []struct {
		name    string
		process string
		raw     string
		want    string
	}{
		{"pipe separator takes last segment", "chrome.exe", "Inbox | Gmail", "Gmail"},
		{"brand suffix hyphen", "chrome.exe", "Inbox | Gmail - Google Chrome", "Gmail"},
		{"brand suffix em dash", "firefox.exe", "Pull requests · repo — GitHub — Mozilla Firefox", "GitHub"},
		{"pipe wins over hyphen", "chrome.exe", "Docs - Report | Gmail... wait", "Gmail... wait"},
		{"hyphen used when no pipe", "msedge.exe", "Weather - MSN - Microsoft Edge", "MSN"},
		{"no separator keeps stripped title", "chrome.exe", "New Tab - Google Chrome", "New Tab"},
		{"no separator and no suffix", "chrome.exe", "New Tab", "New Tab"},
		{"only brand left is empty", "chrome.exe", " - Google Chrome", ""},
		{"linux alias", "firefox", "Inbox | Mail — Mozilla Firefox", "Mail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.process, tt.raw))
		})
	}
}

func TestNormalizeOnlyFirstSuffixStripped(t *testing.T) {
	n := New(DefaultRules())
	// After stripping " - Google Chrome" the remaining title is split on " - ".
	got := n.Normalize("chrome.exe", "a - Microsoft Edge - Google Chrome")
	assert.Equal(t, "Microsoft Edge", got)
}

// ============================================================
// Editor
// ============================================================

func TestNormalizeVSCode(t *testing.T) {
	n := New(DefaultRules())

	tests := []struct {
		raw  string
		want string
	}{
		{"● main.go - wintrackr - Visual Studio Code", "main.go"},
		{"main.go - wintrackr - Visual Studio Code", "main.go"},
		{"Welcome - Visual Studio Code", "Welcome"},
		{"●  notes.md - Visual Studio Code", "notes.md"},
		{"Visual Studio Code", "Visual Studio Code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize("Code.exe", tt.raw), tt.raw)
	}
}

// ============================================================
// Pass-through and table
// ============================================================

func TestNormalizeUnknownProcessUnchanged(t *testing.T) {
	n := New(DefaultRules())
	raw := "  Report - Final | v2 - Word  "
	assert.Equal(t, raw, n.Normalize("WINWORD.EXE", raw))
}

func TestZeroNormalizerPassesThrough(t *testing.T) {
	var n Normalizer
	assert.Equal(t, "a | b", n.Normalize("chrome.exe", "a | b"))
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(DefaultRules())
	cases := map[string][]string{
		"chrome.exe": {
			"Inbox | Gmail",
			"Inbox (3) - someone@example.com - Gmail - Google Chrome",
			"Docs - Report | Gmail... wait",
			"New Tab - Google Chrome",
			"",
		},
		"firefox.exe": {"Issue #12 — GitHub — Mozilla Firefox"},
		"Code.exe": {
			"● main.go - wintrackr - Visual Studio Code",
			"README.md - Visual Studio Code",
		},
	}
	for process, titles := range cases {
		for _, raw := range titles {
			once := n.Normalize(process, raw)
			assert.Equal(t, once, n.Normalize(process, once), "%s %q", process, raw)
		}
	}
}

func TestCustomRuleAddedByData(t *testing.T) {
	rules := DefaultRules().Merge(Rules{
		"slack": {
			StripSuffixes: []string{" - Slack"},
			Separators:    []string{" - "},
			Pick:          SegmentFirst,
		},
	})
	n := New(rules)
	assert.Equal(t, "#general", n.Normalize("slack", "#general - Acme - Slack"))
	assert.Equal(t, "Gmail", n.Normalize("chrome.exe", "Inbox | Gmail"))
}

func TestNewCopiesRules(t *testing.T) {
	rules := DefaultRules()
	n := New(rules)
	delete(rules, "chrome.exe")
	assert.Equal(t, "Gmail", n.Normalize("chrome.exe", "Inbox | Gmail"))

	got := n.Rules()
	delete(got, "firefox.exe")
	assert.Equal(t, "Gmail", n.Normalize("firefox.exe", "Inbox | Gmail"))
}

func TestEmptyPickMeansLast(t *testing.T) {
	unset := Rule{Separators: []string{" - "}}
	last := Rule{Separators: []string{" - "}, Pick: SegmentLast}

	for _, raw := range []string{"a - b - c", "a - b", "plain"} {
		assert.Equal(t, last.Apply(raw), unset.Apply(raw), raw)
	}
	assert.Equal(t, "c", unset.Apply("a - b - c"))
}
