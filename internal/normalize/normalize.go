// Package normalize maps raw window titles to canonical activity titles so
// that the same activity seen through different title permutations collapses
// into one session.
package normalize

import "strings"

// Segment selects which part of a separated title is kept.
type Segment string

const (
	SegmentFirst Segment = "first"
	SegmentLast  Segment = "last"
)

// Rule describes how titles of one process are canonicalized.
type Rule struct {
	// StripSuffixes are tried in order; only the first match is removed.
	StripSuffixes []string `yaml:"strip_suffixes"`
	// Separators are tried in order; the first one present in the title wins.
	Separators []string `yaml:"separators"`
	// Pick selects the kept segment. Empty means SegmentLast.
	Pick Segment `yaml:"pick"`
	// TrimMarkers is a set of characters stripped from the front of the result.
	TrimMarkers string `yaml:"trim_markers"`
}

// Rules maps a process name to its rule.
type Rules map[string]Rule

// Clone returns a copy of r whose map can be modified independently.
func (r Rules) Clone() Rules {
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns the defaults overridden by the entries in over.
func (r Rules) Merge(over Rules) Rules {
	out := r.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

var browserRule = Rule{
	StripSuffixes: []string{
		" - Mozilla Firefox", " — Mozilla Firefox",
		" - Google Chrome", " — Google Chrome",
		" - Microsoft Edge", " — Microsoft Edge",
	},
	Separators: []string{" | ", " - ", " — "},
	Pick:       SegmentLast,
}

var vscodeRule = Rule{
	StripSuffixes: []string{" - Visual Studio Code"},
	Separators:    []string{" - "},
	Pick:          SegmentFirst,
	TrimMarkers:   "● ",
}

// DefaultRules returns the built-in rule table. Linux process names are
// listed next to their Windows executables.
func DefaultRules() Rules {
	rules := Rules{}
	for _, p := range []string{
		"firefox.exe", "chrome.exe", "msedge.exe",
		"firefox", "chrome", "google-chrome", "chromium", "msedge",
	} {
		rules[p] = browserRule
	}
	rules["Code.exe"] = vscodeRule
	rules["code"] = vscodeRule
	return rules
}

// Normalizer applies a rule table. The zero value passes titles through.
type Normalizer struct {
	rules Rules
}

func New(rules Rules) *Normalizer {
	return &Normalizer{rules: rules.Clone()}
}

// Rules returns a copy of the table in use.
func (n *Normalizer) Rules() Rules {
	return n.rules.Clone()
}

// Normalize returns the canonical title for raw as shown by process.
func (n *Normalizer) Normalize(process, raw string) string {
	rule, ok := n.rules[process]
	if !ok {
		return raw
	}
	return rule.Apply(raw)
}

// Apply canonicalizes a single title.
func (r Rule) Apply(raw string) string {
	title := raw
	for _, suffix := range r.StripSuffixes {
		if strings.HasSuffix(title, suffix) {
			title = strings.TrimSpace(strings.TrimSuffix(title, suffix))
			break
		}
	}

	pick := r.Pick
	if pick == "" {
		pick = SegmentLast
	}

	for _, sep := range r.Separators {
		if !strings.Contains(title, sep) {
			continue
		}
		switch pick {
		case SegmentFirst:
			title, _, _ = strings.Cut(title, sep)
		default:
			title = title[strings.LastIndex(title, sep)+len(sep):]
		}
		title = strings.TrimSpace(title)
		break
	}

	if r.TrimMarkers != "" {
		title = strings.TrimSpace(strings.TrimLeft(title, r.TrimMarkers))
	}
	return title
}
