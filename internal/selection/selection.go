// Package selection decides which conformance fixtures a run admits,
// combining an ignore list, pass lists and an optional single-test filter.
package selection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Verdict is the admission outcome for one candidate path.
type Verdict int

const (
	// VerdictAdmit lets the fixture into the run.
	VerdictAdmit Verdict = iota
	// VerdictIgnored rejects: the path matches the ignore list. The
	// ignore list wins over everything, including the test filter.
	VerdictIgnored
	// VerdictFiltered rejects: a test filter is active and the path does
	// not match it.
	VerdictFiltered
	// VerdictUnlisted rejects: no test filter and the path matches no
	// pass-list entry.
	VerdictUnlisted
)

func (v Verdict) String() string {
	switch v {
	case VerdictAdmit:
		return "admit"
	case VerdictIgnored:
		return "ignored"
	case VerdictFiltered:
		return "filtered"
	case VerdictUnlisted:
		return "unlisted"
	default:
		return "unknown"
	}
}

// Filter holds the resolved selection inputs. List entries are substrings
// matched against the slash-normalized candidate path.
type Filter struct {
	Ignored []string
	Pass    []string

	// Test is the single-test substring filter. TestSet distinguishes an
	// unset filter from one set to the empty string: empty-but-set
	// matches every path and marks a full-suite run.
	Test    string
	TestSet bool
}

// Load builds a Filter from the ignore list file and one or more pass list
// files, in order. The caller decides which pass files participate (the
// wip list is appended or withheld upstream).
func Load(ignoreFile string, passFiles ...string) (*Filter, error) {
	ignored, err := LoadList(ignoreFile)
	if err != nil {
		return nil, err
	}
	var pass []string
	for _, name := range passFiles {
		lines, err := LoadList(name)
		if err != nil {
			return nil, err
		}
		pass = append(pass, lines...)
	}
	return &Filter{Ignored: ignored, Pass: pass}, nil
}

// LoadList reads one selection list file: one substring per line, `::`
// rewritten to `/`, blank lines dropped.
func LoadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("selection list %s: %w", path, err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		line = strings.ReplaceAll(line, "::", "/")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// Decide classifies one candidate path. The cascade order is fixed: the
// ignore list first, then the test filter (which overrides the pass lists
// but never the ignore list), then pass-list membership.
func (f *Filter) Decide(path string) Verdict {
	p := filepath.ToSlash(path)
	for _, line := range f.Ignored {
		if strings.Contains(p, line) {
			return VerdictIgnored
		}
	}
	if f.TestSet {
		if strings.Contains(p, f.Test) {
			return VerdictAdmit
		}
		return VerdictFiltered
	}
	for _, line := range f.Pass {
		if strings.Contains(p, line) {
			return VerdictAdmit
		}
	}
	return VerdictUnlisted
}

// Admit reports whether the path enters the run.
func (f *Filter) Admit(path string) bool {
	return f.Decide(path) == VerdictAdmit
}
