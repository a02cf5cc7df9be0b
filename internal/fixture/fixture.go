// Package fixture models one conformance-test fixture: its on-disk source
// and the compilation variants the external loader derives from it.
package fixture

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Variant is one compilation configuration of a fixture: target
// environment, library set, strictness rule and the line shift introduced
// by stripping leading @-directives. Variants are produced by the external
// fixture-format loader and consumed read-only.
type Variant struct {
	// RawTarget is the target name exactly as spelled in the fixture
	// (used verbatim in golden sidecar names).
	RawTarget string `json:"rawTarget"`
	// Libs lists the standard libraries loaded into the checker env.
	Libs []string `json:"libs,omitempty"`
	// Rule carries strictness switches (strictNullChecks, noImplicitAny, ...).
	Rule map[string]bool `json:"rule,omitempty"`
	// Module selects the module kind (commonjs, amd, ...), empty for default.
	Module string `json:"module,omitempty"`
	// ErrShift is added to every non-wildcard golden line number; fixtures
	// are stored with their leading directive lines removed.
	ErrShift int `json:"errShift"`
}

// Source is a fixture file decoded to UTF-8.
type Source struct {
	Path    string
	Content string
}

// The conformance corpus carries UTF-8-with-BOM and UTF-16 fixtures; decode
// by BOM when present, otherwise assume UTF-8.
var sourceDecoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())

// LoadSource reads and decodes one fixture file.
func LoadSource(path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	decoded, _, err := transform.Bytes(sourceDecoder, raw)
	if err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &Source{Path: path, Content: string(decoded)}, nil
}

// LineCount returns the number of lines in the decoded content, counting a
// trailing line without a newline.
func (s *Source) LineCount() int {
	if s == nil || s.Content == "" {
		return 0
	}
	n := strings.Count(s.Content, "\n")
	if !strings.HasSuffix(s.Content, "\n") {
		n++
	}
	return n
}

// IsMultiFile reports whether the fixture bundles several virtual files or
// reference directives. Those are postponed: the harness checks single-file
// programs only.
func (s *Source) IsMultiFile() bool {
	if s == nil {
		return false
	}
	return strings.Contains(strings.ToLower(s.Content), "@filename") ||
		strings.Contains(s.Content, "<reference path")
}

// List returns the sorted paths of all *.ts and *.tsx fixtures under root.
func List(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic scheduling order.
	sort.Strings(files)
	return files, nil
}
