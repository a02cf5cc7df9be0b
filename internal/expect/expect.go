// Package expect loads and canonicalizes the golden diagnostic set of one
// test variant. The golden data lives in a JSON sidecar next to the
// fixture; the loader normalizes historical error codes, applies the
// variant's line shift and returns a deterministically sorted slice ready
// for reconciliation.
package expect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tsconform/internal/fixture"
	"tsconform/internal/tscode"
)

// WildcardLine marks a golden entry whose source line is deliberately
// unchecked: it matches a diagnostic with the same code at any line.
const WildcardLine = 0

// Error is one golden diagnostic expectation.
type Error struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Code   string `json:"code"`
}

func (e Error) String() string {
	return fmt.Sprintf("%s@%d:%d", e.Code, e.Line, e.Column)
}

// Golden is the loaded expectation set for one variant.
type Golden struct {
	// Suffix is the sidecar base name without the ".errors.json" tail;
	// per-variant artifacts (stats snapshots) derive their names from it.
	Suffix string
	// Errors is sorted by (line, column, code); wildcard entries first.
	Errors []Error
	// Missing records that no sidecar exists. That is a valid, empty
	// expectation set, not an error.
	Missing bool
}

// SidecarTail is the filename suffix of golden sidecars.
const SidecarTail = ".errors.json"

// SidecarPath locates the golden sidecar for tsFile. When the fixture has
// several variants, each sidecar carries the variant's raw target name.
func SidecarPath(tsFile string, v fixture.Variant, useTarget bool) string {
	dir := filepath.Dir(tsFile)
	base := filepath.Base(tsFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if useTarget {
		return filepath.Join(dir, fmt.Sprintf("%s(target=%s)%s", stem, v.RawTarget, SidecarTail))
	}
	return filepath.Join(dir, stem+SidecarTail)
}

// Load reads the golden sidecar of tsFile for variant v, canonicalizes the
// codes, shifts non-wildcard lines by v.ErrShift and sorts the result. A
// missing sidecar yields an empty set; a malformed one is a fixture error
// fatal to this single test.
func Load(tsFile string, v fixture.Variant, useTarget bool) (Golden, error) {
	sidecar := SidecarPath(tsFile, v, useTarget)
	g := Golden{Suffix: strings.TrimSuffix(filepath.Base(sidecar), SidecarTail)}

	raw, err := os.ReadFile(sidecar)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.Missing = true
			return g, nil
		}
		return Golden{}, fmt.Errorf("read golden sidecar %s: %w", sidecar, err)
	}

	if err := json.Unmarshal(raw, &g.Errors); err != nil {
		return Golden{}, fmt.Errorf("parse golden sidecar %s: %w", sidecar, err)
	}
	if g.Errors == nil {
		// Only `null` decodes into a nil slice without error; an empty set
		// is spelled `[]`.
		return Golden{}, fmt.Errorf("parse golden sidecar %s: expected an array, got null", sidecar)
	}

	for i := range g.Errors {
		code, err := tscode.Normalize(g.Errors[i].Code)
		if err != nil {
			return Golden{}, fmt.Errorf("golden sidecar %s: %w", sidecar, err)
		}
		g.Errors[i].Code = code
		// Fixtures are stored with their leading directive lines removed;
		// re-anchor everything except wildcard entries.
		if g.Errors[i].Line != WildcardLine {
			g.Errors[i].Line += v.ErrShift
		}
	}

	Sort(g.Errors)
	return g, nil
}

// Sort orders errors by (line, column, code). Wildcard entries sort first,
// which is what gives them scan priority during reconciliation.
func Sort(errs []Error) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := errs[i], errs[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
}

// IsParserTest reports whether the golden set is owned by the parser
// rather than the type checker: any syntax-family code (or the
// special-cased outlier) excludes the fixture from checker conformance.
func IsParserTest(errs []Error) bool {
	for _, e := range errs {
		if tscode.IsParserCode(e.Code) {
			return true
		}
	}
	return false
}
