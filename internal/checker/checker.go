// Package checker declares the contracts of the external collaborators the
// harness consumes: the type checker itself, the language parser used as an
// admission probe, and the fixture-format loader that derives compilation
// variants. The harness never implements these; it talks to them through
// the interfaces below, by default via the subprocess adapter in exec.go.
package checker

import (
	"context"
	"fmt"

	"tsconform/internal/fixture"
)

// Diagnostic is one finding emitted by the checker under test. The error
// code is a stable "TSxxxx" string; every diagnostic must carry one.
type Diagnostic struct {
	Line int    `json:"line"`
	Code string `json:"code"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s@%d", d.Code, d.Line)
}

// Checker runs the type checker over one entry file under the compilation
// environment described by variant and returns its diagnostics.
type Checker interface {
	Check(ctx context.Context, entry string, variant fixture.Variant) ([]Diagnostic, error)
}

// Parser probes whether a fixture parses under the language grammar. A
// fixture that does not parse is excluded from scheduling so that parser
// defects are never attributed to the type checker.
type Parser interface {
	ParseOK(ctx context.Context, path string) bool
}

// VariantLoader derives the compilation variants of a fixture from its
// test directives.
type VariantLoader interface {
	Variants(ctx context.Context, path string) ([]fixture.Variant, error)
}

// Toolchain bundles the three collaborator roles when a single binding
// provides them all.
type Toolchain interface {
	Checker
	Parser
	VariantLoader
}
