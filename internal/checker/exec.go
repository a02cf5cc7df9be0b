package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"tsconform/internal/fixture"
)

// Tool invokes an external checker executable. The executable is expected
// to expose three subcommands speaking JSON on stdout:
//
//	<cmd> check <entry>      variant JSON on stdin, diagnostics array on stdout
//	<cmd> parse <path>       exit 0 when the file parses
//	<cmd> variants <path>    variant array on stdout
//
// A non-zero exit from `check` is tolerated when a diagnostics payload is
// present: checkers conventionally exit non-zero when diagnostics exist.
// A non-zero exit without a payload, or an undecodable payload, fails the
// invocation.
type Tool struct {
	Cmd  string
	Args []string
}

var _ Toolchain = (*Tool)(nil)

func (t *Tool) command(ctx context.Context, sub string, extra ...string) *exec.Cmd {
	args := make([]string, 0, len(t.Args)+1+len(extra))
	args = append(args, t.Args...)
	args = append(args, sub)
	args = append(args, extra...)
	return exec.CommandContext(ctx, t.Cmd, args...)
}

// Check runs the checker over entry and decodes its diagnostics.
func (t *Tool) Check(ctx context.Context, entry string, variant fixture.Variant) ([]Diagnostic, error) {
	payload, err := json.Marshal(variant)
	if err != nil {
		return nil, fmt.Errorf("encode variant: %w", err)
	}

	cmd := t.command(ctx, "check", entry)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("invoke checker %q: %w", t.Cmd, runErr)
		}
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		// A clean exit with no payload means zero diagnostics. A non-zero
		// exit with no payload means the checker died before reporting;
		// treating that as a clean run would turn a subject crash into a
		// pass against an empty golden set.
		if runErr != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("checker %q failed on %s with no diagnostics payload: %w: %s", t.Cmd, entry, runErr, msg)
			}
			return nil, fmt.Errorf("checker %q failed on %s with no diagnostics payload: %w", t.Cmd, entry, runErr)
		}
		out = []byte("[]")
	}
	var diags []Diagnostic
	if err := json.Unmarshal(out, &diags); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("decode checker output for %s: %w: %s", entry, err, msg)
		}
		return nil, fmt.Errorf("decode checker output for %s: %w", entry, err)
	}
	return diags, nil
}

// ParseOK probes the parser; any failure (including a missing executable)
// counts as "does not parse" and excludes the fixture.
func (t *Tool) ParseOK(ctx context.Context, path string) bool {
	cmd := t.command(ctx, "parse", path)
	return cmd.Run() == nil
}

// Variants asks the loader for the compilation variants of path. A fixture
// without variant directives yields a single default variant.
func (t *Tool) Variants(ctx context.Context, path string) ([]fixture.Variant, error) {
	cmd := t.command(ctx, "variants", path)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("load variants for %s: %w", path, err)
	}

	var variants []fixture.Variant
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &variants); err != nil {
		return nil, fmt.Errorf("decode variants for %s: %w", path, err)
	}
	if len(variants) == 0 {
		variants = []fixture.Variant{{}}
	}
	return variants, nil
}
