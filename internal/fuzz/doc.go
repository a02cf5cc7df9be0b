// Package fuzztests houses Go fuzz harnesses that exercise the text
// surfaces of the conformance oracle: the stats snapshot parser, the error
// code normalizer and the reconciliation accounting. Its goal is to smoke
// test robustness and guard against panics on arbitrary inputs.
//
// Run with, for example:
//
//	go test ./internal/fuzz -fuzz FuzzSnapshotParse -fuzztime 30s
package fuzztests
