// Package tscode handles the numeric error-code space of the reference
// TypeScript compiler. Codes travel as strings of the form "TS2345"; the
// numeric part is partitioned into families (1xxx syntax, 2xxx semantic,
// 5xxx options, ...). The golden corpus occasionally uses historical alias
// codes for the same finding; Normalize folds those onto the canonical code
// so that reconciliation compares like with like.
package tscode

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix is the scheme shared by every reference-compiler code.
const Prefix = "TS"

// parserOutlier is a semantic-family code that the reference suite emits
// only from parser recovery paths. Fixtures expecting it are parser tests.
const parserOutlier = "TS2369"

// aliasTable folds historical "did you mean" variants onto their base
// codes. The checker under test never emits the suggestion variants, so the
// golden side must be normalized before matching.
var aliasTable = map[int]int{
	2552: 2304, // cannot find name (with suggestion) -> cannot find name
	2551: 2339, // property does not exist (with suggestion) -> property does not exist
	2724: 2305, // no exported member (with suggestion) -> no exported member
}

// Normalize canonicalizes a "TSxxxx" code string. The string is rewritten
// only when the numeric value actually changes, so already-canonical codes
// pass through byte-identical and Normalize(Normalize(c)) == Normalize(c)
// holds for every valid input.
func Normalize(code string) (string, error) {
	n, err := Numeric(code)
	if err != nil {
		return "", err
	}
	canon, ok := aliasTable[n]
	if !ok || canon == n {
		return code, nil
	}
	return fmt.Sprintf("%s%d", Prefix, canon), nil
}

// Numeric extracts the numeric part of a code string.
func Numeric(code string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(code, Prefix))
	if err != nil {
		return 0, fmt.Errorf("malformed error code %q: %w", code, err)
	}
	return n, nil
}

// IsSyntaxFamily reports whether code belongs to the reserved 1xxx syntax
// family ("TS1" prefix, four digits). Codes in this family are produced by
// the parser, not the type checker.
func IsSyntaxFamily(code string) bool {
	return strings.HasPrefix(code, Prefix+"1") && len(code) == 6
}

// IsParserCode reports whether code marks a fixture as a parser test:
// either the syntax family or the special-cased outlier.
func IsParserCode(code string) bool {
	return IsSyntaxFamily(code) || code == parserOutlier
}
