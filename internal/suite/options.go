package suite

import "os"

// Environment variables honored by the suite. All are read exactly once,
// at Config construction.
const (
	// EnvTest restricts the run to fixtures whose path contains the
	// value. Set-but-empty selects the full suite (the empty string is
	// contained in every path) and arms the aggregate baseline writes.
	EnvTest = "TEST"
	// EnvIgnoreWip withholds the wip list from the pass set when "1".
	EnvIgnoreWip = "STC_IGNORE_WIP"
	// EnvCI switches snapshot maintenance to the exact-equality gate.
	EnvCI = "CI"
	// EnvNoPrintMatched suppresses matched diagnostics in reports.
	EnvNoPrintMatched = "DO_NOT_PRINT_MATCHED"
	// EnvPrintAll prints every diagnostic of a failed variant, matched or
	// not.
	EnvPrintAll = "PRINT_ALL"
)

// Options are the environment-derived toggles, captured once.
type Options struct {
	// Test and TestSet carry the single-test filter. TestSet
	// distinguishes unset from set-but-empty.
	Test    string
	TestSet bool

	IgnoreWip    bool
	CI           bool
	PrintMatched bool
	PrintAll     bool
}

// OptionsFromEnv captures the suite toggles from the process environment.
func OptionsFromEnv() Options {
	test, testSet := os.LookupEnv(EnvTest)
	return Options{
		Test:         test,
		TestSet:      testSet,
		IgnoreWip:    os.Getenv(EnvIgnoreWip) == "1",
		CI:           os.Getenv(EnvCI) == "1",
		PrintMatched: os.Getenv(EnvNoPrintMatched) != "1",
		PrintAll:     os.Getenv(EnvPrintAll) == "1",
	}
}

// FullSuite reports an unfiltered run: the test filter set to the empty
// string.
func (o Options) FullSuite() bool {
	return o.TestSet && o.Test == ""
}
