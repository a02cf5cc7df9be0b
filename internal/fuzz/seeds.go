package fuzztests

import "testing"

func addSnapshotSeeds(f *testing.F) {
	f.Add("")
	f.Add("Stats {\n    required_error: 0\n    matched_error: 0\n    extra_error: 0\n    panic: 0\n}\n")
	f.Add("Stats {\n    required_error: 12\n    matched_error: 7\n    extra_error: 5\n    panic: 1\n}")
	f.Add("Stats {\n    required_error: -1\n}\n")
	f.Add("Stats {\n    matched_error: 1\n    required_error: 1\n    extra_error: 0\n    panic: 0\n}\n")
}

func addCodeSeeds(f *testing.F) {
	for _, code := range []string{
		"", "TS", "TS2304", "TS2552", "TS2551", "TS2724",
		"TS1005", "TS2369", "TS99999", "2304", "2552", "tsc", "TS-1", "TS+7", "TS02552",
	} {
		f.Add(code)
	}
}
