// Package suite resolves the run configuration: the optional
// conformance.toml manifest, environment options and their defaults. The
// resolved Config is built once before any worker starts; nothing in the
// hot path consults the environment or the manifest again.
package suite

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultManifest is the manifest filename probed in the working
// directory when no explicit path is given.
const DefaultManifest = "conformance.toml"

// Defaults mirror the historical suite layout.
const (
	defaultRoot        = "tests/conformance"
	defaultIgnoreFile  = "tests/tsc.ignored.txt"
	defaultWipFile     = "tests/tsc.wip.txt"
	defaultStatsFile   = "tests/tsc-stats.snap"
	defaultTimingsFile = "tests/tsc.timings.snap"
)

func defaultPassFiles() []string {
	return []string{"tests/conformance.pass.txt", "tests/compiler.pass.txt"}
}

// ErrNoTool indicates that a run needs the external checker but none is
// configured in [tool].
var ErrNoTool = errors.New("no checker tool configured")

// ToolSpec names the external checker executable and its fixed arguments.
type ToolSpec struct {
	Cmd  string   `toml:"cmd"`
	Args []string `toml:"args"`
}

// Manifest is the raw conformance.toml shape. Every field is optional;
// zero values defer to the defaults above.
type Manifest struct {
	Suite struct {
		Roots []string `toml:"roots"`
		Jobs  int      `toml:"jobs"`
	} `toml:"suite"`
	Lists struct {
		Ignored string   `toml:"ignored"`
		Pass    []string `toml:"pass"`
		Wip     string   `toml:"wip"`
	} `toml:"lists"`
	Snapshots struct {
		Stats   string `toml:"stats"`
		Timings string `toml:"timings"`
	} `toml:"snapshots"`
	Tool ToolSpec `toml:"tool"`
}

// LoadManifest parses a conformance.toml. found is false when the file
// does not exist; that is not an error, the caller falls back to the
// defaults.
func LoadManifest(path string) (Manifest, bool, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if m.Suite.Jobs < 0 {
		return Manifest{}, false, fmt.Errorf("%s: [suite].jobs must not be negative", path)
	}
	if meta.IsDefined("tool") && m.Tool.Cmd == "" {
		return Manifest{}, false, fmt.Errorf("%s: [tool] requires cmd", path)
	}
	return m, true, nil
}

// Config is the fully resolved run configuration.
type Config struct {
	// Roots are the fixture directories walked for candidates.
	Roots []string
	// Jobs bounds worker concurrency; 0 means one worker per CPU.
	Jobs int

	IgnoreFile string
	PassFiles  []string
	WipFile    string

	// StatsFile and TimingsFile are the aggregate baselines, rewritten
	// only on full-suite runs (timings additionally require perf).
	StatsFile   string
	TimingsFile string

	Tool ToolSpec

	// Perf selects the profiling flavor: timings are recorded and
	// per-variant snapshots are skipped.
	Perf bool

	Options Options
}

// Resolve merges a manifest with environment options and fills defaults.
func Resolve(m Manifest, opts Options) Config {
	cfg := Config{
		Roots:       m.Suite.Roots,
		Jobs:        m.Suite.Jobs,
		IgnoreFile:  m.Lists.Ignored,
		PassFiles:   m.Lists.Pass,
		WipFile:     m.Lists.Wip,
		StatsFile:   m.Snapshots.Stats,
		TimingsFile: m.Snapshots.Timings,
		Tool:        m.Tool,
		Options:     opts,
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{defaultRoot}
	}
	if cfg.IgnoreFile == "" {
		cfg.IgnoreFile = defaultIgnoreFile
	}
	if len(cfg.PassFiles) == 0 {
		cfg.PassFiles = defaultPassFiles()
	}
	if cfg.WipFile == "" {
		cfg.WipFile = defaultWipFile
	}
	if cfg.StatsFile == "" {
		cfg.StatsFile = defaultStatsFile
	}
	if cfg.TimingsFile == "" {
		cfg.TimingsFile = defaultTimingsFile
	}
	return cfg
}

// SelectionPassFiles returns the pass-list files for this run: the
// configured pass lists, extended by the wip list unless the environment
// withholds it.
func (c Config) SelectionPassFiles() []string {
	files := make([]string, 0, len(c.PassFiles)+1)
	files = append(files, c.PassFiles...)
	if !c.Options.IgnoreWip {
		files = append(files, c.WipFile)
	}
	return files
}
