package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tsconform/internal/suite"
)

// resolveConfig builds the run configuration from the manifest, the
// environment and the persistent flag overrides, and applies the color
// mode. Flag overrides win over the manifest.
func resolveConfig(cmd *cobra.Command) (suite.Config, error) {
	flags := cmd.Root().PersistentFlags()

	colorMode, err := flags.GetString("color")
	if err != nil {
		return suite.Config{}, fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := applyColorMode(colorMode); err != nil {
		return suite.Config{}, err
	}

	manifestPath, err := flags.GetString("manifest")
	if err != nil {
		return suite.Config{}, fmt.Errorf("failed to get manifest flag: %w", err)
	}
	m, found, err := suite.LoadManifest(manifestPath)
	if err != nil {
		return suite.Config{}, err
	}
	if !found && flags.Changed("manifest") {
		return suite.Config{}, fmt.Errorf("manifest %s not found", manifestPath)
	}

	cfg := suite.Resolve(m, suite.OptionsFromEnv())

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return suite.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	perf, err := flags.GetBool("perf")
	if err != nil {
		return suite.Config{}, fmt.Errorf("failed to get perf flag: %w", err)
	}
	if perf {
		cfg.Perf = true
	}
	return cfg, nil
}

func applyColorMode(value string) error {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return nil
}
