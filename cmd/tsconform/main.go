package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tsconform/internal/suite"
	"tsconform/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tsconform",
	Short: "Conformance oracle for a TypeScript type checker",
	Long:  `tsconform runs a golden-error conformance suite against an external TypeScript type checker and reconciles its diagnostics`,
}

// main registers subcommands and persistent flags, then executes the root
// command. If command execution returns an error, the process exits with
// status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "color output (auto|on|off)")
	rootCmd.PersistentFlags().String("ui", "auto", "progress board (auto|on|off)")
	rootCmd.PersistentFlags().String("manifest", suite.DefaultManifest, "suite manifest path")
	rootCmd.PersistentFlags().Int("jobs", 0, "worker count (0 = one per CPU)")
	rootCmd.PersistentFlags().Bool("perf", false, "perf profile: record timings, skip snapshot upkeep")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this path")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
