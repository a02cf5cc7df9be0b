package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tsconform/internal/checker"
	"tsconform/internal/runner"
	"tsconform/internal/suite"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled fixtures and skip reasons without running the checker",
	Args:  cobra.NoArgs,
	RunE:  listFixtures,
}

func listFixtures(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Tool.Cmd == "" {
		return fmt.Errorf("%w: set [tool] cmd in the manifest", suite.ErrNoTool)
	}

	r := runner.New(cfg, &checker.Tool{Cmd: cfg.Tool.Cmd, Args: cfg.Tool.Args})
	if cache, cacheErr := runner.OpenDiskCache("tsconform"); cacheErr == nil {
		r.SetCache(cache)
	}

	plan, err := r.Plan(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, test := range plan.Tests {
		if len(test.Variants) > 1 {
			fmt.Fprintf(out, "run   %s (%d variants)\n", test.Path, len(test.Variants))
			continue
		}
		fmt.Fprintf(out, "run   %s\n", test.Path)
	}

	skips := append([]runner.Skip(nil), plan.Skips...)
	sort.Slice(skips, func(i, j int) bool { return skips[i].Path < skips[j].Path })
	for _, skip := range skips {
		fmt.Fprintf(out, "skip  %s (%s)\n", skip.Path, skip.Reason)
	}

	fmt.Fprintf(out, "\n%d scheduled, %d skipped\n", len(plan.Tests), len(plan.Skips))
	return nil
}
