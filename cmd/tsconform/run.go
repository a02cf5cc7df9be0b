package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsconform/internal/checker"
	"tsconform/internal/report"
	"tsconform/internal/runner"
	"tsconform/internal/suite"
)

var runCmd = &cobra.Command{
	Use:   "run [flags]",
	Short: "Run the conformance suite against the configured checker",
	Long:  `Schedule the admitted fixtures, run the external checker over every variant and reconcile its diagnostics against the golden expectations`,
	Args:  cobra.NoArgs,
	RunE:  runSuite,
}

func init() {
	runCmd.Flags().String("report", "", "write a canonical JSON run report to this path")
	runCmd.Flags().Bool("no-cache", false, "skip the admission-probe disk cache")
}

func runSuite(cmd *cobra.Command, args []string) error {
	stopProfilers, err := startProfilers(cmd)
	if err != nil {
		return err
	}
	defer stopProfilers()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Tool.Cmd == "" {
		return fmt.Errorf("%w: set [tool] cmd in the manifest", suite.ErrNoTool)
	}

	r := runner.New(cfg, &checker.Tool{Cmd: cfg.Tool.Cmd, Args: cfg.Tool.Args})

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if !noCache {
		if cache, cacheErr := runner.OpenDiskCache("tsconform"); cacheErr != nil {
			fmt.Fprintf(os.Stderr, "probe cache unavailable: %v\n", cacheErr)
		} else {
			r.SetCache(cache)
		}
	}

	uiFlag, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	board, err := parseBoardSetting(uiFlag)
	if err != nil {
		return err
	}

	var sum *runner.Summary
	if wantBoard(board, cfg.Options.CI) {
		sum, err = runWithUI(cmd.Context(), "tsconform run", r)
	} else {
		sum, err = r.Run(cmd.Context())
	}
	if err != nil {
		return err
	}

	printer := &report.Printer{
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
		PrintMatched: cfg.Options.PrintMatched,
		PrintAll:     cfg.Options.PrintAll,
		Perf:         cfg.Perf,
	}
	for _, res := range sum.Results {
		printer.Test(res)
	}
	printer.Summary(sum)

	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return fmt.Errorf("failed to get report flag: %w", err)
	}
	if reportPath != "" {
		data, canonErr := report.Canonical(sum)
		if canonErr != nil {
			return canonErr
		}
		if writeErr := os.WriteFile(reportPath, data, 0o644); writeErr != nil {
			return fmt.Errorf("write run report: %w", writeErr)
		}
	}

	if !sum.OK() {
		stopProfilers()
		os.Exit(1)
	}
	return nil
}
