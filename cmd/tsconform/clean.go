package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tsconform/internal/runner"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop the admission-probe disk cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := runner.OpenDiskCache("tsconform")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("drop probe cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "probe cache dropped")
		return nil
	},
}
