package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsconform/internal/prof"
)

// startProfilers reads the persistent profiling flags and starts the
// requested profilers. The returned stop function flushes everything and is
// safe to call more than once.
func startProfilers(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	cpuPath, err := flags.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("read --cpu-profile: %w", err)
	}
	heapPath, err := flags.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("read --mem-profile: %w", err)
	}
	tracePath, err := flags.GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("read --runtime-trace: %w", err)
	}

	ses := &prof.Session{}
	if cpuPath != "" {
		if err := ses.StartCPU(cpuPath); err != nil {
			return nil, err
		}
	}
	if tracePath != "" {
		if err := ses.StartTrace(tracePath); err != nil {
			_ = ses.Stop()
			return nil, err
		}
	}
	if heapPath != "" {
		ses.HeapOnStop(heapPath)
	}

	return func() {
		if err := ses.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
		}
	}, nil
}
