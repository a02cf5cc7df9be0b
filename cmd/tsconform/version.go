package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tsconform/internal/version"
)

const versionTagline = "every diagnostic accounted for"

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowHash bool
	versionShowDate bool
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "print the git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "print the build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "print all recorded build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show tsconform build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		showHash := versionShowHash || versionShowFull
		showDate := versionShowDate || versionShowFull

		switch strings.ToLower(versionFormat) {
		case "json":
			payload := versionPayload{Tool: "tsconform", Version: version.Semver, Tagline: versionTagline}
			if showHash {
				payload.GitCommit = valueOrUnknown(strings.TrimSpace(version.GitCommit))
			}
			if versionShowFull {
				payload.GitMessage = valueOrUnknown(strings.TrimSpace(version.GitMessage))
			}
			if showDate {
				payload.BuildDate = valueOrUnknown(strings.TrimSpace(version.BuildDate))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), version.Version, showHash, showDate, versionShowFull)
			return nil
		default:
			return fmt.Errorf("unknown format %q: want pretty or json", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer, v string, showHash, showDate, showFull bool) {
	fmt.Fprintf(out, "tsconform %s - %s\n", v, versionTagline)
	if showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(strings.TrimSpace(version.GitCommit)))
	}
	if showFull {
		fmt.Fprintf(out, "commit message: %s\n", valueOrUnknown(strings.TrimSpace(version.GitMessage)))
	}
	if showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(strings.TrimSpace(version.BuildDate)))
	}
	if !showHash && !showDate {
		fmt.Fprintln(out, "set --hash, --date, or --full for build details")
	}
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
