package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kipper/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kipper build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := versionPayload{Tool: "kipper", Version: stripColor(version.Version)}
		if versionShowFull {
			payload.GitCommit = version.GitCommit
			payload.GitMessage = version.GitMessage
			payload.BuildDate = version.BuildDate
		}
		return writeVersion(cmd.OutOrStdout(), strings.ToLower(versionFormat), payload)
	},
}

func writeVersion(out io.Writer, format string, payload versionPayload) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	fmt.Fprintf(out, "kipper %s\n", version.Version)
	if payload.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", payload.GitCommit)
	}
	if payload.GitMessage != "" {
		fmt.Fprintf(out, "message: %s\n", payload.GitMessage)
	}
	if payload.BuildDate != "" {
		fmt.Fprintf(out, "built: %s\n", payload.BuildDate)
	}
	return nil
}

// stripColor removes ANSI escape sequences fatih/color embeds in
// version.Version so JSON output stays clean.
func stripColor(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
