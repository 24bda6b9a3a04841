package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kipper/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "kipper",
	Short: "Kipper scripting-language runtime",
	Long:  `Kipper embeds a tree-walking interpreter over a generational garbage-collected heap.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("trace", "", `trace output destination ("-" for stderr, or a file path); empty disables tracing`)
	rootCmd.PersistentFlags().String("trace-level", "phase", "trace verbosity (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "text", "trace output format (text|ndjson|chrome)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
