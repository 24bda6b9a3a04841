package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kipper/internal/diag"
	"kipper/internal/parser"
	"kipper/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.kip> [more.kip ...]",
	Short: "Parse one or more scripts and report diagnostics without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

// fileResult is one file's diagnostics, reported back from a worker so
// the caller can print them in argument order regardless of which
// worker finishes first.
type fileResult struct {
	path        string
	diagnostics []diag.Diagnostic
}

// runCheck parses every argument concurrently: each file is independent
// and has no module graph to schedule around, so an errgroup with one
// goroutine per file is enough.
func runCheck(cmd *cobra.Command, args []string) error {
	results := make([]fileResult, len(args))
	g, _ := errgroup.WithContext(context.Background())
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			fs := source.NewFileSet()
			id, err := fs.Load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			file := fs.Get(id)
			bag := diag.NewBag(100)
			parser.Parse(file, bag)
			results[i] = fileResult{path: path, diagnostics: bag.Items()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "kipper: %v\n", err)
		os.Exit(1)
	}

	anyErrors := false
	for _, r := range results {
		for _, d := range r.diagnostics {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s\n", r.path, d.Severity, d.Message)
			if d.Severity >= diag.SevError {
				anyErrors = true
			}
		}
	}
	if anyErrors {
		os.Exit(1)
	}
	return nil
}
