package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	astpkg "kipper/internal/ast"
	"kipper/internal/cache"
	"kipper/internal/diag"
	"kipper/internal/heap"
	"kipper/internal/parser"
	"kipper/internal/project"
	"kipper/internal/runtime"
	"kipper/internal/source"
	"kipper/internal/trace"
	"kipper/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.kip>",
	Short: "Compile and execute a kipper script",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	runCmd.Flags().Bool("watch", false, "show a live heap-occupancy TUI while the script runs")
	runCmd.Flags().Bool("dump-ast", false, "print the parsed syntax tree instead of running it")
}

func runScript(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	dumpAST, err := cmd.Flags().GetBool("dump-ast")
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	id, err := fs.Load(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kipper: %v\n", err)
		os.Exit(1)
	}
	file := fs.Get(id)

	diskCache := openDiskCache()
	cacheKey := cache.KeyFromHash(file.Hash)
	if diskCache != nil {
		if entry, ok, _ := diskCache.Get(cacheKey); ok && !entry.Clean {
			for _, d := range entry.Diagnostics {
				fmt.Fprintf(os.Stderr, "%s: %s\n", diag.Severity(d.Severity), d.Message)
			}
			os.Exit(1)
		}
	}

	bag := diag.NewBag(100)
	astFile := parser.Parse(file, bag)
	if diskCache != nil {
		_ = diskCache.Put(cacheKey, bag.Items())
	}
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			fmt.Fprintln(os.Stderr, d.Message)
		}
		os.Exit(1)
	}

	if dumpAST {
		return astpkg.Fprint(cmd.OutOrStdout(), astFile)
	}

	cfg := project.RuntimeConfig{}
	if manifest, ok, _ := project.FindKipperToml("."); ok {
		if loaded, loadErr := project.LoadRuntimeConfig(manifest); loadErr == nil {
			cfg = loaded
		}
	}

	tracer, err := buildTracer(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kipper: %v\n", err)
		os.Exit(1)
	}
	defer tracer.Close()

	runtime.Configure(runtime.Options{
		HeapSizeBytes:   cfg.HeapSizeBytes,
		TenureThreshold: cfg.TenureThreshold,
		Stdout:          cmd.OutOrStdout(),
		Tracer:          tracer,
	})
	rt, err := runtime.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kipper: %v\n", err)
		os.Exit(1)
	}
	defer runtime.Shutdown()

	var done chan struct{}
	if watch {
		done = startWatch(rt.Heap)
	}

	_, runErr := rt.RunFile(astFile)
	if done != nil {
		close(done)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "kipper: %v\n", runErr)
		os.Exit(1)
	}
	return nil
}

// openDiskCache returns a Cache rooted under the user's cache directory,
// or nil if that directory can't be determined or created — caching is
// an optimization, not a requirement for running a script.
func openDiskCache() *cache.Cache {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil
	}
	c, err := cache.Open(filepath.Join(base, "kipper", "compile"))
	if err != nil {
		return nil
	}
	return c
}

// buildTracer translates the --trace/--trace-level/--trace-format
// persistent flags into a trace.Tracer; an empty --trace disables
// tracing entirely and returns trace.Nop.
func buildTracer(cmd *cobra.Command) (trace.Tracer, error) {
	dest, _ := cmd.Flags().GetString("trace")
	if dest == "" {
		return trace.Nop, nil
	}
	levelStr, _ := cmd.Flags().GetString("trace-level")
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	formatStr, _ := cmd.Flags().GetString("trace-format")
	var format trace.Format
	switch formatStr {
	case "ndjson":
		format = trace.FormatNDJSON
	case "chrome":
		format = trace.FormatChrome
	default:
		format = trace.FormatText
	}
	return trace.New(trace.Config{Level: level, Mode: trace.ModeStream, Format: format, OutputPath: dest})
}

// startWatch launches the heap-occupancy TUI on its own goroutine,
// feeding it a snapshot on every collection and a periodic tick so the
// bars move even between GCs. It returns a channel the caller closes
// once the script has finished running.
func startWatch(h *heap.Heap) chan struct{} {
	events := make(chan ui.Snapshot, 8)
	prev := h.OnCollect
	h.OnCollect = func(space heap.Space) {
		if prev != nil {
			prev(space)
		}
		events <- snapshotOf(h, space)
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				events <- snapshotOf(h, heap.NewSpace)
			case <-stop:
				close(events)
				return
			}
		}
	}()
	go func() {
		p := tea.NewProgram(ui.NewGCModel("kipper run --watch", events))
		_, _ = p.Run()
	}()
	return stop
}

func snapshotOf(h *heap.Heap, collected heap.Space) ui.Snapshot {
	youngUsed, youngCap := h.YoungOccupancy()
	oldUsed, oldCap := h.OldOccupancy()
	return ui.Snapshot{
		YoungUsed: youngUsed, YoungCap: youngCap,
		OldUsed: oldUsed, OldCap: oldCap,
		Stats:     h.Stats,
		Collected: collected,
	}
}
