// Package kipper is the embedding surface over the interpreter,
// heap, and binding packages under internal/: initialize the
// process-wide runtime, compile and run scripts, and exchange values
// with the host.
package kipper

import (
	"io"

	"kipper/internal/heap"
	"kipper/internal/runtime"
)

// Options mirrors Configure's heap_size/tenure_threshold contract.
type Options struct {
	HeapSizeBytes   uint32
	TenureThreshold uint8
	Stdout          io.Writer
}

// Configure records Options to apply on the next Initialize call. It
// must be called before Initialize.
func Configure(opts Options) {
	runtime.Configure(runtime.Options{
		HeapSizeBytes:   opts.HeapSizeBytes,
		TenureThreshold: opts.TenureThreshold,
		Stdout:          opts.Stdout,
	})
}

// Initialize brings up the process-wide runtime singleton: the heap,
// the evaluator, and every builtin. Calling it twice without an
// intervening Shutdown is an error.
func Initialize() error {
	_, err := runtime.Initialize()
	return err
}

// Shutdown tears down the runtime singleton, resetting to pre-init
// state.
func Shutdown() {
	runtime.Shutdown()
}

func currentOrPanic() *runtime.Runtime {
	rt := runtime.Current()
	if rt == nil {
		panic("kipper: Initialize was not called")
	}
	return rt
}

// HeapStats reports the live runtime's collector counters, useful for
// diagnostics and the --watch TUI.
func HeapStats() heap.Stats {
	return currentOrPanic().Heap.Stats
}
