package runtime

import (
	"fmt"
	"io"
	"sync"
	"time"

	"kipper/internal/ast"
	"kipper/internal/heap"
	"kipper/internal/interp"
	"kipper/internal/trace"
	"kipper/internal/value"
)

// Options configures a Runtime before Initialize. Zero values fall back
// to heap.DefaultConfig().
type Options struct {
	HeapSizeBytes   uint32
	TenureThreshold uint8
	Stdout          io.Writer

	// Tracer receives span/point events for script execution and
	// collections. A nil Tracer is equivalent to trace.Nop.
	Tracer trace.Tracer
}

// Runtime is the process-wide singleton bundle: the heap, the evaluator,
// and every builtin installed on top of it. Exactly one is live between
// a call to Initialize and the matching Shutdown.
type Runtime struct {
	Heap   *heap.Heap
	Interp *interp.Interpreter
	Tracer trace.Tracer
}

var (
	mu      sync.Mutex
	current *Runtime
	pending Options
)

// Configure records options to apply on the next Initialize call. It
// must be called before Initialize; calling it after has no effect on
// the already-running instance.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	pending = opts
}

// Initialize brings up the singleton Runtime using whatever Options were
// last passed to Configure (or heap.DefaultConfig() if none were).
// Calling Initialize while a Runtime is already live is an error.
func Initialize() (*Runtime, error) {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return nil, fmt.Errorf("runtime: already initialized")
	}
	cfg := heap.DefaultConfig()
	if pending.HeapSizeBytes != 0 {
		cfg.HeapSizeBytes = pending.HeapSizeBytes
	}
	if pending.TenureThreshold != 0 {
		cfg.TenureThreshold = pending.TenureThreshold
	}
	h := heap.New(cfg)
	i := interp.New(h)
	out := pending.Stdout
	if out == nil {
		out = io.Discard
	}
	if err := Install(i, out); err != nil {
		return nil, err
	}
	tracer := pending.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	if tracer.Enabled() {
		h.OnCollect = func(space heap.Space) {
			young, youngCap := h.YoungOccupancy()
			old, oldCap := h.OldOccupancy()
			tracer.Emit(&trace.Event{
				Time:  time.Now(),
				Kind:  trace.KindPoint,
				Scope: trace.ScopeNode,
				Name:  "gc." + space.String(),
				Extra: map[string]string{
					"young": fmt.Sprintf("%d/%d", young, youngCap),
					"old":   fmt.Sprintf("%d/%d", old, oldCap),
				},
			})
		}
	}
	current = &Runtime{Heap: h, Interp: i, Tracer: tracer}
	return current, nil
}

// Current returns the live singleton Runtime, or nil if none has been
// initialized.
func Current() *Runtime {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Shutdown tears down the singleton Runtime, resetting process state to
// pre-Initialize. Safe to call when nothing is initialized.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
	pending = Options{}
}

// RunFile is a convenience wrapper around the Interpreter's own RunFile,
// kept here so callers that only hold a Runtime don't need to reach into
// its Interp field for the common case. It brackets the run in a
// ScopeModule trace span so a --trace run shows script wall-clock time
// alongside the GC points the heap emits while it runs.
func (rt *Runtime) RunFile(file *ast.File) (value.Word, error) {
	span := trace.Begin(rt.Tracer, trace.ScopeModule, "run", 0)
	w, err := rt.Interp.RunFile(file)
	if err != nil {
		span.End(err.Error())
	} else {
		span.End("ok")
	}
	return w, err
}
