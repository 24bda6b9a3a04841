package runtime_test

import (
	"bytes"
	"sync"
	"testing"

	"kipper/internal/diag"
	"kipper/internal/parser"
	"kipper/internal/runtime"
	"kipper/internal/source"
	"kipper/internal/trace"
)

// recordingTracer captures every emitted event for assertions, since the
// package's own Stream/Ring tracers write formatted bytes rather than
// structured values.
type recordingTracer struct {
	mu     sync.Mutex
	events []*trace.Event
}

func (r *recordingTracer) Emit(ev *trace.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}
func (r *recordingTracer) Flush() error       { return nil }
func (r *recordingTracer) Close() error       { return nil }
func (r *recordingTracer) Level() trace.Level { return trace.LevelDebug }
func (r *recordingTracer) Enabled() bool      { return true }

func (r *recordingTracer) kinds() []trace.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]trace.Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func TestInitializeConfigureShutdownLifecycle(t *testing.T) {
	runtime.Configure(runtime.Options{HeapSizeBytes: 1 << 16, TenureThreshold: 3})
	rt, err := runtime.Initialize()
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if rt.Heap == nil || rt.Interp == nil {
		t.Fatal("Initialize returned incomplete Runtime")
	}
	if _, err := runtime.Initialize(); err == nil {
		t.Fatal("second Initialize should fail while one is live")
	}
	runtime.Shutdown()
	if runtime.Current() != nil {
		t.Fatal("Current should be nil after Shutdown")
	}
}

func TestPrintAndAssertBuiltinsWired(t *testing.T) {
	var out bytes.Buffer
	runtime.Configure(runtime.Options{HeapSizeBytes: 1 << 16, TenureThreshold: 3, Stdout: &out})
	rt, err := runtime.Initialize()
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer runtime.Shutdown()

	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(`Print("hi"); arr = []; arr.push(1); arr.push(2); Print(arr.length);`))
	bag := diag.NewBag(32)
	file := parser.Parse(fs.Get(id), bag)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	if _, err := rt.RunFile(file); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "hi\n2\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestTracerEmitsModuleSpanAndGCPoints(t *testing.T) {
	rec := &recordingTracer{}
	runtime.Configure(runtime.Options{HeapSizeBytes: 1 << 16, TenureThreshold: 3, Tracer: rec})
	rt, err := runtime.Initialize()
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer runtime.Shutdown()

	fs := source.NewFileSet()
	src := `arr = []; for (i = 0; i < 2000; i = i + 1) { arr.push(i); }`
	id := fs.AddVirtual("test.kip", []byte(src))
	bag := diag.NewBag(32)
	file := parser.Parse(fs.Get(id), bag)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	if _, err := rt.RunFile(file); err != nil {
		t.Fatalf("run: %v", err)
	}

	kinds := rec.kinds()
	if len(kinds) < 2 {
		t.Fatalf("want at least a span begin+end, got %d events", len(kinds))
	}
	if kinds[0] != trace.KindSpanBegin || kinds[len(kinds)-1] != trace.KindSpanEnd {
		t.Fatalf("want span begin...end bracketing the run, got %v", kinds)
	}
	sawGC := false
	for _, k := range kinds {
		if k == trace.KindPoint {
			sawGC = true
		}
	}
	if !sawGC {
		t.Fatal("want at least one GC point event from allocating 2000 array slots into a 64KiB heap")
	}
}
