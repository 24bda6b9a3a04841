package binding

import (
	"testing"

	"kipper/internal/heap"
	"kipper/internal/value"
)

func TestPushThenResolveSameChunk(t *testing.T) {
	h := heap.New(heap.Config{HeapSizeBytes: 1 << 14, TenureThreshold: 3})
	name, _ := h.Symbols().Intern([]byte("x"))
	c := NewRoot()
	c.Push(name, value.FromInt32(1))
	got, ok := c.Resolve(name)
	if !ok || value.AsInt32(got) != 1 {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestPushOverwritesExistingSlotRatherThanDuplicating(t *testing.T) {
	h := heap.New(heap.Config{HeapSizeBytes: 1 << 14, TenureThreshold: 3})
	name, _ := h.Symbols().Intern([]byte("x"))
	c := NewRoot()
	c.Push(name, value.FromInt32(1))
	c.Push(name, value.FromInt32(2))
	if n := len(c.chunks); n != 1 || len(c.chunks[0]) != 1 {
		t.Fatalf("expected exactly one slot, got %d chunks, first has %d slots", n, len(c.chunks[0]))
	}
	got, _ := c.Resolve(name)
	if value.AsInt32(got) != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveWalksParentChain(t *testing.T) {
	h := heap.New(heap.Config{HeapSizeBytes: 1 << 14, TenureThreshold: 3})
	name, _ := h.Symbols().Intern([]byte("outer"))
	root := NewRoot()
	root.Push(name, value.FromInt32(42))
	child := NewChild(root)
	got, ok := child.Resolve(name)
	if !ok || value.AsInt32(got) != 42 {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestExitRestoresParentNextChain(t *testing.T) {
	root := NewRoot()
	first := NewChild(root)
	if root.next != first {
		t.Fatalf("expected root.next to be first after NewChild, got %v", root.next)
	}
	second := NewChild(root)
	if root.next != second || second.next != first {
		t.Fatalf("expected second at head of chain ahead of first")
	}

	second.Exit()
	if root.next != first {
		t.Fatalf("expected root.next to be restored to first after second.Exit, got %v", root.next)
	}

	first.Exit()
	if root.next != nil {
		t.Fatalf("expected root.next to be nil after both children exited, got %v", root.next)
	}
}

func TestExitedContextNoLongerVisitedAsRoot(t *testing.T) {
	h := heap.New(heap.Config{HeapSizeBytes: 1 << 14, TenureThreshold: 3})
	name, _ := h.Symbols().Intern([]byte("local"))
	root := NewRoot()
	child := NewChild(root)
	child.Push(name, value.FromInt32(7))
	child.Exit()

	visited := 0
	root.VisitRoots(func(w *value.Word) { visited++ })
	if visited != 1 {
		t.Fatalf("expected only root's own self slot to be visited after child exited, got %d visits", visited)
	}
}

func TestUnresolvedNameReportsNotFound(t *testing.T) {
	h := heap.New(heap.Config{HeapSizeBytes: 1 << 14, TenureThreshold: 3})
	name, _ := h.Symbols().Intern([]byte("missing"))
	c := NewRoot()
	if _, ok := c.Resolve(name); ok {
		t.Fatal("expected not found")
	}
}

func TestChunkGrowsPast16Slots(t *testing.T) {
	h := heap.New(heap.Config{HeapSizeBytes: 1 << 16, TenureThreshold: 3})
	c := NewRoot()
	for i := 0; i < 20; i++ {
		name, _ := h.Symbols().Intern([]byte{byte('a' + i)})
		c.Push(name, value.FromInt32(int32(i)))
	}
	if len(c.chunks) < 2 {
		t.Fatalf("expected at least 2 chunks after 20 pushes, got %d", len(c.chunks))
	}
	name, _ := h.Symbols().Intern([]byte{byte('a' + 19)})
	got, ok := c.Resolve(name)
	if !ok || value.AsInt32(got) != 19 {
		t.Fatalf("got %v, %v", got, ok)
	}
}
