package cache

import (
	"testing"

	"kipper/internal/diag"
	"kipper/internal/source"
)

func TestPutGetRoundTripClean(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key([]byte("x = 1;"))
	if err := c.Put(key, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("want a cache hit")
	}
	if !entry.Clean || len(entry.Diagnostics) != 0 {
		t.Fatalf("got %+v", entry)
	}
}

func TestPutGetRoundTripWithDiagnostics(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key([]byte("function ( { }"))
	diags := []diag.Diagnostic{
		diag.New(diag.SevError, diag.CodeUnexpectedToken, source.Span{Start: 9, End: 10}, "unexpected token"),
	}
	if err := c.Put(key, diags); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || entry.Clean {
		t.Fatalf("got %+v", entry)
	}
	if len(entry.Diagnostics) != 1 || entry.Diagnostics[0].Message != "unexpected token" {
		t.Fatalf("got %+v", entry.Diagnostics)
	}
}

func TestGetMissingKeyReportsNoHit(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, ok, err := c.Get(Key([]byte("anything")))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("want no hit for an unwritten key")
	}
}

func TestKeyFromHashMatchesKey(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte("Print(1);"))
	file := fs.Get(id)
	if KeyFromHash(file.Hash) != Key([]byte("Print(1);")) {
		t.Fatal("KeyFromHash should agree with Key for the same bytes")
	}
}
