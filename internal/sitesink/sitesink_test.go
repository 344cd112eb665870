package sitesink

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCreatesOneFilePerSite(t *testing.T) {
	dir := t.TempDir()
	pool, err := NewPool(dir)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	if err := pool.Write("example.com", []byte("line one")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := pool.Write("example.com", []byte("line two")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "example_com"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "line one\nline two\n"
	if string(b) != want {
		t.Errorf("got %q, want %q", b, want)
	}
}

func TestWriteSanitizesSiteName(t *testing.T) {
	dir := t.TempDir()
	pool, err := NewPool(dir)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	if err := pool.Write("../../etc/passwd", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "______etc_passwd" {
			t.Errorf("unexpected file name %q", e.Name())
		}
	}
}

func TestWriteEmptySiteCountsAsUnknown(t *testing.T) {
	dir := t.TempDir()
	pool, err := NewPool(dir)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	var captured []byte
	pool.Unknown = func(raw []byte) { captured = raw }

	if err := pool.Write("", []byte("siteless")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if pool.UnknownCount() != 1 {
		t.Errorf("UnknownCount() = %d, want 1", pool.UnknownCount())
	}
	if string(captured) != "siteless" {
		t.Errorf("Unknown callback got %q, want %q", captured, "siteless")
	}
}

func TestWriteRefusesSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "elsewhere")
	if err := os.WriteFile(real, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	link := filepath.Join(dir, "example_com")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported on this filesystem: %v", err)
	}

	pool, err := NewPool(dir)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	if err := pool.Write("example.com", []byte("x")); err == nil {
		t.Fatal("expected Write to refuse to follow a symlink")
	}
}
