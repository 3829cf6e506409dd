//go:build darwin || linux

package shm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndOpen_ShareMemory(t *testing.T) {
	dir := t.TempDir()

	created, err := Create(dir, "region-a", 4096)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer created.Close()

	opened, err := Open(dir, "region-a")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer opened.Close()

	if opened.Len() != 4096 {
		t.Errorf("Len() = %d, want 4096", opened.Len())
	}

	created.Bytes()[10] = 0x7f
	if got := opened.Bytes()[10]; got != 0x7f {
		t.Errorf("opened mapping byte = %#x, want 0x7f", got)
	}
}

func TestCreate_ZeroFilled(t *testing.T) {
	r, err := Create(t.TempDir(), "zero", 128)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer r.Close()

	for i, b := range r.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}

func TestCreate_RejectsExisting(t *testing.T) {
	dir := t.TempDir()
	r, err := Create(dir, "dup", 64)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer r.Close()

	if _, err := Create(dir, "dup", 64); err == nil {
		t.Fatal("second Create() should fail")
	}
}

func TestCreate_InvalidArguments(t *testing.T) {
	dir := t.TempDir()
	if _, err := Create(dir, "x", 0); err == nil {
		t.Error("Create() with zero capacity should fail")
	}
	for _, name := range []string{"", ".", "..", "a/b", "../escape"} {
		if _, err := Create(dir, name, 64); err == nil {
			t.Errorf("Create(%q) should fail", name)
		}
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(t.TempDir(), "missing"); err == nil {
		t.Fatal("Open() of missing region should fail")
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir, "empty"); err == nil {
		t.Fatal("Open() of empty file should fail")
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	r, err := Create(dir, "gone", 64)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer r.Close()

	if err := Remove(dir, "gone"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(r.Path()); !os.IsNotExist(err) {
		t.Errorf("backing file still exists: %v", err)
	}
	// Removing twice is not an error.
	if err := Remove(dir, "gone"); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	r, err := Create(t.TempDir(), "close", 64)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close should panic")
		}
	}()
	_ = r.Bytes()
}

func TestInUse(t *testing.T) {
	dir := t.TempDir()

	r, err := Create(dir, "live", 64)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	inUse, err := InUse(dir, "live")
	if err != nil {
		t.Fatalf("InUse() error = %v", err)
	}
	if !inUse {
		t.Error("InUse() = false while the creator holds the region")
	}

	opened, err := Open(dir, "live")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = r.Close()
	if inUse, _ := InUse(dir, "live"); !inUse {
		t.Error("InUse() = false while the opener holds the region")
	}

	_ = opened.Close()
	inUse, err = InUse(dir, "live")
	if err != nil {
		t.Fatalf("InUse() error = %v", err)
	}
	if inUse {
		t.Error("InUse() = true after every holder closed")
	}

	if _, err := InUse(dir, "missing"); err == nil {
		t.Error("InUse() on a missing region should fail")
	}
}
