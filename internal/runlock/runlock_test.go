package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPath_StablePerFile(t *testing.T) {
	dir := t.TempDir()

	a := Path(dir, "konzept.emu")
	b := Path(dir, "./konzept.emu")
	c := Path(dir, "other.emu")

	if a != b {
		t.Errorf("Expected same lock for equivalent paths, got %q and %q", a, b)
	}
	if a == c {
		t.Errorf("Expected different locks for different files, both %q", a)
	}
	if filepath.Dir(a) != dir {
		t.Errorf("Expected lock inside %q, got %q", dir, a)
	}
}

func TestAcquire_Exclusive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on windows: lock semantics differ within one process")
	}

	dir := t.TempDir()

	first, err := Acquire(dir, "konzept.emu")
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	_, err = Acquire(dir, "konzept.emu")
	if !errors.Is(err, ErrHeld) {
		t.Fatalf("Expected ErrHeld, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(Path(dir, "konzept.emu")); err != nil {
		t.Errorf("Expected lock file to stay after Release, stat err = %v", err)
	}

	again, err := Acquire(dir, "konzept.emu")
	if err != nil {
		t.Fatalf("Acquire after Release failed: %v", err)
	}
	_ = again.Release()
}

func TestRelease_Nil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("Release on nil lock returned %v", err)
	}
}
