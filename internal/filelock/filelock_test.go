package filelock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenWriteCloseRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	lock, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := lock.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := lock.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	if _, err := os.Stat(withExt(path, ".lock")); !os.IsNotExist(err) {
		t.Fatalf(".lock file should be gone after Close, stat err=%v", err)
	}
	if _, err := os.Stat(withExt(path, ".pid")); !os.IsNotExist(err) {
		t.Fatalf(".pid file should be gone after Close, stat err=%v", err)
	}
}

func TestOpenReclaimsStaleLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	lockPath := withExt(path, ".lock")
	pidPath := withExt(path, ".pid")
	if err := os.WriteFile(path, []byte("prior"), 0644); err != nil {
		t.Fatalf("seed db file: %v", err)
	}
	if err := os.WriteFile(lockPath, nil, 0644); err != nil {
		t.Fatalf("seed lock file: %v", err)
	}
	// A pid that is exceedingly unlikely to be alive.
	if err := os.WriteFile(pidPath, []byte("999999"), 0644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	lock, err := Open(path)
	if err != nil {
		t.Fatalf("Open should reclaim a stale lock, got: %v", err)
	}
	if err := lock.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenRefusesLiveLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	lockPath := withExt(path, ".lock")
	pidPath := withExt(path, ".pid")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("seed db file: %v", err)
	}
	if err := os.WriteFile(lockPath, nil, 0644); err != nil {
		t.Fatalf("seed lock file: %v", err)
	}
	if err := os.WriteFile(pidPath, []byte("1"), 0644); err != nil {
		t.Fatalf("seed pid file: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatalf("expected Open to refuse a lock held by a live pid")
	}
}
