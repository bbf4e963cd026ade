package cache

import "testing"

func open(t *testing.T) *Cache {
	t.Helper()
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundtrip(t *testing.T) {
	c := open(t)
	id, err := c.Put("hello", nil)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "hello" {
		t.Fatalf("Get(%q) = (%q, %v), want (hello, true)", id, got, ok)
	}
}

func TestPutWithAlias(t *testing.T) {
	c := open(t)
	if _, err := c.Put("value", []string{"myalias"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get("myalias")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "value" {
		t.Fatalf("Get(myalias) = (%q, %v)", got, ok)
	}
}

func TestPutDuplicateAliasRejected(t *testing.T) {
	c := open(t)
	if _, err := c.Put("a", []string{"dup"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := c.Put("b", []string{"dup"}); err == nil {
		t.Fatalf("expected error reusing alias %q", "dup")
	}
}

func TestGetMissingKey(t *testing.T) {
	c := open(t)
	_, ok, err := c.Get("nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing key")
	}
}

func TestDel(t *testing.T) {
	c := open(t)
	id, _ := c.Put("x", []string{"alias"})
	if err := c.Del("alias"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := c.Get(id); ok {
		t.Fatalf("entry should be gone after Del")
	}
}

func TestDelMissingKeyErrors(t *testing.T) {
	c := open(t)
	if err := c.Del("nope"); err == nil {
		t.Fatalf("expected error deleting a missing key")
	}
}

func TestNamespaceIsolation(t *testing.T) {
	c := open(t)
	c.Put("in-default", nil)
	if err := c.Use("other"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	id, _ := c.Put("in-other", nil)
	if _, ok, _ := c.Get(id); !ok {
		t.Fatalf("expected to find entry in its own namespace")
	}
	if err := c.Use("default"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if _, ok, _ := c.Get(id); ok {
		t.Fatalf("entry from namespace 'other' should not be visible in 'default'")
	}
}

func TestListNamespaces(t *testing.T) {
	c := open(t)
	c.Put("a", nil)
	c.Use("ns2")
	c.Put("b", nil)

	ns, err := c.ListNamespaces()
	if err != nil {
		t.Fatalf("ListNamespaces: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("got %d namespaces, want 2: %v", len(ns), ns)
	}
}

func TestMergeCopiesEntries(t *testing.T) {
	c := open(t)
	c.Use("src")
	id, _ := c.Put("merged-value", nil)
	c.Use("default")

	if err := c.Merge("src"); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got, ok, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "merged-value" {
		t.Fatalf("Get(%q) = (%q, %v) after Merge", id, got, ok)
	}
}

func TestClearEmptiesCurrentNamespaceOnly(t *testing.T) {
	c := open(t)
	c.Put("a", nil)
	c.Use("other")
	c.Put("b", nil)
	c.Use("default")

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	n, err := c.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 entries in cleared namespace, got %d", n)
	}

	c.Use("other")
	n, err = c.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Clear should not touch other namespaces, got %d entries", n)
	}
}

func TestDeleteNamespace(t *testing.T) {
	c := open(t)
	c.Use("gone")
	c.Put("x", nil)
	if err := c.DeleteNamespace("gone"); err != nil {
		t.Fatalf("DeleteNamespace: %v", err)
	}
	ns, err := c.ListNamespaces()
	if err != nil {
		t.Fatalf("ListNamespaces: %v", err)
	}
	for _, n := range ns {
		if n == "gone" {
			t.Fatalf("namespace 'gone' should have been dropped")
		}
	}
}

func TestBackupRestoreRoundtrip(t *testing.T) {
	c := open(t)
	id, err := c.Put("backed-up", []string{"a1"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	blob, err := c.Backup()
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	c2 := open(t)
	if err := c2.Restore(blob); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, ok, err := c2.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "backed-up" {
		t.Fatalf("Get(%q) after Restore = (%q, %v)", id, got, ok)
	}
}

func TestRestoreRejectsTamperedBlob(t *testing.T) {
	c := open(t)
	c.Put("value", nil)
	blob, err := c.Backup()
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xFF

	c2 := open(t)
	if err := c2.Restore(tampered); err == nil {
		t.Fatalf("expected Restore to reject a tampered backup")
	}
}
