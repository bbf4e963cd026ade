// Package cache implements the namespaced key/value store behind the
// REPL's shell commands (spec.md §6.2/§6.3), grounded on
// original_source/adana-db/src/lib.rs's Op/DbOp trait shape — namespaces
// are named trees, entries are inserted/removed/listed/merged — translated
// to a single Go type backed by modernc.org/sqlite rather than a from-
// scratch BTreeMap-per-tree structure, since an embedded single-file store
// is exactly what sqlite already is.
package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sentra/internal/filelock"
)

// Entry is one namespaced value, keyed by its generated id and reachable
// also through zero or more aliases.
type Entry struct {
	ID        string
	Value     string
	Aliases   []string
	UpdatedAt time.Time
}

// Cache is one open database: a sqlite file (or an in-memory instance when
// no path is given), guarded by a filelock.FileLock so only one process
// writes to it at a time.
type Cache struct {
	db       *sql.DB
	lock     *filelock.FileLock
	path     string
	inMemory bool
	currNS   string
}

// Open opens (creating if necessary) the cache database at path, or an
// in-memory instance when path is empty.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, currNS: "default"}
	if path == "" {
		c.inMemory = true
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		c.db = db
	} else {
		lock, err := filelock.Open(path)
		if err != nil {
			return nil, err
		}
		c.lock = lock
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, err
		}
		c.db = db
	}
	if err := c.migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			ns TEXT NOT NULL,
			id TEXT NOT NULL,
			value TEXT NOT NULL,
			aliases TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL,
			PRIMARY KEY (ns, id)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (k TEXT PRIMARY KEY, v TEXT)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return err
		}
	}
	row := c.db.QueryRow(`SELECT v FROM meta WHERE k = 'current_ns'`)
	var ns string
	if err := row.Scan(&ns); err == nil {
		c.currNS = ns
	}
	return nil
}

// Close flushes and releases the underlying lock.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return err
	}
	if c.lock != nil {
		// sqlite writes the database file directly, so stage its current
		// contents in the lock before the lock promotes them on close.
		buf, err := c.lock.Read()
		if err != nil {
			return err
		}
		if err := c.lock.Write(buf); err != nil {
			return err
		}
		return c.lock.Close()
	}
	return nil
}

func aliasesOf(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func joinAliases(aliases []string) string { return strings.Join(aliases, ",") }

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

// CurrentNamespace returns the namespace `put`/`get`/etc. operate against.
func (c *Cache) CurrentNamespace() string { return c.currNS }

// Use switches the current namespace (spec.md §6.2 `use ns`).
func (c *Cache) Use(ns string) error {
	_, err := c.db.Exec(`INSERT INTO meta (k, v) VALUES ('current_ns', ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, ns)
	if err != nil {
		return err
	}
	c.currNS = ns
	return nil
}

// Put stores value under a fresh id, reachable also through aliases
// (spec.md §6.2 `put [-a alias]* value`).
func (c *Cache) Put(value string, aliases []string) (string, error) {
	for _, a := range aliases {
		if _, ok, err := c.Get(a); err != nil {
			return "", err
		} else if ok {
			return "", fmt.Errorf("alias %q already in use", a)
		}
	}
	id := uuid.NewString()
	_, err := c.db.Exec(`INSERT INTO entries (ns, id, value, aliases, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.currNS, id, value, joinAliases(aliases), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get resolves key (an id or an alias) to its value.
func (c *Cache) Get(key string) (string, bool, error) {
	row := c.db.QueryRow(`SELECT value FROM entries WHERE ns = ? AND id = ?`, c.currNS, key)
	var v string
	if err := row.Scan(&v); err == nil {
		return v, true, nil
	} else if err != sql.ErrNoRows {
		return "", false, err
	}
	rows, err := c.db.Query(`SELECT value, aliases FROM entries WHERE ns = ?`, c.currNS)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()
	for rows.Next() {
		var value, aliases string
		if err := rows.Scan(&value, &aliases); err != nil {
			return "", false, err
		}
		for _, a := range aliasesOf(aliases) {
			if a == key {
				return value, true, nil
			}
		}
	}
	return "", false, nil
}

// Del removes key (an id or alias) from the current namespace.
func (c *Cache) Del(key string) error {
	v, ok, err := c.Get(key)
	_ = v
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key not found: %s", key)
	}
	_, err = c.db.Exec(`DELETE FROM entries WHERE ns = ? AND (id = ? OR aliases LIKE ? OR aliases LIKE ? OR aliases LIKE ? OR aliases = ?)`,
		c.currNS, key, key+",%", "%,"+key, "%,"+key+",%", key)
	return err
}

// Clear empties the current namespace (spec.md §6.2 `clear|cls`).
func (c *Cache) Clear() error {
	_, err := c.db.Exec(`DELETE FROM entries WHERE ns = ?`, c.currNS)
	return err
}

// ListNamespaces lists every namespace with at least one entry (spec.md
// §6.2 `listns|lsns`).
func (c *Cache) ListNamespaces() ([]string, error) {
	rows, err := c.db.Query(`SELECT DISTINCT ns FROM entries ORDER BY ns`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, nil
}

// DeleteNamespace drops every entry in ns (spec.md §6.2 `delns`), or the
// current namespace when ns is empty.
func (c *Cache) DeleteNamespace(ns string) error {
	if ns == "" {
		ns = c.currNS
	}
	_, err := c.db.Exec(`DELETE FROM entries WHERE ns = ?`, ns)
	return err
}

// Merge copies every entry of src into the current namespace (spec.md
// §6.2 `merge ns`), matching the original's merge_current_tree_with.
func (c *Cache) Merge(src string) error {
	rows, err := c.db.Query(`SELECT id, value, aliases, updated_at FROM entries WHERE ns = ?`, src)
	if err != nil {
		return err
	}
	defer rows.Close()
	type row struct{ id, value, aliases, updatedAt string }
	var buf []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.value, &r.aliases, &r.updatedAt); err != nil {
			return err
		}
		buf = append(buf, r)
	}
	for _, r := range buf {
		if _, err := c.db.Exec(`INSERT OR REPLACE INTO entries (ns, id, value, aliases, updated_at) VALUES (?, ?, ?, ?, ?)`,
			c.currNS, r.id, r.value, r.aliases, r.updatedAt); err != nil {
			return err
		}
	}
	return nil
}

// List returns every entry in the current namespace (spec.md §6.2 `dump`).
func (c *Cache) List() ([]Entry, error) {
	rows, err := c.db.Query(`SELECT id, value, aliases, updated_at FROM entries WHERE ns = ? ORDER BY id`, c.currNS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var aliases, updated string
		if err := rows.Scan(&e.ID, &e.Value, &aliases, &updated); err != nil {
			return nil, err
		}
		e.Aliases = aliasesOf(aliases)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, e)
	}
	return out, nil
}

// Count returns the number of entries in the current namespace, used by
// `describe|ds`.
func (c *Cache) Count() (int, error) {
	row := c.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE ns = ?`, c.currNS)
	var n int
	err := row.Scan(&n)
	return n, err
}
