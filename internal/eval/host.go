package eval

import (
	"os"

	"golang.org/x/sync/singleflight"

	"sentra/internal/value"
)

// FileHost is the default Host: real disk I/O, with concurrent loads of
// the same key deduplicated through golang.org/x/sync/singleflight
// (SPEC_FULL.md §5 — the wasm binding and the cache REPL's exec command can
// race to resolve the same included path against environments handed off
// between goroutines).
type FileHost struct {
	group singleflight.Group
}

// NewFileHost returns a ready-to-use FileHost.
func NewFileHost() *FileHost { return &FileHost{} }

// ReadFile reads path's contents as a script source.
func (h *FileHost) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ResolveOnce runs fn for key at most once among concurrent callers sharing
// that key, handing every caller (the one that ran fn and every one that
// arrived while it was in flight) the same result.
func (h *FileHost) ResolveOnce(key string, fn func() (value.Value, error)) (value.Value, error) {
	v, err, _ := h.group.Do(key, func() (interface{}, error) { return fn() })
	if v == nil {
		return nil, err
	}
	return v.(value.Value), err
}
