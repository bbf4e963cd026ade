package hosterr

import (
	"errors"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestWrapAddsContext(t *testing.T) {
	base := errors.New("disk full")
	wrapped := Wrap(base, "writing cache file")
	if wrapped == nil {
		t.Fatalf("Wrap returned nil")
	}
	if !strings.Contains(wrapped.Error(), "writing cache file") {
		t.Fatalf("got %q, missing context", wrapped.Error())
	}
	if !strings.Contains(wrapped.Error(), "disk full") {
		t.Fatalf("got %q, missing underlying error", wrapped.Error())
	}
	if pkgerrors.Cause(wrapped) != base {
		t.Fatalf("Cause should unwrap back to the original error")
	}
}

func TestWrapfFormats(t *testing.T) {
	base := errors.New("not found")
	wrapped := Wrapf(base, "include %s", "lib.sn")
	if !strings.Contains(wrapped.Error(), "include lib.sn") {
		t.Fatalf("got %q", wrapped.Error())
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Fatalf("Wrap(nil, ...) should return nil")
	}
}
