package sentralog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	orig := log.Writer()
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(orig)
		log.SetFlags(flags)
	}()
	fn()
	return buf.String()
}

func TestDebugTagsLevel(t *testing.T) {
	out := captureLog(t, func() { Debug("n=%d", 1) })
	if !strings.Contains(out, "[DEBUG] n=1") {
		t.Fatalf("got %q", out)
	}
}

func TestInfoTagsLevel(t *testing.T) {
	out := captureLog(t, func() { Info("starting") })
	if !strings.Contains(out, "[INFO] starting") {
		t.Fatalf("got %q", out)
	}
}

func TestWarnTagsLevel(t *testing.T) {
	out := captureLog(t, func() { Warn("falling back: %v", "disk full") })
	if !strings.Contains(out, "[WARN] falling back: disk full") {
		t.Fatalf("got %q", out)
	}
}

func TestErrorTagsLevel(t *testing.T) {
	out := captureLog(t, func() { Error("boom") })
	if !strings.Contains(out, "[ERROR] boom") {
		t.Fatalf("got %q", out)
	}
}
