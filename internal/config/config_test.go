package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.InMemory || cfg.NoFallback || cfg.DBPath != "" {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestParseInMemory(t *testing.T) {
	cfg, err := Parse([]string{"--inmemory"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.InMemory {
		t.Fatalf("expected InMemory=true")
	}
}

func TestParseDBPath(t *testing.T) {
	cfg, err := Parse([]string{"-db", "/tmp/cache.db"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DBPath != "/tmp/cache.db" {
		t.Fatalf("got DBPath=%q", cfg.DBPath)
	}
}

func TestParseInMemoryAndDBPathConflict(t *testing.T) {
	if _, err := Parse([]string{"--inmemory", "--dbpath", "x"}); err == nil {
		t.Fatalf("expected error mixing --inmemory and --dbpath")
	}
	if _, err := Parse([]string{"--dbpath", "x", "--inmemory"}); err == nil {
		t.Fatalf("expected error mixing --dbpath and --inmemory")
	}
}

func TestParseFlagTwiceIsError(t *testing.T) {
	if _, err := Parse([]string{"--inmemory", "--inmemory"}); err == nil {
		t.Fatalf("expected error specifying --inmemory twice")
	}
	if _, err := Parse([]string{"-db", "a", "-db", "b"}); err == nil {
		t.Fatalf("expected error specifying --dbpath twice")
	}
}

func TestParseMissingValue(t *testing.T) {
	if _, err := Parse([]string{"--dbpath"}); err == nil {
		t.Fatalf("expected error for --dbpath with no value")
	}
}

func TestParseUnknownArgIgnored(t *testing.T) {
	cfg, err := Parse([]string{"--some-future-flag", "--inmemory"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.InMemory {
		t.Fatalf("expected unknown flags to be ignored, not to break parsing")
	}
}

func TestParseAllFlags(t *testing.T) {
	cfg, err := Parse([]string{
		"--no-fallback",
		"--historypath", "/tmp/hist",
		"--sharedlibpath", "/opt/libs",
		"--cache", "scratch",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.NoFallback {
		t.Fatalf("expected NoFallback=true")
	}
	if cfg.HistoryPath != "/tmp/hist" {
		t.Fatalf("got HistoryPath=%q", cfg.HistoryPath)
	}
	if cfg.SharedLibPath != "/opt/libs" {
		t.Fatalf("got SharedLibPath=%q", cfg.SharedLibPath)
	}
	if cfg.DefaultCache != "scratch" {
		t.Fatalf("got DefaultCache=%q", cfg.DefaultCache)
	}
}
