package main

import "testing"

func TestCheckVersionPragmaNoPragmaIsFine(t *testing.T) {
	if err := checkVersionPragma("1 + 1"); err != nil {
		t.Fatalf("got %v, want nil for a script with no pragma", err)
	}
}

func TestCheckVersionPragmaSatisfied(t *testing.T) {
	text := "#!sentra-version >=0.9.0\n1 + 1"
	if err := checkVersionPragma(text); err != nil {
		t.Fatalf("got %v, want nil since %s satisfies >=0.9.0", err, VERSION)
	}
}

func TestCheckVersionPragmaUnsatisfied(t *testing.T) {
	text := "#!sentra-version >=9.9.9\n1 + 1"
	if err := checkVersionPragma(text); err == nil {
		t.Fatalf("expected an error since %s does not satisfy >=9.9.9", VERSION)
	}
}

func TestCheckVersionPragmaMissingOperator(t *testing.T) {
	text := "#!sentra-version 1.0.0\n1 + 1"
	if err := checkVersionPragma(text); err == nil {
		t.Fatalf("expected an error for a pragma without >=")
	}
}

func TestCheckVersionPragmaMalformed(t *testing.T) {
	text := "#!sentra-version >=not-a-version\n1 + 1"
	if err := checkVersionPragma(text); err == nil {
		t.Fatalf("expected an error for a malformed version")
	}
}

func TestSplitConfigAndPathBasic(t *testing.T) {
	cfg, path, scriptArgs, err := splitConfigAndPath([]string{"script.sn", "a", "b"})
	if err != nil {
		t.Fatalf("splitConfigAndPath: %v", err)
	}
	if path != "script.sn" {
		t.Fatalf("got path %q, want script.sn", path)
	}
	if len(scriptArgs) != 2 || scriptArgs[0] != "a" || scriptArgs[1] != "b" {
		t.Fatalf("got scriptArgs %v, want [a b]", scriptArgs)
	}
	if cfg == nil {
		t.Fatalf("expected a non-nil config")
	}
}

func TestSplitConfigAndPathExtractsFlagsBeforePath(t *testing.T) {
	cfg, path, scriptArgs, err := splitConfigAndPath([]string{"--dbpath", "/tmp/x.cache", "script.sn"})
	if err != nil {
		t.Fatalf("splitConfigAndPath: %v", err)
	}
	if path != "script.sn" {
		t.Fatalf("got path %q, want script.sn", path)
	}
	if len(scriptArgs) != 0 {
		t.Fatalf("got scriptArgs %v, want none", scriptArgs)
	}
	if cfg.DBPath != "/tmp/x.cache" {
		t.Fatalf("got DBPath %q, want /tmp/x.cache", cfg.DBPath)
	}
}

func TestSplitConfigAndPathFlagsAfterPath(t *testing.T) {
	cfg, path, scriptArgs, err := splitConfigAndPath([]string{"script.sn", "--inmemory", "a"})
	if err != nil {
		t.Fatalf("splitConfigAndPath: %v", err)
	}
	if path != "script.sn" {
		t.Fatalf("got path %q, want script.sn", path)
	}
	if len(scriptArgs) != 1 || scriptArgs[0] != "a" {
		t.Fatalf("got scriptArgs %v, want [a]", scriptArgs)
	}
	if !cfg.InMemory {
		t.Fatalf("expected InMemory to be parsed even though it trails the script path")
	}
}

func TestSplitConfigAndPathNoPositional(t *testing.T) {
	_, path, scriptArgs, err := splitConfigAndPath([]string{"--inmemory"})
	if err != nil {
		t.Fatalf("splitConfigAndPath: %v", err)
	}
	if path != "" {
		t.Fatalf("got path %q, want empty", path)
	}
	if scriptArgs != nil {
		t.Fatalf("got scriptArgs %v, want nil", scriptArgs)
	}
}

func TestLevenshteinDistanceIdentical(t *testing.T) {
	if d := levenshteinDistance("run", "run"); d != 0 {
		t.Fatalf("got %d, want 0", d)
	}
}

func TestLevenshteinDistanceTypo(t *testing.T) {
	if d := levenshteinDistance("rnu", "run"); d != 2 {
		t.Fatalf("got %d, want 2", d)
	}
}

func TestLevenshteinDistanceEmptyString(t *testing.T) {
	if d := levenshteinDistance("", "run"); d != 3 {
		t.Fatalf("got %d, want 3", d)
	}
}

func TestLevenshteinDistanceCompletelyDifferent(t *testing.T) {
	if d := levenshteinDistance("repl", "xyz!"); d != 4 {
		t.Fatalf("got %d, want 4", d)
	}
}
