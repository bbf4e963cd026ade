// Package config parses the command-line flags spec.md §6.4 names by hand,
// walking argv directly the way original_source/src/args.rs's parser this
// was distilled from does — no flag-parsing library either side reaches for.
package config

import (
	"fmt"

	"sentra/internal/hosterr"
)

// Config holds the parsed command-line flags.
type Config struct {
	InMemory      bool
	NoFallback    bool
	DBPath        string
	HistoryPath   string
	SharedLibPath string
	DefaultCache  string

	sawDBPath      bool
	sawHistoryPath bool
	sawSharedLib   bool
	sawCache       bool
}

// Parse walks args the way args.rs walks its iterator: unknown arguments
// are silently ignored (so cmd/sentra's own subcommands can sit alongside
// these flags), and --inmemory/--dbpath are mutually exclusive, each flag
// allowed at most once.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(args) {
			return "", hosterr.Wrap(fmt.Errorf("missing value"), flag)
		}
		return args[i], nil
	}

	for ; i < len(args); i++ {
		switch args[i] {
		case "--inmemory", "-im":
			if c.InMemory {
				return nil, hosterr.Wrap(fmt.Errorf("specified more than once"), "--inmemory")
			}
			if c.sawDBPath {
				return nil, fmt.Errorf("cannot have db path & in memory at the same time")
			}
			c.InMemory = true
		case "--no-fallback", "-nofb":
			if c.NoFallback {
				return nil, hosterr.Wrap(fmt.Errorf("specified more than once"), "--no-fallback")
			}
			c.NoFallback = true
		case "--dbpath", "-db":
			if c.InMemory {
				return nil, fmt.Errorf("cannot mix in memory & db path")
			}
			if c.sawDBPath {
				return nil, hosterr.Wrap(fmt.Errorf("specified more than once"), "--dbpath")
			}
			v, err := next("--dbpath")
			if err != nil {
				return nil, err
			}
			c.DBPath, c.sawDBPath = v, true
		case "--historypath", "-hp":
			if c.sawHistoryPath {
				return nil, hosterr.Wrap(fmt.Errorf("specified more than once"), "--historypath")
			}
			v, err := next("--historypath")
			if err != nil {
				return nil, err
			}
			c.HistoryPath, c.sawHistoryPath = v, true
		case "--sharedlibpath", "-slp":
			if c.sawSharedLib {
				return nil, hosterr.Wrap(fmt.Errorf("specified more than once"), "--sharedlibpath")
			}
			v, err := next("--sharedlibpath")
			if err != nil {
				return nil, err
			}
			c.SharedLibPath, c.sawSharedLib = v, true
		case "--cache", "-c":
			if c.sawCache {
				return nil, hosterr.Wrap(fmt.Errorf("specified more than once"), "--cache")
			}
			v, err := next("--cache")
			if err != nil {
				return nil, err
			}
			c.DefaultCache, c.sawCache = v, true
		default:
			// unknown argument: ignored, same as args.rs
		}
	}
	return c, nil
}
