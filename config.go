// Completion: 100% - Environment configuration complete
package main

import (
	"github.com/xyproto/env/v2"
)

// Config holds the settings that can come from the environment or the command line
type Config struct {
	Backend    string
	NoOptimize bool
	TapeSize   int
	Verbose    bool
	Debug      bool
	NoColor    bool
}

// configFromEnv reads BFJIT_* variables. Unset variables keep the defaults.
func configFromEnv() Config {
	return Config{
		Backend:    env.Str("BFJIT_BACKEND", "auto"),
		NoOptimize: env.Bool("BFJIT_NO_OPT"),
		TapeSize:   env.Int("BFJIT_TAPE_SIZE", 0),
		Verbose:    env.Bool("BFJIT_VERBOSE"),
		Debug:      env.Bool("BFJIT_DEBUG"),
		NoColor:    env.Has("NO_COLOR"),
	}
}

// Verbosity maps the flags to a commonlog verbosity level
func (c Config) Verbosity() int {
	switch {
	case c.Debug:
		return 2
	case c.Verbose:
		return 1
	}
	return 0
}
