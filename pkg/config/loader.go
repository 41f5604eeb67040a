// Package config parses service configuration from environment variables
// declared with `env` and `envDefault` struct tags.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Overrides names the variables that were set explicitly rather than taken
// from envDefault, sorted. Useful for a startup log line.
type Overrides []string

// Load parses the process environment into cfg, a pointer to a tagged struct.
func Load(cfg any) (Overrides, error) {
	return parse(cfg, environ())
}

// LoadFrom is like Load but reads variables from vars only.
func LoadFrom(cfg any, vars map[string]string) (Overrides, error) {
	return parse(cfg, vars)
}

func parse(cfg any, vars map[string]string) (Overrides, error) {
	var set Overrides
	opts := env.Options{
		Environment: vars,
		OnSet: func(key string, value any, isDefault bool) {
			if !isDefault && value != "" {
				set = append(set, key)
			}
		},
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	sort.Strings(set)
	return set, nil
}

func environ() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}
