package docker

import (
	"sort"
	"time"
)

// Runtime describes how to run one language: the image to use and the
// command that takes the source code as its final argument.
type Runtime struct {
	Image   string
	Command []string
}

// Cmd returns the exec command for code.
func (r Runtime) Cmd(code string) []string {
	cmd := make([]string, 0, len(r.Command)+1)
	cmd = append(cmd, r.Command...)
	return append(cmd, code)
}

// Config holds the configuration for Docker execution.
type Config struct {
	// Runtimes maps a language name to its runtime.
	Runtimes map[string]Runtime
	// MemoryLimit is the container memory cap in bytes.
	MemoryLimit int64
	// CPULimit is the number of CPUs a container may use.
	CPULimit float64
	// Timeout bounds a single execution.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers per runtime.
	PoolSize int
}

// DefaultRuntimes returns the runtimes available out of the box.
func DefaultRuntimes() map[string]Runtime {
	return map[string]Runtime{
		"python": {
			Image:   "python:3.12-alpine",
			Command: []string{"python", "-c"},
		},
		"javascript": {
			Image:   "node:22-alpine",
			Command: []string{"node", "-e"},
		},
	}
}

// DefaultConfig provides defaults for a small sandbox.
func DefaultConfig() Config {
	return Config{
		Runtimes:    DefaultRuntimes(),
		MemoryLimit: 128 * 1024 * 1024,
		CPULimit:    0.5,
		Timeout:     5 * time.Second,
		PoolSize:    2,
	}
}

// Languages returns the configured language names, sorted.
func (c Config) Languages() []string {
	langs := make([]string, 0, len(c.Runtimes))
	for lang := range c.Runtimes {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
