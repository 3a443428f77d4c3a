// Package executor defines how playground code is run. The docker
// subpackage provides the sandboxed implementation.
package executor

import (
	"context"
	"errors"
	"time"
)

// MaxOutputBytes caps each captured stream.
const MaxOutputBytes = 64 * 1024

// TimeoutExitCode is reported when a run is killed for exceeding its
// time limit, matching coreutils timeout(1).
const TimeoutExitCode = 124

// ErrUnsupportedLanguage is returned for a language with no configured runtime.
var ErrUnsupportedLanguage = errors.New("executor: unsupported language")

// ExecutionRequest is a piece of code to run.
type ExecutionRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// ExecutionResult is the captured output and status of a run.
type ExecutionResult struct {
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	ExitCode  int           `json:"exitCode"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Executor runs code in an isolated environment.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
	// Languages lists the languages Execute accepts.
	Languages() []string
}

// Truncate cuts s to at most n bytes and reports whether it did.
func Truncate(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	return s[:n], true
}
