// Package runner defines the interface for executing a snippet's code in an
// isolated environment.
package runner

import (
	"context"
	"time"

	"github.com/sakif/snippetshare/internal/model"
)

// Request is one execution of a snippet's code in its language.
type Request struct {
	Language model.Language `json:"language"`
	Code     string         `json:"code"`
}

// Result carries the output and status of a finished run.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Runner executes snippet code in a sandbox.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
	// Supports reports whether the language can be executed at all.
	// Markup-only languages (html, css) and languages that need a full
	// project scaffold to run are not supported.
	Supports(language model.Language) bool
}
