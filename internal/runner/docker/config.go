package docker

import (
	"time"

	"github.com/sakif/snippetshare/internal/model"
)

// LanguageSpec describes how one language is executed: which image to run in
// and how the code string becomes a command.
//
// Only languages with a one-shot eval entrypoint are runnable. html and css
// are markup, and java/csharp need a compile step and project scaffold —
// those four report as unsupported rather than pretending.
type LanguageSpec struct {
	Image string
	// Cmd turns the snippet's code into the argv executed in the container.
	Cmd func(code string) []string
}

// specs maps each runnable language to its sandbox image and eval command.
var specs = map[model.Language]LanguageSpec{
	model.LangPython: {
		Image: "python:3.12-alpine",
		Cmd:   func(code string) []string { return []string{"python", "-c", code} },
	},
	model.LangJavaScript: {
		Image: "node:22-alpine",
		Cmd:   func(code string) []string { return []string{"node", "-e", code} },
	},
	model.LangTypeScript: {
		Image: "denoland/deno:alpine",
		Cmd:   func(code string) []string { return []string{"deno", "eval", "--ext=ts", code} },
	},
	model.LangPHP: {
		Image: "php:8.3-cli-alpine",
		Cmd:   func(code string) []string { return []string{"php", "-r", code} },
	},
}

// Config holds the sandbox limits shared by all languages.
type Config struct {
	// MemoryLimit is the per-container memory cap in bytes.
	MemoryLimit int64
	// CPULimit is the number of CPUs a container may use.
	CPULimit float64
	// Timeout is the maximum wall time for one run.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers kept per language.
	PoolSize int
	// PoolLanguages are the languages that get a warm pool; any other
	// runnable language cold-starts a container per run.
	PoolLanguages []model.Language
}

// DefaultConfig keeps warm pools only for the two most-run languages.
func DefaultConfig() Config {
	return Config{
		MemoryLimit:   128 * 1024 * 1024, // 128 MB
		CPULimit:      0.5,
		Timeout:       5 * time.Second,
		PoolSize:      2,
		PoolLanguages: []model.Language{model.LangPython, model.LangJavaScript},
	}
}
