// Package docker runs snippet code in sandboxed Docker containers, one image
// per language. Pooled languages exec into a pre-warmed idle container;
// everything else cold-starts a container per run.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/runner"
)

var _ runner.Runner = (*Runner)(nil)

// Runner implements runner.Runner on the Docker Engine API.
type Runner struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pools  map[model.Language]*pool
}

// New creates a Runner, pulls the images of the pooled languages and warms
// their pools. Images of non-pooled languages are pulled lazily on first run.
func New(cfg Config, logger *slog.Logger) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	r := &Runner{
		cli:    cli,
		config: cfg,
		logger: logger,
		pools:  make(map[model.Language]*pool, len(cfg.PoolLanguages)),
	}

	for _, lang := range cfg.PoolLanguages {
		spec, ok := specs[lang]
		if !ok {
			return nil, fmt.Errorf("cannot pool unsupported language %q", lang)
		}
		if err := r.ensureImage(spec.Image); err != nil {
			return nil, err
		}
		p := newPool(cli, spec.Image, cfg, logger)
		p.start()
		r.pools[lang] = p
	}

	return r, nil
}

// Close shuts down the pools and the docker client.
func (r *Runner) Close() error {
	for _, p := range r.pools {
		p.stop()
	}
	return r.cli.Close()
}

// Supports reports whether the language has an execution spec.
func (r *Runner) Supports(language model.Language) bool {
	_, ok := specs[language]
	return ok
}

// Run executes the code in a sandboxed container for its language.
func (r *Runner) Run(ctx context.Context, req runner.Request) (*runner.Result, error) {
	spec, ok := specs[req.Language]
	if !ok {
		return nil, fmt.Errorf("language %q is not runnable", req.Language)
	}

	start := time.Now()

	containerID, err := r.acquireContainer(ctx, req.Language, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire container: %w", err)
	}

	// The container is single-use either way — remove it when done.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := r.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{Force: true})
		if err != nil {
			r.logger.Error("failed to remove container",
				slog.String("id", containerID),
				slog.String("error", err.Error()),
			)
		}
	}()

	executeCtx, executeCancel := context.WithTimeout(ctx, r.config.Timeout)
	defer executeCancel()

	// The container idles on `sleep infinity`; the actual run is an exec.
	execResp, err := r.cli.ContainerExecCreate(executeCtx, containerID, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          spec.Cmd(req.Code),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := r.cli.ContainerExecAttach(executeCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer

	done := make(chan struct{})
	go func() {
		// stdcopy demultiplexes the combined stream into stdout and stderr.
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	var exitCode int

	select {
	case <-done:
		inspectResp, err := r.cli.ContainerExecInspect(ctx, execResp.ID)
		if err == nil {
			exitCode = inspectResp.ExitCode
		}
	case <-executeCtx.Done():
		exitCode = 124 // same convention as the unix timeout command
		stderr.WriteString("\nExecution timed out.\n")
	}

	return &runner.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}

// acquireContainer gets an idle container for the language: from the warm
// pool when there is one, otherwise by creating a one-off container.
func (r *Runner) acquireContainer(ctx context.Context, lang model.Language, spec LanguageSpec) (string, error) {
	if p, ok := r.pools[lang]; ok {
		return p.acquire(ctx)
	}

	if err := r.ensureImage(spec.Image); err != nil {
		return "", err
	}

	cold := newPool(r.cli, spec.Image, r.config, r.logger)
	return cold.createContainer()
}

// ensureImage pulls the image if it isn't present yet. Reading the pull
// stream to EOF is what blocks until the pull completes.
func (r *Runner) ensureImage(ref string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r.logger.Info("ensuring docker image is available", slog.String("image", ref))
	reader, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()
	io.Copy(io.Discard, reader)

	return nil
}
