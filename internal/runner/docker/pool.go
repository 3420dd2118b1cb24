package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// pool keeps pre-warmed containers of one image so a run doesn't pay the
// container-create cost. The Runner holds one pool per pooled language.
type pool struct {
	cli        *client.Client
	image      string
	config     Config
	logger     *slog.Logger
	containers chan string
	done       chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
}

func newPool(cli *client.Client, image string, cfg Config, logger *slog.Logger) *pool {
	return &pool{
		cli:        cli,
		image:      image,
		config:     cfg,
		logger:     logger,
		containers: make(chan string, cfg.PoolSize),
		done:       make(chan struct{}),
	}
}

// start begins filling the pool in the background.
func (p *pool) start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting container pool",
			slog.String("image", p.image),
			slog.Int("poolSize", p.config.PoolSize),
		)
		p.wg.Add(1)
		go p.manager()
	})
}

// stop shuts down the manager and removes all surviving warm containers.
func (p *pool) stop() {
	close(p.done)
	p.wg.Wait()

	for {
		select {
		case id := <-p.containers:
			p.removeContainer(id)
		default:
			return
		}
	}
}

// acquire returns a ready container ID, blocking until one is warm or the
// context is canceled.
func (p *pool) acquire(ctx context.Context) (string, error) {
	select {
	case id := <-p.containers:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// manager keeps the pool at capacity.
func (p *pool) manager() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		default:
			if len(p.containers) < cap(p.containers) {
				id, err := p.createContainer()
				if err != nil {
					p.logger.Error("failed to create pre-warmed container",
						slog.String("image", p.image),
						slog.String("error", err.Error()),
					)
					time.Sleep(1 * time.Second) // backoff on failure
					continue
				}

				select {
				case p.containers <- id:
				case <-p.done:
					// shutting down while trying to push
					p.removeContainer(id)
					return
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
}

// createContainer starts an idle container the run will later exec into.
// No network, read-only rootfs, memory/CPU caps, unprivileged user.
func (p *pool) createContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:   p.config.MemoryLimit,
			NanoCPUs: int64(p.config.CPULimit * 1e9),
		},
		AutoRemove:     false,
		ReadonlyRootfs: true,
	}

	resp, err := p.cli.ContainerCreate(ctx, &container.Config{
		Image: p.image,
		Cmd:   []string{"sleep", "infinity"},
		Tty:   false,
		User:  "nobody",
	}, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("ContainerCreate failed: %w", err)
	}

	if err := p.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		p.removeContainer(resp.ID)
		return "", fmt.Errorf("ContainerStart failed: %w", err)
	}

	return resp.ID, nil
}

func (p *pool) removeContainer(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = p.cli.ContainerRemove(ctx, id, container.RemoveOptions{
		Force: true,
	})
}
