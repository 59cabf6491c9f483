// Package workspace assembles a resolver from project configuration: the
// static registry first, then every configured artifact directory.
package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kingrea/rulebind/internal/artifactdir"
	"github.com/kingrea/rulebind/internal/binding"
	"github.com/kingrea/rulebind/internal/config"
)

// Workspace owns a resolver and the watchers feeding it.
type Workspace struct {
	Config   *config.Config
	Resolver *binding.Resolver
	Dirs     []*artifactdir.Source

	cancel context.CancelFunc
}

// Options tunes Open.
type Options struct {
	Logger *slog.Logger
	// Registry is consulted before any directory. Defaults to
	// binding.DefaultRegistry.
	Registry *binding.Registry
	// Metrics receives resolver counters when metrics are enabled.
	Metrics prometheus.Registerer
	// Diagnostics replaces the logging diagnostic handler.
	Diagnostics binding.DiagnosticHandler
}

// Open builds the resolver described by cfg and starts directory watchers
// when artifacts.watch is set. Every watched change drops cached absences;
// artifacts already resolved keep being served.
func Open(cfg *config.Config, opts Options) (*Workspace, error) {
	if cfg == nil {
		return nil, fmt.Errorf("workspace: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = binding.DefaultRegistry
	}

	sources := []binding.Source{registry}
	dirs := make([]*artifactdir.Source, 0, len(cfg.ArtifactDirs()))
	for _, dir := range cfg.ArtifactDirs() {
		src := artifactdir.New(dir, cfg.Namespace(), artifactdir.WithLogger(logger))
		dirs = append(dirs, src)
		sources = append(sources, src)
	}

	resolverOpts := []binding.Option{
		binding.WithNamespace(cfg.Namespace()),
		binding.WithSources(sources...),
		binding.WithCache(cfg.Project.Cache.Enabled),
		binding.WithLogger(logger),
	}
	if opts.Diagnostics != nil {
		resolverOpts = append(resolverOpts, binding.WithDiagnostics(opts.Diagnostics))
	}
	if cfg.Project.Metrics.Enabled {
		reg := opts.Metrics
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		resolverOpts = append(resolverOpts, binding.WithMetrics(reg))
	}

	ws := &Workspace{
		Config:   cfg,
		Resolver: binding.NewResolver(resolverOpts...),
		Dirs:     dirs,
	}
	if cfg.Project.Artifacts.Watch {
		if err := ws.watch(logger); err != nil {
			ws.Close()
			return nil, err
		}
	}
	return ws, nil
}

func (ws *Workspace) watch(logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	ws.cancel = cancel
	for _, dir := range ws.Dirs {
		// A generator may create a file and fill it in later, so a read in
		// between caches an absence that only a write event can clear.
		err := dir.Watch(ctx, func(change artifactdir.Change) {
			if n := ws.Resolver.ForgetAbsent(); n > 0 {
				logger.Info("Artifact file changed, retrying absent artifacts",
					"artifact", change.QualifiedName,
					"created", change.Created,
					"forgotten", n)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops any watchers.
func (ws *Workspace) Close() {
	if ws != nil && ws.cancel != nil {
		ws.cancel()
	}
}
