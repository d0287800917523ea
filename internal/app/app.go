// Package app implements the application layer for overlens.
package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/overlens/internal/adapters/indexcache"
	"go.trai.ch/overlens/internal/adapters/telemetry"
	"go.trai.ch/overlens/internal/adapters/watcher"
	"go.trai.ch/overlens/internal/adapters/worker"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/overlens/internal/engine/analyzer"
	"go.trai.ch/zerr"
)

// WorkerFactory builds the analysis worker for a resolved configuration.
type WorkerFactory func(cfg *domain.Config, logger ports.Logger) ports.AnalysisWorker

// CacheFactory builds the index cache for a resolved configuration.
type CacheFactory func(cfg *domain.Config, logger ports.Logger) ports.IndexCache

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	watcher      ports.Watcher
	logger       ports.Logger
	newWorker    WorkerFactory
	newCache     CacheFactory
	tracing      bool
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, w ports.Watcher, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		watcher:      w,
		logger:       log,
		newWorker: func(cfg *domain.Config, logger ports.Logger) ports.AnalysisWorker {
			return worker.New(cfg, logger)
		},
		newCache: func(cfg *domain.Config, logger ports.Logger) ports.IndexCache {
			return indexcache.New(cfg.SnapshotPath, logger)
		},
		tracing: true,
	}
}

// WithWorkerFactory replaces the process-backed worker.
// This is primarily used for testing.
func (a *App) WithWorkerFactory(f WorkerFactory) *App {
	a.newWorker = f
	return a
}

// WithCacheFactory replaces the snapshot-backed cache.
// This is primarily used for testing.
func (a *App) WithCacheFactory(f CacheFactory) *App {
	a.newCache = f
	return a
}

// WithoutTracing skips installing the global trace provider.
func (a *App) WithoutTracing() *App {
	a.tracing = false
	return a
}

// logSettings is implemented by loggers whose level and format can change at runtime.
type logSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// ConfigureLogging applies the global logging flags.
func (a *App) ConfigureLogging(verbose, jsonLogs bool) {
	if l, ok := a.logger.(logSettings); ok {
		l.SetVerbose(verbose)
		l.SetJSON(jsonLogs)
	}
}

// session is one opened project: its configuration and the index facade over it.
type session struct {
	cfg      *domain.Config
	analyzer *analyzer.Analyzer
	metrics  *telemetry.PrometheusMetrics
	shutdown func(context.Context) error
}

func (a *App) open(root string) (*session, error) {
	cfg, err := a.configLoader.Load(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	var tracer ports.Tracer = telemetry.NewNoOpTracer()
	shutdown := func(context.Context) error { return nil }
	if a.tracing {
		shutdown = telemetry.Setup(a.logger)
		tracer = telemetry.NewOTelTracer("overlens")
	}
	metrics := telemetry.NewPrometheusMetrics()

	return &session{
		cfg: cfg,
		analyzer: analyzer.New(
			a.newWorker(cfg, a.logger),
			a.newCache(cfg, a.logger),
			a.logger,
			tracer,
			metrics,
			cfg.Concurrency,
		),
		metrics:  metrics,
		shutdown: shutdown,
	}, nil
}

func (s *session) close(ctx context.Context, logger ports.Logger) {
	if err := s.analyzer.Close(); err != nil {
		logger.Error(err)
	}
	_ = s.shutdown(ctx)
}

// ResolveOptions configures Resolve.
type ResolveOptions struct {
	Root string
	// Paths are files or directories; directories expand to the watched files below them.
	Paths []string
}

// Result is the resolved relations of one file.
type Result struct {
	File      string                    `json:"file"`
	Relations []domain.OverrideRelation `json:"relations"`
}

// Resolve returns the relations of every requested file, in the order the
// files were given. The worker is started only when some file misses the index.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) ([]Result, error) {
	if len(opts.Paths) == 0 {
		return nil, domain.ErrNoFilesSpecified
	}

	s, err := a.open(opts.Root)
	if err != nil {
		return nil, err
	}
	defer s.close(context.WithoutCancel(ctx), a.logger)

	files, err := expandPaths(opts.Paths, watcher.NewFilter(s.cfg.Root, s.cfg.Include, s.cfg.Exclude))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.ErrNoFilesSpecified
	}

	if len(s.analyzer.Misses(files)) > 0 {
		if err := s.analyzer.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	resolved := s.analyzer.ResolveAll(ctx, files)
	results := make([]Result, 0, len(files))
	for _, file := range files {
		rels, ok := resolved[file]
		if !ok {
			// Cancelled before this file was scheduled.
			continue
		}
		results = append(results, Result{File: file, Relations: rels})
	}
	return results, ctx.Err()
}

// Peers returns the peer locations of the relations declared on line of file.
func (a *App) Peers(ctx context.Context, root, file string, line int) ([]domain.Location, error) {
	if line < 1 {
		return nil, zerr.Wrap(domain.ErrInvalidLine, "line "+strconv.Itoa(line))
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileNotFound.Error()), "file", file)
	}

	s, err := a.open(root)
	if err != nil {
		return nil, err
	}
	defer s.close(context.WithoutCancel(ctx), a.logger)

	if len(s.analyzer.Misses([]string{abs})) > 0 {
		if err := s.analyzer.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	return s.analyzer.PeersAt(ctx, abs, line), nil
}

// Clear drops the cached result of file and its dependents, or the whole
// index when file is empty. It returns the evicted files.
func (a *App) Clear(ctx context.Context, root, file string) ([]string, error) {
	s, err := a.open(root)
	if err != nil {
		return nil, err
	}
	defer s.close(context.WithoutCancel(ctx), a.logger)

	if file == "" {
		s.analyzer.ClearCache("")
		return nil, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileNotFound.Error()), "file", file)
	}
	return s.analyzer.Invalidate(abs), nil
}

// StatusReport describes the project configuration, the persisted index and
// optionally a freshly probed worker.
type StatusReport struct {
	Root         string          `json:"root"`
	Command      []string        `json:"command"`
	SnapshotPath string          `json:"snapshotPath"`
	Status       analyzer.Status `json:"status"`
}

// Status reports the project state. With probe set the worker is started
// so its readiness is part of the report.
func (a *App) Status(ctx context.Context, root string, probe bool) (*StatusReport, error) {
	s, err := a.open(root)
	if err != nil {
		return nil, err
	}
	defer s.close(context.WithoutCancel(ctx), a.logger)

	if probe {
		if err := s.analyzer.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	return &StatusReport{
		Root:         s.cfg.Root,
		Command:      s.cfg.Worker.Command,
		SnapshotPath: s.cfg.SnapshotPath,
		Status:       s.analyzer.Status(),
	}, nil
}

// expandPaths makes paths absolute and replaces directories with the files
// below them accepted by filter. Explicit files are kept even when filtered out.
func expandPaths(paths []string, filter *watcher.Filter) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileNotFound.Error()), "file", p)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			// Missing files still resolve to an empty result.
			add(abs)
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if !d.IsDir() && filter.Match(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, zerr.Wrap(err, "failed to walk directory")
		}
	}
	return files, nil
}
