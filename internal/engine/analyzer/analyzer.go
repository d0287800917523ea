// Package analyzer is the index facade: it answers relation queries from the
// cache and falls back to the analysis worker on a miss.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"slices"
	"sync"
	"time"

	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const restartTimeout = 30 * time.Second

// Analysis outcomes reported to ports.Metrics.
const (
	OutcomeOK         = "ok"
	OutcomeTimeout    = "timeout"
	OutcomeTerminated = "terminated"
	OutcomeError      = "error"
)

// Analyzer composes the worker link and the index cache behind Resolve.
// It never mutates the index directly.
type Analyzer struct {
	worker      ports.AnalysisWorker
	cache       ports.IndexCache
	logger      ports.Logger
	tracer      ports.Tracer
	metrics     ports.Metrics
	concurrency int

	inflight singleflight.Group

	mu       sync.Mutex
	closed   bool
	restarts sync.WaitGroup
}

// Status is a snapshot of the worker and the index.
type Status struct {
	Worker ports.WorkerStatus `json:"worker"`
	Index  domain.IndexStats  `json:"index"`
}

// New creates an Analyzer.
func New(
	worker ports.AnalysisWorker,
	cache ports.IndexCache,
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
	concurrency int,
) *Analyzer {
	if concurrency < 1 {
		concurrency = domain.DefaultConcurrency
	}
	return &Analyzer{
		worker:      worker,
		cache:       cache,
		logger:      logger,
		tracer:      tracer,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// Initialize starts the worker eagerly. It is the only operation that
// reports worker failures to the caller. The worker bounds the wait for
// readiness with its analyze timeout.
func (a *Analyzer) Initialize(ctx context.Context) error {
	if err := a.worker.Start(ctx); err != nil {
		return zerr.Wrap(err, "failed to initialize analysis worker")
	}
	return nil
}

// Resolve returns the override relations of path. A cache hit never talks
// to the worker. Worker failures are logged, trigger a background restart
// and yield an empty result. Concurrent calls for one path share a single
// analysis that outlives any one caller giving up.
func (a *Analyzer) Resolve(ctx context.Context, path string) []domain.OverrideRelation {
	if rels, ok := a.cache.Get(path); ok {
		a.metrics.CacheLookup(true)
		return rels
	}
	a.metrics.CacheLookup(false)

	shared := context.WithoutCancel(ctx)
	ch := a.inflight.DoChan(path, func() (any, error) {
		return a.analyze(shared, path), nil
	})
	select {
	case res := <-ch:
		return slices.Clone(res.Val.([]domain.OverrideRelation))
	case <-ctx.Done():
		return []domain.OverrideRelation{}
	}
}

// Misses returns the existing files among paths without a valid cached result.
func (a *Analyzer) Misses(paths []string) []string {
	var misses []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, ok := a.cache.Get(path); !ok {
			misses = append(misses, path)
		}
	}
	return misses
}

func (a *Analyzer) analyze(ctx context.Context, path string) []domain.OverrideRelation {
	ctx, span := a.tracer.Start(ctx, "analyze")
	defer span.End()
	span.SetAttribute("file", path)

	info, err := os.Stat(path)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrFileNotFound.Error()), "file", path)
		span.RecordError(err)
		a.logger.Error(err)
		return []domain.OverrideRelation{}
	}

	started := time.Now()
	rels, err := a.worker.Analyze(ctx, path)
	a.metrics.AnalysisFinished(outcome(err), time.Since(started))
	if err != nil {
		a.fail(span, err)
		return []domain.OverrideRelation{}
	}

	rels = keepExistingLines(path, rels)
	span.SetAttribute("relations", len(rels))

	if err := a.cache.Set(path, rels, info.ModTime()); err != nil {
		a.logger.Error(err)
	}
	a.cache.SetDependencies(path, domain.PeerFiles(rels))

	if rels == nil {
		rels = []domain.OverrideRelation{}
	}
	return rels
}

// fail records a worker failure and schedules a restart. A worker already
// waiting out its restart delay is left alone.
func (a *Analyzer) fail(span ports.Span, err error) {
	span.RecordError(err)
	a.logger.Error(err)
	if errors.Is(err, domain.ErrWorkerBackoff) {
		return
	}
	a.restartAsync()
}

func (a *Analyzer) restartAsync() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.restarts.Add(1)
	go func() {
		defer a.restarts.Done()

		ctx, cancel := context.WithTimeout(context.Background(), restartTimeout)
		defer cancel()

		a.metrics.WorkerRestarted()
		if err := a.worker.Restart(ctx); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to restart analysis worker"))
		}
	}()
}

// ResolveAll resolves paths with bounded concurrency.
func (a *Analyzer) ResolveAll(ctx context.Context, paths []string) map[string][]domain.OverrideRelation {
	var (
		mu      sync.Mutex
		results = make(map[string][]domain.OverrideRelation, len(paths))
		g       errgroup.Group
	)
	g.SetLimit(a.concurrency)

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rels := a.Resolve(ctx, path)
			mu.Lock()
			results[path] = rels
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// PeersAt returns the peer locations of the relations declared on line of path.
func (a *Analyzer) PeersAt(ctx context.Context, path string, line int) []domain.Location {
	var peers []domain.Location
	for _, rel := range a.Resolve(ctx, path) {
		if rel.Line != line {
			continue
		}
		if loc := rel.Peer(); !slices.Contains(peers, loc) {
			peers = append(peers, loc)
		}
	}
	return peers
}

// ClearCache drops the cached result of path and its dependents, or the
// whole index when path is empty.
func (a *Analyzer) ClearCache(path string) {
	if path == "" {
		a.cache.Clear()
		a.logger.Debug("index cleared")
		return
	}
	a.cache.Invalidate(path)
}

// Invalidate evicts path and the files depending on it. It returns the
// evicted paths so callers can re-resolve them.
func (a *Analyzer) Invalidate(path string) []string {
	return a.cache.Invalidate(path)
}

// Remove forgets a deleted file.
func (a *Analyzer) Remove(path string) {
	a.cache.Remove(path)
}

// Status reports the worker and index state.
func (a *Analyzer) Status() Status {
	return Status{
		Worker: a.worker.Status(),
		Index:  a.cache.Stats(),
	}
}

// Close waits for background restarts and stops the worker. No restart is
// scheduled afterwards.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.restarts.Wait()
	return a.worker.Stop()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrAnalysisTimeout):
		return OutcomeTimeout
	case errors.Is(err, domain.ErrWorkerTerminated), errors.Is(err, domain.ErrWorkerBackoff):
		return OutcomeTerminated
	default:
		return OutcomeError
	}
}

// keepExistingLines drops relations whose line is past the end of path.
// The file may have shrunk while the worker was reading it.
func keepExistingLines(path string, rels []domain.OverrideRelation) []domain.OverrideRelation {
	//nolint:gosec // G304: path is a project source file being analyzed
	data, err := os.ReadFile(path)
	if err != nil {
		return rels
	}

	lines := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		lines++
	}

	return slices.DeleteFunc(rels, func(r domain.OverrideRelation) bool {
		return r.Line > lines
	})
}
