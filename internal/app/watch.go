package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.trai.ch/overlens/internal/adapters/watcher"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/overlens/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// WatchOptions configures Watch.
type WatchOptions struct {
	Root string
	// Scan resolves every watched file once before waiting for changes.
	Scan bool
	// MetricsAddr serves Prometheus metrics on /metrics when set.
	MetricsAddr string
	// OnResolved receives every debounced result.
	OnResolved func(Result)
}

// Watch keeps the index fresh while files change: writes invalidate the file
// and its dependents and schedule re-analysis, deletions drop the file.
// It returns when ctx is cancelled.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.open(opts.Root)
	if err != nil {
		return err
	}
	defer s.close(context.WithoutCancel(ctx), a.logger)

	if err := s.analyzer.Initialize(ctx); err != nil {
		return err
	}

	filter := watcher.NewFilter(s.cfg.Root, s.cfg.Include, s.cfg.Exclude)

	sched := scheduler.New(func(path string, kind domain.TriggerKind) {
		if ctx.Err() != nil {
			return
		}
		rels := s.analyzer.Resolve(ctx, path)
		a.logger.Debug(kind.String() + " " + path + ": " + strconv.Itoa(len(rels)) + " relation(s)")
		if opts.OnResolved != nil {
			opts.OnResolved(Result{File: path, Relations: rels})
		}
	}, s.cfg.Delay)
	defer sched.Stop()

	if err := a.watcher.Start(ctx, s.cfg.Root); err != nil {
		return zerr.Wrap(err, "failed to start file watcher")
	}
	a.logger.Info("watching " + s.cfg.Root)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if filter.Match(event.Path) {
				a.handleEvent(s, sched, event)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return zerr.New("file watcher closed unexpectedly")
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.watcher.Stop()
	})

	if opts.Scan {
		g.Go(func() error {
			files, err := expandPaths([]string{s.cfg.Root}, filter)
			if err != nil {
				return err
			}
			for _, file := range files {
				sched.Trigger(file, domain.TriggerOpen)
			}
			return nil
		})
	}

	if opts.MetricsAddr != "" {
		serveMetrics(gctx, g, opts.MetricsAddr, s.metrics.Handler(), a.logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// handleEvent maps a file system event onto the index and the scheduler.
func (a *App) handleEvent(s *session, sched *scheduler.Scheduler, event ports.WatchEvent) {
	switch event.Operation {
	case ports.OpCreate:
		sched.Trigger(event.Path, domain.TriggerOpen)
	case ports.OpWrite:
		evicted := s.analyzer.Invalidate(event.Path)
		sched.Trigger(event.Path, domain.TriggerSave)
		for _, dependent := range evicted {
			if dependent != event.Path {
				sched.Trigger(dependent, domain.TriggerChange)
			}
		}
	case ports.OpRemove, ports.OpRename:
		sched.Cancel(event.Path)
		evicted := s.analyzer.Invalidate(event.Path)
		s.analyzer.Remove(event.Path)
		for _, dependent := range evicted {
			if dependent != event.Path {
				sched.Trigger(dependent, domain.TriggerChange)
			}
		}
	}
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler, logger ports.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	g.Go(func() error {
		logger.Info("serving metrics on " + addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.With(zerr.Wrap(err, "metrics server failed"), "addr", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
