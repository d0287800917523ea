package app_test

import (
	"context"
	"errors"
	"iter"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/overlens/internal/app"
	"go.trai.ch/overlens/internal/core/ports"
	"go.uber.org/mock/gomock"
)

// feed wires the mock watcher to a channel the test writes events to.
// Stopping the watcher closes the channel.
func (p *project) feed() chan ports.WatchEvent {
	events := make(chan ports.WatchEvent)
	p.watch.EXPECT().Start(gomock.Any(), p.root).Return(nil)
	p.watch.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}))
	p.watch.EXPECT().Stop().DoAndReturn(func() error {
		close(events)
		return nil
	})
	return events
}

func TestApp_Watch_ReanalyzesChangedFiles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p := newProject(t)
		base := p.file(t, "base.py", "class Base:\n    def run(self): pass\n")
		child := p.file(t, "child.py", childSource)
		events := p.feed()

		p.worker.EXPECT().Start(gomock.Any()).Return(nil).AnyTimes()
		p.worker.EXPECT().Analyze(gomock.Any(), child).Return(overrides(base), nil).Times(2)
		p.worker.EXPECT().Stop().Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		resolved := make(chan app.Result, 4)
		done := make(chan error, 1)
		go func() {
			done <- p.app.Watch(ctx, app.WatchOptions{
				Root:       p.root,
				OnResolved: func(r app.Result) { resolved <- r },
			})
		}()

		events <- ports.WatchEvent{Path: child, Operation: ports.OpWrite}
		first := <-resolved
		assert.Equal(t, child, first.File)
		assert.Equal(t, overrides(base), first.Relations)

		// Ignored by the include filter.
		events <- ports.WatchEvent{Path: p.root + "/notes.txt", Operation: ports.OpWrite}

		// Deleting the base evicts the child, which is analyzed again.
		events <- ports.WatchEvent{Path: base, Operation: ports.OpRemove}
		second := <-resolved
		assert.Equal(t, child, second.File)

		cancel()
		require.NoError(t, <-done)
		synctest.Wait()
		assert.Empty(t, resolved)
	})
}

func TestApp_Watch_DebouncesBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p := newProject(t)
		child := p.file(t, "child.py", childSource)
		events := p.feed()

		p.worker.EXPECT().Start(gomock.Any()).Return(nil).AnyTimes()
		p.worker.EXPECT().Analyze(gomock.Any(), child).Return(nil, nil).Times(1)
		p.worker.EXPECT().Stop().Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		resolved := make(chan app.Result, 4)
		done := make(chan error, 1)
		go func() {
			done <- p.app.Watch(ctx, app.WatchOptions{
				Root:       p.root,
				OnResolved: func(r app.Result) { resolved <- r },
			})
		}()

		for range 5 {
			events <- ports.WatchEvent{Path: child, Operation: ports.OpWrite}
		}
		<-resolved
		synctest.Wait()
		assert.Empty(t, resolved)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_Scan(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p := newProject(t)
		base := p.file(t, "base.py", "class Base:\n    def run(self): pass\n")
		child := p.file(t, "pkg/child.py", childSource)
		p.file(t, "README.md", "docs\n")
		p.feed()

		p.worker.EXPECT().Start(gomock.Any()).Return(nil).AnyTimes()
		p.worker.EXPECT().Analyze(gomock.Any(), base).Return(nil, nil)
		p.worker.EXPECT().Analyze(gomock.Any(), child).Return(overrides(base), nil)
		p.worker.EXPECT().Stop().Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		resolved := make(chan app.Result, 4)
		done := make(chan error, 1)
		go func() {
			done <- p.app.Watch(ctx, app.WatchOptions{
				Root:       p.root,
				Scan:       true,
				OnResolved: func(r app.Result) { resolved <- r },
			})
		}()

		files := []string{(<-resolved).File, (<-resolved).File}
		assert.ElementsMatch(t, []string{base, child}, files)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_StartFailure(t *testing.T) {
	p := newProject(t)
	p.worker.EXPECT().Start(gomock.Any()).Return(nil)
	p.worker.EXPECT().Stop().Return(nil)
	p.watch.EXPECT().Start(gomock.Any(), p.root).Return(errors.New("too many open files"))

	err := p.app.Watch(context.Background(), app.WatchOptions{Root: p.root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start file watcher")
}

func TestApp_Watch_MetricsServerFailure(t *testing.T) {
	p := newProject(t)
	p.feed()
	p.logger.EXPECT().Error(gomock.Any()).AnyTimes()
	p.worker.EXPECT().Start(gomock.Any()).Return(nil)
	p.worker.EXPECT().Stop().Return(nil)

	err := p.app.Watch(context.Background(), app.WatchOptions{Root: p.root, MetricsAddr: "256.0.0.1:bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics server failed")
}
