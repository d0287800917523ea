// Package scheduler debounces analysis triggers per file.
package scheduler

import (
	"sync"
	"time"

	"go.trai.ch/overlens/internal/core/domain"
)

// Func is invoked once a file's debounce delay has elapsed.
type Func func(path string, kind domain.TriggerKind)

// DelayFunc returns the debounce delay for a trigger kind.
type DelayFunc func(kind domain.TriggerKind) time.Duration

// Scheduler keeps at most one live timer per path. Scheduling a path again
// replaces its timer, so a burst of events runs the callback once.
type Scheduler struct {
	run   Func
	delay DelayFunc

	mu      sync.Mutex
	timers  map[string]*entry
	seq     uint64
	stopped bool
	running sync.WaitGroup
}

type entry struct {
	seq   uint64
	kind  domain.TriggerKind
	timer *time.Timer
}

// New creates a Scheduler calling run for due paths. delay picks the delay
// used by Trigger.
func New(run Func, delay DelayFunc) *Scheduler {
	return &Scheduler{
		run:    run,
		delay:  delay,
		timers: make(map[string]*entry),
	}
}

// Trigger schedules path with the delay configured for kind.
func (s *Scheduler) Trigger(path string, kind domain.TriggerKind) {
	s.schedule(path, kind, s.delay(kind))
}

// Schedule cancels any pending timer for path and starts a new one.
func (s *Scheduler) Schedule(path string, delay time.Duration) {
	s.schedule(path, domain.TriggerChange, delay)
}

func (s *Scheduler) schedule(path string, kind domain.TriggerKind, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.timers[path]; ok {
		prev.timer.Stop()
	}

	s.seq++
	e := &entry{seq: s.seq, kind: kind}
	seq := s.seq
	e.timer = time.AfterFunc(delay, func() { s.fire(path, seq) })
	s.timers[path] = e
}

// fire runs the callback if the timer identified by seq is still the live one.
func (s *Scheduler) fire(path string, seq uint64) {
	s.mu.Lock()
	e, ok := s.timers[path]
	if !ok || e.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(s.timers, path)
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	s.run(path, e.kind)
}

// Cancel drops the pending timer for path without running it.
func (s *Scheduler) Cancel(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[path]; ok {
		e.timer.Stop()
		delete(s.timers, path)
	}
}

// Flush runs every pending trigger now and blocks until they complete.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	due := s.timers
	s.timers = make(map[string]*entry)
	for _, e := range due {
		e.timer.Stop()
	}
	s.mu.Unlock()

	for path, e := range due {
		s.run(path, e.kind)
	}
}

// Stop drops all pending timers and waits for callbacks already running.
// Later triggers are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for path, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, path)
	}
	s.mu.Unlock()

	s.running.Wait()
}

// Pending returns the number of live timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
