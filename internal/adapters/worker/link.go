// Package worker supervises the long-lived analysis process and multiplexes
// analyze requests over its line-delimited JSON stdin/stdout protocol.
package worker

import (
	"context"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const maxLoggedLine = 200

// Link implements ports.AnalysisWorker over a single child process.
type Link struct {
	command      []string
	root         string
	timeout      time.Duration
	restartDelay time.Duration
	spawner      Spawner
	logger       ports.Logger

	// writeMu serializes request lines on stdin. It is never held together with mu.
	writeMu  sync.Mutex
	restarts singleflight.Group

	mu           sync.Mutex
	current      *session
	pending      map[string]*pendingRequest
	nextID       uint64
	restartCount int
	// backoffUntil holds back respawns after a crash.
	backoffUntil time.Time
}

var _ ports.AnalysisWorker = (*Link)(nil)

// session is one spawned process. Its ready channel is the shared startup
// future: it closes when the worker announces readiness or dies first.
type session struct {
	proc    Process
	ready   chan struct{}
	exited  chan struct{}
	once    sync.Once
	err     error
	isReady bool // guarded by Link.mu
}

func newSession(proc Process) *session {
	return &session{
		proc:   proc,
		ready:  make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (s *session) settle(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.ready)
	})
}

type pendingRequest struct {
	filePath string
	result   chan result
	timer    *time.Timer
}

type result struct {
	relations []domain.OverrideRelation
	err       error
}

// Option configures a Link.
type Option func(*Link)

// WithSpawner replaces the os/exec based spawner.
func WithSpawner(s Spawner) Option {
	return func(l *Link) {
		l.spawner = s
	}
}

// New creates a Link for cfg. The process is not started until Start or Analyze.
func New(cfg *domain.Config, logger ports.Logger, opts ...Option) *Link {
	l := &Link{
		command:      slices.Clone(cfg.Worker.Command),
		root:         cfg.Root,
		timeout:      cfg.Worker.Timeout,
		restartDelay: cfg.Worker.RestartDelay,
		logger:       logger,
		pending:      make(map[string]*pendingRequest),
	}
	if l.timeout <= 0 {
		l.timeout = domain.DefaultAnalyzeTimeout
	}
	if l.restartDelay < 0 {
		l.restartDelay = domain.DefaultRestartDelay
	}
	l.spawner = ExecSpawner{Stderr: newLineSplitter(func(line []byte) {
		logger.Debug("worker: " + string(line))
	})}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start spawns the worker if needed and waits for its readiness message,
// at most for the configured timeout.
func (l *Link) Start(ctx context.Context) error {
	return l.start(ctx, l.timeout)
}

func (l *Link) start(ctx context.Context, budget time.Duration) error {
	s, err := l.session()
	if err != nil {
		return err
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()
	select {
	case <-s.ready:
		return s.err
	case <-timer.C:
		return zerr.With(zerr.Wrap(domain.ErrAnalysisTimeout, "worker not ready"), "after", budget.String())
	case <-ctx.Done():
		return ctx.Err()
	}
}

// session returns the live session, spawning a process when there is none.
func (l *Link) session() (*session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		return l.current, nil
	}
	if wait := time.Until(l.backoffUntil); wait > 0 {
		return nil, zerr.Wrap(domain.ErrWorkerBackoff, "respawn held back for "+wait.Round(time.Millisecond).String())
	}
	if len(l.command) == 0 {
		return nil, domain.ErrWorkerCommandEmpty
	}

	args := append(slices.Clone(l.command[1:]), serverFlag, l.root)
	proc, err := l.spawner.Spawn(l.root, l.command[0], args...)
	if err != nil {
		return nil, err
	}

	s := newSession(proc)
	l.current = s
	go l.readLoop(s)

	l.logger.Debug("analysis worker spawned (pid " + strconv.Itoa(proc.PID()) + ")")
	return s, nil
}

// Analyze requests the relations of filePath using the configured timeout.
func (l *Link) Analyze(ctx context.Context, filePath string) ([]domain.OverrideRelation, error) {
	return l.AnalyzeWithTimeout(ctx, filePath, l.timeout)
}

// AnalyzeWithTimeout requests the relations of filePath. The budget bounds
// both the readiness wait and the response wait.
func (l *Link) AnalyzeWithTimeout(
	ctx context.Context,
	filePath string,
	timeout time.Duration,
) ([]domain.OverrideRelation, error) {
	if err := l.start(ctx, timeout); err != nil {
		return nil, err
	}

	id, req, err := l.register(filePath, timeout)
	if err != nil {
		return nil, err
	}

	if err := l.write(id, filePath); err != nil {
		l.complete(id, result{err: err})
	}

	select {
	case res := <-req.result:
		return res.relations, res.err
	case <-ctx.Done():
		l.forget(id)
		return nil, ctx.Err()
	}
}

func (l *Link) register(filePath string, timeout time.Duration) (string, *pendingRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil || !l.current.isReady {
		return "", nil, zerr.With(zerr.Wrap(domain.ErrWorkerNotRunning, "analyze"), "file", filePath)
	}

	l.nextID++
	id := "req_" + strconv.FormatUint(l.nextID, 10)
	req := &pendingRequest{filePath: filePath, result: make(chan result, 1)}
	req.timer = time.AfterFunc(timeout, func() {
		l.complete(id, result{
			err: zerr.With(zerr.Wrap(domain.ErrAnalysisTimeout, "request "+id), "file", filePath),
		})
	})
	l.pending[id] = req
	return id, req, nil
}

func (l *Link) write(id, filePath string) error {
	line, err := encodeRequest(id, filePath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrWorkerWriteFailed.Error())
	}

	l.mu.Lock()
	s := l.current
	l.mu.Unlock()
	if s == nil {
		return zerr.With(zerr.Wrap(domain.ErrWorkerTerminated, "request "+id), "file", filePath)
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if _, err := s.proc.Stdin().Write(line); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWorkerWriteFailed.Error()), "file", filePath)
	}
	return nil
}

// complete delivers res to the pending request id. Unknown or already
// completed ids are ignored.
func (l *Link) complete(id string, res result) bool {
	l.mu.Lock()
	req, ok := l.pending[id]
	if ok {
		delete(l.pending, id)
		req.timer.Stop()
	}
	l.mu.Unlock()

	if ok {
		req.result <- res
	}
	return ok
}

func (l *Link) forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if req, ok := l.pending[id]; ok {
		req.timer.Stop()
		delete(l.pending, id)
	}
}

func (l *Link) readLoop(s *session) {
	defer close(s.exited)

	splitter := newLineSplitter(func(line []byte) {
		l.handleLine(s, line)
	})
	_, _ = io.Copy(splitter, s.proc.Stdout())
	waitErr := s.proc.Wait()

	l.handleExit(s, waitErr)
}

func (l *Link) handleLine(s *session, line []byte) {
	msg, err := decodeMessage(line)
	if err != nil {
		l.logger.Warn("dropping undecodable worker output: " + truncate(string(line)))
		return
	}

	switch {
	case msg.Type == readyType:
		l.mu.Lock()
		if l.current == s {
			s.isReady = true
		}
		l.mu.Unlock()
		s.settle(nil)
		l.logger.Debug("analysis worker ready")
	case msg.ID != "":
		l.resolve(msg)
	}
}

func (l *Link) resolve(msg message) {
	l.mu.Lock()
	req, ok := l.pending[msg.ID]
	l.mu.Unlock()
	if !ok {
		l.logger.Debug("ignoring response for unknown request " + msg.ID)
		return
	}

	if text := msg.failure(); text != "" {
		l.complete(msg.ID, result{
			err: zerr.With(zerr.Wrap(domain.ErrWorkerRequestFailed, text), "file", req.filePath),
		})
		return
	}

	relations, err := DecodeRelations(msg.Result, l.root)
	if err != nil {
		l.complete(msg.ID, result{err: zerr.With(err, "file", req.filePath)})
		return
	}
	l.complete(msg.ID, result{relations: relations})
}

func (l *Link) handleExit(s *session, waitErr error) {
	l.mu.Lock()
	if l.current != s {
		// Stop or Restart already tore this session down.
		l.mu.Unlock()
		return
	}
	l.current = nil
	l.backoffUntil = time.Now().Add(l.restartDelay)
	drained := l.drainLocked()
	l.mu.Unlock()

	terminated := zerr.Wrap(domain.ErrWorkerTerminated, "worker exited")
	if waitErr != nil {
		terminated = zerr.With(terminated, "exit", waitErr.Error())
	}
	s.settle(terminated)
	failAll(drained, terminated)

	l.logger.Warn("analysis worker exited with " + strconv.Itoa(len(drained)) + " pending request(s)")
}

// drainLocked empties the pending table. mu must be held.
func (l *Link) drainLocked() []*pendingRequest {
	drained := make([]*pendingRequest, 0, len(l.pending))
	for id, req := range l.pending {
		req.timer.Stop()
		drained = append(drained, req)
		delete(l.pending, id)
	}
	return drained
}

func failAll(reqs []*pendingRequest, err error) {
	for _, req := range reqs {
		req.result <- result{err: zerr.With(err, "file", req.filePath)}
	}
}

// Stop terminates the worker and fails every pending request.
func (l *Link) Stop() error {
	l.mu.Lock()
	s := l.current
	l.current = nil
	drained := l.drainLocked()
	l.mu.Unlock()

	if s == nil {
		return nil
	}

	stopped := zerr.Wrap(domain.ErrWorkerTerminated, "worker stopped")
	s.settle(stopped)
	failAll(drained, stopped)

	_ = s.proc.Stdin().Close()
	if err := s.proc.Kill(); err != nil {
		return zerr.Wrap(err, "failed to stop analysis worker")
	}
	<-s.exited
	return nil
}

// Restart stops the worker, waits the grace delay and starts a fresh process.
// Concurrent calls share one restart.
func (l *Link) Restart(ctx context.Context) error {
	_, err, _ := l.restarts.Do("restart", func() (any, error) {
		if err := l.Stop(); err != nil {
			l.logger.Error(err)
		}

		l.mu.Lock()
		l.restartCount++
		l.backoffUntil = time.Now().Add(l.restartDelay)
		l.mu.Unlock()

		timer := time.NewTimer(l.restartDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		l.mu.Lock()
		l.backoffUntil = time.Time{}
		l.mu.Unlock()

		l.logger.Info("restarting analysis worker")
		return nil, l.Start(ctx)
	})
	return err
}

// Status reports the worker state.
func (l *Link) Status() ports.WorkerStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := ports.WorkerStatus{
		Pending:  len(l.pending),
		Restarts: l.restartCount,
	}
	if l.current != nil {
		st.Running = true
		st.Ready = l.current.isReady
		st.PID = l.current.proc.PID()
	}
	return st
}

// Pending returns the number of requests awaiting a response.
func (l *Link) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func truncate(s string) string {
	if len(s) <= maxLoggedLine {
		return s
	}
	return s[:maxLoggedLine] + "…"
}
