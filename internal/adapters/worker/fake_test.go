package worker_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/overlens/internal/adapters/worker"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fakeProcess is an in-memory worker process wired with pipes.
type fakeProcess struct {
	pid int

	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter

	exitOnce sync.Once
	exited   chan struct{}
	exitErr  error

	requests chan wireRequest
}

type wireRequest struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Data    struct {
		FilePath string `json:"file_path"`
	} `json:"data"`
}

func newFakeProcess(pid int) *fakeProcess {
	p := &fakeProcess{
		pid:      pid,
		exited:   make(chan struct{}),
		requests: make(chan wireRequest, 16),
	}
	p.stdinR, p.stdinW = io.Pipe()
	p.stdoutR, p.stdoutW = io.Pipe()

	go func() {
		defer close(p.requests)
		scanner := bufio.NewScanner(p.stdinR)
		for scanner.Scan() {
			var req wireRequest
			if err := json.Unmarshal(scanner.Bytes(), &req); err == nil {
				p.requests <- req
			}
		}
	}()
	return p
}

func (p *fakeProcess) Stdin() io.WriteCloser { return p.stdinW }
func (p *fakeProcess) Stdout() io.Reader      { return p.stdoutR }
func (p *fakeProcess) PID() int               { return p.pid }

func (p *fakeProcess) Wait() error {
	<-p.exited
	return p.exitErr
}

func (p *fakeProcess) Kill() error {
	p.exit(errors.New("signal: killed"))
	return nil
}

// exit simulates the process dying with err.
func (p *fakeProcess) exit(err error) {
	p.exitOnce.Do(func() {
		p.exitErr = err
		_ = p.stdoutW.Close()
		_ = p.stdinR.Close()
		close(p.exited)
	})
}

// emit writes raw bytes to the worker's stdout.
func (p *fakeProcess) emit(t *testing.T, s string) {
	t.Helper()
	_, err := io.WriteString(p.stdoutW, s)
	assert.NoError(t, err)
}

func (p *fakeProcess) ready(t *testing.T) {
	t.Helper()
	p.emit(t, `{"type":"ready"}`+"\n")
}

func (p *fakeProcess) respond(t *testing.T, id string, result string) {
	t.Helper()
	p.emit(t, `{"id":"`+id+`","result":`+result+"}\n")
}

// fakeSpawner hands out fake processes and records launches.
type fakeSpawner struct {
	mu        sync.Mutex
	spawned   atomic.Int32
	processes []*fakeProcess
	launches  [][]string
	onSpawn   func(p *fakeProcess)
	err       error
}

func (s *fakeSpawner) Spawn(dir, name string, args ...string) (worker.Process, error) {
	if s.err != nil {
		return nil, s.err
	}
	n := s.spawned.Add(1)
	p := newFakeProcess(1000 + int(n))

	s.mu.Lock()
	s.processes = append(s.processes, p)
	s.launches = append(s.launches, append([]string{dir, name}, args...))
	onSpawn := s.onSpawn
	s.mu.Unlock()

	if onSpawn != nil {
		go onSpawn(p)
	}
	return p, nil
}

func (s *fakeSpawner) process(i int) *fakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processes[i]
}

func readyOnSpawn(t *testing.T) func(p *fakeProcess) {
	return func(p *fakeProcess) { p.ready(t) }
}

func testConfig() *domain.Config {
	return &domain.Config{
		Root: "/project",
		Worker: domain.WorkerConfig{
			Command:      []string{"python3", "analyze_override.py"},
			Timeout:      domain.DefaultAnalyzeTimeout,
			RestartDelay: domain.DefaultRestartDelay,
		},
	}
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

const baseRelation = `[{"class":"Child","method":"run","line":4,"signature":"run(self)",` +
	`"type":"child_override","base":"Base","base_file":"base.py",` +
	`"base_file_path":"/project/base.py","base_line":2,"base_signature":"run(self)"}]`
