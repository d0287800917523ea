package worker

import (
	"errors"
	"io"
	"os"
	"os/exec"

	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/zerr"
)

// Process is a running worker with its standard streams attached.
type Process interface {
	Stdin() io.WriteCloser
	Stdout() io.Reader
	PID() int
	// Wait blocks until the process exits. It is called once stdout is drained.
	Wait() error
	Kill() error
}

// Spawner starts worker processes.
type Spawner interface {
	Spawn(dir, name string, args ...string) (Process, error)
}

// ExecSpawner starts workers with os/exec.
type ExecSpawner struct {
	// Stderr receives the worker's standard error. Nil discards it.
	Stderr io.Writer
}

// Spawn starts name with args in dir.
func (s ExecSpawner) Spawn(dir, name string, args ...string) (Process, error) {
	//nolint:gosec // G204: the worker command comes from the project config
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stderr = s.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWorkerSpawnFailed.Error())
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWorkerSpawnFailed.Error())
	}
	if err := cmd.Start(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWorkerSpawnFailed.Error()), "command", name)
	}

	return &execProcess{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
}

func (p *execProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *execProcess) Stdout() io.Reader      { return p.stdout }
func (p *execProcess) PID() int               { return p.cmd.Process.Pid }
func (p *execProcess) Wait() error            { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
