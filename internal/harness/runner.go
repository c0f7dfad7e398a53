package harness

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Runner drives one browser through one trial. Implementations must make
// Stop and Wait safe to call after the process or session is already gone.
type Runner interface {
	Start() error
	Stop() error
	Wait() error
}

// stopGrace is how long a local browser gets to exit after SIGTERM before
// it is killed.
const stopGrace = 5 * time.Second

// LocalRunner launches a browser binary with the benchmark URL among its
// arguments as a detached, killable process.
type LocalRunner struct {
	binary string
	args   []string

	cmd      *exec.Cmd
	waitC    chan error
	waitOnce sync.Once
	waitErr  error
}

func NewLocalRunner(binary string, args ...string) *LocalRunner {
	return &LocalRunner{binary: binary, args: args}
}

func (r *LocalRunner) Start() error {
	cmd := exec.Command(r.binary, r.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", r.binary, err)
	}
	r.cmd = cmd
	r.waitC = make(chan error, 1)
	go func() { r.waitC <- cmd.Wait() }()
	return nil
}

// Stop requests graceful termination and schedules a kill if the browser
// ignores it. Reaping happens in Wait.
func (r *LocalRunner) Stop() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	if err := r.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already exited.
		return nil
	}
	proc := r.cmd.Process
	time.AfterFunc(stopGrace, func() { _ = proc.Kill() })
	return nil
}

// Wait blocks until process exit. A non-zero exit after Stop is expected
// and not reported as an error.
func (r *LocalRunner) Wait() error {
	r.waitOnce.Do(func() {
		if r.waitC != nil {
			r.waitErr = <-r.waitC
		}
	})
	var exitErr *exec.ExitError
	if errors.As(r.waitErr, &exitErr) {
		return nil
	}
	return r.waitErr
}
