package device

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// fakeProc is a scriptable ContainerProcess. Tests drive its streams and
// exit through the helper methods.
type fakeProc struct {
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	stderrR *io.PipeReader
	stderrW *io.PipeWriter
	exitCh  chan error
}

func newFakeProc() *fakeProc {
	p := &fakeProc{exitCh: make(chan error, 1)}
	p.stdoutR, p.stdoutW = io.Pipe()
	p.stderrR, p.stderrW = io.Pipe()
	return p
}

func (p *fakeProc) Stdout() io.Reader { return p.stdoutR }
func (p *fakeProc) Stderr() io.Reader { return p.stderrR }
func (p *fakeProc) Wait() error       { return <-p.exitCh }

func (p *fakeProc) writeStderr(line string) {
	fmt.Fprintln(p.stderrW, line)
}

// exit terminates the fake process: closes both streams and unblocks Wait.
func (p *fakeProc) exit(err error) {
	_ = p.stdoutW.Close()
	_ = p.stderrW.Close()
	p.exitCh <- err
}

// fakeRunner records container starts and removals.
type fakeRunner struct {
	mu        sync.Mutex
	started   []*fakeProc
	startArgs [][]string
	removed   []string
	startErr  error
	removeErr error
	// autoReady makes every started process immediately print the
	// readiness marker.
	autoReady bool
}

func (r *fakeRunner) Start(ctx context.Context, args []string) (ContainerProcess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return nil, r.startErr
	}
	p := newFakeProc()
	r.started = append(r.started, p)
	r.startArgs = append(r.startArgs, append([]string(nil), args...))
	if r.autoReady {
		go p.writeStderr("speculos launcher: using SDK 2.0")
	}
	return p, nil
}

func (r *fakeRunner) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, name)
	return r.removeErr
}

func (r *fakeRunner) removals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

func (r *fakeRunner) lastProc() *fakeProc {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.started) == 0 {
		return nil
	}
	return r.started[len(r.started)-1]
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
