package device

import (
	"context"
	"net"
	"sync"

	"emurig/internal/catalog"
	"emurig/internal/ports"
)

// State tracks where an instance is in its lifecycle.
type State int

const (
	StateStarting State = iota
	StateReady
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Instance is one running emulator plus its ports and transport. The
// registry exclusively owns the process handle from creation to destroy.
type Instance struct {
	ID        string
	Ports     ports.PortSet
	Candidate catalog.AppCandidate

	proc  ContainerProcess
	ready *readySignal

	mu        sync.Mutex
	state     State
	transport net.Conn
}

// WaitReady blocks until the emulator prints its readiness marker, the
// process exits first, or ctx expires. The outcome is sticky: once the
// signal has resolved every later call returns the same result.
func (i *Instance) WaitReady(ctx context.Context) error {
	return i.ready.wait(ctx)
}

func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Instance) setState(s State) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

// markReady transitions starting to ready. A destroyed instance stays
// destroyed even if its orphaned process prints the marker afterwards.
func (i *Instance) markReady() {
	i.mu.Lock()
	if i.state == StateStarting {
		i.state = StateReady
	}
	i.mu.Unlock()
}

// Transport returns the connected APDU transport. ok is false before the
// connect step has run or after destroy.
func (i *Instance) Transport() (net.Conn, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.transport, i.transport != nil
}

func (i *Instance) setTransport(conn net.Conn) {
	i.mu.Lock()
	i.transport = conn
	i.mu.Unlock()
}

// closeTransport closes the APDU connection if one was established.
func (i *Instance) closeTransport() {
	i.mu.Lock()
	conn := i.transport
	i.transport = nil
	i.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Snapshot is a copy-out view of an instance for display.
type Snapshot struct {
	ID              string
	Ports           ports.PortSet
	Model           string
	FirmwareVersion string
	AppName         string
	AppVersion      string
	State           string
}

func (i *Instance) snapshot() Snapshot {
	return Snapshot{
		ID:              i.ID,
		Ports:           i.Ports,
		Model:           i.Candidate.Model,
		FirmwareVersion: i.Candidate.FirmwareVersion,
		AppName:         i.Candidate.AppName,
		AppVersion:      i.Candidate.AppVersion,
		State:           i.State().String(),
	}
}

// readySignal resolves exactly once, either ready (nil) or failed.
type readySignal struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newReadySignal() *readySignal {
	return &readySignal{done: make(chan struct{})}
}

// resolve records the outcome and reports whether this call was the one
// that resolved the signal.
func (s *readySignal) resolve(err error) bool {
	fired := false
	s.once.Do(func() {
		s.err = err
		close(s.done)
		fired = true
	})
	return fired
}

func (s *readySignal) wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
