package device

import (
	"context"
	"fmt"
	"net"

	"emurig/internal/catalog"
	"emurig/internal/config"
	"emurig/internal/logging"
	"emurig/internal/ports"
)

// OpenRequest selects how a device is obtained.
type OpenRequest interface {
	openRequest()
}

// ExistingInstance reuses an already-running instance by identifier.
type ExistingInstance struct {
	ID string
}

// NewFromQuery resolves and launches a device from a textual query.
type NewFromQuery struct {
	Query string
}

func (ExistingInstance) openRequest() {}
func (NewFromQuery) openRequest()     {}

// Manager ties candidate resolution and instance lifecycle together. All
// mutable state (registry table, instance counter) lives behind it, so two
// managers never interfere.
type Manager struct {
	cfg      config.Config
	registry *Registry
	sup      *Supervisor

	// dial is swapped out in tests.
	dial func(network, addr string) (net.Conn, error)
}

func NewManager(cfg config.Config, runner ContainerRunner) *Manager {
	registry := NewRegistry(runner)
	return &Manager{
		cfg:      cfg,
		registry: registry,
		sup:      NewSupervisor(runner, ports.NewAllocator(), registry),
		dial:     net.Dial,
	}
}

// Open resolves the request to a ready instance with a connected transport.
// For NewFromQuery this runs the full path: parse, scan, match, spawn, wait
// for readiness, connect.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*Instance, error) {
	switch req := req.(type) {
	case ExistingInstance:
		inst, ok := m.registry.Get(req.ID)
		if !ok {
			return nil, &DestroyedError{ID: req.ID}
		}
		return inst, nil
	case NewFromQuery:
		return m.openFromQuery(ctx, req.Query)
	default:
		return nil, fmt.Errorf("unsupported open request %T", req)
	}
}

func (m *Manager) openFromQuery(ctx context.Context, query string) (*Instance, error) {
	spec, err := m.Resolve(query)
	if err != nil {
		return nil, err
	}

	inst, err := m.sup.Spawn(ctx, spec)
	if err != nil {
		return nil, err
	}

	waitCtx := ctx
	if m.cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.cfg.ReadyTimeout)
		defer cancel()
	}
	if err := inst.WaitReady(waitCtx); err != nil {
		// On timeout the instance stays registered and reachable for an
		// explicit destroy; on process death the exit watcher cleans up.
		return nil, err
	}

	conn, err := m.dial("tcp", fmt.Sprintf("127.0.0.1:%d", inst.Ports.APDU))
	if err != nil {
		if derr := m.Destroy(ctx, inst.ID); derr != nil {
			logging.Warnf("destroy after failed connect: %v", derr)
		}
		return nil, fmt.Errorf("connect apdu port of %s: %w", inst.ID, err)
	}
	inst.setTransport(conn)
	return inst, nil
}

// Resolve turns a query string into a concrete spawn spec without starting
// anything: parse the query, scan the coinapps tree, take the first match,
// and locate the companion dependency binary when one is requested.
func (m *Manager) Resolve(query string) (SpawnSpec, error) {
	q, ok := catalog.ParseQuery(query)
	if !ok {
		return SpawnSpec{}, &InvalidQueryError{Query: query}
	}

	candidates, err := catalog.Scan(m.cfg.CoinappsRoot)
	if err != nil {
		return SpawnSpec{}, err
	}
	cand, ok := catalog.FindFirst(candidates, q.Search)
	if !ok {
		return SpawnSpec{}, &NoCandidateError{Search: q.Search}
	}

	spec := SpawnSpec{
		Candidate:    cand,
		Seed:         m.cfg.Seed,
		CoinappsRoot: m.cfg.CoinappsRoot,
		Image:        m.cfg.Image,
	}
	if q.Dependency != "" {
		depSearch := catalog.AppSearch{
			Model:    cand.Model,
			Firmware: cand.FirmwareVersion,
			AppName:  q.Dependency,
		}
		dep, ok := catalog.FindFirst(candidates, depSearch)
		if !ok {
			return SpawnSpec{}, &NoCandidateError{Search: depSearch}
		}
		spec.DependencyName = q.Dependency
		spec.DependencyPath = dep.Path
	}
	return spec, nil
}

// Transport returns the connected transport for a live instance. Lookups
// after destroy (or for unknown ids) fail with a DestroyedError.
func (m *Manager) Transport(id string) (net.Conn, error) {
	inst, ok := m.registry.Get(id)
	if !ok {
		return nil, &DestroyedError{ID: id}
	}
	conn, ok := inst.Transport()
	if !ok {
		return nil, fmt.Errorf("instance %s has no connected transport yet", id)
	}
	return conn, nil
}

// Destroy tears down one instance; see Registry.Destroy.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.registry.Destroy(ctx, id)
}

// ReleaseAll destroys every live instance, best-effort.
func (m *Manager) ReleaseAll(ctx context.Context) {
	m.registry.ReleaseAll(ctx)
}

// List returns display snapshots of all live instances.
func (m *Manager) List() []Snapshot {
	return m.registry.List()
}
