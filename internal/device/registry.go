package device

import (
	"context"
	"sort"
	"sync"

	"emurig/internal/logging"
)

// Registry is the process-wide table of live device instances. It is the
// sole authority for destruction; no other component holds a long-lived
// reference to the process handle.
type Registry struct {
	mu     sync.Mutex
	byID   map[string]*Instance
	runner ContainerRunner
}

func NewRegistry(runner ContainerRunner) *Registry {
	return &Registry{
		byID:   make(map[string]*Instance),
		runner: runner,
	}
}

// Register records a freshly spawned instance.
func (r *Registry) Register(inst *Instance) {
	r.mu.Lock()
	r.byID[inst.ID] = inst
	r.mu.Unlock()
}

// Get returns the live instance for id, if any.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.byID[id]
	return inst, ok
}

// Destroy tears down an instance. It is idempotent: a second call for the
// same id is a no-op. The entry is removed before the external process is
// asked to terminate, so re-entrant destroys cannot both proceed; a failed
// removal is reported but the record stays gone.
func (r *Registry) Destroy(ctx context.Context, id string) error {
	r.mu.Lock()
	inst, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.byID, id)
	r.mu.Unlock()

	inst.closeTransport()
	inst.setState(StateDestroyed)
	if err := r.runner.Remove(ctx, id); err != nil {
		return &TeardownError{ID: id, Err: err}
	}
	return nil
}

// ReleaseAll destroys every registered instance, best-effort. Failures are
// logged and do not abort the remaining destructions.
func (r *Registry) ReleaseAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.Destroy(ctx, id); err != nil {
			logging.Warnf("release %s: %v", id, err)
		}
	}
}

// List returns display snapshots of all live instances, sorted by ID.
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	instances := make([]*Instance, 0, len(r.byID))
	for _, inst := range r.byID {
		instances = append(instances, inst)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(instances))
	for _, inst := range instances {
		out = append(out, inst.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
