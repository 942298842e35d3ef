package ports

import "sync"

// Container-side listen ports are fixed; the host side moves with the
// instance counter so concurrent instances never collide.
const (
	InternalAPDU       = 40000
	InternalVNC        = 41000
	InternalButton     = 42000
	InternalAutomation = 43000
)

// PortSet is the quadruplet of host ports bound to one emulator instance.
type PortSet struct {
	APDU       int
	VNC        int
	Button     int
	Automation int
}

// Allocator mints monotonically increasing instance numbers and derives a
// port quadruplet from each. Numbers are never reused for the lifetime of
// the allocator, so no two live instances share a port.
type Allocator struct {
	mu   sync.Mutex
	next uint64
}

func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Next returns a fresh instance number and its port quadruplet.
func (a *Allocator) Next() (uint64, PortSet) {
	a.mu.Lock()
	n := a.next
	a.next++
	a.mu.Unlock()
	return n, For(n)
}

// For derives the port quadruplet for instance number n. Each port lives in
// its own 1000-wide band above the matching internal port.
func For(n uint64) PortSet {
	return PortSet{
		APDU:       InternalAPDU + int(n),
		VNC:        InternalVNC + int(n),
		Button:     InternalButton + int(n),
		Automation: InternalAutomation + int(n),
	}
}
