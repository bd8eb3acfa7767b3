package table

import (
	"sync"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/platform"
)

// Registry is the Global Registry (spec.md §4.5): a process-wide list of
// all live tables, protected by one mutex, used exclusively on the fault
// path to translate a faulting guard-page (or decommitted-range) address
// back into a typed out-of-bounds exception. Linear scan is acceptable
// because resolve is never called from the hot path; WAVM's own
// isAddressOwnedByTable (Lib/Runtime/Table.cpp) is the same linear scan
// over a std::vector<Table*>.
type Registry struct {
	mu     sync.Mutex
	tables []*Instance
}

// NewRegistry creates an empty registry. Most embedders use the single
// process-wide DefaultRegistry; NewRegistry exists for tests that want
// isolation between cases.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry is the process-wide registry new tables join unless the
// embedder constructs its own via NewRegistry (spec.md invariant I6: every
// table is in exactly one registry, or is being destroyed).
var DefaultRegistry = NewRegistry()

func (g *Registry) register(t *Instance) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tables = append(g.tables, t)
}

func (g *Registry) unregister(t *Instance) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, candidate := range g.tables {
		if candidate == t {
			g.tables[i] = g.tables[len(g.tables)-1]
			g.tables = g.tables[:len(g.tables)-1]
			return
		}
	}
}

// Resolve locates the table owning addr, and the element index addr falls
// on, if any table's reservation (including its guard page) contains it.
// This is the is_address_owned_by_table Host->Core API (spec.md §6),
// consulted by the signal/exception-translation layer when a guest touches
// a guard page or a decommitted range.
func (g *Registry) Resolve(addr uintptr) (t *Instance, elementIndex uint64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, candidate := range g.tables {
		start := candidate.reservation.Base()
		end := start + uintptr(candidate.reservation.ReservedElements())*uintptr(platform.ElementSize) + uintptr(1)<<platform.PageSizeLog2()
		if addr >= start && addr < end {
			return candidate, uint64(addr-start) / uint64(platform.ElementSize), true
		}
	}
	return nil, 0, false
}

// Len reports how many tables are currently registered; a diagnostic/test
// helper, not part of the guest-visible surface.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tables)
}
