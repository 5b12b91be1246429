package events

import "sync"

// UIEvent is one user interaction dispatched into the active page's scoped
// handlers: a click, an input edit, a change. Name is the logical control
// ("save", "search", "row"), Target an optional entity id, Value the input's
// current value where one exists.
type UIEvent struct {
	Name   string
	Target string
	Value  string
}

// Handler consumes a UIEvent.
type Handler func(UIEvent)

type binding struct {
	id      int
	name    string
	handler Handler
}

// Bus fans UI events out to the handlers currently bound. Pages never attach
// handlers directly; they go through a Binder so that disposal removes
// exactly the bindings that page made and nothing else. Repeated navigation
// therefore cannot stack duplicate handlers.
type Bus struct {
	mu       sync.Mutex
	seq      int
	bindings map[string][]*binding
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{bindings: make(map[string][]*binding)}
}

// Dispatch delivers ev to every handler bound to its name, in binding order.
func (b *Bus) Dispatch(ev UIEvent) {
	b.mu.Lock()
	bound := append([]*binding(nil), b.bindings[ev.Name]...)
	b.mu.Unlock()
	for _, bd := range bound {
		bd.handler(ev)
	}
}

// HandlerCount reports how many handlers are bound to name. Used by tests
// asserting listener lifecycles.
func (b *Bus) HandlerCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bindings[name])
}

// Binder records bindings so they can be removed as a unit.
type Binder struct {
	bus   *Bus
	mu    sync.Mutex
	bound []*binding
}

// Binder creates a new scoped registration context.
func (b *Bus) Binder() *Binder {
	return &Binder{bus: b}
}

// On binds h to events named name, scoped to this binder.
func (bd *Binder) On(name string, h Handler) {
	bd.bus.mu.Lock()
	bd.bus.seq++
	bind := &binding{id: bd.bus.seq, name: name, handler: h}
	bd.bus.bindings[name] = append(bd.bus.bindings[name], bind)
	bd.bus.mu.Unlock()

	bd.mu.Lock()
	bd.bound = append(bd.bound, bind)
	bd.mu.Unlock()
}

// Dispose removes every binding this binder made. Safe to call twice.
func (bd *Binder) Dispose() {
	bd.mu.Lock()
	bound := bd.bound
	bd.bound = nil
	bd.mu.Unlock()

	bd.bus.mu.Lock()
	defer bd.bus.mu.Unlock()
	for _, bind := range bound {
		list := bd.bus.bindings[bind.name]
		for i, candidate := range list {
			if candidate.id == bind.id {
				bd.bus.bindings[bind.name] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}
