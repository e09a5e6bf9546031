package heap

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ObjectInfo is the slot payload: the boxed Object plus a native-pin
// counter. GC refuses to free a slot while its pin count is non-zero —
// an external (Go-side) reference is holding it alive.
type ObjectInfo struct {
	Obj  Object
	Pins int32
}

// StaticRootHandle is the immortal handle 0, never freed.
const StaticRootHandle Handle = 0

// staticRoot is the Object living at handle 0. Its children are every
// handle reachable from the static-name table, so tracing needs no
// special case for globals.
type staticRoot struct {
	Base
	pool *Pool
}

func (s *staticRoot) GetChildren() []Handle { return s.pool.staticChildren }
func (s *staticRoot) TypeName() string      { return "StaticRoot" }

// Pool is the VM's heap: a slot table indexed by Handle with free-index
// reuse, plus the static-name table and GC bookkeeping.
type Pool struct {
	slots []*ObjectInfo
	free  []Handle

	staticNames    map[string]Value
	staticChildren []Handle

	allocCount  int
	gcThreshold int

	Log zerolog.Logger
}

// NewPool creates a Pool with the Static Root pre-allocated at handle 0.
// gcThreshold is the allocation count that triggers a collection before
// the next block dispatch (base spec default: 1000; a tunable, not a
// contract).
func NewPool(gcThreshold int) *Pool {
	if gcThreshold <= 0 {
		gcThreshold = 1000
	}
	p := &Pool{
		staticNames: make(map[string]Value),
		gcThreshold: gcThreshold,
		Log:         zerolog.Nop(),
	}
	root := &staticRoot{pool: p}
	p.slots = append(p.slots, &ObjectInfo{Obj: root})
	return p
}

// Allocate boxes obj into a fresh (or reused) slot, runs its one-time
// Initialize hook, and bumps the allocation counter.
func (p *Pool) Allocate(obj Object) (Handle, error) {
	var h Handle
	if n := len(p.free); n > 0 {
		h = p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[h] = &ObjectInfo{Obj: obj}
	} else {
		h = Handle(len(p.slots))
		p.slots = append(p.slots, &ObjectInfo{Obj: obj})
	}
	if err := obj.Initialize(p); err != nil {
		return 0, err
	}
	p.allocCount++
	return h, nil
}

// Resolve returns the ObjectInfo for a live handle, or an error for a
// freed or out-of-range one.
func (p *Pool) Resolve(h Handle) (*ObjectInfo, error) {
	if h < 0 || int(h) >= len(p.slots) || p.slots[h] == nil {
		return nil, fmt.Errorf("dangling object handle #%d", h)
	}
	return p.slots[h], nil
}

// MustResolveTyped resolves h and downcasts its Object to T, failing if
// either step does not hold.
func MustResolveTyped[T Object](p *Pool, h Handle) (T, error) {
	var zero T
	info, err := p.Resolve(h)
	if err != nil {
		return zero, err
	}
	typed, ok := info.Obj.(T)
	if !ok {
		return zero, fmt.Errorf("object #%d is not a %T", h, zero)
	}
	return typed, nil
}

// Pin increments a slot's native-reference counter, pinning it against
// GC regardless of reachability from the object graph.
func (p *Pool) Pin(h Handle) error {
	info, err := p.Resolve(h)
	if err != nil {
		return err
	}
	info.Pins++
	return nil
}

// Unpin decrements a slot's native-reference counter.
func (p *Pool) Unpin(h Handle) error {
	info, err := p.Resolve(h)
	if err != nil {
		return err
	}
	if info.Pins > 0 {
		info.Pins--
	}
	return nil
}

// AllocCount is the running allocation counter since the pool (or its
// last reset) was created.
func (p *Pool) AllocCount() int { return p.allocCount }

// ShouldCollect reports whether the allocation counter has crossed the
// configured threshold since the last collection.
func (p *Pool) ShouldCollect() bool { return p.allocCount >= p.gcThreshold }

// LiveHandles counts non-nil slots, for diagnostics and tests.
func (p *Pool) LiveHandles() int {
	n := 0
	for _, s := range p.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// CreateStaticObject allocates obj and registers it under name in one
// step. First-write-wins: fails if name is already bound.
func (p *Pool) CreateStaticObject(name string, obj Object) (Handle, error) {
	if _, exists := p.staticNames[name]; exists {
		return 0, fmt.Errorf("static %q already defined", name)
	}
	h, err := p.Allocate(obj)
	if err != nil {
		return 0, err
	}
	if err := p.SetStaticObject(name, Obj(h)); err != nil {
		return 0, err
	}
	return h, nil
}

// SetStaticObject binds name to value. First-write-wins: a second write
// to the same name fails rather than silently replacing the value, so
// external consumers can hold a static-lookup reference with no
// invalidation risk.
func (p *Pool) SetStaticObject(name string, value Value) error {
	if _, exists := p.staticNames[name]; exists {
		return fmt.Errorf("static %q already defined", name)
	}
	p.staticNames[name] = value
	if value.Kind() == KindObject {
		p.staticChildren = append(p.staticChildren, value.HandleValue())
	}
	return nil
}

// GetStatic looks up a static by name.
func (p *Pool) GetStatic(name string) (Value, bool) {
	v, ok := p.staticNames[name]
	return v, ok
}

// HasStatic reports whether name is already bound — used by the
// optimizer's const-static inlining pass.
func (p *Pool) HasStatic(name string) bool {
	_, ok := p.staticNames[name]
	return ok
}

// Collect runs a full mark-and-sweep. Roots are the static root plus
// every handle in extraRoots (typically everything reachable from the
// call stack's frames). A slot is freed iff its index was not marked
// and its pin count is zero.
func (p *Pool) Collect(extraRoots []Handle) {
	visited := make(map[Handle]bool, len(p.slots))
	stack := make([]Handle, 0, len(extraRoots)+1)
	stack = append(stack, StaticRootHandle)
	stack = append(stack, extraRoots...)

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[h] {
			continue
		}
		if h < 0 || int(h) >= len(p.slots) || p.slots[h] == nil {
			continue
		}
		visited[h] = true
		stack = append(stack, p.slots[h].Obj.GetChildren()...)
	}

	freed := 0
	for i, info := range p.slots {
		h := Handle(i)
		if info == nil || h == StaticRootHandle {
			continue
		}
		if !visited[h] && info.Pins == 0 {
			p.slots[i] = nil
			p.free = append(p.free, h)
			freed++
		}
	}
	p.allocCount = 0
	p.Log.Debug().Int("freed", freed).Int("live", p.LiveHandles()).Msg("gc_cycle")
}
