package objects

import (
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/opcode"
)

// VirtualFunction wraps a basic-block Function and defers running it to
// whatever executor holds the call protocol's current Frame — grounded
// on the teacher's Block{Bytecode, ParamCount, HomeContext}
// (pkg/vm/vm.go), generalized from a closure-capturing block to the
// spec's plain Function.
type VirtualFunction struct {
	heap.Base
	Fn *opcode.Function

	// optimize is injected at construction rather than imported
	// directly: the optimizer package depends on opcode, and having
	// heap/objects depend back on optimizer would be the same kind of
	// cycle the Exec interface avoids. main/vm wires this closure in.
	optimize func(*opcode.Function) (*opcode.Function, error)
}

// NewVirtualFunction builds a VirtualFunction. optimize may be nil, in
// which case Initialize never rewrites fn even if fn.OptimizerEnabled
// is set.
func NewVirtualFunction(fn *opcode.Function, optimize func(*opcode.Function) (*opcode.Function, error)) *VirtualFunction {
	return &VirtualFunction{
		Base:     heap.Base{SelfTypeName: "Function"},
		Fn:       fn,
		optimize: optimize,
	}
}

// Initialize runs the optimizer exactly once, on first allocation, if
// the function opted in and an optimizer was wired — base spec §4.5
// "the optimizer runs... before first execution".
func (f *VirtualFunction) Initialize(pool *heap.Pool) error {
	if f.Fn.OptimizerEnabled && !f.Fn.Optimized && f.optimize != nil {
		optimized, err := f.optimize(f.Fn)
		if err != nil {
			return err
		}
		f.Fn = optimized
	}
	return nil
}

func (f *VirtualFunction) GetChildren() []heap.Handle {
	return append([]heap.Handle(nil), f.Fn.RtHandles...)
}

func (f *VirtualFunction) Call(exec heap.Exec) (heap.Value, error) {
	return exec.RunFunction(f.Fn)
}

func (f *VirtualFunction) ToString() string { return "<function " + f.Fn.Name + ">" }
func (f *VirtualFunction) ToBool() bool     { return true }

// NativeFunction wraps a Go closure as a callable Object — the host's
// escape hatch for primitives (hostlib), grounded on the teacher's
// built-in primitive dispatch (pkg/vm/primitives.go).
type NativeFunction struct {
	heap.Base
	Name string
	Fn   func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error)
}

// NewNativeFunction builds a NativeFunction around fn.
func NewNativeFunction(name string, fn func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error)) *NativeFunction {
	return &NativeFunction{Base: heap.Base{SelfTypeName: "NativeFunction"}, Name: name, Fn: fn}
}

func (n *NativeFunction) Call(exec heap.Exec) (heap.Value, error) {
	return n.Fn(exec, exec.CurrentThis(), exec.CurrentArguments())
}

func (n *NativeFunction) ToString() string { return "<native " + n.Name + ">" }
func (n *NativeFunction) ToBool() bool     { return true }
