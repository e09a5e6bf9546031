// Package vm is the Executor: the dispatch loop over basic blocks, the
// call protocol, and operator semantics — base spec §4.3. Grounded on
// the teacher's VM (pkg/vm/vm.go): a for-loop switch over opcodes,
// push/pop helpers, and a runtimeError constructor that snapshots the
// call stack, generalized from a linear instruction stream to a
// basic-block graph and from message sends to the Object capability
// dispatch.
package vm

import (
	"github.com/rs/zerolog"

	"github.com/kristofer/corevm/internal/frame"
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

// Executor owns the call stack, the object pool, and dispatches one
// VM instance's execution. Not safe for concurrent use from more than
// one goroutine — base spec §5 "a VM instance is not safe to share
// across threads".
type Executor struct {
	pool      *heap.Pool
	calls     *frame.CallStack
	framePool *frame.Pool
	debug     bool
	debugger  *Debugger
	log       zerolog.Logger
}

// New builds an Executor over pool with the given call-stack depth
// limit (0 = unlimited).
func New(pool *heap.Pool, stackLimit int, log zerolog.Logger) *Executor {
	return &Executor{
		pool:      pool,
		calls:     frame.NewCallStack(stackLimit),
		framePool: frame.NewPool(),
		log:       log,
	}
}

// SetStackLimit changes the call stack's depth limit by rebuilding it —
// base spec §6 "set_stack_limit(n)". Only safe between top-level calls.
func (ex *Executor) SetStackLimit(n int) {
	ex.calls = frame.NewCallStack(n)
}

// SetDebug sets this executor's debug flag — base spec §6 "debug
// toggle". The flag is per executor; nothing in this package reads it,
// and log output is gated by the level of the logger passed to New.
func (ex *Executor) SetDebug(on bool) { ex.debug = on }

// AttachDebugger wires an interactive step debugger (adapted from the
// teacher's pkg/vm/debugger.go) that RunFunction consults before each
// basic block.
func (ex *Executor) AttachDebugger(d *Debugger) { ex.debugger = d }

// GC runs a full mark-sweep against the current call stack's roots —
// base spec §6 "gc()".
func (ex *Executor) GC() {
	ex.pool.Collect(ex.calls.CollectRoots())
}

// CreateStaticObject and SetStaticObject expose the pool's static-name
// table — base spec §6 "Register a global".
func (ex *Executor) CreateStaticObject(name string, obj heap.Object) (heap.Handle, error) {
	return ex.pool.CreateStaticObject(name, obj)
}

func (ex *Executor) SetStaticObject(name string, value heap.Value) error {
	return ex.pool.SetStaticObject(name, value)
}

// RunCallable is the host entry point — base spec §6 "Invoke": pushes a
// frame with this=Null and no arguments above the host frame, invokes the named
// static callable, and returns the unwound error (if any) as a VMError.
func (ex *Executor) RunCallable(name string) (heap.Value, error) {
	target, ok := ex.pool.GetStatic(name)
	if !ok {
		return heap.Value{}, objects.NewRuntimeError("no such callable: " + name)
	}
	result, err := ex.Invoke(target, heap.Null(), "", nil)
	if err != nil {
		return heap.Value{}, &VMError{Err: err}
	}
	return result, nil
}

// VMError wraps an unwound runtime error for the host boundary —
// base spec §7 "run_callable is the catch boundary".
type VMError struct {
	Err error
}

func (e *VMError) Error() string { return e.Err.Error() }
func (e *VMError) Unwrap() error { return e.Err }

// Invoke is the base spec §4.3 call protocol, steps 3-6 (the caller's
// operand-stack choreography — steps 2 and 7 — belongs to the
// dispatch loop's own Call/CallField handling, which pops target/this/
// args from the frame and pushes the result back). The target is
// pinned for the call's duration so it survives GC regardless of
// reachability from the new frame.
func (ex *Executor) Invoke(target, this heap.Value, fieldName string, args []heap.Value) (heap.Value, error) {
	if target.Kind() != heap.KindObject {
		return heap.Value{}, objects.NewRuntimeError(heap.ToString(ex.pool, target) + " is not callable")
	}
	h := target.HandleValue()
	if err := ex.pool.Pin(h); err != nil {
		return heap.Value{}, err
	}
	defer ex.pool.Unpin(h)

	f := ex.framePool.Acquire()
	f.This = this
	f.Arguments = append(f.Arguments, args...)
	if err := ex.calls.Push(f); err != nil {
		ex.framePool.Release(f)
		return heap.Value{}, err
	}

	info, err := ex.pool.Resolve(h)
	if err != nil {
		ex.calls.Pop()
		ex.framePool.Release(f)
		return heap.Value{}, err
	}

	var result heap.Value
	if fieldName != "" {
		result, err = info.Obj.CallField(fieldName, ex)
	} else {
		result, err = info.Obj.Call(ex)
	}

	ex.calls.Pop()
	ex.framePool.Release(f)
	return result, err
}

// Pool implements heap.Exec.
func (ex *Executor) Pool() *heap.Pool { return ex.pool }

// CurrentThis / CurrentArguments implement heap.Exec by reading the
// frame the call protocol just installed.
func (ex *Executor) CurrentThis() heap.Value        { return ex.calls.Top().This }
func (ex *Executor) CurrentArguments() []heap.Value { return ex.calls.Top().Arguments }

// RunFunction implements heap.Exec for objects.VirtualFunction: it
// dispatches fn's basic blocks against the frame Invoke just pushed.
func (ex *Executor) RunFunction(fnAny any) (heap.Value, error) {
	fn, ok := fnAny.(*opcode.Function)
	if !ok {
		return heap.Value{}, objects.NewRuntimeError("RunFunction: not a compiled function")
	}
	f := ex.calls.Top()

	blockID := 0
	for {
		if blockID < 0 || blockID >= len(fn.Blocks) {
			return heap.Value{}, objects.NewRuntimeError("invalid block id")
		}
		if ex.pool.ShouldCollect() {
			ex.GC()
		}
		if ex.debugger != nil {
			ex.debugger.onBlock(fn, blockID)
		}
		result, next, done, err := ex.runBlock(f, fn.Blocks[blockID])
		if err != nil {
			return heap.Value{}, err
		}
		if done {
			return result, nil
		}
		blockID = next
	}
}
