// Package frame implements the per-invocation Frame record and its
// pooled call stack — base spec §4.4, grounded on the teacher's
// VM.stack/locals/callStack fields and its StackFrame bookkeeping
// (pkg/vm/vm.go, pkg/vm/errors.go).
package frame

import (
	"github.com/pkg/errors"

	"github.com/kristofer/corevm/internal/heap"
)

// Frame is a per-invocation record: this, arguments, locals (resized by
// InitLocal), and the operand stack. No frame ever holds a reference
// into another frame — all sharing is mediated by the Pool.
type Frame struct {
	This      heap.Value
	Arguments []heap.Value
	Locals    []heap.Value
	Stack     []heap.Value

	// Name/Selector mirror the teacher's StackFrame. Only the host
	// frame sets Name; no error message in this module renders them.
	Name     string
	Selector string
}

func (f *Frame) reset() {
	f.This = heap.Null()
	f.Arguments = f.Arguments[:0]
	f.Locals = f.Locals[:0]
	f.Stack = f.Stack[:0]
	f.Name = ""
	f.Selector = ""
}

// Push appends a value to the frame's operand stack.
func (f *Frame) Push(v heap.Value) {
	f.Stack = append(f.Stack, v)
}

// Pop removes and returns the top of the operand stack.
func (f *Frame) Pop() (heap.Value, error) {
	n := len(f.Stack)
	if n == 0 {
		return heap.Value{}, errors.New("stack underflow")
	}
	v := f.Stack[n-1]
	f.Stack = f.Stack[:n-1]
	return v, nil
}

// Top returns the value at the top of the operand stack without
// removing it, or Null if the stack is empty.
func (f *Frame) Top() heap.Value {
	n := len(f.Stack)
	if n == 0 {
		return heap.Null()
	}
	return f.Stack[n-1]
}

// InitLocals grows Locals to n entries, defaulting new slots to Null.
func (f *Frame) InitLocals(n int) {
	for len(f.Locals) < n {
		f.Locals = append(f.Locals, heap.Null())
	}
}

// Roots appends every Object(h) the frame holds — this, arguments,
// locals, operand stack — to dst and returns the extended slice. Used
// by the Call Stack's CollectRoots for GC.
func (f *Frame) Roots(dst []heap.Handle) []heap.Handle {
	dst = appendRoot(dst, f.This)
	for _, v := range f.Arguments {
		dst = appendRoot(dst, v)
	}
	for _, v := range f.Locals {
		dst = appendRoot(dst, v)
	}
	for _, v := range f.Stack {
		dst = appendRoot(dst, v)
	}
	return dst
}

func appendRoot(dst []heap.Handle, v heap.Value) []heap.Handle {
	if v.Kind() == heap.KindObject {
		return append(dst, v.HandleValue())
	}
	return dst
}
