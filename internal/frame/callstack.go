package frame

import (
	"github.com/pkg/errors"

	"github.com/kristofer/corevm/internal/heap"
)

// ErrStackOverflow is raised by Push when the call stack's depth limit
// is reached — base spec §8.4 boundary scenario: a runtime error
// carrying the string "Virtual stack overflow".
var ErrStackOverflow = errors.New("Virtual stack overflow")

// CallStack tracks the live frames of one executor. The bottom frame is
// a pre-pushed "host" frame used to receive top-level return values,
// mirroring the teacher's pushFrame("main program", "") in VM.Run.
type CallStack struct {
	frames   []*Frame
	depthMax int // 0 means unlimited
}

// NewCallStack builds a CallStack with the given optional depth limit
// (0 disables the limit) and pushes the bottom host frame.
func NewCallStack(depthMax int) *CallStack {
	cs := &CallStack{depthMax: depthMax}
	cs.frames = append(cs.frames, &Frame{Name: "host"})
	return cs
}

// Push installs f as the new top frame, failing with ErrStackOverflow
// if doing so would exceed the configured depth limit.
func (cs *CallStack) Push(f *Frame) error {
	if cs.depthMax > 0 && len(cs.frames) >= cs.depthMax {
		return ErrStackOverflow
	}
	cs.frames = append(cs.frames, f)
	return nil
}

// Pop removes and returns the top frame. It never pops the bottom host
// frame.
func (cs *CallStack) Pop() *Frame {
	n := len(cs.frames)
	if n <= 1 {
		return nil
	}
	f := cs.frames[n-1]
	cs.frames = cs.frames[:n-1]
	return f
}

// Top returns the current top frame.
func (cs *CallStack) Top() *Frame {
	return cs.frames[len(cs.frames)-1]
}

// Depth returns the number of live frames, including the host frame.
func (cs *CallStack) Depth() int {
	return len(cs.frames)
}

// CollectRoots walks every live frame and returns every Object(h) it
// holds as a GC root — base spec §4.4 collect_objects().
func (cs *CallStack) CollectRoots() []heap.Handle {
	var roots []heap.Handle
	for _, f := range cs.frames {
		roots = f.Roots(roots)
	}
	return roots
}

// Frames exposes the snapshot of live frames, top-most last, for stack
// trace rendering (newest call first when walked in reverse, mirroring
// the teacher's RuntimeError.Error()).
func (cs *CallStack) Frames() []*Frame {
	out := make([]*Frame, len(cs.frames))
	copy(out, cs.frames)
	return out
}
