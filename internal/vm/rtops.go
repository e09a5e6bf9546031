package vm

import (
	"github.com/kristofer/corevm/internal/frame"
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

// resolveLocation materializes loc against f's current operand stack
// (0 = top, negative = below top), locals, or its own constant payload.
func resolveLocation(f *frame.Frame, loc opcode.ValueLocation) (heap.Value, error) {
	switch loc.Kind {
	case opcode.LocStack:
		idx := len(f.Stack) - 1 + loc.StackOffset
		if idx < 0 || idx >= len(f.Stack) {
			return heap.Value{}, objects.NewRuntimeError("stack-map location out of range")
		}
		return f.Stack[idx], nil
	case opcode.LocLocal:
		if loc.Index < 0 || loc.Index >= len(f.Locals) {
			return heap.Value{}, objects.NewRuntimeError("local index out of bounds")
		}
		return f.Locals[loc.Index], nil
	case opcode.LocArgument:
		if loc.Index < 0 || loc.Index >= len(f.Arguments) {
			return heap.Value{}, objects.NewRuntimeError("argument index out of bounds")
		}
		return f.Arguments[loc.Index], nil
	default:
		v, ok := loc.AsConstValue()
		if !ok {
			return heap.Value{}, objects.NewRuntimeError("unmaterializable value location")
		}
		return v, nil
	}
}

// execStackMap replays a packed stack-manipulation window in O(len(map))
// work: materialize every entry from the pre-adjustment stack into a
// staging buffer, adjust depth by EndState, then overwrite the top
// len(map) slots — base spec §4.6 "StackMap execution".
func (ex *Executor) execStackMap(f *frame.Frame, ins opcode.Instruction) error {
	staged := make([]heap.Value, len(ins.StackMap))
	for i, loc := range ins.StackMap {
		v, err := resolveLocation(f, loc)
		if err != nil {
			return err
		}
		staged[i] = v
	}

	switch {
	case ins.EndState > 0:
		for i := 0; i < ins.EndState; i++ {
			f.Push(heap.Null())
		}
	case ins.EndState < 0:
		for i := 0; i < -ins.EndState; i++ {
			if _, err := f.Pop(); err != nil {
				return err
			}
		}
	}

	n := len(staged)
	if n > len(f.Stack) {
		return objects.NewRuntimeError("stack-map overwrite out of range")
	}
	copy(f.Stack[len(f.Stack)-n:], staged)
	return nil
}

// doConstCall implements Rt(ConstCall(loc_target, loc_this, n)): target
// and this are materialized from ValueLocations instead of stack pops;
// only the n arguments still come off the operand stack.
func (ex *Executor) doConstCall(f *frame.Frame, ins opcode.Instruction) (heap.Value, error) {
	target, err := resolveLocation(f, ins.LocTarget)
	if err != nil {
		return heap.Value{}, err
	}
	this, err := resolveLocation(f, ins.LocThis)
	if err != nil {
		return heap.Value{}, err
	}
	args := make([]heap.Value, ins.N)
	for i := ins.N - 1; i >= 0; i-- {
		v, err := f.Pop()
		if err != nil {
			return heap.Value{}, err
		}
		args[i] = v
	}
	return ex.Invoke(target, this, "", args)
}
