package opcode

import (
	"fmt"

	"github.com/kristofer/corevm/internal/heap"
)

// ValidateError is a static error raised by block or function
// construction: stack imbalance, terminator placement, a disallowed
// runtime opcode, a malformed RotateReverse, or an out-of-range branch
// target.
type ValidateError struct {
	Block   int
	Message string
}

func (e *ValidateError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Block, e.Message)
}

// BasicBlock is a maximal straight-line sequence of opcodes terminated
// by exactly one Branch, ConditionalBranch, or Return.
type BasicBlock struct {
	Ops []Instruction
}

// ValidateBlock checks the invariants of base spec §4.2:
//  1. Running stack depth never goes negative.
//  2. Exactly one terminator, and it is the last opcode.
//  3. Depth is zero once the terminator's own effect is applied.
//  4. Rt(_) opcodes are rejected unless allowRuntime is set.
//  5. RotateReverse(0) is rejected.
func ValidateBlock(b BasicBlock, allowRuntime bool) error {
	if len(b.Ops) == 0 {
		return fmt.Errorf("block has no opcodes")
	}
	depth := 0
	for idx, ins := range b.Ops {
		if !allowRuntime && ins.Op.IsRuntimeOnly() {
			return fmt.Errorf("runtime-only opcode %s not allowed in user mode", ins.Op)
		}
		if ins.Op == RotateReverse && ins.N == 0 {
			return fmt.Errorf("RotateReverse(0) is invalid")
		}

		isLast := idx == len(b.Ops)-1
		if ins.Op.IsTerminator() && !isLast {
			return fmt.Errorf("terminator %s at position %d is not the last opcode", ins.Op, idx)
		}
		if !ins.Op.IsTerminator() && isLast {
			return fmt.Errorf("block does not end with a terminator")
		}

		pop, push := ins.StackDelta()
		depth -= pop
		if depth < 0 {
			return fmt.Errorf("stack underflow at opcode %d (%s)", idx, ins.Op)
		}
		depth += push
	}

	last := b.Ops[len(b.Ops)-1]
	switch last.Op {
	case Return:
		// Return's own pop already balanced depth to 0 above (it pops
		// its value off what was, just before it, a depth-1 stack).
		if depth != 0 {
			return fmt.Errorf("stack depth %d at Return, want 0", depth)
		}
	case Branch:
		if depth != 0 {
			return fmt.Errorf("stack depth %d at Branch, want 0", depth)
		}
	case ConditionalBranch:
		if depth != 0 {
			return fmt.Errorf("stack depth %d at ConditionalBranch, want 0", depth)
		}
	}
	return nil
}

// Function is a list of BasicBlocks (entry is block 0) plus the heap
// handles the optimizer has materialized and must keep alive for the
// function's lifetime, and an optimizer-enable flag consulted once on
// the owning Object's Initialize.
type Function struct {
	Name             string
	Blocks           []BasicBlock
	RtHandles        []heap.Handle
	OptimizerEnabled bool
	Optimized        bool
}

// NewFunction validates every block in user mode and every branch
// target against the block count, failing construction on any
// violation — base spec §6 "Build a function".
func NewFunction(name string, blocks []BasicBlock) (*Function, error) {
	return newFunction(name, blocks, false)
}

// NewOptimizedFunction is used internally by the optimizer to rebuild a
// Function whose blocks now contain Rt(_) opcodes.
func NewOptimizedFunction(name string, blocks []BasicBlock, rtHandles []heap.Handle) (*Function, error) {
	fn, err := newFunction(name, blocks, true)
	if err != nil {
		return nil, err
	}
	fn.RtHandles = rtHandles
	return fn, nil
}

func newFunction(name string, blocks []BasicBlock, allowRuntime bool) (*Function, error) {
	if len(blocks) == 0 {
		return nil, &ValidateError{Block: -1, Message: "function has no blocks"}
	}
	for i, b := range blocks {
		if err := ValidateBlock(b, allowRuntime); err != nil {
			return nil, &ValidateError{Block: i, Message: err.Error()}
		}
	}
	for i, b := range blocks {
		for _, ins := range b.Ops {
			switch ins.Op {
			case Branch:
				if ins.BranchTarget < 0 || ins.BranchTarget >= len(blocks) {
					return nil, &ValidateError{Block: i, Message: fmt.Sprintf("branch target %d out of range", ins.BranchTarget)}
				}
			case ConditionalBranch:
				if ins.TrueTarget < 0 || ins.TrueTarget >= len(blocks) {
					return nil, &ValidateError{Block: i, Message: fmt.Sprintf("true target %d out of range", ins.TrueTarget)}
				}
				if ins.FalseTarget < 0 || ins.FalseTarget >= len(blocks) {
					return nil, &ValidateError{Block: i, Message: fmt.Sprintf("false target %d out of range", ins.FalseTarget)}
				}
			}
		}
	}
	return &Function{Name: name, Blocks: blocks}, nil
}
