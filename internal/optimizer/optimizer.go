// Package optimizer implements the offline, multi-pass rewriter that
// runs once over a Function's blocks before its first execution:
// constant folding through the static table and object fields,
// stack-manipulation compression, and control-flow simplification.
// Grounded in shape on the teacher's Compiler (pkg/compiler/compiler.go)
// — a struct-held pass over a flat instruction stream — generalized
// from "emit new code" to "rewrite existing code".
package optimizer

import (
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/opcode"
	"github.com/rs/zerolog"
)

// Optimizer runs the base spec §4.6 pass pipeline against one Pool's
// static table and object graph.
type Optimizer struct {
	pool *heap.Pool
	log  zerolog.Logger
}

// New builds an Optimizer bound to pool, whose static table and fields
// the const-folding passes consult and whose allocator the
// string-materialization pass uses.
func New(pool *heap.Pool, log zerolog.Logger) *Optimizer {
	return &Optimizer{pool: pool, log: log}
}

// Optimize runs every pass, in the order the base spec names them, and
// rebuilds fn as a post-optimizer-mode Function. It is idempotent:
// running it again on its own output is a no-op chain of passes that
// each find nothing left to rewrite.
func (o *Optimizer) Optimize(fn *opcode.Function) (*opcode.Function, error) {
	rt := append([]heap.Handle(nil), fn.RtHandles...)
	blocks := cloneBlocks(fn.Blocks)

	var err error
	if blocks, rt, err = o.constStaticInlining(blocks, rt); err != nil {
		return nil, err
	}
	if blocks, rt, err = o.constStringMaterialization(blocks, rt); err != nil {
		return nil, err
	}
	if blocks, err = o.constFieldFolding(blocks); err != nil {
		return nil, err
	}
	blocks = o.constCallRewrite(blocks)
	blocks = o.nopRemoval(blocks)
	blocks = o.stackMapPacking(blocks)
	blocks = o.cfgJoin(blocks)
	blocks = o.deadBlockPrune(blocks)

	out, err := opcode.NewOptimizedFunction(fn.Name, blocks, rt)
	if err != nil {
		return nil, err
	}
	out.Optimized = true
	o.log.Debug().Str("function", fn.Name).Int("blocks_in", len(fn.Blocks)).
		Int("blocks_out", len(blocks)).Msg("optimize_function")
	return out, nil
}

func cloneBlocks(blocks []opcode.BasicBlock) []opcode.BasicBlock {
	out := make([]opcode.BasicBlock, len(blocks))
	for i, b := range blocks {
		ops := make([]opcode.Instruction, len(b.Ops))
		copy(ops, b.Ops)
		out[i] = opcode.BasicBlock{Ops: ops}
	}
	return out
}

// valueLocationOf reports the symbolic ValueLocation a single
// deterministic-value-producing op resolves to, used by both the
// const-call rewrite (pass 4) and the stack-map packer (pass 6).
func valueLocationOf(ins opcode.Instruction) (opcode.ValueLocation, bool) {
	switch ins.Op {
	case opcode.LoadInt:
		return opcode.ConstInt(ins.I64), true
	case opcode.LoadFloat:
		return opcode.ConstFloat(ins.F64), true
	case opcode.LoadBool:
		return opcode.ConstBool(ins.Bool), true
	case opcode.LoadNull:
		return opcode.ConstNull(), true
	case opcode.GetLocal:
		return opcode.Local(ins.N), true
	case opcode.GetArgument:
		return opcode.Argument(ins.N), true
	case opcode.RtLoadObject:
		return opcode.ConstObject(ins.Handle), true
	default:
		return opcode.ValueLocation{}, false
	}
}
