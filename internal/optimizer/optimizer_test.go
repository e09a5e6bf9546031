package optimizer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/opcode"
)

func retBlock(ops ...opcode.Instruction) opcode.BasicBlock {
	return opcode.BasicBlock{Ops: append(ops, opcode.Instruction{Op: opcode.Return})}
}

func TestConstStaticInlining_ReplacesLoadAndGetStatic(t *testing.T) {
	pool := heap.NewPool(0)
	require.NoError(t, pool.SetStaticObject("pi", heap.Float(3.14)))

	opt := New(pool, zerolog.Nop())
	blocks := []opcode.BasicBlock{
		retBlock(
			opcode.Instruction{Op: opcode.LoadString, Str: "pi"},
			opcode.Instruction{Op: opcode.GetStatic},
		),
	}
	out, _, err := opt.constStaticInlining(blocks, nil)
	require.NoError(t, err)

	ops := out[0].Ops
	require.Len(t, ops, 2) // LoadFloat, Return
	assert.Equal(t, opcode.LoadFloat, ops[0].Op)
	assert.Equal(t, 3.14, ops[0].F64)
}

func TestConstStringMaterialization_AllocatesAndRegistersHandle(t *testing.T) {
	pool := heap.NewPool(0)
	opt := New(pool, zerolog.Nop())
	blocks := []opcode.BasicBlock{
		retBlock(opcode.Instruction{Op: opcode.LoadString, Str: "hi"}),
	}
	out, rt, err := opt.constStringMaterialization(blocks, nil)
	require.NoError(t, err)
	require.Len(t, rt, 1)
	assert.Equal(t, opcode.RtLoadObject, out[0].Ops[0].Op)
	assert.Equal(t, rt[0], out[0].Ops[0].Handle)
}

func TestNopRemoval(t *testing.T) {
	opt := New(heap.NewPool(0), zerolog.Nop())
	blocks := []opcode.BasicBlock{
		retBlock(opcode.Instruction{Op: opcode.Nop}, opcode.Instruction{Op: opcode.LoadInt, I64: 1}, opcode.Instruction{Op: opcode.Pop}),
	}
	out := opt.nopRemoval(blocks)
	for _, ins := range out[0].Ops {
		assert.NotEqual(t, opcode.Nop, ins.Op)
	}
}

func TestStackMapPacking_ShortWindowIsNoOp(t *testing.T) {
	opt := New(heap.NewPool(0), zerolog.Nop())
	blocks := []opcode.BasicBlock{
		retBlock(opcode.Instruction{Op: opcode.LoadInt, I64: 1}),
	}
	out := opt.stackMapPacking(blocks)
	assert.Equal(t, opcode.LoadInt, out[0].Ops[0].Op, "single-op window is rolled back, not packed")
}

func TestStackMapPacking_LongWindowPacks(t *testing.T) {
	opt := New(heap.NewPool(0), zerolog.Nop())
	var ops []opcode.Instruction
	for i := 0; i < 8; i++ {
		ops = append(ops, opcode.Instruction{Op: opcode.LoadInt, I64: int64(i)})
	}
	for i := 0; i < 7; i++ {
		ops = append(ops, opcode.Instruction{Op: opcode.Pop})
	}
	blocks := []opcode.BasicBlock{retBlock(ops...)}
	out := opt.stackMapPacking(blocks)
	require.Len(t, out[0].Ops, 2) // Rt(StackMap), Return
	assert.Equal(t, opcode.RtStackMap, out[0].Ops[0].Op)
}

func TestCFGJoin_MergesSolePredecessorSuccessor(t *testing.T) {
	opt := New(heap.NewPool(0), zerolog.Nop())
	blocks := []opcode.BasicBlock{
		{Ops: []opcode.Instruction{{Op: opcode.Branch, BranchTarget: 1}}},
		retBlock(opcode.Instruction{Op: opcode.LoadNull}),
	}
	out := opt.cfgJoin(blocks)
	require.NotNil(t, out[0].Ops)
	assert.Equal(t, opcode.LoadNull, out[0].Ops[0].Op)
	assert.Equal(t, opcode.Return, out[0].Ops[1].Op)
	assert.Nil(t, out[1].Ops, "merged-away block is marked unreachable")
}

func TestDeadBlockPrune_DropsUnreachableAndRemaps(t *testing.T) {
	opt := New(heap.NewPool(0), zerolog.Nop())
	blocks := []opcode.BasicBlock{
		{Ops: []opcode.Instruction{{Op: opcode.Branch, BranchTarget: 2}}},
		retBlock(opcode.Instruction{Op: opcode.LoadNull}), // unreachable
		retBlock(opcode.Instruction{Op: opcode.LoadInt, I64: 9}),
	}
	out := opt.deadBlockPrune(blocks)
	require.Len(t, out, 2)
	assert.Equal(t, opcode.Branch, out[0].Ops[len(out[0].Ops)-1].Op)
	assert.Equal(t, 1, out[0].Ops[len(out[0].Ops)-1].BranchTarget)
}

func TestOptimize_EndToEndConstStaticFold(t *testing.T) {
	pool := heap.NewPool(0)
	require.NoError(t, pool.SetStaticObject("pi", heap.Float(3.14)))
	opt := New(pool, zerolog.Nop())

	fn, err := opcode.NewFunction("usesPi", []opcode.BasicBlock{
		retBlock(
			opcode.Instruction{Op: opcode.LoadString, Str: "pi"},
			opcode.Instruction{Op: opcode.GetStatic},
		),
	})
	require.NoError(t, err)

	out, err := opt.Optimize(fn)
	require.NoError(t, err)
	assert.True(t, out.Optimized)
	assert.Equal(t, opcode.LoadFloat, out.Blocks[0].Ops[0].Op)
}
