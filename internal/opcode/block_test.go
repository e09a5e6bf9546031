package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retBlock(ops ...Instruction) BasicBlock {
	return BasicBlock{Ops: append(ops, Instruction{Op: Return})}
}

func TestValidateBlock_Empty(t *testing.T) {
	err := ValidateBlock(BasicBlock{}, false)
	assert.Error(t, err)
}

func TestValidateBlock_Balanced(t *testing.T) {
	b := retBlock(
		Instruction{Op: LoadInt, I64: 1},
		Instruction{Op: LoadInt, I64: 2},
		Instruction{Op: Add},
	)
	assert.NoError(t, ValidateBlock(b, false))
}

func TestValidateBlock_Underflow(t *testing.T) {
	b := retBlock(Instruction{Op: Add})
	err := ValidateBlock(b, false)
	assert.Error(t, err)
}

func TestValidateBlock_NonZeroAtReturn(t *testing.T) {
	b := retBlock(
		Instruction{Op: LoadInt, I64: 1},
		Instruction{Op: LoadInt, I64: 2},
	)
	err := ValidateBlock(b, false)
	assert.Error(t, err)
}

func TestValidateBlock_TerminatorNotLast(t *testing.T) {
	b := BasicBlock{Ops: []Instruction{
		{Op: Return},
		{Op: Pop},
	}}
	err := ValidateBlock(b, false)
	assert.Error(t, err)
}

func TestValidateBlock_MissingTerminator(t *testing.T) {
	b := BasicBlock{Ops: []Instruction{{Op: LoadInt, I64: 1}}}
	err := ValidateBlock(b, false)
	assert.Error(t, err)
}

func TestValidateBlock_RuntimeOnlyRejectedInUserMode(t *testing.T) {
	b := retBlock(Instruction{Op: RtLoadValue})
	err := ValidateBlock(b, false)
	assert.Error(t, err)

	assert.NoError(t, ValidateBlock(b, true))
}

func TestValidateBlock_RotateReverseZero(t *testing.T) {
	b := retBlock(Instruction{Op: RotateReverse, N: 0})
	err := ValidateBlock(b, false)
	assert.Error(t, err)
}

func TestNewFunction_ValidatesBranchTargets(t *testing.T) {
	blocks := []BasicBlock{
		{Ops: []Instruction{{Op: Branch, BranchTarget: 5}}},
	}
	_, err := NewFunction("f", blocks)
	assert.Error(t, err)
}

func TestNewFunction_ValidConditionalBranch(t *testing.T) {
	blocks := []BasicBlock{
		{Ops: []Instruction{
			{Op: LoadBool, Bool: true},
			{Op: ConditionalBranch, TrueTarget: 1, FalseTarget: 2},
		}},
		retBlock(Instruction{Op: LoadNull}),
		retBlock(Instruction{Op: LoadNull}),
	}
	fn, err := NewFunction("f", blocks)
	require.NoError(t, err)
	assert.Equal(t, "f", fn.Name)
	assert.False(t, fn.Optimized)
}

func TestNewOptimizedFunction_AllowsRuntimeOps(t *testing.T) {
	blocks := []BasicBlock{
		retBlock(Instruction{Op: RtLoadValue}),
	}
	fn, err := NewOptimizedFunction("f", blocks, nil)
	require.NoError(t, err)
	assert.Empty(t, fn.RtHandles)
}

func TestNewFunction_NoBlocks(t *testing.T) {
	_, err := NewFunction("f", nil)
	assert.Error(t, err)
}
