package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackDelta_FixedArity(t *testing.T) {
	pop, push := Instruction{Op: Add}.StackDelta()
	assert.Equal(t, 2, pop)
	assert.Equal(t, 1, push)

	pop, push = Instruction{Op: LoadInt, I64: 5}.StackDelta()
	assert.Equal(t, 0, pop)
	assert.Equal(t, 1, push)

	pop, push = Instruction{Op: Return}.StackDelta()
	assert.Equal(t, 1, pop)
	assert.Equal(t, 0, push)
}

func TestStackDelta_VariableArity(t *testing.T) {
	pop, push := Instruction{Op: Call, N: 3}.StackDelta()
	assert.Equal(t, 5, pop)
	assert.Equal(t, 1, push)

	pop, push = Instruction{Op: CallField, N: 2}.StackDelta()
	assert.Equal(t, 5, pop)
	assert.Equal(t, 1, push)

	pop, push = Instruction{Op: RotateReverse, N: 4}.StackDelta()
	assert.Equal(t, 4, pop)
	assert.Equal(t, 4, push)
}

func TestStackDelta_RtStackMap(t *testing.T) {
	pop, push := Instruction{Op: RtStackMap, N: 3, EndState: -1}.StackDelta()
	assert.Equal(t, 3, pop)
	assert.Equal(t, 2, push)
}

func TestOp_IsRuntimeOnly(t *testing.T) {
	assert.True(t, RtLoadObject.IsRuntimeOnly())
	assert.True(t, RtConstCall.IsRuntimeOnly())
	assert.False(t, Add.IsRuntimeOnly())
}

func TestOp_IsTerminator(t *testing.T) {
	assert.True(t, Return.IsTerminator())
	assert.True(t, Branch.IsTerminator())
	assert.True(t, ConditionalBranch.IsTerminator())
	assert.False(t, Pop.IsTerminator())
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "LoadInt", LoadInt.String())
	assert.Equal(t, "Rt(ConstCall)", RtConstCall.String())
	assert.Equal(t, "Unknown", Op(9999).String())
}
