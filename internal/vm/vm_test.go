package vm

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

func registerFunction(t *testing.T, ex *Executor, pool *heap.Pool, name string, fn *opcode.Function) heap.Value {
	t.Helper()
	vf := objects.NewVirtualFunction(fn, nil)
	h, err := pool.CreateStaticObject(name, vf)
	require.NoError(t, err)
	return heap.Obj(h)
}

func retBlock(ops ...opcode.Instruction) opcode.BasicBlock {
	return opcode.BasicBlock{Ops: append(ops, opcode.Instruction{Op: opcode.Return})}
}

func newExecutor() (*Executor, *heap.Pool) {
	pool := heap.NewPool(0)
	ex := New(pool, 0, zerolog.Nop())
	return ex, pool
}

func TestExecutor_SimpleArithmetic(t *testing.T) {
	ex, pool := newExecutor()
	fn, err := opcode.NewFunction("add", []opcode.BasicBlock{
		retBlock(
			opcode.Instruction{Op: opcode.LoadInt, I64: 2},
			opcode.Instruction{Op: opcode.LoadInt, I64: 3},
			opcode.Instruction{Op: opcode.IntAdd},
		),
	})
	require.NoError(t, err)
	registerFunction(t, ex, pool, "add", fn)

	v, err := ex.RunCallable("add")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.IntValue())
}

func TestExecutor_SumLoop(t *testing.T) {
	ex, pool := newExecutor()
	// locals[0] = i (counter), locals[1] = acc
	// block0: InitLocal(2); SetLocal(1) <- 0 ; SetLocal(0) <- 1 ; Branch(1)
	// block1 (loop header): GetLocal(0); LoadInt(limit); TestGt; ConditionalBranch(2,3)
	// block2 (done): GetLocal(1); Return
	// block3 (body): GetLocal(1); GetLocal(0); IntAdd; SetLocal(1);
	//                GetLocal(0); LoadInt(1); IntAdd; SetLocal(0); Branch(1)
	const limit = 100
	blocks := []opcode.BasicBlock{
		{Ops: []opcode.Instruction{
			{Op: opcode.InitLocal, N: 2},
			{Op: opcode.LoadInt, I64: 0},
			{Op: opcode.SetLocal, N: 1},
			{Op: opcode.LoadInt, I64: 1},
			{Op: opcode.SetLocal, N: 0},
			{Op: opcode.Branch, BranchTarget: 1},
		}},
		{Ops: []opcode.Instruction{
			{Op: opcode.GetLocal, N: 0},
			{Op: opcode.LoadInt, I64: limit},
			{Op: opcode.TestGt},
			{Op: opcode.ConditionalBranch, TrueTarget: 2, FalseTarget: 3},
		}},
		retBlock(opcode.Instruction{Op: opcode.GetLocal, N: 1}),
		{Ops: []opcode.Instruction{
			{Op: opcode.GetLocal, N: 1},
			{Op: opcode.GetLocal, N: 0},
			{Op: opcode.IntAdd},
			{Op: opcode.SetLocal, N: 1},
			{Op: opcode.GetLocal, N: 0},
			{Op: opcode.LoadInt, I64: 1},
			{Op: opcode.IntAdd},
			{Op: opcode.SetLocal, N: 0},
			{Op: opcode.Branch, BranchTarget: 1},
		}},
	}
	fn, err := opcode.NewFunction("sum", blocks)
	require.NoError(t, err)
	registerFunction(t, ex, pool, "sum", fn)

	v, err := ex.RunCallable("sum")
	require.NoError(t, err)
	assert.Equal(t, int64(limit*(limit+1)/2), v.IntValue())
}

func TestExecutor_TypeErrorAddNullInt(t *testing.T) {
	ex, pool := newExecutor()
	fn, err := opcode.NewFunction("bad", []opcode.BasicBlock{
		retBlock(
			opcode.Instruction{Op: opcode.LoadNull},
			opcode.Instruction{Op: opcode.LoadInt, I64: 1},
			opcode.Instruction{Op: opcode.Add},
		),
	})
	require.NoError(t, err)
	registerFunction(t, ex, pool, "bad", fn)

	_, err = ex.RunCallable("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid operation")
}

func TestExecutor_CallFieldDynamicDispatch(t *testing.T) {
	ex, pool := newExecutor()
	recHandle, err := pool.Allocate(objects.NewDynamicRecord(heap.Null()))
	require.NoError(t, err)
	rec, err := heap.MustResolveTyped[*objects.DynamicRecord](pool, recHandle)
	require.NoError(t, err)

	nativeHandle, err := pool.Allocate(objects.NewNativeFunction("greet", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		return heap.Int(7), nil
	}))
	require.NoError(t, err)
	require.NoError(t, rec.SetField("greet", heap.Obj(nativeHandle)))

	result, err := ex.Invoke(heap.Obj(recHandle), heap.Obj(recHandle), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.IntValue())
}

func TestExecutor_RecursionStackOverflow(t *testing.T) {
	ex, pool := newExecutor()
	ex.SetStackLimit(20)

	// fib(n): if n < 2 return n else return fib(n-1)+fib(n-2)
	self := "fib"
	blocks := []opcode.BasicBlock{
		{Ops: []opcode.Instruction{
			{Op: opcode.GetArgument, N: 0},
			{Op: opcode.LoadInt, I64: 2},
			{Op: opcode.TestLt},
			{Op: opcode.ConditionalBranch, TrueTarget: 1, FalseTarget: 2},
		}},
		retBlock(opcode.Instruction{Op: opcode.GetArgument, N: 0}),
		retBlock(
			// fib(n-1)
			opcode.Instruction{Op: opcode.GetArgument, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: 1},
			opcode.Instruction{Op: opcode.IntSub},
			opcode.Instruction{Op: opcode.LoadNull},
			opcode.Instruction{Op: opcode.LoadString, Str: self},
			opcode.Instruction{Op: opcode.GetStatic},
			opcode.Instruction{Op: opcode.Call, N: 1},
			// fib(n-2)
			opcode.Instruction{Op: opcode.GetArgument, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: 2},
			opcode.Instruction{Op: opcode.IntSub},
			opcode.Instruction{Op: opcode.LoadNull},
			opcode.Instruction{Op: opcode.LoadString, Str: self},
			opcode.Instruction{Op: opcode.GetStatic},
			opcode.Instruction{Op: opcode.Call, N: 1},
			opcode.Instruction{Op: opcode.IntAdd},
		),
	}
	fn, err := opcode.NewFunction(self, blocks)
	require.NoError(t, err)
	registerFunction(t, ex, pool, self, fn)

	_, err = ex.Invoke(mustStatic(t, pool, self), heap.Null(), "", []heap.Value{heap.Int(30)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Virtual stack overflow")
}

func mustStatic(t *testing.T, pool *heap.Pool, name string) heap.Value {
	t.Helper()
	v, ok := pool.GetStatic(name)
	require.True(t, ok)
	return v
}
