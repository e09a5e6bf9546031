package main

import (
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

// There is no source-language parser (base spec Non-goals), so every
// demo callable here is built directly out of basic blocks, the way a
// compiler's code generator would emit them.

func block(ops ...opcode.Instruction) opcode.BasicBlock {
	return opcode.BasicBlock{Ops: ops}
}

// sumToLimitFunction builds a loop summing 1..limit into a local
// accumulator, returning the total — base spec §8 "stack-sum loop"
// boundary scenario (limit=100000 sums to 5,000,050,000).
func sumToLimitFunction(limit int64) (*opcode.Function, error) {
	blocks := []opcode.BasicBlock{
		block(
			opcode.Instruction{Op: opcode.InitLocal, N: 2},
			opcode.Instruction{Op: opcode.LoadInt, I64: 0},
			opcode.Instruction{Op: opcode.SetLocal, N: 1},
			opcode.Instruction{Op: opcode.LoadInt, I64: 1},
			opcode.Instruction{Op: opcode.SetLocal, N: 0},
			opcode.Instruction{Op: opcode.Branch, BranchTarget: 1},
		),
		block(
			opcode.Instruction{Op: opcode.GetLocal, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: limit},
			opcode.Instruction{Op: opcode.TestGt},
			opcode.Instruction{Op: opcode.ConditionalBranch, TrueTarget: 2, FalseTarget: 3},
		),
		block(
			opcode.Instruction{Op: opcode.GetLocal, N: 1},
			opcode.Instruction{Op: opcode.Return},
		),
		block(
			opcode.Instruction{Op: opcode.GetLocal, N: 1},
			opcode.Instruction{Op: opcode.GetLocal, N: 0},
			opcode.Instruction{Op: opcode.IntAdd},
			opcode.Instruction{Op: opcode.SetLocal, N: 1},
			opcode.Instruction{Op: opcode.GetLocal, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: 1},
			opcode.Instruction{Op: opcode.IntAdd},
			opcode.Instruction{Op: opcode.SetLocal, N: 0},
			opcode.Instruction{Op: opcode.Branch, BranchTarget: 1},
		),
	}
	return opcode.NewFunction("sum_to_limit", blocks)
}

// fibFunction builds naive recursive fib(n) calling itself by static
// name lookup — base spec §8 "recursive fib with stack limit" scenario.
func fibFunction() (*opcode.Function, error) {
	blocks := []opcode.BasicBlock{
		block(
			opcode.Instruction{Op: opcode.GetArgument, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: 2},
			opcode.Instruction{Op: opcode.TestLt},
			opcode.Instruction{Op: opcode.ConditionalBranch, TrueTarget: 1, FalseTarget: 2},
		),
		block(
			opcode.Instruction{Op: opcode.GetArgument, N: 0},
			opcode.Instruction{Op: opcode.Return},
		),
		block(
			opcode.Instruction{Op: opcode.GetArgument, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: 1},
			opcode.Instruction{Op: opcode.IntSub},
			opcode.Instruction{Op: opcode.LoadNull},
			opcode.Instruction{Op: opcode.LoadString, Str: "fib"},
			opcode.Instruction{Op: opcode.GetStatic},
			opcode.Instruction{Op: opcode.Call, N: 1},
			opcode.Instruction{Op: opcode.GetArgument, N: 0},
			opcode.Instruction{Op: opcode.LoadInt, I64: 2},
			opcode.Instruction{Op: opcode.IntSub},
			opcode.Instruction{Op: opcode.LoadNull},
			opcode.Instruction{Op: opcode.LoadString, Str: "fib"},
			opcode.Instruction{Op: opcode.GetStatic},
			opcode.Instruction{Op: opcode.Call, N: 1},
			opcode.Instruction{Op: opcode.IntAdd},
			opcode.Instruction{Op: opcode.Return},
		),
	}
	return opcode.NewFunction("fib", blocks)
}

// fibCallFunction wraps a single call to the static "fib" with a fixed
// argument, so "run fib_30" is invocable with no host-side argument
// plumbing.
func fibCallFunction(n int64) (*opcode.Function, error) {
	blocks := []opcode.BasicBlock{
		block(
			opcode.Instruction{Op: opcode.LoadInt, I64: n},
			opcode.Instruction{Op: opcode.LoadNull},
			opcode.Instruction{Op: opcode.LoadString, Str: "fib"},
			opcode.Instruction{Op: opcode.GetStatic},
			opcode.Instruction{Op: opcode.Call, N: 1},
			opcode.Instruction{Op: opcode.Return},
		),
	}
	return opcode.NewFunction("fib_call", blocks)
}

// constPiFunction loads the static "pi" by name every call — the
// optimizer's const-static inlining pass (base spec §4.6 pass 1) folds
// this down to a single LoadFloat once OptimizerEnabled is set.
func constPiFunction() (*opcode.Function, error) {
	blocks := []opcode.BasicBlock{
		block(
			opcode.Instruction{Op: opcode.LoadString, Str: "pi"},
			opcode.Instruction{Op: opcode.GetStatic},
			opcode.Instruction{Op: opcode.Return},
		),
	}
	fn, err := opcode.NewFunction("const_pi", blocks)
	if err != nil {
		return nil, err
	}
	fn.OptimizerEnabled = true
	return fn, nil
}

// registerDemoPool builds a fresh pool with every demo static bound:
// "pi", "fib", "fib_30", "sum_to_limit", "const_pi", and a dynamic record "greeter"
// whose "greet" field is a native function — base spec §8 "CallField
// dynamic dispatch" scenario.
func registerDemoPool(pool *heap.Pool, optimize func(*opcode.Function) (*opcode.Function, error)) error {
	if err := pool.SetStaticObject("pi", heap.Float(3.14)); err != nil {
		return err
	}

	fib, err := fibFunction()
	if err != nil {
		return err
	}
	if _, err := pool.CreateStaticObject("fib", objects.NewVirtualFunction(fib, optimize)); err != nil {
		return err
	}

	fibCall, err := fibCallFunction(30)
	if err != nil {
		return err
	}
	if _, err := pool.CreateStaticObject("fib_30", objects.NewVirtualFunction(fibCall, optimize)); err != nil {
		return err
	}

	sum, err := sumToLimitFunction(100000)
	if err != nil {
		return err
	}
	if _, err := pool.CreateStaticObject("sum_to_limit", objects.NewVirtualFunction(sum, optimize)); err != nil {
		return err
	}

	pi, err := constPiFunction()
	if err != nil {
		return err
	}
	if _, err := pool.CreateStaticObject("const_pi", objects.NewVirtualFunction(pi, optimize)); err != nil {
		return err
	}

	greeterHandle, err := pool.Allocate(objects.NewDynamicRecord(heap.Null()))
	if err != nil {
		return err
	}
	greeter, err := heap.MustResolveTyped[*objects.DynamicRecord](pool, greeterHandle)
	if err != nil {
		return err
	}
	nativeHandle, err := pool.Allocate(objects.NewNativeFunction("greet", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		return heap.Int(7), nil
	}))
	if err != nil {
		return err
	}
	if err := greeter.SetField("greet", heap.Obj(nativeHandle)); err != nil {
		return err
	}
	return pool.SetStaticObject("greeter", heap.Obj(greeterHandle))
}
