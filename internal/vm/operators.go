package vm

import (
	"math"

	"github.com/kristofer/corevm/internal/frame"
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

// dispatchOperator handles every opcode not already given its own case
// in runBlock's switch: polymorphic and typed arithmetic, casts, logic,
// and comparisons — base spec §4.3 "Operator semantics".
func (ex *Executor) dispatchOperator(f *frame.Frame, op opcode.Op) error {
	switch op {
	case opcode.Add, opcode.Sub, opcode.Mul, opcode.Div, opcode.Mod, opcode.Pow:
		return ex.polymorphicArith(f, op)
	case opcode.IntAdd, opcode.IntSub, opcode.IntMul, opcode.IntDiv, opcode.IntMod, opcode.IntPow:
		return ex.typedIntArith(f, op)
	case opcode.FloatAdd, opcode.FloatSub, opcode.FloatMul, opcode.FloatDiv, opcode.FloatMod, opcode.FloatPowf:
		return ex.typedFloatArith(f, op)
	case opcode.StringAdd:
		return ex.stringAdd(f)
	case opcode.CastToInt, opcode.CastToFloat, opcode.CastToBool, opcode.CastToString:
		return ex.cast(f, op)
	case opcode.And, opcode.Or:
		return ex.logicOp(f, op)
	case opcode.Not:
		v, err := f.Pop()
		if err != nil {
			return err
		}
		f.Push(heap.Bool(!heap.ToBool(ex.pool, v)))
		return nil
	case opcode.TestLt, opcode.TestLe, opcode.TestEq, opcode.TestNe, opcode.TestGe, opcode.TestGt:
		return ex.compareOp(f, op)
	default:
		return objects.NewRuntimeError("unhandled opcode " + op.String())
	}
}

// polymorphicArith dispatches Add/Sub/Mul/Div/Mod/Pow: an Object left
// operand invokes the matching dunder-style field call; Int/Float lefts
// coerce the right operand and operate directly.
func (ex *Executor) polymorphicArith(f *frame.Frame, op opcode.Op) error {
	right, e1 := f.Pop()
	left, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return err
	}

	if left.Kind() == heap.KindObject {
		result, err := ex.Invoke(left, left, dunderName(op), []heap.Value{right})
		if err != nil {
			return err
		}
		f.Push(result)
		return nil
	}

	switch left.Kind() {
	case heap.KindInt:
		if right.Kind() == heap.KindFloat {
			v, err := floatOp(op, float64(left.IntValue()), right.FloatValue())
			if err != nil {
				return err
			}
			f.Push(v)
			return nil
		}
		ri, err := heap.ToInt64(ex.pool, right)
		if err != nil {
			return err
		}
		v, err := intOp(op, left.IntValue(), ri)
		if err != nil {
			return err
		}
		f.Push(v)
		return nil
	case heap.KindFloat:
		rf, err := heap.ToFloat64(ex.pool, right)
		if err != nil {
			return err
		}
		v, err := floatOp(op, left.FloatValue(), rf)
		if err != nil {
			return err
		}
		f.Push(v)
		return nil
	default:
		return objects.NewRuntimeError("Invalid operation")
	}
}

func dunderName(op opcode.Op) string {
	switch op {
	case opcode.Add:
		return "__add__"
	case opcode.Sub:
		return "__sub__"
	case opcode.Mul:
		return "__mul__"
	case opcode.Div:
		return "__div__"
	case opcode.Mod:
		return "__mod__"
	case opcode.Pow:
		return "__pow__"
	default:
		return "__op__"
	}
}

func intOp(op opcode.Op, a, b int64) (heap.Value, error) {
	switch op {
	case opcode.Add:
		return heap.Int(a + b), nil
	case opcode.Sub:
		return heap.Int(a - b), nil
	case opcode.Mul:
		return heap.Int(a * b), nil
	case opcode.Div:
		if b == 0 {
			return heap.Value{}, objects.NewRuntimeError("division by zero")
		}
		return heap.Int(a / b), nil
	case opcode.Mod:
		if b == 0 {
			return heap.Value{}, objects.NewRuntimeError("division by zero")
		}
		return heap.Int(a % b), nil
	case opcode.Pow:
		if b < 0 {
			return heap.Value{}, objects.NewRuntimeError("negative exponent for integer power")
		}
		return heap.Int(intPow(a, b)), nil
	default:
		return heap.Value{}, objects.NewRuntimeError("unsupported integer operator")
	}
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func floatOp(op opcode.Op, a, b float64) (heap.Value, error) {
	switch op {
	case opcode.Add:
		return heap.Float(a + b), nil
	case opcode.Sub:
		return heap.Float(a - b), nil
	case opcode.Mul:
		return heap.Float(a * b), nil
	case opcode.Div:
		return heap.Float(a / b), nil
	case opcode.Mod:
		return heap.Float(math.Mod(a, b)), nil
	case opcode.Pow:
		return heap.Float(math.Pow(a, b)), nil
	default:
		return heap.Value{}, objects.NewRuntimeError("unsupported float operator")
	}
}

// typedIntArith coerces both operands via to_i64 and applies op without
// the polymorphic Object dispatch.
func (ex *Executor) typedIntArith(f *frame.Frame, op opcode.Op) error {
	right, e1 := f.Pop()
	left, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return err
	}
	a, err := heap.ToInt64(ex.pool, left)
	if err != nil {
		return err
	}
	b, err := heap.ToInt64(ex.pool, right)
	if err != nil {
		return err
	}
	untypedOp := map[opcode.Op]opcode.Op{
		opcode.IntAdd: opcode.Add, opcode.IntSub: opcode.Sub, opcode.IntMul: opcode.Mul,
		opcode.IntDiv: opcode.Div, opcode.IntMod: opcode.Mod, opcode.IntPow: opcode.Pow,
	}[op]
	v, err := intOp(untypedOp, a, b)
	if err != nil {
		return err
	}
	f.Push(v)
	return nil
}

func (ex *Executor) typedFloatArith(f *frame.Frame, op opcode.Op) error {
	right, e1 := f.Pop()
	left, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return err
	}
	a, err := heap.ToFloat64(ex.pool, left)
	if err != nil {
		return err
	}
	b, err := heap.ToFloat64(ex.pool, right)
	if err != nil {
		return err
	}
	untypedOp := map[opcode.Op]opcode.Op{
		opcode.FloatAdd: opcode.Add, opcode.FloatSub: opcode.Sub, opcode.FloatMul: opcode.Mul,
		opcode.FloatDiv: opcode.Div, opcode.FloatMod: opcode.Mod, opcode.FloatPowf: opcode.Pow,
	}[op]
	v, err := floatOp(untypedOp, a, b)
	if err != nil {
		return err
	}
	f.Push(v)
	return nil
}

// stringAdd concatenates to_str of both operands into a freshly
// allocated string object.
func (ex *Executor) stringAdd(f *frame.Frame) error {
	right, e1 := f.Pop()
	left, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return err
	}
	ls, err := heap.ToStr(ex.pool, left)
	if err != nil {
		return err
	}
	rs, err := heap.ToStr(ex.pool, right)
	if err != nil {
		return err
	}
	h, err := ex.pool.Allocate(objects.NewString(ls + rs))
	if err != nil {
		return err
	}
	f.Push(heap.Obj(h))
	return nil
}

func (ex *Executor) cast(f *frame.Frame, op opcode.Op) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	switch op {
	case opcode.CastToInt:
		i, err := heap.ToInt64(ex.pool, v)
		if err != nil {
			return err
		}
		f.Push(heap.Int(i))
	case opcode.CastToFloat:
		fl, err := heap.ToFloat64(ex.pool, v)
		if err != nil {
			return err
		}
		f.Push(heap.Float(fl))
	case opcode.CastToBool:
		f.Push(heap.Bool(heap.ToBool(ex.pool, v)))
	case opcode.CastToString:
		s, err := heap.ToStr(ex.pool, v)
		if err != nil {
			return err
		}
		h, err := ex.pool.Allocate(objects.NewString(s))
		if err != nil {
			return err
		}
		f.Push(heap.Obj(h))
	}
	return nil
}

func (ex *Executor) logicOp(f *frame.Frame, op opcode.Op) error {
	right, e1 := f.Pop()
	left, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return err
	}
	lb := heap.ToBool(ex.pool, left)
	rb := heap.ToBool(ex.pool, right)
	if op == opcode.And {
		f.Push(heap.Bool(lb && rb))
	} else {
		f.Push(heap.Bool(lb || rb))
	}
	return nil
}

func (ex *Executor) compareOp(f *frame.Frame, op opcode.Op) error {
	right, e1 := f.Pop()
	left, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return err
	}
	order, ok := heap.Compare(ex.pool, left, right)
	switch op {
	case opcode.TestEq:
		f.Push(heap.Bool(heap.TestEq(ex.pool, left, right)))
		return nil
	case opcode.TestNe:
		f.Push(heap.Bool(!heap.TestEq(ex.pool, left, right)))
		return nil
	}
	if !ok {
		f.Push(heap.Bool(false))
		return nil
	}
	var result bool
	switch op {
	case opcode.TestLt:
		result = order < 0
	case opcode.TestLe:
		result = order <= 0
	case opcode.TestGe:
		result = order >= 0
	case opcode.TestGt:
		result = order > 0
	}
	f.Push(heap.Bool(result))
	return nil
}
