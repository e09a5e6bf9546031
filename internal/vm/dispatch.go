package vm

import (
	"github.com/kristofer/corevm/internal/frame"
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

// runBlock evaluates block's opcodes against f's operand stack in
// order, using heap's ValueContext for coercions and comparisons.
// Returns (result, nextBlock, done, err): done is true on Return (with
// result set) or on an error; otherwise nextBlock is the block a
// Branch/ConditionalBranch selected.
func (ex *Executor) runBlock(f *frame.Frame, block opcode.BasicBlock) (heap.Value, int, bool, error) {
	for _, ins := range block.Ops {
		switch ins.Op {
		case opcode.LoadNull:
			f.Push(heap.Null())
		case opcode.LoadInt:
			f.Push(heap.Int(ins.I64))
		case opcode.LoadFloat:
			f.Push(heap.Float(ins.F64))
		case opcode.LoadBool:
			f.Push(heap.Bool(ins.Bool))
		case opcode.LoadString:
			h, err := ex.pool.Allocate(objects.NewString(ins.Str))
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(heap.Obj(h))
		case opcode.LoadThis:
			f.Push(f.This)

		case opcode.Pop:
			if _, err := f.Pop(); err != nil {
				return heap.Value{}, 0, true, err
			}
		case opcode.Dup:
			f.Push(f.Top())
		case opcode.Rotate2:
			a, err1 := f.Pop()
			b, err2 := f.Pop()
			if err1 != nil || err2 != nil {
				return heap.Value{}, 0, true, firstErr(err1, err2)
			}
			f.Push(a)
			f.Push(b)
		case opcode.Rotate3:
			a, e1 := f.Pop()
			b, e2 := f.Pop()
			c, e3 := f.Pop()
			if err := firstErr(e1, e2, e3); err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(b)
			f.Push(a)
			f.Push(c)
		case opcode.RotateReverse:
			n := ins.N
			popped := make([]heap.Value, n)
			for k := 0; k < n; k++ {
				v, err := f.Pop()
				if err != nil {
					return heap.Value{}, 0, true, err
				}
				popped[k] = v
			}
			for k := 0; k < n; k++ {
				f.Push(popped[k])
			}

		case opcode.InitLocal:
			f.Locals = f.Locals[:0]
			f.InitLocals(ins.N)
		case opcode.GetLocal:
			if ins.N < 0 || ins.N >= len(f.Locals) {
				return heap.Value{}, 0, true, objects.NewRuntimeError("local index out of bounds")
			}
			f.Push(f.Locals[ins.N])
		case opcode.SetLocal:
			v, err := f.Pop()
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			if ins.N < 0 || ins.N >= len(f.Locals) {
				return heap.Value{}, 0, true, objects.NewRuntimeError("local index out of bounds")
			}
			f.Locals[ins.N] = v

		case opcode.GetArgument:
			if ins.N < 0 || ins.N >= len(f.Arguments) {
				return heap.Value{}, 0, true, objects.NewRuntimeError("argument index out of bounds")
			}
			f.Push(f.Arguments[ins.N])
		case opcode.GetNArguments:
			f.Push(heap.Int(int64(len(f.Arguments))))

		case opcode.GetStatic:
			key, err := f.Pop()
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			name, err := heap.ToStr(ex.pool, key)
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			v, ok := ex.pool.GetStatic(name)
			if !ok {
				f.Push(heap.Null())
			} else {
				f.Push(v)
			}
		case opcode.SetStatic:
			key, e1 := f.Pop()
			value, e2 := f.Pop()
			if err := firstErr(e1, e2); err != nil {
				return heap.Value{}, 0, true, err
			}
			name, err := heap.ToStr(ex.pool, key)
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			if err := ex.pool.SetStaticObject(name, value); err != nil {
				return heap.Value{}, 0, true, err
			}

		case opcode.GetField:
			target, e1 := f.Pop()
			key, e2 := f.Pop()
			if err := firstErr(e1, e2); err != nil {
				return heap.Value{}, 0, true, err
			}
			v, err := ex.getField(target, key)
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(v)
		case opcode.SetField:
			target, e1 := f.Pop()
			key, e2 := f.Pop()
			value, e3 := f.Pop()
			if err := firstErr(e1, e2, e3); err != nil {
				return heap.Value{}, 0, true, err
			}
			if err := ex.setField(target, key, value); err != nil {
				return heap.Value{}, 0, true, err
			}
		case opcode.CreateObject:
			proto, err := f.Pop()
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			if proto.Kind() != heap.KindNull && proto.Kind() != heap.KindObject {
				return heap.Value{}, 0, true, objects.NewRuntimeError("prototype must be Null or Object")
			}
			h, err := ex.pool.Allocate(objects.NewDynamicRecord(proto))
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(heap.Obj(h))

		case opcode.Call:
			v, err := ex.doCall(f, ins.N, false)
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(v)
		case opcode.CallField:
			v, err := ex.doCall(f, ins.N, true)
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(v)

		case opcode.RtLoadObject:
			f.Push(heap.Obj(ins.Handle))
		case opcode.RtLoadValue:
			f.Push(ins.Value)
		case opcode.RtStackMap:
			if err := ex.execStackMap(f, ins); err != nil {
				return heap.Value{}, 0, true, err
			}
		case opcode.RtConstCall:
			v, err := ex.doConstCall(f, ins)
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			f.Push(v)

		case opcode.Branch:
			return heap.Value{}, ins.BranchTarget, false, nil
		case opcode.ConditionalBranch:
			cond, err := f.Pop()
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			if heap.ToBool(ex.pool, cond) {
				return heap.Value{}, ins.TrueTarget, false, nil
			}
			return heap.Value{}, ins.FalseTarget, false, nil
		case opcode.Return:
			v, err := f.Pop()
			if err != nil {
				return heap.Value{}, 0, true, err
			}
			return v, 0, true, nil

		case opcode.Nop:
			// no-op

		default:
			if err := ex.dispatchOperator(f, ins.Op); err != nil {
				return heap.Value{}, 0, true, err
			}
		}
	}
	return heap.Value{}, 0, true, objects.NewRuntimeError("block fell off the end without a terminator")
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// doCall pops operands in target, this, (field name), args order — the
// same convention the optimizer's ConstCall rewrite assumes for the
// operands it leaves on the stack (see fold.go's constCallRewrite).
func (ex *Executor) doCall(f *frame.Frame, n int, fieldCall bool) (heap.Value, error) {
	target, e1 := f.Pop()
	this, e2 := f.Pop()
	if err := firstErr(e1, e2); err != nil {
		return heap.Value{}, err
	}
	fieldName := ""
	if fieldCall {
		key, err := f.Pop()
		if err != nil {
			return heap.Value{}, err
		}
		fieldName, err = heap.ToStr(ex.pool, key)
		if err != nil {
			return heap.Value{}, err
		}
	}
	args := make([]heap.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := f.Pop()
		if err != nil {
			return heap.Value{}, err
		}
		args[i] = v
	}
	return ex.Invoke(target, this, fieldName, args)
}

func (ex *Executor) getField(target, key heap.Value) (heap.Value, error) {
	name, err := heap.ToStr(ex.pool, key)
	if err != nil {
		return heap.Value{}, err
	}
	if target.Kind() != heap.KindObject {
		return heap.Value{}, objects.NewFieldNotFoundError(name)
	}
	info, err := ex.pool.Resolve(target.HandleValue())
	if err != nil {
		return heap.Value{}, err
	}
	v, ok := info.Obj.GetField(ex.pool, name)
	if !ok {
		return heap.Value{}, objects.NewFieldNotFoundError(name)
	}
	return v, nil
}

func (ex *Executor) setField(target, key, value heap.Value) error {
	name, err := heap.ToStr(ex.pool, key)
	if err != nil {
		return err
	}
	if target.Kind() != heap.KindObject {
		return objects.NewFieldNotFoundError(name)
	}
	info, err := ex.pool.Resolve(target.HandleValue())
	if err != nil {
		return err
	}
	return info.Obj.SetField(name, value)
}
