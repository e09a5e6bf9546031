package optimizer

import (
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/opcode"
)

// constFieldFolding is base spec §4.6 pass 3, both forms:
//   - [Rt(LoadObject(key)), Rt(LoadObject(obj)), GetField] folds to
//     [Nop, Nop, Rt(LoadValue(v))] when obj.has_const_field(key) holds.
//   - [Rt(LoadObject(key)), X, Rt(LoadObject(target)), CallField(n)]
//     folds to [Nop, X, target', Call(n)] under the same condition,
//     where target' re-loads the resolved (presumably callable) value.
func (o *Optimizer) constFieldFolding(blocks []opcode.BasicBlock) ([]opcode.BasicBlock, error) {
	for bi, block := range blocks {
		ops := block.Ops
		for i := 0; i+2 < len(ops); i++ {
			if ops[i].Op != opcode.RtLoadObject || ops[i+1].Op != opcode.RtLoadObject {
				continue
			}
			if ops[i+2].Op == opcode.GetField {
				keyStr, obj, ok := o.resolveConstFieldPair(ops[i].Handle, ops[i+1].Handle)
				if !ok {
					continue
				}
				v, _ := obj.GetField(o.pool, keyStr)
				ops[i] = opcode.Instruction{Op: opcode.Nop}
				ops[i+1] = opcode.Instruction{Op: opcode.Nop}
				ops[i+2] = opcode.Instruction{Op: opcode.RtLoadValue, Value: v}
				continue
			}
		}
		// Second form: 4-op window ending in CallField(n), with the
		// field-name and target loads separated by a single op that
		// produces `this`.
		for i := 0; i+3 < len(ops); i++ {
			if ops[i].Op != opcode.RtLoadObject || ops[i+2].Op != opcode.RtLoadObject {
				continue
			}
			if ops[i+3].Op != opcode.CallField {
				continue
			}
			keyStr, target, ok := o.resolveConstFieldPair(ops[i].Handle, ops[i+2].Handle)
			if !ok {
				continue
			}
			v, _ := target.GetField(o.pool, keyStr)
			ops[i] = opcode.Instruction{Op: opcode.Nop}
			ops[i+2] = materializeLoad(v)
			ops[i+3] = opcode.Instruction{Op: opcode.Call, N: ops[i+3].N}
		}
		blocks[bi].Ops = ops
	}
	return blocks, nil
}

// resolveConstFieldPair resolves keyHandle to a string and objHandle to
// an Object, reporting ok only when the object has keyStr as a const
// field.
func (o *Optimizer) resolveConstFieldPair(keyHandle, objHandle heap.Handle) (keyStr string, obj heap.Object, ok bool) {
	keyInfo, err := o.pool.Resolve(keyHandle)
	if err != nil {
		return "", nil, false
	}
	keyStr, err = keyInfo.Obj.ToStr()
	if err != nil {
		return "", nil, false
	}
	objInfo, err := o.pool.Resolve(objHandle)
	if err != nil {
		return "", nil, false
	}
	if !objInfo.Obj.HasConstField(keyStr) {
		return "", nil, false
	}
	return keyStr, objInfo.Obj, true
}

// constCallRewrite is pass 4: [A, B, Call(n)] where A and B each
// deterministically resolve to a ValueLocation becomes
// [Nop, Nop, Rt(ConstCall(loc_B, loc_A, n))] — A supplies `this`
// (pushed first, so it sits below B on entry to Call), B supplies
// `target` (pushed immediately before Call, so it is what Call's pop
// sees first).
func (o *Optimizer) constCallRewrite(blocks []opcode.BasicBlock) []opcode.BasicBlock {
	for bi, block := range blocks {
		ops := block.Ops
		for i := 0; i+2 < len(ops); i++ {
			if ops[i+2].Op != opcode.Call {
				continue
			}
			locA, okA := valueLocationOf(ops[i])
			locB, okB := valueLocationOf(ops[i+1])
			if !okA || !okB {
				continue
			}
			n := ops[i+2].N
			ops[i] = opcode.Instruction{Op: opcode.Nop}
			ops[i+1] = opcode.Instruction{Op: opcode.Nop}
			ops[i+2] = opcode.Instruction{Op: opcode.RtConstCall, LocTarget: locB, LocThis: locA, N: n}
		}
		blocks[bi].Ops = ops
	}
	return blocks
}
