package optimizer

import (
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/opcode"
)

// constStaticInlining is base spec §4.6 pass 1: every (LoadString(s),
// GetStatic) pair where s already names a registered static is replaced
// by a direct load of the resolved Value, dropping the GetStatic.
func (o *Optimizer) constStaticInlining(blocks []opcode.BasicBlock, rt []heap.Handle) ([]opcode.BasicBlock, []heap.Handle, error) {
	for bi, block := range blocks {
		var out []opcode.Instruction
		i := 0
		for i < len(block.Ops) {
			ins := block.Ops[i]
			if ins.Op == opcode.LoadString && i+1 < len(block.Ops) && block.Ops[i+1].Op == opcode.GetStatic {
				if v, ok := o.pool.GetStatic(ins.Str); ok {
					out = append(out, materializeLoad(v))
					i += 2
					continue
				}
			}
			out = append(out, ins)
			i++
		}
		blocks[bi].Ops = out
	}
	return blocks, rt, nil
}

// materializeLoad turns an already-resolved static Value into a direct
// load instruction — scalars become their matching Load*, objects
// become Rt(LoadObject(h)).
func materializeLoad(v heap.Value) opcode.Instruction {
	switch v.Kind() {
	case heap.KindInt:
		return opcode.Instruction{Op: opcode.LoadInt, I64: v.IntValue()}
	case heap.KindFloat:
		return opcode.Instruction{Op: opcode.LoadFloat, F64: v.FloatValue()}
	case heap.KindBool:
		return opcode.Instruction{Op: opcode.LoadBool, Bool: v.BoolValue()}
	case heap.KindObject:
		return opcode.Instruction{Op: opcode.RtLoadObject, Handle: v.HandleValue()}
	default:
		return opcode.Instruction{Op: opcode.LoadNull}
	}
}

// constStringMaterialization is pass 2: every remaining LoadString(s)
// becomes Rt(LoadObject(h)) for a freshly pool-allocated String, with h
// registered in rt so the Function keeps it alive for its lifetime.
func (o *Optimizer) constStringMaterialization(blocks []opcode.BasicBlock, rt []heap.Handle) ([]opcode.BasicBlock, []heap.Handle, error) {
	for bi, block := range blocks {
		for ii, ins := range block.Ops {
			if ins.Op != opcode.LoadString {
				continue
			}
			h, err := o.pool.Allocate(objects.NewString(ins.Str))
			if err != nil {
				return nil, nil, err
			}
			rt = append(rt, h)
			blocks[bi].Ops[ii] = opcode.Instruction{Op: opcode.RtLoadObject, Handle: h}
		}
	}
	return blocks, rt, nil
}
