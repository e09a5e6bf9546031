package optimizer

import "github.com/kristofer/corevm/internal/opcode"

// pureStackOp reports whether op belongs to the base spec §4.6 pass 6
// "pure stack operations" set eligible for window packing.
func pureStackOp(op opcode.Op) bool {
	switch op {
	case opcode.Dup, opcode.Pop, opcode.Rotate2, opcode.Rotate3, opcode.RotateReverse,
		opcode.LoadInt, opcode.LoadFloat, opcode.LoadString, opcode.LoadBool, opcode.LoadNull,
		opcode.GetLocal, opcode.GetArgument, opcode.RtLoadObject:
		return true
	default:
		return false
	}
}

// stackMapPacking is pass 6: maximal windows of pure stack operations
// are symbolically executed into a ValueLocation map of the window's
// final stack contents, then replaced by a single Rt(StackMap) if doing
// so is shorter than 0.6x the window length.
func (o *Optimizer) stackMapPacking(blocks []opcode.BasicBlock) []opcode.BasicBlock {
	for bi, block := range blocks {
		blocks[bi].Ops = packBlock(block.Ops)
	}
	return blocks
}

func packBlock(ops []opcode.Instruction) []opcode.Instruction {
	var out []opcode.Instruction
	i := 0
	for i < len(ops) {
		if !pureStackOp(ops[i].Op) {
			out = append(out, ops[i])
			i++
			continue
		}
		j := i
		for j < len(ops) && pureStackOp(ops[j].Op) {
			j++
		}
		window := ops[i:j]
		out = append(out, packWindow(window)...)
		i = j
	}
	return out
}

// symState is the window-local abstract operand stack: entries are
// final-state ValueLocations, ordered bottom to top. A pop against an
// empty symState borrows a location from below the window's starting
// top, numbered outward by belowDepth.
type symState struct {
	stack      []opcode.ValueLocation
	belowDepth int
}

func (s *symState) pop() opcode.ValueLocation {
	n := len(s.stack)
	if n == 0 {
		s.belowDepth++
		return opcode.Stack(-(s.belowDepth - 1))
	}
	v := s.stack[n-1]
	s.stack = s.stack[:n-1]
	return v
}

func (s *symState) peek() opcode.ValueLocation {
	v := s.pop()
	s.push(v)
	return v
}

func (s *symState) push(v opcode.ValueLocation) {
	s.stack = append(s.stack, v)
}

// packWindow symbolically executes window and returns either the
// original sequence (if packing would not shrink it below 0.6x) or a
// single Rt(StackMap) instruction.
func packWindow(window []opcode.Instruction) []opcode.Instruction {
	st := &symState{}
	for _, ins := range window {
		switch ins.Op {
		case opcode.Pop:
			st.pop()
		case opcode.Dup:
			st.push(st.peek())
		case opcode.Rotate2:
			a := st.pop()
			b := st.pop()
			st.push(a)
			st.push(b)
		case opcode.Rotate3:
			a := st.pop()
			b := st.pop()
			c := st.pop()
			st.push(b)
			st.push(a)
			st.push(c)
		case opcode.RotateReverse:
			n := ins.N
			popped := make([]opcode.ValueLocation, n)
			for k := 0; k < n; k++ {
				popped[k] = st.pop()
			}
			for k := 0; k < n; k++ {
				st.push(popped[k])
			}
		case opcode.LoadInt:
			st.push(opcode.ConstInt(ins.I64))
		case opcode.LoadFloat:
			st.push(opcode.ConstFloat(ins.F64))
		case opcode.LoadBool:
			st.push(opcode.ConstBool(ins.Bool))
		case opcode.LoadString:
			st.push(opcode.ConstString(ins.Str))
		case opcode.LoadNull:
			st.push(opcode.ConstNull())
		case opcode.GetLocal:
			st.push(opcode.Local(ins.N))
		case opcode.GetArgument:
			st.push(opcode.Argument(ins.N))
		case opcode.RtLoadObject:
			st.push(opcode.ConstObject(ins.Handle))
		}
	}

	endState := len(st.stack) - st.belowDepth
	mapEntries := append([]opcode.ValueLocation(nil), st.stack...)

	if len(mapEntries) >= len(window) || float64(len(mapEntries)) >= 0.6*float64(len(window)) {
		return window
	}

	return []opcode.Instruction{{
		Op:       opcode.RtStackMap,
		N:        st.belowDepth,
		EndState: endState,
		StackMap: mapEntries,
	}}
}
