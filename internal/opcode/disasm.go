package opcode

import (
	"fmt"
	"strings"
)

// Disassemble renders fn as one line per instruction, grouped by block,
// in the teacher's "MNEMONIC operand" convention (pkg/bytecode/bytecode.go's
// Opcode.String doc: "PUSH 0 / LOAD_LOCAL 1 / SEND 2"). Used by the
// disasm CLI verb; never by the executor.
func Disassemble(fn *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s (optimized=%v)\n", fn.Name, fn.Optimized)
	for bi, block := range fn.Blocks {
		fmt.Fprintf(&b, "block %d:\n", bi)
		for ii, ins := range block.Ops {
			fmt.Fprintf(&b, "  %4d: %s\n", ii, formatInstruction(ins))
		}
	}
	return b.String()
}

func formatInstruction(ins Instruction) string {
	switch ins.Op {
	case LoadInt:
		return fmt.Sprintf("%s %d", ins.Op, ins.I64)
	case LoadFloat:
		return fmt.Sprintf("%s %g", ins.Op, ins.F64)
	case LoadBool:
		return fmt.Sprintf("%s %v", ins.Op, ins.Bool)
	case LoadString:
		return fmt.Sprintf("%s %q", ins.Op, ins.Str)
	case RotateReverse, InitLocal, GetLocal, SetLocal, GetArgument, Call, CallField:
		return fmt.Sprintf("%s %d", ins.Op, ins.N)
	case Branch:
		return fmt.Sprintf("%s -> block %d", ins.Op, ins.BranchTarget)
	case ConditionalBranch:
		return fmt.Sprintf("%s true->block %d false->block %d", ins.Op, ins.TrueTarget, ins.FalseTarget)
	case RtLoadObject:
		return fmt.Sprintf("%s handle=%d", ins.Op, ins.Handle)
	case RtLoadValue:
		return fmt.Sprintf("%s value=%s", ins.Op, ins.Value.GoString())
	case RtStackMap:
		return fmt.Sprintf("%s depth=%d endstate=%d entries=%d", ins.Op, ins.N, ins.EndState, len(ins.StackMap))
	case RtConstCall:
		return fmt.Sprintf("%s args=%d", ins.Op, ins.N)
	default:
		return ins.Op.String()
	}
}
