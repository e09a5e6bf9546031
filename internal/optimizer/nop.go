package optimizer

import "github.com/kristofer/corevm/internal/opcode"

// nopRemoval is pass 5: delete every Nop left behind by the folding
// passes.
func (o *Optimizer) nopRemoval(blocks []opcode.BasicBlock) []opcode.BasicBlock {
	for bi, block := range blocks {
		out := block.Ops[:0]
		for _, ins := range block.Ops {
			if ins.Op == opcode.Nop {
				continue
			}
			out = append(out, ins)
		}
		blocks[bi].Ops = out
	}
	return blocks
}
