package optimizer

import "github.com/kristofer/corevm/internal/opcode"

// successors returns block i's outgoing edges. Return has none; Branch
// has one; ConditionalBranch has one or two depending on whether its
// two targets coincide.
func successors(b opcode.BasicBlock) []int {
	last := b.Ops[len(b.Ops)-1]
	switch last.Op {
	case opcode.Branch:
		return []int{last.BranchTarget}
	case opcode.ConditionalBranch:
		if last.TrueTarget == last.FalseTarget {
			return []int{last.TrueTarget}
		}
		return []int{last.TrueTarget, last.FalseTarget}
	default:
		return nil
	}
}

// cfgJoin is pass 7: repeatedly merge any block i whose sole successor
// j itself has sole predecessor i, concatenating j's opcodes into i and
// marking j unreachable. Block 0 (the entry) is never merged away into
// another block, since entry is an implicit extra predecessor, but may
// absorb others.
func (o *Optimizer) cfgJoin(blocks []opcode.BasicBlock) []opcode.BasicBlock {
	removed := make([]bool, len(blocks))

	for {
		changed := false
		predCount := make([]int, len(blocks))
		for i, b := range blocks {
			if removed[i] {
				continue
			}
			for _, s := range successors(b) {
				predCount[s]++
			}
		}
		for i := range blocks {
			if removed[i] {
				continue
			}
			succ := successors(blocks[i])
			if len(succ) != 1 {
				continue
			}
			j := succ[0]
			if j == i || j == 0 || removed[j] || predCount[j] != 1 {
				continue
			}
			merged := append(append([]opcode.Instruction(nil), blocks[i].Ops[:len(blocks[i].Ops)-1]...), blocks[j].Ops...)
			blocks[i].Ops = merged
			removed[j] = true
			changed = true
		}
		if !changed {
			break
		}
	}

	for i := range blocks {
		if removed[i] {
			blocks[i].Ops = nil
		}
	}
	return blocks
}

// deadBlockPrune is pass 8: DFS from block 0 over live (non-nil) blocks,
// drop anything unreached, and remap branch targets to the surviving,
// compacted indices.
func (o *Optimizer) deadBlockPrune(blocks []opcode.BasicBlock) []opcode.BasicBlock {
	reachable := make([]bool, len(blocks))
	var visit func(i int)
	visit = func(i int) {
		if i < 0 || i >= len(blocks) || reachable[i] || blocks[i].Ops == nil {
			return
		}
		reachable[i] = true
		for _, s := range successors(blocks[i]) {
			visit(s)
		}
	}
	visit(0)

	remap := make([]int, len(blocks))
	var kept []opcode.BasicBlock
	for i := range blocks {
		if !reachable[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, blocks[i])
	}

	for bi := range kept {
		ops := kept[bi].Ops
		last := len(ops) - 1
		switch ops[last].Op {
		case opcode.Branch:
			ops[last].BranchTarget = remap[ops[last].BranchTarget]
		case opcode.ConditionalBranch:
			ops[last].TrueTarget = remap[ops[last].TrueTarget]
			ops[last].FalseTarget = remap[ops[last].FalseTarget]
		}
	}
	return kept
}
