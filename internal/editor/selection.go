package editor

// rangeBounds is a selection normalized to whole-node granularity:
// covered nodes are [startIdx, endIdx) in the start/end blocks, plus
// every node of the blocks in between.
type rangeBounds struct {
	startBlock, startIdx int
	endBlock, endIdx     int
}

// isolateBounds splits the text nodes at the selection boundaries so
// the selection covers whole nodes, and returns the covered range.
func (d *Document) isolateBounds(sel Selection) rangeBounds {
	start, end := sel.Start, sel.End
	if end.less(start) {
		start, end = end, start
	}

	endIdx := d.splitAt(end)

	startBlk := d.blocks[start.Block]
	before := len(startBlk.Nodes)
	startIdx := d.splitAt(start)
	if start.Block == end.Block && len(startBlk.Nodes) > before {
		endIdx++
	}

	return rangeBounds{
		startBlock: start.Block,
		startIdx:   startIdx,
		endBlock:   end.Block,
		endIdx:     endIdx,
	}
}

func (d *Document) coveredNodes(rb rangeBounds) []*Node {
	if rb.startBlock == rb.endBlock {
		blk := d.blocks[rb.startBlock]
		return blk.Nodes[clamp(rb.startIdx, 0, len(blk.Nodes)):clamp(rb.endIdx, 0, len(blk.Nodes))]
	}

	var out []*Node
	first := d.blocks[rb.startBlock]
	out = append(out, first.Nodes[clamp(rb.startIdx, 0, len(first.Nodes)):]...)
	for i := rb.startBlock + 1; i < rb.endBlock; i++ {
		out = append(out, d.blocks[i].Nodes...)
	}
	last := d.blocks[rb.endBlock]
	out = append(out, last.Nodes[:clamp(rb.endIdx, 0, len(last.Nodes))]...)
	return out
}

// deleteBounds removes the covered nodes, merging the boundary blocks
// when the range spans more than one, and returns the caret at the
// start of the removed range.
func (d *Document) deleteBounds(rb rangeBounds) Caret {
	if rb.startBlock == rb.endBlock {
		blk := d.blocks[rb.startBlock]
		lo := clamp(rb.startIdx, 0, len(blk.Nodes))
		hi := clamp(rb.endIdx, lo, len(blk.Nodes))
		blk.Nodes = append(blk.Nodes[:lo], blk.Nodes[hi:]...)
		return Caret{Block: rb.startBlock, Node: lo}
	}

	first := d.blocks[rb.startBlock]
	last := d.blocks[rb.endBlock]
	lo := clamp(rb.startIdx, 0, len(first.Nodes))
	hi := clamp(rb.endIdx, 0, len(last.Nodes))

	first.Nodes = append(first.Nodes[:lo], last.Nodes[hi:]...)
	d.blocks = append(d.blocks[:rb.startBlock+1], d.blocks[rb.endBlock+1:]...)
	return Caret{Block: rb.startBlock, Node: lo}
}

func textRuns(nodes []*Node) []*Node {
	runs := nodes[:0:0]
	for _, n := range nodes {
		if n.Kind == KindText {
			runs = append(runs, n)
		}
	}
	return runs
}
