// Package cflow builds control-flow blocks, calls, and paths for one
// function at a time. Both extraction strategies drive the same builder
// so their outputs share one shape.
package cflow

import (
	"fmt"

	"github.com/standardbeagle/sci/internal/types"
)

// BlockOptions carries the optional attributes of a newly opened block.
type BlockOptions struct {
	Condition      string
	LoopType       types.LoopType
	ExceptionTypes []string
}

// openBlock is one entry on the builder's pending stack. StartDepth is
// the brace depth measured after the opening line's braces were applied;
// the block closes once depth drops below it.
type openBlock struct {
	index      int
	startDepth int
}

// Builder accumulates one function's control-flow blocks. It is
// single-pass and line-ordered: blocks are emitted in source order and
// every non-entry block's parent chain terminates at the entry block.
type Builder struct {
	symbolName string
	blocks     []types.ControlFlowBlock
	open       []openBlock
	finished   bool
	cognitive  int
}

// NewBuilder starts a function's flow with its entry block.
func NewBuilder(symbolName string, startLine int) *Builder {
	b := &Builder{
		symbolName: symbolName,
		blocks:     make([]types.ControlFlowBlock, 0, 8),
	}
	b.blocks = append(b.blocks, types.ControlFlowBlock{
		ID:         b.blockID(0),
		SymbolName: symbolName,
		BlockType:  types.BlockEntry,
		StartLine:  startLine,
		EndLine:    startLine,
	})
	return b
}

func (b *Builder) blockID(index int) string {
	return fmt.Sprintf("%s#%d", b.symbolName, index)
}

// EntryID returns the entry block's id.
func (b *Builder) EntryID() string {
	return b.blocks[0].ID
}

// currentParentID is the id of the innermost open block, or the entry
// block when nothing is open.
func (b *Builder) currentParentID() string {
	if len(b.open) == 0 {
		return b.EntryID()
	}
	return b.blocks[b.open[len(b.open)-1].index].ID
}

// Open records a new block nested under the innermost open block and
// pushes it onto the pending stack. startDepth is the brace depth
// measured after the opening line's braces; the block stays open until
// depth drops below it. Returns the new block's id.
func (b *Builder) Open(blockType types.BlockType, startLine, startDepth int, opts BlockOptions) string {
	index := len(b.blocks)
	block := types.ControlFlowBlock{
		ID:             b.blockID(index),
		SymbolName:     b.symbolName,
		BlockType:      blockType,
		StartLine:      startLine,
		EndLine:        startLine,
		ParentBlockID:  b.currentParentID(),
		Condition:      opts.Condition,
		LoopType:       opts.LoopType,
		Complexity:     blockType.LocalComplexity(),
		ExceptionTypes: opts.ExceptionTypes,
	}

	// Cognitive complexity: conditionals and loops score one point plus
	// one per level of enclosing branching; catches score a flat point.
	switch blockType {
	case types.BlockConditional, types.BlockLoop, types.BlockSwitch:
		b.cognitive += 1 + b.branchNesting()
	case types.BlockCatch:
		b.cognitive++
	}

	b.blocks = append(b.blocks, block)
	b.open = append(b.open, openBlock{index: index, startDepth: startDepth})
	return block.ID
}

// branchNesting counts the open conditional/loop/switch blocks.
func (b *Builder) branchNesting() int {
	n := 0
	for _, ob := range b.open {
		switch b.blocks[ob.index].BlockType {
		case types.BlockConditional, types.BlockLoop, types.BlockSwitch:
			n++
		}
	}
	return n
}

// CloseBelow closes every pending block whose start depth now exceeds
// the current brace depth, setting its end line. Called after each
// line's brace delta is applied. Returns the number of blocks closed.
func (b *Builder) CloseBelow(depth, endLine int) int {
	closed := 0
	for len(b.open) > 0 {
		top := b.open[len(b.open)-1]
		if top.startDepth <= depth {
			break
		}
		b.blocks[top.index].EndLine = endLine
		b.open = b.open[:len(b.open)-1]
		closed++
	}
	return closed
}

// CloseTop force-closes the innermost open block at the given line.
// The syntax-tree path uses this when leaving a construct's node.
func (b *Builder) CloseTop(endLine int) bool {
	if len(b.open) == 0 {
		return false
	}
	top := b.open[len(b.open)-1]
	b.blocks[top.index].EndLine = endLine
	b.open = b.open[:len(b.open)-1]
	return true
}

// Flags reports whether the current position is inside a conditional,
// loop, or try/catch region. Calls and relationships found at this
// position carry these flags.
func (b *Builder) Flags() (isConditional, isInLoop, isInTryCatch bool) {
	for _, ob := range b.open {
		switch b.blocks[ob.index].BlockType {
		case types.BlockConditional, types.BlockSwitch:
			isConditional = true
		case types.BlockLoop:
			isInLoop = true
		case types.BlockTry, types.BlockCatch, types.BlockFinally:
			isInTryCatch = true
		}
	}
	return
}

// OpenCount returns the number of blocks still pending.
func (b *Builder) OpenCount() int {
	return len(b.open)
}

// Finish force-closes any still-pending blocks at the function's end
// line, closes the entry block, and appends the exit block. The builder
// must not be used afterwards.
func (b *Builder) Finish(endLine int) {
	if b.finished {
		return
	}
	b.finished = true

	for len(b.open) > 0 {
		top := b.open[len(b.open)-1]
		b.blocks[top.index].EndLine = endLine
		b.open = b.open[:len(b.open)-1]
	}

	b.blocks[0].EndLine = endLine

	b.blocks = append(b.blocks, types.ControlFlowBlock{
		ID:            b.blockID(len(b.blocks)),
		SymbolName:    b.symbolName,
		BlockType:     types.BlockExit,
		StartLine:     endLine,
		EndLine:       endLine,
		ParentBlockID: b.EntryID(),
	})
}

// Blocks returns the function's blocks in source order. Valid only
// after Finish.
func (b *Builder) Blocks() []types.ControlFlowBlock {
	return b.blocks
}

// Cyclomatic returns 1 + conditionals + loops + switches.
func (b *Builder) Cyclomatic() int {
	c := 1
	for _, blk := range b.blocks {
		switch blk.BlockType {
		case types.BlockConditional, types.BlockLoop, types.BlockSwitch:
			c++
		}
	}
	return c
}

// Cognitive returns the nesting-weighted complexity accumulated while
// opening blocks.
func (b *Builder) Cognitive() int {
	return b.cognitive
}
