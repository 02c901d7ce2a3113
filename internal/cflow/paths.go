package cflow

import "github.com/standardbeagle/sci/internal/types"

// maxPaths bounds path enumeration for functions with very wide
// branching. Paths beyond the bound are dropped, never truncated.
const maxPaths = 256

// BuildPaths enumerates execution paths from the entry block to the
// exit block over the nesting tree. Each maximal chain of nested blocks
// yields one path; sibling blocks branch into separate paths. A path is
// cyclic when it passes through a loop block and complete when it ends
// at the exit block.
func BuildPaths(blocks []types.ControlFlowBlock) []types.ControlFlowPath {
	if len(blocks) == 0 {
		return nil
	}

	var entryID, exitID string
	symbolName := blocks[0].SymbolName
	children := make(map[string][]string, len(blocks))
	complexity := make(map[string]int, len(blocks))
	loops := make(map[string]bool)

	for _, b := range blocks {
		complexity[b.ID] = b.Complexity
		switch b.BlockType {
		case types.BlockEntry:
			entryID = b.ID
			continue
		case types.BlockExit:
			exitID = b.ID
			continue
		case types.BlockLoop:
			loops[b.ID] = true
		}
		children[b.ParentBlockID] = append(children[b.ParentBlockID], b.ID)
	}
	if entryID == "" || exitID == "" {
		return nil
	}

	paths := make([]types.ControlFlowPath, 0, 4)
	var walk func(id string, trail []string, cyclic bool, weight int)
	walk = func(id string, trail []string, cyclic bool, weight int) {
		if len(paths) >= maxPaths {
			return
		}
		trail = append(trail, id)
		cyclic = cyclic || loops[id]
		weight += complexity[id]

		kids := children[id]
		if len(kids) == 0 {
			ids := make([]string, len(trail), len(trail)+1)
			copy(ids, trail)
			ids = append(ids, exitID)
			paths = append(paths, types.ControlFlowPath{
				SymbolName: symbolName,
				BlockIDs:   ids,
				Complexity: 1 + weight,
				IsComplete: true,
				IsCyclic:   cyclic,
			})
			return
		}
		for _, kid := range kids {
			walk(kid, trail, cyclic, weight)
		}
	}
	walk(entryID, nil, false, 0)
	return paths
}
