package fuse

import (
	"sort"

	"github.com/vegarsti/fuse/box"
)

// Block is a labeled layout region in normalized page coordinates.
type Block struct {
	ID    string
	Label string
	Box   box.Box
}

type preparedBlock struct {
	Block
	area    float64
	matched []int
}

// prepareBlocks returns the blocks ordered by increasing area, so nested
// regions are tried before the regions that contain them. Blocks of equal
// area keep their input order.
func prepareBlocks(blocks []Block) []*preparedBlock {
	prepared := make([]*preparedBlock, len(blocks))
	for i, b := range blocks {
		prepared[i] = &preparedBlock{
			Block:   b,
			area:    b.Box.Area(),
			matched: make([]int, 0),
		}
	}
	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].area < prepared[j].area
	})
	return prepared
}
