package fuse

import (
	"github.com/tidwall/rtree"
)

// DefaultTolerance is the margin, as a fraction of the page, by which block
// boxes are grown before testing whether a token centroid falls inside.
const DefaultTolerance = 0.02

// matchTokens assigns every token to the first block, in prepared order,
// whose box grown by tolerance contains the token centroid. The token index
// is appended to that block's matched list. The returned slice records which
// tokens were assigned.
func matchTokens(blocks []*preparedBlock, tokens []Token, tolerance float64) []bool {
	// values are positions in blocks; the lowest hit is the first match
	var index rtree.RTreeG[int]
	for i, b := range blocks {
		grown := b.Box.Expand(tolerance)
		index.Insert(grown.Min(), grown.Max(), i)
	}

	assigned := make([]bool, len(tokens))
	for _, t := range tokens {
		pt := [2]float64{t.Center.X, t.Center.Y}
		best := -1
		index.Search(pt, pt, func(_, _ [2]float64, pos int) bool {
			if best == -1 || pos < best {
				best = pos
			}
			return true
		})
		if best == -1 {
			continue
		}
		blocks[best].matched = append(blocks[best].matched, t.Index)
		assigned[t.Index] = true
	}
	return assigned
}
