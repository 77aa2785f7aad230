package fuse

import "sort"

// SplitRuns partitions token indices into maximal runs of consecutive
// integers. The input is not modified.
func SplitRuns(indices []int) [][]int {
	if len(indices) == 0 {
		return nil
	}
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	runs := make([][]int, 0)
	current := []int{sorted[0]}
	for _, i := range sorted[1:] {
		if i > current[len(current)-1]+1 {
			runs = append(runs, current)
			current = make([]int, 0)
		}
		current = append(current, i)
	}
	return append(runs, current)
}
