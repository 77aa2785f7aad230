package fuse

import "github.com/vegarsti/fuse/box"

// collectOrphans turns the tokens no block claimed into fallback regions,
// one per contiguous run.
//
// Orphans lie outside every layout box, so there is no detected rectangle
// to report. The region box is the tight rectangle around the centroids of
// the run's tokens, which degenerates to a point for a single token.
func collectOrphans(tokens []Token, assigned []bool, label string) []keyedRegion {
	orphans := make([]int, 0)
	for i := range tokens {
		if !assigned[i] {
			orphans = append(orphans, i)
		}
	}

	regions := make([]keyedRegion, 0)
	for _, run := range SplitRuns(orphans) {
		runTokens := pick(tokens, run)
		centers := make([]box.Point, len(runTokens))
		for i, t := range runTokens {
			centers[i] = t.Center
		}
		b, _ := box.Bounding(centers)
		regions = append(regions, keyedRegion{
			Region: Region{Label: label, Box: b, Text: JoinTokens(runTokens)},
			key:    run[0],
		})
	}
	return regions
}

func pick(tokens []Token, indices []int) []Token {
	picked := make([]Token, len(indices))
	for i, idx := range indices {
		picked[i] = tokens[idx]
	}
	return picked
}
