// Package fuse merges a page layout (labeled rectangles) with the tokens a
// text recognizer found on the same page into an ordered list of labeled
// regions with reconstructed text.
//
// Tokens are assigned to the smallest layout block whose box, grown by a
// small tolerance, contains the token centroid. Each block's tokens are split
// into runs of consecutive reading-order indexes, and each run becomes one
// region. Tokens outside every block are emitted as fallback regions. The
// result is ordered by the first token index of every region, with regions
// that received no text last.
//
// Fuse is a pure function: it does no I/O, keeps no state between calls and
// returns identical output for identical input.
package fuse

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vegarsti/fuse/box"
)

// DefaultFallbackLabel labels regions built from tokens outside every block.
const DefaultFallbackLabel = "Paragraph"

var (
	ErrMalformedBlock = errors.New("malformed layout block")
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidOptions = errors.New("invalid fusion options")
)

// Options tune the fusion.
type Options struct {
	// Tolerance grows every block box on each side before matching.
	Tolerance float64
	// FallbackLabel is the label of regions built from unmatched tokens.
	FallbackLabel string
}

func DefaultOptions() Options {
	return Options{
		Tolerance:     DefaultTolerance,
		FallbackLabel: DefaultFallbackLabel,
	}
}

func (o Options) validate() error {
	if math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) || o.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidOptions, o.Tolerance)
	}
	if o.FallbackLabel == "" {
		return fmt.Errorf("%w: empty fallback label", ErrInvalidOptions)
	}
	return nil
}

// Region is one labeled span of the fused document.
type Region struct {
	Label string  `json:"label"`
	Box   box.Box `json:"box"`
	Text  string  `json:"text"`
}

// keyedRegion carries the ordering key of a region until assembly.
type keyedRegion struct {
	Region
	key int
}

// emptyKey orders regions without tokens after every region with tokens.
const emptyKey = math.MaxInt

// Fuse assigns tokens to blocks and returns the regions in reading order.
//
// Tokens must be indexed by position (tokens[i].Index == i), as Normalize
// produces them. Malformed geometry is rejected rather than guessed at.
func Fuse(blocks []Block, tokens []Token, opts Options) ([]Region, error) {
	keyed, err := fuse(blocks, tokens, opts)
	if err != nil {
		return nil, err
	}
	return assemble(keyed), nil
}

func fuse(blocks []Block, tokens []Token, opts Options) ([]keyedRegion, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if !b.Box.Valid() {
			return nil, fmt.Errorf("%w: %q (%s) has box %v", ErrMalformedBlock, b.ID, b.Label, b.Box)
		}
	}
	for i, t := range tokens {
		if t.Index != i {
			return nil, fmt.Errorf("%w: token at position %d has index %d", ErrMalformedToken, i, t.Index)
		}
		if !t.Center.Finite() {
			return nil, fmt.Errorf("%w: token %d has centroid %v", ErrMalformedToken, i, t.Center)
		}
	}

	prepared := prepareBlocks(blocks)
	assigned := matchTokens(prepared, tokens, opts.Tolerance)

	regions := make([]keyedRegion, 0, len(prepared))
	for _, b := range prepared {
		if len(b.matched) == 0 {
			regions = append(regions, keyedRegion{
				Region: Region{Label: b.Label, Box: b.Box, Text: ""},
				key:    emptyKey,
			})
			continue
		}
		for _, run := range SplitRuns(b.matched) {
			regions = append(regions, keyedRegion{
				Region: Region{Label: b.Label, Box: b.Box, Text: JoinTokens(pick(tokens, run))},
				key:    run[0],
			})
		}
	}
	regions = append(regions, collectOrphans(tokens, assigned, opts.FallbackLabel)...)
	return regions, nil
}

// assemble orders regions by key, keeping the relative order of equal keys,
// and drops the keys.
func assemble(keyed []keyedRegion) []Region {
	sort.SliceStable(keyed, func(i, j int) bool {
		return keyed[i].key < keyed[j].key
	})
	regions := make([]Region, len(keyed))
	for i, k := range keyed {
		regions[i] = k.Region
	}
	return regions
}

// Document is the fused description of one page.
type Document struct {
	ImageFilename string   `json:"image_filename"`
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	Regions       []Region `json:"regions"`
	TokenCount    int      `json:"token_count"`
}

func NewDocument(name string, page Page, regions []Region, tokenCount int) *Document {
	if regions == nil {
		regions = make([]Region, 0)
	}
	return &Document{
		ImageFilename: name,
		Width:         page.Width,
		Height:        page.Height,
		Regions:       regions,
		TokenCount:    tokenCount,
	}
}
