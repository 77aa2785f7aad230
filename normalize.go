package fuse

import "github.com/vegarsti/fuse/box"

// Page holds the pixel dimensions used as the reference for a document.
type Page struct {
	Width  float64
	Height float64
}

// RawToken is a recognized token as the content recognizer reports it,
// with its polygon in pixels of the page it was found on.
type RawToken struct {
	Text     string
	Break    BreakType
	Vertices []box.Point
}

// PageTokens are the tokens of one recognized page together with the page
// size it declared. Width or Height may be zero when the recognizer did not
// report them.
type PageTokens struct {
	Width  float64
	Height float64
	Tokens []RawToken
}

// Token is a recognized token in normalized page coordinates.
// Index is its rank in reading order and the only ordering key used by Fuse.
type Token struct {
	Index  int
	Text   string
	Center box.Point
	Break  BreakType
}

// Normalize flattens the pages into one token sequence in page order and
// converts each centroid to [0,1] page coordinates.
//
// Every token is divided by the dimensions of its own page, with 1.0
// substituted for a non-positive dimension. The returned Page carries the
// largest dimensions declared by any page (at least 1.0), so one page with
// degenerate dimensions does not shrink the document.
//
// Tokens without vertices cannot be placed and are dropped before indexes
// are assigned.
func Normalize(pages []PageTokens) ([]Token, Page) {
	ref := Page{Width: 1, Height: 1}
	for _, p := range pages {
		if p.Width > ref.Width {
			ref.Width = p.Width
		}
		if p.Height > ref.Height {
			ref.Height = p.Height
		}
	}

	tokens := make([]Token, 0)
	for _, p := range pages {
		w, h := p.Width, p.Height
		if w <= 0 {
			w = 1
		}
		if h <= 0 {
			h = 1
		}
		for _, raw := range p.Tokens {
			c, ok := box.Centroid(raw.Vertices)
			if !ok {
				continue
			}
			tokens = append(tokens, Token{
				Index:  len(tokens),
				Text:   raw.Text,
				Center: box.Point{X: c.X / w, Y: c.Y / h},
				Break:  raw.Break,
			})
		}
	}
	return tokens, ref
}
