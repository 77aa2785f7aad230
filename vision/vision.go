// Package vision reads recognized tokens from saved Google Cloud Vision
// text detection responses.
package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	gvision "google.golang.org/api/vision/v1"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

// Granularity selects which unit of a response becomes one token.
type Granularity string

const (
	// GranularityWord makes one token per word, its text assembled from the
	// word's symbols and its break taken from the last symbol.
	GranularityWord Granularity = "word"
	// GranularitySymbol makes one token per symbol with the symbol's own
	// box and break.
	GranularitySymbol Granularity = "symbol"
	// GranularityAnnotation makes one token per text annotation. Annotations
	// carry no break hints.
	GranularityAnnotation Granularity = "annotation"
)

var ErrUnknownGranularity = errors.New("unknown granularity")

// ParseGranularity accepts "word", "symbol" or "annotation"; empty means word.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GranularityWord, nil
	case GranularityWord, GranularitySymbol, GranularityAnnotation:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Options control how tokens are read from a response.
type Options struct {
	Granularity Granularity
	// NormalizeUnicode composes token text to NFC. Symbol-assembled words
	// can otherwise carry decomposed accents.
	NormalizeUnicode bool
}

// Parse decodes a saved images:annotate response. Both the batch form
// ({"responses": [...]}, first response used) and a single response are
// accepted.
func Parse(data []byte) (*gvision.AnnotateImageResponse, error) {
	var batch gvision.BatchAnnotateImagesResponse
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	resp := &gvision.AnnotateImageResponse{}
	if len(batch.Responses) > 0 && batch.Responses[0] != nil {
		resp = batch.Responses[0]
	} else if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	if resp.Error != nil && resp.Error.Code != 0 {
		return nil, fmt.Errorf("vision response carries error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp, nil
}

// ParsePages decodes a saved response and returns its tokens page by page.
func ParsePages(data []byte, opts Options) ([]fuse.PageTokens, error) {
	resp, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Pages(resp, opts)
}

// Pages returns the tokens of a response grouped by page, in the order the
// recognizer reported them.
func Pages(resp *gvision.AnnotateImageResponse, opts Options) ([]fuse.PageTokens, error) {
	g := opts.Granularity
	if g == "" {
		g = GranularityWord
	}
	var pages []fuse.PageTokens
	switch g {
	case GranularityWord:
		pages = wordPages(resp)
	case GranularitySymbol:
		pages = symbolPages(resp)
	case GranularityAnnotation:
		pages = annotationPages(resp)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}
	if opts.NormalizeUnicode {
		for i := range pages {
			for j := range pages[i].Tokens {
				pages[i].Tokens[j].Text = norm.NFC.String(pages[i].Tokens[j].Text)
			}
		}
	}
	return pages, nil
}

func fullTextPages(resp *gvision.AnnotateImageResponse) []*gvision.Page {
	if resp == nil || resp.FullTextAnnotation == nil {
		return nil
	}
	return resp.FullTextAnnotation.Pages
}

// eachWord calls fn for every word of the page in reading order.
func eachWord(page *gvision.Page, fn func(*gvision.Word)) {
	for _, block := range page.Blocks {
		if block == nil {
			continue
		}
		for _, paragraph := range block.Paragraphs {
			if paragraph == nil {
				continue
			}
			for _, word := range paragraph.Words {
				if word != nil {
					fn(word)
				}
			}
		}
	}
}

func wordPages(resp *gvision.AnnotateImageResponse) []fuse.PageTokens {
	pages := make([]fuse.PageTokens, 0)
	for _, page := range fullTextPages(resp) {
		if page == nil {
			continue
		}
		pt := newPageTokens(page)
		eachWord(page, func(word *gvision.Word) {
			var text strings.Builder
			var br fuse.BreakType
			for _, s := range word.Symbols {
				if s == nil {
					continue
				}
				text.WriteString(s.Text)
				br = breakOf(s.Property)
			}
			pt.Tokens = append(pt.Tokens, fuse.RawToken{
				Text:     text.String(),
				Break:    br,
				Vertices: vertices(word.BoundingBox),
			})
		})
		pages = append(pages, pt)
	}
	return pages
}

func symbolPages(resp *gvision.AnnotateImageResponse) []fuse.PageTokens {
	pages := make([]fuse.PageTokens, 0)
	for _, page := range fullTextPages(resp) {
		if page == nil {
			continue
		}
		pt := newPageTokens(page)
		eachWord(page, func(word *gvision.Word) {
			for _, s := range word.Symbols {
				if s == nil {
					continue
				}
				pt.Tokens = append(pt.Tokens, fuse.RawToken{
					Text:     s.Text,
					Break:    breakOf(s.Property),
					Vertices: vertices(s.BoundingBox),
				})
			}
		})
		pages = append(pages, pt)
	}
	return pages
}

// annotationPages reads the flat textAnnotations list. Its first entry
// spans the whole image and holds the full text, so it is skipped.
// Annotations are not grouped by page; the size of the first page of the
// full text annotation is used when there is one.
func annotationPages(resp *gvision.AnnotateImageResponse) []fuse.PageTokens {
	if resp == nil || len(resp.TextAnnotations) < 2 {
		return make([]fuse.PageTokens, 0)
	}
	pt := fuse.PageTokens{}
	if pages := fullTextPages(resp); len(pages) > 0 && pages[0] != nil {
		pt = newPageTokens(pages[0])
	}
	for _, a := range resp.TextAnnotations[1:] {
		if a == nil {
			continue
		}
		pt.Tokens = append(pt.Tokens, fuse.RawToken{
			Text:     a.Description,
			Vertices: vertices(a.BoundingPoly),
		})
	}
	return []fuse.PageTokens{pt}
}

func newPageTokens(page *gvision.Page) fuse.PageTokens {
	return fuse.PageTokens{
		Width:  float64(page.Width),
		Height: float64(page.Height),
		Tokens: make([]fuse.RawToken, 0),
	}
}

func breakOf(p *gvision.TextProperty) fuse.BreakType {
	if p == nil || p.DetectedBreak == nil {
		return fuse.BreakNone
	}
	return fuse.BreakType(p.DetectedBreak.Type)
}

// vertices returns the polygon in pixels. Coordinates the service omitted
// are zero. A polygon with a null vertex is returned as nil, so the token
// is dropped rather than pulled toward the origin.
func vertices(poly *gvision.BoundingPoly) []box.Point {
	if poly == nil || len(poly.Vertices) == 0 {
		return nil
	}
	points := make([]box.Point, len(poly.Vertices))
	for i, v := range poly.Vertices {
		if v == nil {
			return nil
		}
		points[i] = box.Point{X: float64(v.X), Y: float64(v.Y)}
	}
	return points
}
