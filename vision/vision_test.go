package vision

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

// Two words, "Hydro-" hyphenated at the end of a line and "gen" without
// a break, plus a word with no bounding box.
const response = `{
  "textAnnotations": [
    {"description": "Hydro gen", "boundingPoly": {"vertices": [{"x": 0, "y": 0}, {"x": 200, "y": 0}, {"x": 200, "y": 100}, {"y": 100}]}},
    {"description": "Hydro", "boundingPoly": {"vertices": [{"x": 10, "y": 10}, {"x": 30, "y": 10}, {"x": 30, "y": 30}, {"x": 10, "y": 30}]}},
    {"description": "gen", "boundingPoly": {"vertices": [{"x": 100, "y": 50}, {"x": 140, "y": 50}, {"x": 140, "y": 70}, {"x": 100, "y": 70}]}}
  ],
  "fullTextAnnotation": {
    "text": "Hydro gen",
    "pages": [{
      "width": 200, "height": 100,
      "blocks": [{
        "paragraphs": [{
          "words": [
            {
              "boundingBox": {"vertices": [{"x": 10, "y": 10}, {"x": 30, "y": 10}, {"x": 30, "y": 30}, {"x": 10, "y": 30}]},
              "symbols": [
                {"text": "Hy", "boundingBox": {"vertices": [{"x": 10, "y": 10}, {"x": 20, "y": 10}, {"x": 20, "y": 30}, {"x": 10, "y": 30}]}},
                {"text": "dro", "property": {"detectedBreak": {"type": "HYPHEN"}},
                 "boundingBox": {"vertices": [{"x": 20, "y": 10}, {"x": 30, "y": 10}, {"x": 30, "y": 30}, {"x": 20, "y": 30}]}}
              ]
            },
            {
              "boundingBox": {"vertices": [{"x": 100, "y": 50}, {"x": 140, "y": 50}, {"x": 140, "y": 70}, {"x": 100, "y": 70}]},
              "symbols": [{"text": "gen",
                "boundingBox": {"vertices": [{"x": 100, "y": 50}, {"x": 140, "y": 50}, {"x": 140, "y": 70}, {"x": 100, "y": 70}]}}]
            },
            {
              "symbols": [{"text": "lost", "property": {"detectedBreak": {"type": "SPACE"}}}]
            }
          ]
        }]
      }]
    }]
  }
}`

func TestParsePagesWord(t *testing.T) {
	pages, err := ParsePages([]byte(response), Options{Granularity: GranularityWord})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(pages), 1)
	assert.Equal(t, pages[0].Width, 200.0)
	assert.Equal(t, pages[0].Height, 100.0)
	assert.Equal(t, len(pages[0].Tokens), 3)

	hydro := pages[0].Tokens[0]
	assert.Equal(t, hydro.Text, "Hydro")
	assert.Equal(t, hydro.Break, fuse.BreakHyphen)
	assert.Equal(t, hydro.Vertices[2], box.Point{X: 30, Y: 30})

	assert.Equal(t, pages[0].Tokens[1].Text, "gen")
	assert.Equal(t, pages[0].Tokens[1].Break, fuse.BreakNone)
	assert.Equal(t, len(pages[0].Tokens[2].Vertices), 0)

	tokens, _ := fuse.Normalize(pages)
	assert.Equal(t, len(tokens), 2)
	assert.Equal(t, tokens[0].Center, box.Point{X: 0.1, Y: 0.2})
	assert.Equal(t, fuse.JoinTokens(tokens), "Hydro - gen")
}

func TestParsePagesSymbol(t *testing.T) {
	pages, err := ParsePages([]byte(response), Options{Granularity: GranularitySymbol})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(pages[0].Tokens), 4)
	assert.Equal(t, pages[0].Tokens[3].Text, "lost")
	assert.Equal(t, len(pages[0].Tokens[3].Vertices), 0)

	tokens, _ := fuse.Normalize(pages)
	assert.Equal(t, len(tokens), 3)
	assert.Equal(t, tokens[0].Text, "Hy")
	assert.Equal(t, tokens[1].Text, "dro")
	assert.Equal(t, tokens[1].Break, fuse.BreakHyphen)
	assert.Equal(t, tokens[2].Text, "gen")
	assert.Equal(t, tokens[2].Index, 2)
	assert.Equal(t, tokens[2].Center, box.Point{X: 0.6, Y: 0.6})
	assert.Equal(t, fuse.JoinTokens(tokens), "Hydro - gen")
}

func TestParsePagesNullVertex(t *testing.T) {
	data := `{"fullTextAnnotation": {"pages": [{"width": 100, "height": 100, "blocks": [{"paragraphs": [{"words": [
	  {"boundingBox": {"vertices": [{"x": 80, "y": 80}, null, {"x": 90, "y": 90}]}, "symbols": [{"text": "partial"}]},
	  {"boundingBox": {"vertices": [{"x": 80, "y": 80}, {"x": 90, "y": 90}]}, "symbols": [{"text": "whole"}]}
	]}]}]}]}}`
	pages, err := ParsePages([]byte(data), Options{})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(pages[0].Tokens[0].Vertices), 0)

	tokens, _ := fuse.Normalize(pages)
	assert.Equal(t, len(tokens), 1)
	assert.Equal(t, tokens[0].Text, "whole")
	assert.Equal(t, tokens[0].Center, box.Point{X: 0.85, Y: 0.85})
}

func TestParsePagesAnnotation(t *testing.T) {
	pages, err := ParsePages([]byte(response), Options{Granularity: GranularityAnnotation})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(pages), 1)
	assert.Equal(t, pages[0].Width, 200.0)
	assert.Equal(t, len(pages[0].Tokens), 2)
	assert.Equal(t, pages[0].Tokens[0].Text, "Hydro")
	assert.Equal(t, pages[0].Tokens[0].Break, fuse.BreakNone)
	assert.Equal(t, pages[0].Tokens[1].Text, "gen")
}

func TestParseBatchResponse(t *testing.T) {
	pages, err := ParsePages([]byte(`{"responses": [`+response+`]}`), Options{})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(pages[0].Tokens), 3)
}

func TestParseErrorResponse(t *testing.T) {
	_, err := Parse([]byte(`{"error": {"code": 3, "message": "Bad image data."}}`))
	assert.NotEqual(t, err, nil)

	_, err = Parse([]byte(`not json`))
	assert.NotEqual(t, err, nil)
}

func TestParseEmptyResponse(t *testing.T) {
	for _, g := range []Granularity{GranularityWord, GranularitySymbol, GranularityAnnotation} {
		pages, err := ParsePages([]byte(`{}`), Options{Granularity: g})
		assert.Equal(t, err, nil)
		assert.Equal(t, len(pages), 0)
	}
}

func TestNormalizeUnicode(t *testing.T) {
	// и followed by a combining breve, split over two symbols
	decomposed := `{"fullTextAnnotation": {"pages": [{"width": 10, "height": 10, "blocks": [{"paragraphs": [{"words": [
	  {"boundingBox": {"vertices": [{"x": 1, "y": 1}]}, "symbols": [{"text": "\u0438"}, {"text": "\u0306"}]}
	]}]}]}]}}`

	pages, err := ParsePages([]byte(decomposed), Options{NormalizeUnicode: true})
	assert.Equal(t, err, nil)
	assert.Equal(t, pages[0].Tokens[0].Text, "\u0439")

	pages, err = ParsePages([]byte(decomposed), Options{NormalizeUnicode: false})
	assert.Equal(t, err, nil)
	assert.Equal(t, pages[0].Tokens[0].Text, "\u0438\u0306")
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	assert.Equal(t, err, nil)
	assert.Equal(t, g, GranularityWord)

	g, err = ParseGranularity(" Symbol ")
	assert.Equal(t, err, nil)
	assert.Equal(t, g, GranularitySymbol)

	_, err = ParseGranularity("line")
	assert.Equal(t, errors.Is(err, ErrUnknownGranularity), true)

	_, err = Pages(nil, Options{Granularity: "line"})
	assert.Equal(t, errors.Is(err, ErrUnknownGranularity), true)
}
