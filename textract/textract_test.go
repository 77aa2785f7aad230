package textract

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vegarsti/fuse/box"
)

const response = `{
  "DocumentMetadata": {"Pages": 1},
  "Blocks": [
    {"BlockType": "PAGE", "Id": "p1", "Geometry": {"BoundingBox": {"Width": 1, "Height": 1, "Left": 0, "Top": 0}}},
    {"BlockType": "LAYOUT_TITLE", "Id": "t1", "Confidence": 97.5,
     "Geometry": {"BoundingBox": {"Width": 0.5, "Height": 0.25, "Left": 0.25, "Top": 0},
                  "Polygon": [{"X": 0.25, "Y": 0}, {"X": 0.75, "Y": 0}, {"X": 0.75, "Y": 0.25}, {"X": 0.25, "Y": 0.25}]}},
    {"BlockType": "WORD", "Id": "w1", "Text": "Hello", "Geometry": {"BoundingBox": {"Width": 0.1, "Height": 0.1, "Left": 0.3, "Top": 0.05}}},
    {"BlockType": "LAYOUT_TEXT", "Id": "x1", "Geometry": {"BoundingBox": {"Width": 0.5, "Height": 0.5, "Left": 0, "Top": 0.5}}},
    {"BlockType": "LAYOUT_SECTION_HEADER", "Id": "s1", "Geometry": {"BoundingBox": {"Width": 0.25, "Height": 0.125, "Left": 0, "Top": 0.25}}}
  ]
}`

func TestParseLayout(t *testing.T) {
	blocks, err := ParseLayout([]byte(response))
	assert.Equal(t, err, nil)
	assert.Equal(t, len(blocks), 3)

	assert.Equal(t, blocks[0].ID, "t1")
	assert.Equal(t, blocks[0].Label, "Title")
	assert.Equal(t, blocks[0].Box, box.Box{XLeft: 0.25, YTop: 0, XRight: 0.75, YBottom: 0.25})

	assert.Equal(t, blocks[1].Label, "Paragraph")
	assert.Equal(t, blocks[1].Box, box.Box{XLeft: 0, YTop: 0.5, XRight: 0.5, YBottom: 1})

	assert.Equal(t, blocks[2].Label, "SectionHeader")
}

func TestParseLayoutMissingGeometry(t *testing.T) {
	_, err := ParseLayout([]byte(`{"Blocks": [{"BlockType": "LAYOUT_FIGURE", "Id": "f"}]}`))
	assert.Equal(t, errors.Is(err, ErrMissingGeometry), true)

	_, err = ParseLayout([]byte(`{"Blocks": [{"BlockType": "LAYOUT_FIGURE", "Id": "f", "Geometry": {"BoundingBox": {"Left": 0.1}}}]}`))
	assert.Equal(t, errors.Is(err, ErrMissingGeometry), true)
}

func TestParseLayoutInvalidJSON(t *testing.T) {
	_, err := ParseLayout([]byte(`{"Blocks": [`))
	assert.NotEqual(t, err, nil)
}

func TestParseLayoutNoLayoutBlocks(t *testing.T) {
	blocks, err := ParseLayout([]byte(`{"Blocks": [{"BlockType": "LINE", "Id": "l"}]}`))
	assert.Equal(t, err, nil)
	assert.Equal(t, len(blocks), 0)
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"LAYOUT_TEXT":           "Paragraph",
		"LAYOUT_TABLE":          "Table",
		"LAYOUT_FIGURE":         "Figure",
		"LAYOUT_PAGE_NUMBER":    "PageNumber",
		"LAYOUT_KEY_VALUE":      "KeyValue",
		"LAYOUT_SECTION_HEADER": "SectionHeader",
		"LAYOUT_LIST":           "List",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, Label(in), want)
		})
	}
}
