// Package textract reads page layouts from saved AWS Textract responses.
package textract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/service/textract"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

const layoutPrefix = "LAYOUT_"

// ErrMissingGeometry is returned for a layout block without a bounding box.
var ErrMissingGeometry = errors.New("layout block has no bounding box")

// Parse decodes an AnalyzeDocument (or GetDocumentAnalysis) response saved
// as JSON. The SDK types carry no JSON tags, but their field names match the
// service's wire names.
func Parse(data []byte) (*textract.AnalyzeDocumentOutput, error) {
	var output textract.AnalyzeDocumentOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("decode textract response: %w", err)
	}
	return &output, nil
}

// ParseLayout decodes a saved response and returns its layout blocks.
func ParseLayout(data []byte) ([]fuse.Block, error) {
	output, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return LayoutBlocks(output)
}

// LayoutBlocks converts the LAYOUT_* blocks of a response to fusion blocks,
// in response order. Words, lines and other block types are ignored.
func LayoutBlocks(output *textract.AnalyzeDocumentOutput) ([]fuse.Block, error) {
	blocks := make([]fuse.Block, 0)
	for _, block := range output.Blocks {
		if block == nil || block.BlockType == nil || !strings.HasPrefix(*block.BlockType, layoutPrefix) {
			continue
		}
		id := ""
		if block.Id != nil {
			id = *block.Id
		}
		if block.Geometry == nil || block.Geometry.BoundingBox == nil {
			return nil, fmt.Errorf("%w: %s %q", ErrMissingGeometry, *block.BlockType, id)
		}
		bb := block.Geometry.BoundingBox
		if bb.Left == nil || bb.Top == nil || bb.Width == nil || bb.Height == nil {
			return nil, fmt.Errorf("%w: %s %q is incomplete", ErrMissingGeometry, *block.BlockType, id)
		}
		blocks = append(blocks, fuse.Block{
			ID:    id,
			Label: Label(*block.BlockType),
			Box:   box.FromLTWH(*bb.Left, *bb.Top, *bb.Width, *bb.Height),
		})
	}
	return blocks, nil
}

// Label turns a Textract layout block type into a region label:
// LAYOUT_TEXT is a Paragraph, LAYOUT_SECTION_HEADER a SectionHeader.
func Label(blockType string) string {
	name := strings.TrimPrefix(blockType, layoutPrefix)
	if name == "TEXT" {
		return fuse.DefaultFallbackLabel
	}
	// a Caser keeps state, so it is not shared between concurrent fusions
	titleCase := cases.Title(language.Und)
	parts := strings.Split(strings.ToLower(name), "_")
	for i, p := range parts {
		parts[i] = titleCase.String(p)
	}
	return strings.Join(parts, "")
}
