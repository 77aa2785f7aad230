package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/schema"
	"github.com/vegarsti/fuse/textract"
	"github.com/vegarsti/fuse/vision"
)

var (
	ErrLayout  = errors.New("bad layout input")
	ErrContent = errors.New("bad content input")
)

// Settings are everything besides the inputs that decides a fused document.
type Settings struct {
	Fuse   fuse.Options
	Vision vision.Options
}

// String is a canonical form of the settings, used in source checksums.
func (s Settings) String() string {
	g := s.Vision.Granularity
	if g == "" {
		g = vision.GranularityWord
	}
	return fmt.Sprintf("granularity=%s nfc=%t tolerance=%g fallback=%q",
		g, s.Vision.NormalizeUnicode, s.Fuse.Tolerance, s.Fuse.FallbackLabel)
}

// Build fuses one source into a document.
func Build(src *fuse.Source, settings Settings) (*fuse.Document, error) {
	blocks, err := textract.ParseLayout(src.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLayout, err)
	}
	pages, err := vision.ParsePages(src.Content, settings.Vision)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContent, err)
	}
	tokens, page := fuse.Normalize(pages)
	regions, err := fuse.Fuse(blocks, tokens, settings.Fuse)
	if err != nil {
		return nil, err
	}
	return fuse.NewDocument(src.Name, page, regions, len(tokens)), nil
}

// Encode returns the indented JSON of doc after checking it against the
// document schema. Non-ASCII and HTML characters are written as is.
func Encode(doc *fuse.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.ImageFilename, err)
	}
	if err := schema.Validate(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.ImageFilename, err)
	}
	return buf.Bytes(), nil
}

// Decode reads a document written by Encode.
func Decode(data []byte) (*fuse.Document, error) {
	var doc fuse.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Regions == nil {
		doc.Regions = make([]fuse.Region, 0)
	}
	return &doc, nil
}
