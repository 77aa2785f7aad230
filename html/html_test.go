package html

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

func TestFromDocument(t *testing.T) {
	doc := fuse.NewDocument("page_007.png", fuse.Page{Width: 100, Height: 100}, []fuse.Region{
		{Label: "Title", Box: box.Box{XLeft: 0.1, YTop: 0.05, XRight: 0.9, YBottom: 0.125}, Text: "a < b"},
		{Label: "Figure", Box: box.Box{XLeft: 0.25, YTop: 0.25, XRight: 0.75, YBottom: 0.75}},
	}, 3)
	s, err := FromDocument(doc, "page_007.png")
	assert.Equal(t, err, nil)
	assert.Equal(t, strings.Contains(s, "<title>page_007.png</title>"), true)
	assert.Equal(t, strings.Contains(s, "2 regions, 3 tokens."), true)
	assert.Equal(t, strings.Contains(s, "<td>0.1000, 0.0500, 0.9000, 0.1250</td>"), true)
	assert.Equal(t, strings.Contains(s, "a &lt; b"), true)
	assert.Equal(t, strings.Contains(s, `<img src="page_007.png">`), true)
	assert.Equal(t, strings.Index(s, "Title") < strings.Index(s, "Figure"), true)
}

func TestFromDocumentWithoutImage(t *testing.T) {
	doc := fuse.NewDocument("blank.png", fuse.Page{Width: 1, Height: 1}, nil, 0)
	s, err := FromDocument(doc, "")
	assert.Equal(t, err, nil)
	assert.Equal(t, strings.Contains(s, "<img"), false)
	assert.Equal(t, strings.Contains(s, "0 regions, 0 tokens."), true)
}
