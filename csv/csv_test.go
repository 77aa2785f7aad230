package csv

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

func TestFromDocument(t *testing.T) {
	doc := fuse.NewDocument("page.png", fuse.Page{Width: 100, Height: 100}, []fuse.Region{
		{Label: "Title", Box: box.Box{XLeft: 0.1, YTop: 0.05, XRight: 0.9, YBottom: 0.125}, Text: "Chapter 1"},
		{Label: "Paragraph", Box: box.Box{XLeft: 0.1, YTop: 0.25, XRight: 0.5, YBottom: 0.5}, Text: "first line\nsecond, \"quoted\""},
	}, 5)
	want := "label,left,top,right,bottom,text\n" +
		"Title,0.1,0.05,0.9,0.125,Chapter 1\n" +
		"Paragraph,0.1,0.25,0.5,0.5,\"first line\nsecond, \"\"quoted\"\"\"\n"
	assert.Equal(t, FromDocument(doc), want)
}

func TestFromEmptyDocument(t *testing.T) {
	doc := fuse.NewDocument("page.png", fuse.Page{Width: 1, Height: 1}, nil, 0)
	assert.Equal(t, FromDocument(doc), "label,left,top,right,bottom,text\n")
}
