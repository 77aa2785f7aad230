package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

const layoutJSON = `{"Blocks": [
  {"BlockType": "LAYOUT_SECTION_HEADER", "Id": "h",
   "Geometry": {"BoundingBox": {"Left": 0, "Top": 0, "Width": 1, "Height": 0.25}}}
]}`

const contentJSON = `{"fullTextAnnotation": {"pages": [{"width": 100, "height": 100, "blocks": [{"paragraphs": [{"words": [
  {"boundingBox": {"vertices": [{"x": 10, "y": 10}]}, "symbols": [{"text": "Part", "property": {"detectedBreak": {"type": "SPACE"}}}]},
  {"boundingBox": {"vertices": [{"x": 30, "y": 10}]}, "symbols": [{"text": "one"}]}
]}]}]}]}}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestWriteTable(t *testing.T) {
	doc := fuse.NewDocument("p.png", fuse.Page{Width: 1, Height: 1}, []fuse.Region{
		{Label: "Title", Box: box.Box{XLeft: 0, YTop: 0, XRight: 1, YBottom: 0.5}, Text: "two\nlines"},
	}, 2)
	var buf bytes.Buffer
	writeTable(&buf, regionTable(doc))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, strings.HasPrefix(lines[0], "#"), true)
	assert.Equal(t, strings.HasSuffix(lines[1], "|two ⏎ lines"), true)
	assert.Equal(t, strings.Index(lines[0], "|LABEL"), strings.Index(lines[1], "|Title"))
	assert.Equal(t, strings.Index(lines[0], "|TEXT"), strings.Index(lines[1], "|two"))
}

func TestDocCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	assert.Equal(t, os.WriteFile("p1_aws.json", []byte(layoutJSON), 0o644), nil)
	assert.Equal(t, os.WriteFile("p1_google.json", []byte(contentJSON), 0o644), nil)

	out, err := execute(t, "doc", "--layout", "p1_aws.json", "--content", "p1_google.json", "-o", "csv")
	assert.Equal(t, err, nil)
	assert.Equal(t, out, "label,left,top,right,bottom,text\nSectionHeader,0,0,1,0.25,Part one\n")

	out, err = execute(t, "doc", "--layout", "p1_aws.json", "--content", "p1_google.json", "-o", "json")
	assert.Equal(t, err, nil)
	assert.Equal(t, strings.Contains(out, `"image_filename": "p1"`), true)
	assert.Equal(t, strings.Contains(out, `"token_count": 2`), true)

	_, err = execute(t, "doc", "--layout", "missing.json", "--content", "p1_google.json", "-o", "json")
	assert.NotEqual(t, err, nil)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fuse.yaml")
	out, err := execute(t, "config", "init", path)
	assert.Equal(t, err, nil)
	assert.Equal(t, out, "wrote "+path+"\n")

	_, err = execute(t, "config", "init", path)
	assert.NotEqual(t, err, nil)
}

func TestRunHelpMentionsExitStatus(t *testing.T) {
	assert.Equal(t, strings.Contains(runCmd.Long, "Any failed page makes the command exit with a non-zero status."), true)
}
