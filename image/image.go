// Package image draws fused regions onto the page image they came from.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/box"
)

var palette = []color.RGBA{
	{230, 25, 75, 255},
	{60, 180, 75, 255},
	{0, 130, 200, 255},
	{245, 130, 48, 255},
	{145, 30, 180, 255},
	{70, 240, 240, 255},
	{240, 50, 230, 255},
	{128, 128, 0, 255},
}

// AddBoxes outlines each region on the image and writes its label above the
// outline. Regions sharing a label share a colour. The result is PNG encoded.
func AddBoxes(imageBytes []byte, regions []fuse.Region) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	outputImg := image.NewRGBA(bounds)
	draw.Draw(outputImg, bounds, img, bounds.Min, draw.Src)

	colors := map[string]color.RGBA{}
	for _, r := range regions {
		col, ok := colors[r.Label]
		if !ok {
			col = palette[len(colors)%len(palette)]
			colors[r.Label] = col
		}
		rect := pixels(r.Box, bounds)
		drawBox(outputImg, rect, col)
		drawLabel(outputImg, rect, r.Label, col)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, outputImg); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// pixels converts a normalized box to pixel coordinates. Points outside
// the image are dropped by RGBA.Set.
func pixels(b box.Box, bounds image.Rectangle) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	return image.Rect(
		bounds.Min.X+int(b.XLeft*w),
		bounds.Min.Y+int(b.YTop*h),
		bounds.Min.X+int(b.XRight*w),
		bounds.Min.Y+int(b.YBottom*h),
	)
}

func drawBox(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	if rect.Empty() {
		// a point region, e.g. an orphan made of one token
		img.Set(rect.Min.X, rect.Min.Y, col)
		return
	}
	x1, y1 := rect.Min.X, rect.Min.Y
	x2, y2 := rect.Max.X-1, rect.Max.Y-1
	for x := x1; x <= x2; x++ {
		img.Set(x, y1, col)
		img.Set(x, y2, col)
	}
	for y := y1; y <= y2; y++ {
		img.Set(x1, y, col)
		img.Set(x2, y, col)
	}
}

func drawLabel(img *image.RGBA, rect image.Rectangle, label string, col color.RGBA) {
	face := basicfont.Face7x13
	y := rect.Min.Y - 2
	if y-face.Ascent < img.Bounds().Min.Y {
		y = rect.Min.Y + face.Ascent + 1
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(rect.Min.X+1, y),
	}
	d.DrawString(label)
}
