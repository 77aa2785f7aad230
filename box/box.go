package box

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a position on a page. Depending on context it is either in pixels
// or in normalized [0,1] page coordinates.
type Point struct {
	X float64
	Y float64
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

// Centroid is the mean of the points. It returns false for an empty slice.
func Centroid(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n}, true
}

// Box is a data structure representing a box on a page,
// with x and y float coordinates in normalized page space.
/*
	Coordinate system
		topLeft := {x: 0, y: 0}
		bottomRight := {x: 1, y: 1}
*/
type Box struct {
	XLeft   float64
	YTop    float64
	XRight  float64
	YBottom float64
}

// FromLTWH builds a box from a left/top corner and a size, the way
// Textract reports bounding boxes.
func FromLTWH(left, top, width, height float64) Box {
	return Box{XLeft: left, YTop: top, XRight: left + width, YBottom: top + height}
}

// Bounding is the tightest box containing all points.
// A single point gives a degenerate box with zero area.
func Bounding(points []Point) (Box, bool) {
	if len(points) == 0 {
		return Box{}, false
	}
	b := Box{XLeft: points[0].X, XRight: points[0].X, YTop: points[0].Y, YBottom: points[0].Y}
	for _, p := range points[1:] {
		b.XLeft = math.Min(b.XLeft, p.X)
		b.XRight = math.Max(b.XRight, p.X)
		b.YTop = math.Min(b.YTop, p.Y)
		b.YBottom = math.Max(b.YBottom, p.Y)
	}
	return b, true
}

func (b Box) Width() float64 {
	return b.XRight - b.XLeft
}

func (b Box) Height() float64 {
	return b.YBottom - b.YTop
}

func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Valid if all coordinates are finite and the box is not inverted.
func (b Box) Valid() bool {
	if !finite(b.XLeft) || !finite(b.XRight) || !finite(b.YTop) || !finite(b.YBottom) {
		return false
	}
	return b.XLeft <= b.XRight && b.YTop <= b.YBottom
}

// Expand grows the box by margin on every side.
func (b Box) Expand(margin float64) Box {
	return Box{
		XLeft:   b.XLeft - margin,
		YTop:    b.YTop - margin,
		XRight:  b.XRight + margin,
		YBottom: b.YBottom + margin,
	}
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return b.XLeft <= p.X && p.X <= b.XRight && b.YTop <= p.Y && p.Y <= b.YBottom
}

// Min and Max are the corners in the [2]float64 form spatial indexes use.
func (b Box) Min() [2]float64 {
	return [2]float64{b.XLeft, b.YTop}
}

func (b Box) Max() [2]float64 {
	return [2]float64{b.XRight, b.YBottom}
}

// MarshalJSON encodes the box as [left, top, right, bottom].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.XLeft, b.YTop, b.XRight, b.YBottom})
}

func (b *Box) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("box: %w", err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("box: expected 4 coordinates, got %d", len(coords))
	}
	*b = Box{XLeft: coords[0], YTop: coords[1], XRight: coords[2], YBottom: coords[3]}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
