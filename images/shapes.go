// Package images - Geometry and letterbox bookkeeping for detection boxes.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Rect is an axis-aligned rectangle in float pixel space.
//
// X and Y are the top-left corner. Width and Height are never negative for rectangles produced by
// this module once they have been clipped.
type Rect struct {
	X      float32 `json:"x"      yaml:"x"`
	Y      float32 `json:"y"      yaml:"y"`
	Width  float32 `json:"width"  yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// RectFromCorners builds a Rect from its top-left (x0, y0) and bottom-right (x1, y1) corners.
//
// Arguments:
//   - x0, y0: The top-left corner.
//   - x1, y1: The bottom-right corner.
//
// Returns:
//   - Rect: The rectangle spanning both corners.
func RectFromCorners(x0, y0, x1, y1 float32) Rect {
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 {
	return r.Y + r.Height
}

// Area returns the area of the rectangle. Degenerate rectangles have zero area.
func (r Rect) Area() float32 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the geometric intersection of r and o.
//
// Disjoint or touching rectangles yield the zero Rect.
//
// Arguments:
//   - o: The other rectangle.
//
// Returns:
//   - Rect: The overlapping region, or the zero Rect when there is none.
//
// Example:
//
// ```go
//
//	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
//	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
//	a.Intersect(b) // Rect{X: 5, Y: 5, Width: 5, Height: 5}
//
// ```
func (r Rect) Intersect(o Rect) Rect {
	x0 := math32.Max(r.X, o.X)
	y0 := math32.Max(r.Y, o.Y)
	x1 := math32.Min(r.Right(), o.Right())
	y1 := math32.Min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return RectFromCorners(x0, y0, x1, y1)
}

// IntersectionArea returns the area shared by r and o.
func (r Rect) IntersectionArea(o Rect) float32 {
	return r.Intersect(o).Area()
}

// UnionArea returns the area covered by r and o combined, counting the overlap once.
func (r Rect) UnionArea(o Rect) float32 {
	return r.Area() + o.Area() - r.IntersectionArea(o)
}

// IoU returns the Intersection over Union of r and o.
//
// IoU = intersection / (area(r) + area(o) - intersection). Two degenerate rectangles have no union,
// in which case 0 is returned rather than NaN.
//
// Arguments:
//   - o: The other rectangle.
//
// Returns:
//   - float32: A value in [0, 1].
//
// Example:
//
// ```go
//
//	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
//	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}
//	a.IoU(b) // 2500 / 17500 ≈ 0.142857
//
// ```
func (r Rect) IoU(o Rect) float32 {
	return CalculateIoU(r.IntersectionArea(o), r.Area(), o.Area())
}

// CalculateIoU computes IoU from a precomputed intersection area and the two rectangle areas.
//
// NMS precomputes every candidate's area once, so this form avoids recomputing them per pair.
func CalculateIoU(inter, areaA, areaB float32) float32 {
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}

// ToImageRect converts the rectangle to integer pixel coordinates, truncating toward zero the way
// the drawing layer expects.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.Right()), int(r.Bottom())).Canon()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f, %.2f) %.2fx%.2f", r.X, r.Y, r.Width, r.Height)
}
