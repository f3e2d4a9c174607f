package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Point is a cell position in screen coordinates.
type Point struct {
	X, Y int
}

// Rect is a positioned rectangle. In YAML it is written as [x, y, width, height].
type Rect struct {
	X, Y, Width, Height int
}

// NewRect creates a rect from position and size.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Contains returns true if the point is inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether the rect covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Translate returns the rect moved by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersection returns the overlapping area of two rects.
func (r Rect) Intersection(other Rect) Rect {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	x2 := min(r.X+r.Width, other.X+other.Width)
	y2 := min(r.Y+r.Height, other.Y+other.Height)
	if x2 <= x || y2 <= y {
		return Rect{}
	}
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Row returns the strip covering row i when each row is height cells tall, clipped to r.
func (r Rect) Row(i, height int) Rect {
	return Rect{X: r.X, Y: r.Y + i*height, Width: r.Width, Height: height}.Intersection(r)
}

// UnmarshalYAML decodes [x, y, width, height].
func (r *Rect) UnmarshalYAML(value *yaml.Node) error {
	var v []int
	if err := value.Decode(&v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("line %d: rect needs 4 values [x, y, width, height], got %d", value.Line, len(v))
	}
	*r = Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	return nil
}

// MarshalYAML encodes the rect as a flow sequence.
func (r Rect) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, n := range []int{r.X, r.Y, r.Width, r.Height} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(n)})
	}
	return node, nil
}
