package shape

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/labelme2coco/internal/mask"
)

// Type identifies the kind of drawn primitive.
type Type string

// Shape types with a dedicated fill rule. An empty or unrecognized type is
// filled as a Polygon.
const (
	Polygon   Type = "polygon"
	Rectangle Type = "rectangle"
	Circle    Type = "circle"
	Keypoint  Type = "point"
	Line      Type = "line"
	LineStrip Type = "linestrip"
)

const (
	// PointRadius is the radius of the disc filled around a point shape.
	PointRadius = 5

	// LineWidth is the stroke width of line and linestrip shapes.
	LineWidth = 10
)

// ErrMalformedShape is returned for shapes whose points cannot be rasterized.
var ErrMalformedShape = errors.New("malformed shape")

// Point is a 2D coordinate in pixel space.
type Point struct {
	X float64 // Horizontal position (0 = left edge)
	Y float64 // Vertical position (0 = top edge)
}

// Shape is one annotated primitive as drawn in the labelling tool.
type Shape struct {
	// Label is the fine-grained class name.
	Label string

	// GroupID ties several shapes into one object instance. Nil means the
	// shape is its own instance.
	GroupID *int

	// Type is the primitive kind. Empty means Polygon.
	Type Type

	// Points are the vertices in drawing order. Rectangles, circles and lines
	// carry exactly two points, a point shape exactly one.
	Points []Point
}

// Kind returns the shape type with the polygon default applied.
func (s Shape) Kind() Type {
	if s.Type == "" {
		return Polygon
	}
	return s.Type
}

// Raster is the result of rasterizing one shape.
type Raster struct {
	// Mask has the image's dimensions with the shape's pixels set.
	Mask *mask.Mask

	// Segmentation is the flat x,y coordinate list for COCO output.
	Segmentation []float64
}

// Rasterize fills s on a width x height pixel grid.
//
// Rectangles are normalized to axis-aligned corner order first, so the mask
// and the 8-number segmentation do not depend on which corners were drawn.
// Every other type keeps its points unchanged in the segmentation. Points
// become discs of radius PointRadius and lines become strokes LineWidth wide.
// Types without a rule of their own are filled as polygons.
func Rasterize(s Shape, width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrMalformedShape, width, height)
	}
	for i, p := range s.Points {
		if !finite(p.X) || !finite(p.Y) {
			return nil, fmt.Errorf("%w: %q point %d is not finite", ErrMalformedShape, s.Label, i)
		}
	}

	switch s.Kind() {
	case Rectangle:
		if len(s.Points) != 2 {
			return nil, fmt.Errorf("%w: rectangle %q has %d points, want 2",
				ErrMalformedShape, s.Label, len(s.Points))
		}
		x1, y1, x2, y2 := NormalizeRect(s.Points[0], s.Points[1])
		corners := []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
		return &Raster{
			Mask:         fillPolygon(corners, width, height),
			Segmentation: []float64{x1, y1, x2, y1, x2, y2, x1, y2},
		}, nil

	case Circle:
		if len(s.Points) != 2 {
			return nil, fmt.Errorf("%w: circle %q has %d points, want 2",
				ErrMalformedShape, s.Label, len(s.Points))
		}
		c, rim := s.Points[0], s.Points[1]
		return &Raster{
			Mask:         fillDisc(c, math.Hypot(rim.X-c.X, rim.Y-c.Y), width, height),
			Segmentation: flatten(s.Points),
		}, nil

	case Keypoint:
		if len(s.Points) != 1 {
			return nil, fmt.Errorf("%w: point %q has %d points, want 1",
				ErrMalformedShape, s.Label, len(s.Points))
		}
		return &Raster{
			Mask:         fillDisc(s.Points[0], PointRadius, width, height),
			Segmentation: flatten(s.Points),
		}, nil

	case Line, LineStrip:
		if s.Kind() == Line && len(s.Points) != 2 {
			return nil, fmt.Errorf("%w: line %q has %d points, want 2",
				ErrMalformedShape, s.Label, len(s.Points))
		}
		if len(s.Points) < 2 {
			return nil, fmt.Errorf("%w: linestrip %q has %d points, want at least 2",
				ErrMalformedShape, s.Label, len(s.Points))
		}
		return &Raster{
			Mask:         strokePath(s.Points, LineWidth/2.0, width, height),
			Segmentation: flatten(s.Points),
		}, nil

	default:
		if len(s.Points) < 3 {
			return nil, fmt.Errorf("%w: %s %q has %d points, want at least 3",
				ErrMalformedShape, s.Kind(), s.Label, len(s.Points))
		}
		return &Raster{
			Mask:         fillPolygon(s.Points, width, height),
			Segmentation: flatten(s.Points),
		}, nil
	}
}

// NormalizeRect orders two opposite corners into (x1, y1) top-left and
// (x2, y2) bottom-right.
func NormalizeRect(a, b Point) (x1, y1, x2, y2 float64) {
	x1, x2 = a.X, b.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 = a.Y, b.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return x1, y1, x2, y2
}

// fillPolygon scanline-fills a closed polygon using the even-odd rule,
// sampling each row at its pixel centers.
func fillPolygon(pts []Point, width, height int) *mask.Mask {
	m := mask.New(width, height)
	edges := buildEdges(pts)
	if len(edges) == 0 {
		return m
	}

	minY, maxY := edges[0].yTop, edges[0].yBottom
	for _, e := range edges[1:] {
		minY = math.Min(minY, e.yTop)
		maxY = math.Max(maxY, e.yBottom)
	}
	rowStart := max(0, firstCenterAtOrAfter(minY))
	rowEnd := min(height, firstCenterAtOrAfter(maxY))

	xs := make([]float64, 0, len(edges))
	for y := rowStart; y < rowEnd; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for _, e := range edges {
			// Half-open in y so shared vertices are counted once.
			if yc >= e.yTop && yc < e.yBottom {
				xs = append(xs, e.xTop+(yc-e.yTop)*e.dxdy)
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			m.SetSpan(y, firstCenterAtOrAfter(xs[i]), firstCenterAtOrAfter(xs[i+1]))
		}
	}
	return m
}

// edge is a non-horizontal polygon side oriented top to bottom.
type edge struct {
	xTop    float64
	yTop    float64
	yBottom float64
	dxdy    float64 // x change per unit y
}

func buildEdges(pts []Point) []edge {
	edges := make([]edge, 0, len(pts))
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		if a.Y == b.Y {
			continue
		}
		if a.Y > b.Y {
			a, b = b, a
		}
		edges = append(edges, edge{
			xTop:    a.X,
			yTop:    a.Y,
			yBottom: b.Y,
			dxdy:    (b.X - a.X) / (b.Y - a.Y),
		})
	}
	return edges
}

// fillDisc sets pixels whose centers lie within r of center. The rim is
// inclusive.
func fillDisc(center Point, r float64, width, height int) *mask.Mask {
	m := mask.New(width, height)
	r2 := r * r

	y0 := max(0, firstCenterAtOrAfter(center.Y-r))
	y1 := min(height, lastCenterAtOrBefore(center.Y+r)+1)
	for y := y0; y < y1; y++ {
		dy := float64(y) + 0.5 - center.Y
		if dy*dy > r2 {
			continue
		}
		half := math.Sqrt(r2 - dy*dy)
		m.SetSpan(y, firstCenterAtOrAfter(center.X-half), lastCenterAtOrBefore(center.X+half)+1)
	}
	return m
}

// strokePath sets pixels whose centers lie within half of any segment of the
// open path through pts. Segment ends are rounded.
func strokePath(pts []Point, half float64, width, height int) *mask.Mask {
	m := mask.New(width, height)
	h2 := half * half
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		x0 := max(0, firstCenterAtOrAfter(math.Min(a.X, b.X)-half))
		x1 := min(width, lastCenterAtOrBefore(math.Max(a.X, b.X)+half)+1)
		y0 := max(0, firstCenterAtOrAfter(math.Min(a.Y, b.Y)-half))
		y1 := min(height, lastCenterAtOrBefore(math.Max(a.Y, b.Y)+half)+1)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				c := Point{float64(x) + 0.5, float64(y) + 0.5}
				if segmentDist2(c, a, b) <= h2 {
					m.Set(x, y)
				}
			}
		}
	}
	return m
}

// segmentDist2 returns the squared distance from p to the segment ab.
func segmentDist2(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	px, py := p.X-a.X, p.Y-a.Y
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t := math.Max(0, math.Min(1, (px*dx+py*dy)/l2))
		px -= t * dx
		py -= t * dy
	}
	return px*px + py*py
}

// maxCoord bounds coordinates before float-to-int conversion.
const maxCoord = 1 << 30

// firstCenterAtOrAfter returns the smallest pixel index i with i+0.5 >= v.
func firstCenterAtOrAfter(v float64) int {
	return int(math.Ceil(clampCoord(v) - 0.5))
}

// lastCenterAtOrBefore returns the largest pixel index i with i+0.5 <= v.
func lastCenterAtOrBefore(v float64) int {
	return int(math.Floor(clampCoord(v) - 0.5))
}

func clampCoord(v float64) float64 {
	return math.Max(-maxCoord, math.Min(v, maxCoord))
}

func flatten(pts []Point) []float64 {
	out := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
