package resolver

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// DefaultClickTolerance is the largest pointer travel, in pixels, between
// press and release that still counts as a click.
const DefaultClickTolerance = 6.0

// Point is a pointer position in viewport pixels, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the size of the drawing area in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width / height.
func (vp Viewport) Aspect() float64 { return vp.Width / vp.Height }

// Empty reports whether the viewport has no drawable area.
func (vp Viewport) Empty() bool {
	return !(vp.Width > 0) || !(vp.Height > 0) || math.IsInf(vp.Width, 0) || math.IsInf(vp.Height, 0)
}

// NDC converts a pixel position to normalized device coordinates in [-1, 1],
// y pointing up.
func NDC(p Point, vp Viewport) (x, y float64) {
	return p.X/vp.Width*2 - 1, -(p.Y/vp.Height)*2 + 1
}

// Mapping places the grid in world space: intersection (col, row) sits at
// x = Origin.X + col*Spacing, z = Origin.Z + row*Spacing.
type Mapping struct {
	Origin  r3.Vec
	Spacing float64
}

// DefaultMapping puts intersections on integer world coordinates.
var DefaultMapping = Mapping{Spacing: 1}

// Grid returns the continuous grid coordinates of a world point.
func (m Mapping) Grid(p r3.Vec) (col, row float64) {
	s := m.Spacing
	if s == 0 {
		s = 1
	}
	return (p.X - m.Origin.X) / s, (p.Z - m.Origin.Z) / s
}

// World returns the world position of intersection (col, row).
func (m Mapping) World(col, row int) r3.Vec {
	s := m.Spacing
	if s == 0 {
		s = 1
	}
	return r3.Vec{X: m.Origin.X + float64(col)*s, Y: m.Origin.Y, Z: m.Origin.Z + float64(row)*s}
}

// Resolver turns pointer events into board intersections for a board of
// Size+1 intersections per side.
type Resolver struct {
	Size           int
	Plane          Plane
	Mapping        Mapping
	ClickTolerance float64
}

// New returns a resolver for a board of size n on the y = 0 plane.
func New(n int) Resolver {
	return Resolver{
		Size:           n,
		Plane:          BoardPlane,
		Mapping:        DefaultMapping,
		ClickTolerance: DefaultClickTolerance,
	}
}

// Resolve returns the intersection under p, if any. Each axis is rounded to
// the nearest intersection independently, halves away from zero.
func (r Resolver) Resolve(p Point, vp Viewport, cam Camera) (engine.Cell, bool) {
	if vp.Empty() || !finite(p.X) || !finite(p.Y) {
		return engine.Cell{}, false
	}
	ndcX, ndcY := NDC(p, vp)
	ray, err := cam.Ray(ndcX, ndcY, vp.Aspect())
	if err != nil {
		return engine.Cell{}, false
	}
	hit, ok := ray.IntersectPlane(r.Plane)
	if !ok {
		return engine.Cell{}, false
	}
	return r.Snap(hit)
}

// Snap rounds a world point on the board plane to the nearest intersection.
func (r Resolver) Snap(hit r3.Vec) (engine.Cell, bool) {
	gc, gr := r.Mapping.Grid(hit)
	if !finite(gc) || !finite(gr) {
		return engine.Cell{}, false
	}
	col, row := math.Round(gc), math.Round(gr)
	n := float64(r.Size)
	if col < 0 || col > n || row < 0 || row > n {
		return engine.Cell{}, false
	}
	return engine.Cell{Col: int(col), Row: int(row)}, true
}

// IsClick reports whether a press at down and release at up is a click
// rather than a drag.
func (r Resolver) IsClick(down, up Point) bool {
	tol := r.ClickTolerance
	if tol <= 0 {
		tol = DefaultClickTolerance
	}
	return math.Hypot(up.X-down.X, up.Y-down.Y) < tol
}

// ResolveClick resolves a press/release pair. Drags are reported with
// isClick false and are never resolved.
func (r Resolver) ResolveClick(down, up Point, vp Viewport, cam Camera) (cell engine.Cell, ok, isClick bool) {
	if !r.IsClick(down, up) {
		return engine.Cell{}, false, false
	}
	cell, ok = r.Resolve(up, vp, cam)
	return cell, ok, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
