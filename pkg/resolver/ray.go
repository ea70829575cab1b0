package resolver

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// parallelEpsilon is the smallest |n·d| treated as a real intersection.
const parallelEpsilon = 1e-9

// Ray is a half-line starting at Origin along the unit vector Dir.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal r3.Vec
	D      float64
}

// BoardPlane is the y = 0 plane the grid lies on.
var BoardPlane = Plane{Normal: r3.Vec{Y: 1}}

// IntersectPlane returns where the ray meets the plane. It reports false when
// the ray is parallel to the plane or the plane lies behind the origin.
func (r Ray) IntersectPlane(pl Plane) (r3.Vec, bool) {
	denom := r3.Dot(pl.Normal, r.Dir)
	if math.Abs(denom) < parallelEpsilon {
		return r3.Vec{}, false
	}
	t := -(r3.Dot(pl.Normal, r.Origin) + pl.D) / denom
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return r3.Vec{}, false
	}
	return r.At(t), true
}
