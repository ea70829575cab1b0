// Package resolver maps pointer positions on the rendered 3D board to
// board intersections.
//
// The pipeline is the usual picking one: pixel to normalized device
// coordinates, NDC to a world ray through the camera, ray to the board
// plane, and hit point to the nearest grid intersection. Everything here is
// a pure function of its inputs.
package resolver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Projection selects how a Camera projects the scene.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// Default camera parameters.
const (
	DefaultFOV  = 75.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// ErrDegenerateCamera is returned when the camera matrices cannot be inverted.
var ErrDegenerateCamera = errors.New("degenerate camera")

// Camera describes the active view of the board.
type Camera struct {
	Position   r3.Vec
	Target     r3.Vec
	Up         r3.Vec
	Projection Projection
	FOV        float64 // vertical field of view in degrees (perspective)
	HalfHeight float64 // visible half-height in world units (orthographic)
	Near, Far  float64
}

// DefaultCamera returns the perspective camera that looks straight down on
// the centre of a board of size n from height n.
func DefaultCamera(n int) Camera {
	half := float64(n) / 2
	return Camera{
		Position:   r3.Vec{X: half, Y: float64(n), Z: half},
		Target:     r3.Vec{X: half, Y: 0, Z: half},
		Up:         r3.Vec{Y: 1},
		Projection: Perspective,
		FOV:        DefaultFOV,
		Near:       DefaultNear,
		Far:        DefaultFar,
	}
}

// TopDownOrtho returns an orthographic camera centred on a board of size n
// whose view fits the board exactly into a square viewport. Screen right is
// +x (columns) and screen down is +z (rows).
func TopDownOrtho(n int) Camera {
	half := float64(n) / 2
	return Camera{
		Position:   r3.Vec{X: half, Y: float64(n) + 1, Z: half},
		Target:     r3.Vec{X: half, Y: 0, Z: half},
		Up:         r3.Vec{Z: -1},
		Projection: Orthographic,
		HalfHeight: float64(n+1) / 2,
		Near:       DefaultNear,
		Far:        DefaultFar,
	}
}

// basis returns the camera's right, up and backward axes in world space.
// When the view direction is parallel to Up the direction is nudged
// slightly so the basis stays well defined.
func (c Camera) basis() (x, y, z r3.Vec) {
	z = r3.Sub(c.Position, c.Target)
	if r3.Norm2(z) == 0 {
		z.Z = 1
	}
	z = r3.Unit(z)
	x = r3.Cross(c.Up, z)
	if r3.Norm2(x) == 0 {
		if math.Abs(c.Up.Z) == 1 {
			z.X += 1e-4
		} else {
			z.Z += 1e-4
		}
		z = r3.Unit(z)
		x = r3.Cross(c.Up, z)
	}
	x = r3.Unit(x)
	y = r3.Cross(z, x)
	return x, y, z
}

// View returns the world-to-camera matrix.
func (c Camera) View() *mat.Dense {
	x, y, z := c.basis()
	p := c.Position
	return mat.NewDense(4, 4, []float64{
		x.X, x.Y, x.Z, -r3.Dot(x, p),
		y.X, y.Y, y.Z, -r3.Dot(y, p),
		z.X, z.Y, z.Z, -r3.Dot(z, p),
		0, 0, 0, 1,
	})
}

// ProjectionMatrix returns the camera-to-clip matrix for the given aspect
// ratio (width / height).
func (c Camera) ProjectionMatrix(aspect float64) *mat.Dense {
	near, far := c.Near, c.Far
	if near <= 0 {
		near = DefaultNear
	}
	if far <= near {
		far = DefaultFar
	}

	if c.Projection == Orthographic {
		hh := c.HalfHeight
		hw := hh * aspect
		return mat.NewDense(4, 4, []float64{
			1 / hw, 0, 0, 0,
			0, 1 / hh, 0, 0,
			0, 0, -2 / (far - near), -(far + near) / (far - near),
			0, 0, 0, 1,
		})
	}

	fov := c.FOV
	if fov <= 0 {
		fov = DefaultFOV
	}
	f := 1 / math.Tan(fov*math.Pi/360)
	return mat.NewDense(4, 4, []float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	})
}

// Ray returns the world-space ray through the NDC point (ndcX, ndcY). The
// ray starts on the near plane and points towards the far plane.
func (c Camera) Ray(ndcX, ndcY, aspect float64) (Ray, error) {
	if c.Projection == Orthographic && c.HalfHeight <= 0 {
		return Ray{}, fmt.Errorf("%w: orthographic half-height %v", ErrDegenerateCamera, c.HalfHeight)
	}
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return Ray{}, fmt.Errorf("%w: aspect %v", ErrDegenerateCamera, aspect)
	}

	var pv, inv mat.Dense
	pv.Mul(c.ProjectionMatrix(aspect), c.View())
	if err := inv.Inverse(&pv); err != nil {
		return Ray{}, fmt.Errorf("%w: %v", ErrDegenerateCamera, err)
	}

	near, err := unproject(&inv, ndcX, ndcY, -1)
	if err != nil {
		return Ray{}, err
	}
	far, err := unproject(&inv, ndcX, ndcY, 1)
	if err != nil {
		return Ray{}, err
	}
	dir := r3.Sub(far, near)
	if r3.Norm2(dir) == 0 {
		return Ray{}, fmt.Errorf("%w: zero-length ray", ErrDegenerateCamera)
	}
	return Ray{Origin: near, Dir: r3.Unit(dir)}, nil
}

// unproject maps a clip-space point back to world space.
func unproject(inv mat.Matrix, x, y, z float64) (r3.Vec, error) {
	var out mat.VecDense
	out.MulVec(inv, mat.NewVecDense(4, []float64{x, y, z, 1}))
	w := out.AtVec(3)
	if w == 0 || math.IsNaN(w) {
		return r3.Vec{}, fmt.Errorf("%w: point at infinity", ErrDegenerateCamera)
	}
	return r3.Vec{X: out.AtVec(0) / w, Y: out.AtVec(1) / w, Z: out.AtVec(2) / w}, nil
}
