package resolver

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// CameraSpec is the wire form of a Camera sent by a renderer. Unset fields
// fall back to DefaultCamera, or to TopDownOrtho for an orthographic spec.
type CameraSpec struct {
	Position   *[3]float64 `json:"position,omitempty"`
	Target     *[3]float64 `json:"target,omitempty"`
	Up         *[3]float64 `json:"up,omitempty"`
	Projection string      `json:"projection,omitempty"` // "perspective" or "orthographic"
	FOV        float64     `json:"fov,omitempty"`         // degrees
	HalfHeight float64     `json:"half_height,omitempty"` // orthographic only
	Near       float64     `json:"near,omitempty"`
	Far        float64     `json:"far,omitempty"`
}

// Camera builds the camera for a board of size n. A nil spec is the
// default camera.
func (s *CameraSpec) Camera(n int) (Camera, error) {
	cam := DefaultCamera(n)
	if s == nil {
		return cam, nil
	}

	switch strings.ToLower(s.Projection) {
	case "", "perspective":
	case "orthographic", "ortho":
		cam = TopDownOrtho(n)
	default:
		return cam, fmt.Errorf("unknown projection %q", s.Projection)
	}

	if s.Position != nil {
		cam.Position = vec(*s.Position)
	}
	if s.Target != nil {
		cam.Target = vec(*s.Target)
	}
	if s.Up != nil {
		cam.Up = vec(*s.Up)
	}
	if s.FOV > 0 {
		cam.FOV = s.FOV
	}
	if s.HalfHeight > 0 {
		cam.HalfHeight = s.HalfHeight
	}
	if s.Near > 0 {
		cam.Near = s.Near
	}
	if s.Far > 0 {
		cam.Far = s.Far
	}
	return cam, nil
}

func vec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
