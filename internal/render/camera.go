package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera. FOV is the vertical field of view in
// degrees.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec
	FOV      float64
	Near     float64
}

func DefaultCamera() Camera {
	return Camera{
		Position: r3.Vec{X: 900, Y: 400, Z: 400},
		FOV:      70,
		Near:     1,
	}
}

// projector maps world points to pixels for one camera and viewport.
type projector struct {
	eye     r3.Vec
	right   r3.Vec
	up      r3.Vec
	forward r3.Vec
	focal   float64
	near    float64
	cx, cy  float64
}

func newProjector(cam Camera, width, height int) projector {
	forward := r3.Unit(r3.Sub(cam.Target, cam.Position))
	right := r3.Cross(forward, r3.Vec{Y: 1})
	if r3.Norm(right) < 1e-9 {
		right = r3.Vec{X: 1}
	}
	right = r3.Unit(right)
	up := r3.Cross(right, forward)
	fov := cam.FOV
	if fov <= 0 || fov >= 180 {
		fov = 70
	}
	near := cam.Near
	if near <= 0 {
		near = 1
	}
	return projector{
		eye:     cam.Position,
		right:   right,
		up:      up,
		forward: forward,
		focal:   float64(height) / 2 / math.Tan(fov*math.Pi/360),
		near:    near,
		cx:      float64(width) / 2,
		cy:      float64(height) / 2,
	}
}

// project returns screen coordinates and view depth. ok is false for points
// behind the near plane.
func (p projector) project(v r3.Vec) (x, y, depth float64, ok bool) {
	d := r3.Sub(v, p.eye)
	depth = r3.Dot(d, p.forward)
	if depth < p.near {
		return 0, 0, depth, false
	}
	x = p.cx + r3.Dot(d, p.right)*p.focal/depth
	y = p.cy - r3.Dot(d, p.up)*p.focal/depth
	return x, y, depth, true
}
