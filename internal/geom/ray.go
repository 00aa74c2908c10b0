package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

// Ray is a half-line starting at Origin. Direction is expected to be unit
// length so intersection distances are measured in world units.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
	Near      float64
	Far       float64
}

// NewRayTowards builds a ray from origin pointing at target. Far is set to the
// distance between the two points so hits past the target are discarded.
func NewRayTowards(origin, target r3.Vec) Ray {
	delta := r3.Sub(target, origin)
	length := r3.Norm(delta)
	dir := r3.Vec{Y: -1}
	if length > epsilon {
		dir = r3.Scale(1/length, delta)
	}
	return Ray{Origin: origin, Direction: dir, Near: 0, Far: length}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

func (r Ray) within(t float64) bool {
	if t < r.Near {
		return false
	}
	if r.Far > 0 && t > r.Far {
		return false
	}
	return true
}

// IntersectTriangle runs a double sided Möller–Trumbore test and returns the
// distance along the ray to the hit point.
func IntersectTriangle(ray Ray, a, b, c r3.Vec) (float64, bool) {
	edge1 := r3.Sub(b, a)
	edge2 := r3.Sub(c, a)
	pvec := r3.Cross(ray.Direction, edge2)
	det := r3.Dot(edge1, pvec)
	if math.Abs(det) < epsilon {
		return 0, false
	}
	inv := 1 / det
	tvec := r3.Sub(ray.Origin, a)
	u := r3.Dot(tvec, pvec) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	qvec := r3.Cross(tvec, edge1)
	v := r3.Dot(ray.Direction, qvec) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := r3.Dot(edge2, qvec) * inv
	if !ray.within(t) {
		return 0, false
	}
	return t, true
}

// RotateY rotates v around the Y axis by angle radians (right handed).
func RotateY(v r3.Vec, angle float64) r3.Vec {
	if angle == 0 {
		return v
	}
	sin, cos := math.Sincos(angle)
	return r3.Vec{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}
