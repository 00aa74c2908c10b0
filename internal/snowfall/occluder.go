package snowfall

import (
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/geom"
	"snowglobe/internal/scene"
)

// Occluder answers whether geometry lies along a ray.
type Occluder interface {
	Intersect(ray geom.Ray) ([]scene.Hit, error)
}

// NodeOccluder raycasts against a scene subtree. Rays handed to it are in the
// local frame of Space (the world when Space is nil) and are converted before
// testing, so a spinning scene does not shift the snow relative to the trees.
type NodeOccluder struct {
	Target *scene.Node
	Space  *scene.Node
}

func (o NodeOccluder) Intersect(ray geom.Ray) ([]scene.Hit, error) {
	if o.Target == nil {
		return nil, nil
	}
	if o.Space != nil {
		frame := o.Space.World()
		ray.Origin = frame.Apply(ray.Origin)
		ray.Direction = geom.RotateY(ray.Direction, frame.RotationY)
	}
	return scene.NewRaycaster(ray).IntersectObject(o.Target, true)
}

// OccluderFunc adapts a function to Occluder.
type OccluderFunc func(ray geom.Ray) ([]scene.Hit, error)

func (f OccluderFunc) Intersect(ray geom.Ray) ([]scene.Hit, error) {
	return f(ray)
}

func downRay(x, y, z, floor float64) geom.Ray {
	return geom.NewRayTowards(r3.Vec{X: x, Y: y, Z: z}, r3.Vec{X: x, Y: floor, Z: z})
}
