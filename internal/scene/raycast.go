package scene

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/geom"
)

// Hit is a single ray/mesh intersection in world space.
type Hit struct {
	Distance float64
	Point    r3.Vec
	Node     *Node
	Face     int
}

// Raycaster tests a world space ray against mesh geometry.
type Raycaster struct {
	Ray geom.Ray
}

func NewRaycaster(ray geom.Ray) *Raycaster {
	return &Raycaster{Ray: ray}
}

// Set points the caster from origin towards target.
func (rc *Raycaster) Set(origin, target r3.Vec) {
	rc.Ray = geom.NewRayTowards(origin, target)
}

// IntersectObject returns every hit against node (and its descendants when
// recursive) sorted by distance. Invisible nodes are skipped along with their
// children. Malformed geometry is reported as an error rather than ignored.
func (rc *Raycaster) IntersectObject(node *Node, recursive bool) ([]Hit, error) {
	if node == nil {
		return nil, nil
	}
	var (
		hits []Hit
		err  error
	)
	node.Traverse(func(n *Node, world Transform) bool {
		if err != nil || !n.Visible {
			return false
		}
		if n.Mesh != nil && n.Mesh.Geometry != nil {
			var found []Hit
			found, err = rc.intersectMesh(n, world)
			if err != nil {
				return false
			}
			hits = append(hits, found...)
		}
		return recursive
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits, nil
}

func (rc *Raycaster) intersectMesh(n *Node, world Transform) ([]Hit, error) {
	g := n.Mesh.Geometry
	// Rotation and translation preserve length, so local distances equal
	// world distances.
	local := rc.Ray
	local.Origin = world.ApplyInverse(rc.Ray.Origin)
	local.Direction = geom.RotateY(rc.Ray.Direction, -world.RotationY)

	if _, ok := g.BoundingBox().IntersectRay(local); !ok {
		return nil, nil
	}

	var hits []Hit
	for i := range g.Faces {
		a, b, c, err := g.Triangle(i)
		if err != nil {
			return nil, fmt.Errorf("raycast %s: %w", n.Name, err)
		}
		dist, ok := geom.IntersectTriangle(local, a, b, c)
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			Distance: dist,
			Point:    rc.Ray.At(dist),
			Node:     n,
			Face:     i,
		})
	}
	return hits, nil
}

// NewRayDown returns a ray from origin straight down with no far limit.
func NewRayDown(origin r3.Vec) geom.Ray {
	return geom.Ray{Origin: origin, Direction: r3.Vec{Y: -1}}
}
