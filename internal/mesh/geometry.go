package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/geom"
)

// Face indexes three vertices of a Geometry.
type Face [3]int

// Geometry is an indexed triangle soup.
type Geometry struct {
	Positions []r3.Vec
	Faces     []Face

	// Bounds caches the result of ComputeBoundingBox. Mutating methods clear it.
	Bounds *geom.Box
}

// Cylinder builds a capped frustum centred on the origin along the Y axis.
// radiusTop applies at +height/2 and radiusBottom at -height/2; a zero radius
// collapses that end to an apex and skips its cap.
func Cylinder(radiusTop, radiusBottom, height float64, radialSegments int) *Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	half := height / 2
	g := &Geometry{
		Positions: make([]r3.Vec, 0, radialSegments*2+2),
		Faces:     make([]Face, 0, radialSegments*4),
	}

	ring := func(radius, y float64) int {
		start := len(g.Positions)
		for i := 0; i < radialSegments; i++ {
			theta := float64(i) / float64(radialSegments) * 2 * math.Pi
			sin, cos := math.Sincos(theta)
			g.Positions = append(g.Positions, r3.Vec{X: radius * sin, Y: y, Z: radius * cos})
		}
		return start
	}

	top := ring(radiusTop, half)
	bottom := ring(radiusBottom, -half)
	for i := 0; i < radialSegments; i++ {
		next := (i + 1) % radialSegments
		a, b := top+i, bottom+i
		c, d := bottom+next, top+next
		if radiusTop > 0 {
			g.Faces = append(g.Faces, Face{a, b, d})
		}
		if radiusBottom > 0 {
			g.Faces = append(g.Faces, Face{b, c, d})
		}
	}

	addCap := func(ringStart int, y float64, reverse bool) {
		center := len(g.Positions)
		g.Positions = append(g.Positions, r3.Vec{Y: y})
		for i := 0; i < radialSegments; i++ {
			next := (i + 1) % radialSegments
			if reverse {
				g.Faces = append(g.Faces, Face{ringStart + next, center, ringStart + i})
			} else {
				g.Faces = append(g.Faces, Face{ringStart + i, center, ringStart + next})
			}
		}
	}
	if radiusTop > 0 {
		addCap(top, half, false)
	}
	if radiusBottom > 0 {
		addCap(bottom, -half, true)
	}
	return g
}

// Translate shifts every vertex in place and returns g for chaining.
func (g *Geometry) Translate(dx, dy, dz float64) *Geometry {
	offset := r3.Vec{X: dx, Y: dy, Z: dz}
	for i := range g.Positions {
		g.Positions[i] = r3.Add(g.Positions[i], offset)
	}
	g.Bounds = nil
	return g
}

// Merge appends other's vertices and faces, re-indexing the faces.
func (g *Geometry) Merge(other *Geometry) {
	if other == nil {
		return
	}
	g.Bounds = nil
	base := len(g.Positions)
	g.Positions = append(g.Positions, other.Positions...)
	for _, f := range other.Faces {
		g.Faces = append(g.Faces, Face{f[0] + base, f[1] + base, f[2] + base})
	}
}

// ComputeBoundingBox refreshes the cached Bounds.
func (g *Geometry) ComputeBoundingBox() geom.Box {
	box := g.BoundingBox()
	g.Bounds = &box
	return box
}

// BoundingBox returns the cached bounds when present, otherwise it scans the
// vertices.
func (g *Geometry) BoundingBox() geom.Box {
	if g.Bounds != nil {
		return *g.Bounds
	}
	box := geom.EmptyBox()
	for _, p := range g.Positions {
		box = box.Expand(p)
	}
	return box
}

// Triangle resolves the vertices of face i.
func (g *Geometry) Triangle(i int) (r3.Vec, r3.Vec, r3.Vec, error) {
	if i < 0 || i >= len(g.Faces) {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}, fmt.Errorf("face %d out of range (%d faces)", i, len(g.Faces))
	}
	f := g.Faces[i]
	for _, idx := range f {
		if idx < 0 || idx >= len(g.Positions) {
			return r3.Vec{}, r3.Vec{}, r3.Vec{}, fmt.Errorf("face %d references vertex %d of %d", i, idx, len(g.Positions))
		}
	}
	return g.Positions[f[0]], g.Positions[f[1]], g.Positions[f[2]], nil
}

// FaceNormals returns one unit normal per face. Degenerate faces get a zero
// normal.
func (g *Geometry) FaceNormals() []r3.Vec {
	normals := make([]r3.Vec, len(g.Faces))
	for i := range g.Faces {
		a, b, c, err := g.Triangle(i)
		if err != nil {
			continue
		}
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if l := r3.Norm(n); l > 0 {
			normals[i] = r3.Scale(1/l, n)
		}
	}
	return normals
}
