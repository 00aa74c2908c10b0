package snowfall

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/scene"
)

// SampleSphere draws a point inside a solid sphere of the given radius. The
// radius is scaled by the cube root of a uniform draw so density is even
// through the volume instead of bunching at the centre.
func SampleSphere(rng *rand.Rand, radius float64) r3.Vec {
	var dir r3.Vec
	for {
		dir = r3.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5, Z: rng.Float64() - 0.5}
		if n := r3.Norm(dir); n > 1e-12 {
			dir = r3.Scale(1/n, dir)
			break
		}
	}
	return r3.Scale(math.Cbrt(rng.Float64())*radius, dir)
}

// NewField seeds the particle buffers. Every flake starts on the ground at a
// random spot under the spawn sphere and carries a random colour.
func NewField(rng *rand.Rand, p Params) (*scene.Points, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	positions := make([]float32, p.Count*3)
	colors := make([]float32, p.Count*3)
	for i := 0; i < p.Count; i++ {
		pt := SampleSphere(rng, p.SpawnRadius)
		positions[i*3] = float32(pt.X)
		positions[i*3+1] = float32(p.GroundLevel)
		positions[i*3+2] = float32(pt.Z)
		for c := 0; c < 3; c++ {
			colors[i*3+c] = rng.Float32()
		}
	}
	return scene.NewPoints(positions, colors, p.PointSize)
}
