package render

import (
	"math"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/scene"
)

type directional struct {
	dir   r3.Vec
	color gg.RGBA
}

// lighting folds the scene lights into the terms of a Lambert model.
type lighting struct {
	ambient     gg.RGBA
	sky, ground gg.RGBA
	hemisphere  bool
	directional []directional
}

func newLighting(lights []*scene.Light) lighting {
	var l lighting
	for _, light := range lights {
		if light == nil {
			continue
		}
		col := scaled(gg.Hex(light.Color), light.Intensity)
		switch light.Kind {
		case scene.LightAmbient:
			l.ambient = add(l.ambient, col)
		case scene.LightHemisphere:
			l.hemisphere = true
			l.sky = add(l.sky, col)
			l.ground = add(l.ground, scaled(gg.Hex(light.GroundColor), light.Intensity))
		case scene.LightDirectional:
			if r3.Norm(light.Position) == 0 {
				continue
			}
			l.directional = append(l.directional, directional{dir: r3.Unit(light.Position), color: col})
		}
	}
	if len(lights) == 0 {
		l.ambient = gg.RGB(1, 1, 1)
	}
	return l
}

func (l lighting) shade(base gg.RGBA, normal r3.Vec) gg.RGBA {
	total := l.ambient
	if l.hemisphere {
		w := 0.5*normal.Y + 0.5
		total = add(total, mix(l.ground, l.sky, w))
	}
	for _, d := range l.directional {
		total = add(total, scaled(d.color, math.Max(0, r3.Dot(normal, d.dir))))
	}
	return gg.RGB(
		math.Min(1, base.R*total.R),
		math.Min(1, base.G*total.G),
		math.Min(1, base.B*total.B),
	)
}

func scaled(c gg.RGBA, k float64) gg.RGBA {
	return gg.RGBA{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A}
}

func add(a, b gg.RGBA) gg.RGBA {
	return gg.RGBA{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B, A: 1}
}

func mix(a, b gg.RGBA, t float64) gg.RGBA {
	return gg.RGBA{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}
