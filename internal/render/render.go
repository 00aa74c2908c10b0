package render

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/geom"
	"snowglobe/internal/scene"
)

const (
	background   = "#081620"
	minPointSize = 0.75
)

type primitiveKind int

const (
	primitiveTriangle primitiveKind = iota
	primitivePoint
)

type primitive struct {
	kind   primitiveKind
	depth  float64
	xs, ys [3]float64
	radius float64
	color  gg.RGBA
}

// Renderer draws a software preview of a scene: flat shaded triangles and
// round points sorted back to front.
type Renderer struct {
	Width  int
	Height int
	Camera Camera
}

func New(width, height int, cam Camera) *Renderer {
	return &Renderer{Width: width, Height: height, Camera: cam}
}

// Render writes the scene as PNG. Labels are drawn over the geometry.
func (r *Renderer) Render(w io.Writer, sc *scene.Scene, labels ...Label) error {
	dc, err := r.draw(sc, labels)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// SavePNG renders the scene into a PNG file.
func (r *Renderer) SavePNG(path string, sc *scene.Scene, labels ...Label) error {
	dc, err := r.draw(sc, labels)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}
	return nil
}

func (r *Renderer) draw(sc *scene.Scene, labels []Label) (*gg.Context, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", r.Width, r.Height)
	}
	if sc == nil || sc.Root == nil {
		return nil, fmt.Errorf("scene is nil")
	}

	proj := newProjector(r.Camera, r.Width, r.Height)
	light := newLighting(sc.Lights)
	prims, err := collect(sc.Root, proj, light)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(prims, func(i, j int) bool {
		return prims[i].depth > prims[j].depth
	})

	dc := gg.NewContext(r.Width, r.Height)
	dc.ClearWithColor(gg.Hex(background))
	for _, p := range prims {
		dc.SetRGBA(p.color.R, p.color.G, p.color.B, p.color.A)
		switch p.kind {
		case primitiveTriangle:
			dc.MoveTo(p.xs[0], p.ys[0])
			dc.LineTo(p.xs[1], p.ys[1])
			dc.LineTo(p.xs[2], p.ys[2])
			dc.ClosePath()
		case primitivePoint:
			dc.DrawCircle(p.xs[0], p.ys[0], p.radius)
		}
		if err := dc.Fill(); err != nil {
			_ = dc.Close()
			return nil, fmt.Errorf("fill primitive: %w", err)
		}
	}
	if err := drawLabels(dc, proj, labels); err != nil {
		_ = dc.Close()
		return nil, err
	}
	return dc, nil
}

func collect(root *scene.Node, proj projector, light lighting) ([]primitive, error) {
	var (
		prims []primitive
		err   error
	)
	root.Traverse(func(node *scene.Node, world scene.Transform) bool {
		if err != nil || !node.Visible {
			return false
		}
		if node.Mesh != nil && node.Mesh.Geometry != nil {
			prims, err = appendMesh(prims, node, world, proj, light)
		}
		if node.Points != nil {
			prims = appendPoints(prims, node.Points, world, proj)
		}
		return err == nil
	})
	return prims, err
}

func appendMesh(prims []primitive, node *scene.Node, world scene.Transform, proj projector, light lighting) ([]primitive, error) {
	g := node.Mesh.Geometry
	base := gg.Hex("#ffffff")
	opacity := 1.0
	if m := node.Mesh.Material; m != nil {
		base = gg.Hex(m.Color)
		if m.Transparent {
			opacity = m.Opacity
		}
	}
	if opacity <= 0 {
		return prims, nil
	}
	normals := g.FaceNormals()
	for i := range g.Faces {
		a, b, c, err := g.Triangle(i)
		if err != nil {
			return prims, fmt.Errorf("render %s: %w", node.Name, err)
		}
		n := normals[i]
		if r3.Norm(n) == 0 {
			continue
		}
		a, b, c = world.Apply(a), world.Apply(b), world.Apply(c)

		var prim primitive
		visible := true
		for k, v := range [3]r3.Vec{a, b, c} {
			x, y, depth, ok := proj.project(v)
			if !ok {
				visible = false
				break
			}
			prim.xs[k], prim.ys[k] = x, y
			prim.depth += depth / 3
		}
		if !visible {
			continue
		}

		n = geom.RotateY(n, world.RotationY)
		centroid := r3.Scale(1.0/3, r3.Add(a, r3.Add(b, c)))
		if r3.Dot(n, r3.Sub(proj.eye, centroid)) < 0 {
			n = r3.Scale(-1, n)
		}
		prim.kind = primitiveTriangle
		prim.color = light.shade(base, n)
		prim.color.A = opacity
		prims = append(prims, prim)
	}
	return prims, nil
}

// appendPoints uploads the point buffer into the frame, clearing its dirty
// flag.
func appendPoints(prims []primitive, points *scene.Points, world scene.Transform, proj projector) []primitive {
	size := points.Size()
	points.ConsumeUpdate()
	points.Read(func(positions, colors []float32) {
		for i := 0; i+2 < len(positions); i += 3 {
			v := world.Apply(r3.Vec{X: float64(positions[i]), Y: float64(positions[i+1]), Z: float64(positions[i+2])})
			x, y, depth, ok := proj.project(v)
			if !ok {
				continue
			}
			col := gg.RGB(1, 1, 1)
			if len(colors) >= i+3 {
				col = gg.RGB(float64(colors[i]), float64(colors[i+1]), float64(colors[i+2]))
			}
			prims = append(prims, primitive{
				kind:   primitivePoint,
				depth:  depth,
				xs:     [3]float64{x},
				ys:     [3]float64{y},
				radius: math.Max(minPointSize, size*proj.focal/depth/2),
				color:  col,
			})
		}
	})
	return prims
}
