package render

import (
	"bytes"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/mesh"
	"snowglobe/internal/scene"
)

func TestProjectCentresTarget(t *testing.T) {
	proj := newProjector(DefaultCamera(), 200, 100)
	x, y, depth, ok := proj.project(r3.Vec{})
	require.True(t, ok)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
	assert.InDelta(t, r3.Norm(DefaultCamera().Position), depth, 1e-9)

	_, _, _, ok = proj.project(r3.Vec{X: 2000, Y: 800, Z: 800})
	assert.False(t, ok, "points behind the camera are dropped")
}

func TestProjectKeepsUpUp(t *testing.T) {
	proj := newProjector(DefaultCamera(), 200, 100)
	_, yLow, _, ok := proj.project(r3.Vec{})
	require.True(t, ok)
	_, yHigh, _, ok := proj.project(r3.Vec{Y: 100})
	require.True(t, ok)
	assert.Less(t, yHigh, yLow)
}

func TestShadeClampsAndUsesDirectionalLight(t *testing.T) {
	l := newLighting([]*scene.Light{
		{Kind: scene.LightAmbient, Color: "#ffffff", Intensity: 0.2},
		{Kind: scene.LightDirectional, Color: "#ffffff", Intensity: 0.5, Position: r3.Vec{Y: 10}},
	})
	base := gg.RGB(0.5, 0.5, 0.5)
	lit := l.shade(base, r3.Vec{Y: 1})
	unlit := l.shade(base, r3.Vec{Y: -1})
	assert.Greater(t, lit.R, unlit.R)
	assert.InDelta(t, 0.5*0.7, lit.R, 1e-9)
	assert.InDelta(t, 0.5*0.2, unlit.R, 1e-9)

	bright := newLighting([]*scene.Light{{Kind: scene.LightAmbient, Color: "#ffffff", Intensity: 5}})
	assert.Equal(t, 1.0, bright.shade(base, r3.Vec{Y: 1}).G)
}

func TestRenderDrawsMeshesAndPoints(t *testing.T) {
	sc := scene.New()
	sc.AddLight(&scene.Light{Kind: scene.LightAmbient, Color: "#ffffff", Intensity: 1})

	box := mesh.New(mesh.Cylinder(150, 150, 150, 12), mesh.NewMaterial("box", "#ff0000"))
	sc.Add(scene.NewMeshNode("box", box))

	points, err := scene.NewPoints([]float32{0, 300, 0}, []float32{0, 1, 0}, 4)
	require.NoError(t, err)
	sc.Add(scene.NewPointsNode("snow", points))

	r := New(80, 60, DefaultCamera())
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sc))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 80, img.Bounds().Dx())
	require.Equal(t, 60, img.Bounds().Dy())

	red, _, _, _ := img.At(40, 30).RGBA()
	assert.Greater(t, red, uint32(0x8000), "the mesh covers the centre of the frame")

	corner, _, _, _ := img.At(0, 0).RGBA()
	assert.Less(t, corner, uint32(0x2000), "corners keep the background")
}

func TestRenderSkipsHiddenAndTransparentNodes(t *testing.T) {
	sc := scene.New()
	hidden := scene.NewMeshNode("hidden", mesh.New(mesh.Cylinder(150, 150, 150, 12), mesh.NewMaterial("hidden", "#ff0000")))
	hidden.Visible = false
	clear := mesh.NewMaterial("clear", "#00ff00")
	clear.Opacity = 0
	clear.Transparent = true
	sc.Add(hidden, scene.NewMeshNode("clear", mesh.New(mesh.Cylinder(150, 150, 150, 12), clear)))

	prims, err := collect(sc.Root, newProjector(DefaultCamera(), 80, 60), newLighting(nil))
	require.NoError(t, err)
	assert.Empty(t, prims)
}

func TestRenderSortsBackToFront(t *testing.T) {
	sc := scene.New()
	points, err := scene.NewPoints([]float32{0, 0, 0, 450, 200, 200, -450, -200, -200}, nil, 4)
	require.NoError(t, err)
	sc.Add(scene.NewPointsNode("snow", points))

	prims, err := collect(sc.Root, newProjector(DefaultCamera(), 80, 60), newLighting(nil))
	require.NoError(t, err)
	require.Len(t, prims, 3)
	for _, p := range prims {
		assert.False(t, math.IsNaN(p.depth))
	}
}

func TestRenderPropagatesBrokenGeometry(t *testing.T) {
	sc := scene.New()
	broken := &mesh.Geometry{Positions: []r3.Vec{{}, {X: 1}}, Faces: []mesh.Face{{0, 1, 2}}}
	sc.Add(scene.NewMeshNode("broken", mesh.New(broken, mesh.NewMaterial("broken", "#ffffff"))))

	var buf bytes.Buffer
	err := New(40, 30, DefaultCamera()).Render(&buf, sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render broken")
}

func TestRenderRejectsInvalidSize(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New(0, 10, DefaultCamera()).Render(&buf, scene.New()))
	assert.Error(t, New(10, 10, DefaultCamera()).Render(&buf, nil))
}

func TestSavePNGWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, New(32, 24, DefaultCamera()).SavePNG(path, scene.New()))
	assert.FileExists(t, path)
}

func maroonPixels(t *testing.T, buf *bytes.Buffer) int {
	t.Helper()
	img, err := png.Decode(buf)
	require.NoError(t, err)
	count := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, _, _ := img.At(x, y).RGBA()
			if r > 0x4000 && g < 0x2000 {
				count++
			}
		}
	}
	return count
}

func TestRenderDrawsLabelsOnlyWhenVisible(t *testing.T) {
	greetingMaterial := mesh.NewMaterial("text", "#800000")
	greetingMaterial.Opacity = 0
	greetingMaterial.Transparent = true
	label := Label{Text: "Bon any 2022", Size: 300, Material: greetingMaterial}

	r := New(200, 120, DefaultCamera())
	var hidden bytes.Buffer
	require.NoError(t, r.Render(&hidden, scene.New(), label))
	assert.Zero(t, maroonPixels(t, &hidden))

	greetingMaterial.Opacity = 1
	greetingMaterial.Transparent = false
	var shown bytes.Buffer
	require.NoError(t, r.Render(&shown, scene.New(), label))
	assert.Greater(t, maroonPixels(t, &shown), 50)
}

func TestRenderSkipsTinyAndOffscreenLabels(t *testing.T) {
	material := mesh.NewMaterial("hint", "#800000")
	labels := []Label{
		{Text: "far", Size: 0.01, Material: material},
		{Text: "behind", Size: 300, Position: r3.Vec{X: 2000, Y: 800, Z: 800}, Material: material},
		{Text: "", Size: 300, Material: material},
		{Text: "bare", Size: 300},
	}
	var buf bytes.Buffer
	require.NoError(t, New(200, 120, DefaultCamera()).Render(&buf, scene.New(), labels...))
	assert.Zero(t, maroonPixels(t, &buf))
}

func TestRenderConsumesPointUpdates(t *testing.T) {
	points, err := scene.NewPoints([]float32{0, 0, 0}, nil, 4)
	require.NoError(t, err)
	points.Write(func(pos []float32) bool {
		pos[1] = 10
		return true
	})
	require.True(t, points.NeedsUpdate())

	sc := scene.New()
	sc.Add(scene.NewPointsNode("snow", points))
	var buf bytes.Buffer
	require.NoError(t, New(40, 30, DefaultCamera()).Render(&buf, sc))
	assert.False(t, points.NeedsUpdate())
}
