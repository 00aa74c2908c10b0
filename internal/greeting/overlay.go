package greeting

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/mesh"
	"snowglobe/internal/snowfall"
)

// Label is a line of text floating over the scene. The text mesh itself is
// the renderer's business; the overlay only owns placement and visibility.
type Label struct {
	Role     string
	Text     string
	Position r3.Vec
	Yaw      float64
	Material *mesh.Material
}

func (l *Label) Visible() bool {
	return l.Material.Opacity > 0
}

func (l *Label) show() {
	l.Material.Opacity = 1
	l.Material.Transparent = false
}

func (l *Label) hide() {
	l.Material.Opacity = 0
	l.Material.Transparent = true
}

// Overlay holds the hint shown before the first shake and the greeting and
// name revealed by it.
type Overlay struct {
	mu       sync.RWMutex
	distance float64
	hint     *Label
	text     *Label
	name     *Label
	revealed bool
}

const nameDrop = 50

// TextSize is the glyph height of every label in scene units.
const TextSize = 40

// NewOverlay lays the labels out above a scene whose snow field hangs at
// distance.
func NewOverlay(p Params, distance float64) *Overlay {
	o := &Overlay{distance: distance}
	o.hint = &Label{Role: "hint", Position: r3.Vec{Y: distance * 1.5}, Material: mesh.NewMaterial("hint", "#ffffff")}
	o.text = &Label{Role: "text", Position: r3.Vec{Y: distance * 1.8}, Material: mesh.NewMaterial("text", "#800000")}
	o.name = &Label{Role: "name", Position: r3.Vec{Y: distance*1.5 - nameDrop}, Material: mesh.NewMaterial("name", "#800000")}
	o.text.hide()
	o.name.hide()
	o.setParams(p)
	return o
}

func (o *Overlay) setParams(p Params) {
	p = p.Normalized()
	o.hint.Text = p.Hint()
	o.text.Text = p.Text()
	o.name.Text = p.Name
}

// Relabel swaps the wording without touching visibility.
func (o *Overlay) Relabel(p Params) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setParams(p)
}

// Reveal shows the greeting and name and hides the hint.
func (o *Overlay) Reveal() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.text.show()
	o.name.show()
	o.hint.hide()
	o.revealed = true
}

func (o *Overlay) Revealed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.revealed
}

// OnSnowfallEvent reveals the greeting whenever the snow is shaken up.
func (o *Overlay) OnSnowfallEvent(ev snowfall.Event) {
	if ev.Kind == snowfall.EventReshuffled {
		o.Reveal()
	}
}

// Face turns every label towards the camera.
func (o *Overlay) Face(camera r3.Vec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, l := range []*Label{o.hint, o.text, o.name} {
		l.Yaw = math.Atan2(camera.X-l.Position.X, camera.Z-l.Position.Z)
	}
}

// Labels returns copies of the labels in drawing order.
func (o *Overlay) Labels() []Label {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Label, 0, 3)
	for _, l := range []*Label{o.hint, o.text, o.name} {
		c := *l
		m := *l.Material
		c.Material = &m
		out = append(out, c)
	}
	return out
}
