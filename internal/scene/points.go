package scene

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/geom"
)

// Sphere is a bounding sphere.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// Points is a point cloud renderable backed by flat xyz float32 buffers.
// The buffers are shared with whoever simulates them; writers go through
// Write and readers through Read so a renderer on another goroutine never
// observes a half updated frame.
type Points struct {
	mu          sync.RWMutex
	positions   []float32
	colors      []float32
	size        float64
	needsUpdate bool
	bounds      geom.Box
	sphere      Sphere
}

// NewPoints wraps the given buffers. Both must hold xyz triples of equal
// count; colors may be nil.
func NewPoints(positions, colors []float32, size float64) (*Points, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("position buffer length %d is not a multiple of 3", len(positions))
	}
	if colors != nil && len(colors) != len(positions) {
		return nil, fmt.Errorf("color buffer length %d does not match positions %d", len(colors), len(positions))
	}
	p := &Points{positions: positions, colors: colors, size: size}
	p.recompute()
	return p, nil
}

func (p *Points) Count() int {
	return len(p.positions) / 3
}

func (p *Points) Size() float64 {
	return p.size
}

// Read exposes the buffers for the duration of fn. fn must not retain or
// modify them.
func (p *Points) Read(fn func(positions, colors []float32)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.positions, p.colors)
}

// Write hands the position buffer to fn under the write lock. When fn returns
// true the buffer is flagged for upload and the bounds are recomputed.
func (p *Points) Write(fn func(positions []float32) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fn(p.positions) {
		p.needsUpdate = true
		p.recompute()
	}
}

// ConsumeUpdate reports whether the buffer changed since the last call and
// clears the flag.
func (p *Points) ConsumeUpdate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	dirty := p.needsUpdate
	p.needsUpdate = false
	return dirty
}

func (p *Points) NeedsUpdate() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.needsUpdate
}

func (p *Points) BoundingBox() geom.Box {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bounds
}

func (p *Points) BoundingSphere() Sphere {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sphere
}

func (p *Points) recompute() {
	box := geom.EmptyBox()
	for i := 0; i+2 < len(p.positions); i += 3 {
		box = box.Expand(vecAt(p.positions, i/3))
	}
	p.bounds = box
	if box.IsEmpty() {
		p.sphere = Sphere{}
		return
	}
	center := box.Center()
	radius := 0.0
	for i := 0; i+2 < len(p.positions); i += 3 {
		radius = math.Max(radius, r3.Norm(r3.Sub(vecAt(p.positions, i/3), center)))
	}
	p.sphere = Sphere{Center: center, Radius: radius}
}

func vecAt(buf []float32, i int) r3.Vec {
	return r3.Vec{X: float64(buf[i*3]), Y: float64(buf[i*3+1]), Z: float64(buf[i*3+2])}
}
