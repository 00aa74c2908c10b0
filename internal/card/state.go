package card

import (
	"snowglobe/internal/greeting"
	"snowglobe/internal/scene"
)

// State is a point in time summary of the card.
type State struct {
	Seed      int64        `json:"seed"`
	Frames    uint64       `json:"frames"`
	RotationY float64      `json:"rotation_y"`
	Trees     int          `json:"trees"`
	Flakes    int          `json:"flakes"`
	SnowDirty bool         `json:"snow_dirty"`
	Moved     int          `json:"moved"`
	Frozen    int          `json:"frozen"`
	Grounded  int          `json:"grounded"`
	Revealed  bool         `json:"revealed"`
	Burst     *BurstState  `json:"burst,omitempty"`
	Labels    []LabelState `json:"labels"`
	Bounds    *BoundsState `json:"snow_bounds,omitempty"`
}

type BurstState struct {
	ID     uint64 `json:"id"`
	Repeat int    `json:"repeat"`
	Fired  int    `json:"fired"`
}

type LabelState struct {
	Role    string  `json:"role"`
	Text    string  `json:"text"`
	Visible bool    `json:"visible"`
	Yaw     float64 `json:"yaw"`
}

type BoundsState struct {
	Min    [3]float64 `json:"min"`
	Max    [3]float64 `json:"max"`
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
}

// Flakes is a copy of the particle buffers, laid out as xyz triples.
type Flakes struct {
	Count     int       `json:"count" msgpack:"count"`
	Size      float64   `json:"size" msgpack:"size"`
	Offset    float64   `json:"offset" msgpack:"offset"`
	Positions []float32 `json:"positions" msgpack:"positions"`
	Colors    []float32 `json:"colors" msgpack:"colors"`
}

func (c *Card) State() State {
	c.mu.RLock()
	st := State{
		Seed:      c.seed,
		Frames:    c.frames,
		RotationY: c.scene.Root.RotationY,
		Trees:     len(c.trees.Children()),
		Moved:     c.lastTick.Moved,
		Frozen:    c.lastTick.Frozen,
		Grounded:  c.lastTick.Grounded,
	}
	c.mu.RUnlock()

	points := c.sim.Points()
	st.Flakes = points.Count()
	st.SnowDirty = points.NeedsUpdate()
	if st.Flakes > 0 {
		box := points.BoundingBox()
		sphere := points.BoundingSphere()
		st.Bounds = &BoundsState{
			Min:    [3]float64{box.Min.X, box.Min.Y, box.Min.Z},
			Max:    [3]float64{box.Max.X, box.Max.Y, box.Max.Z},
			Center: [3]float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z},
			Radius: sphere.Radius,
		}
	}

	if b := c.sim.ActiveBurst(); b != nil {
		st.Burst = &BurstState{ID: b.ID, Repeat: b.Repeat, Fired: b.Fired()}
	}

	st.Revealed = c.overlay.Revealed()
	for _, l := range c.overlay.Labels() {
		st.Labels = append(st.Labels, labelState(l))
	}
	return st
}

func labelState(l greeting.Label) LabelState {
	return LabelState{Role: l.Role, Text: l.Text, Visible: l.Visible(), Yaw: l.Yaw}
}

// Flakes copies the particle buffers.
func (c *Card) Flakes() Flakes {
	var out Flakes
	c.View(func(*scene.Scene) {
		out.Offset = c.snow.Position.Y
	})
	points := c.sim.Points()
	out.Size = points.Size()
	points.Read(func(positions, colors []float32) {
		out.Count = len(positions) / 3
		out.Positions = append([]float32(nil), positions...)
		out.Colors = append([]float32(nil), colors...)
	})
	return out
}
