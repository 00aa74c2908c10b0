package scene

import "gonum.org/v1/gonum/spatial/r3"

type LightKind string

const (
	LightAmbient     LightKind = "ambient"
	LightHemisphere  LightKind = "hemisphere"
	LightDirectional LightKind = "directional"
)

// Light describes a light source. GroundColor is only used by hemisphere
// lights and Position only by directional lights.
type Light struct {
	Kind        LightKind
	Color       string
	GroundColor string
	Intensity   float64
	Position    r3.Vec
	CastShadow  bool
}

// Scene is the root of the graph handed to a renderer.
type Scene struct {
	Root   *Node
	Lights []*Light
}

func New() *Scene {
	return &Scene{Root: NewNode("scene")}
}

func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

func (s *Scene) AddLight(lights ...*Light) {
	s.Lights = append(s.Lights, lights...)
}
