package mesh

// Material is the handle a renderer uses to shade a mesh. Overlays flip
// Opacity and Transparent at runtime, so meshes share materials by pointer.
type Material struct {
	Name        string
	Color       string
	Opacity     float64
	Transparent bool
}

func NewMaterial(name, color string) *Material {
	return &Material{Name: name, Color: color, Opacity: 1}
}

// Mesh pairs geometry with a material.
type Mesh struct {
	Geometry      *Geometry
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
}

func New(geometry *Geometry, material *Material) *Mesh {
	return &Mesh{Geometry: geometry, Material: material}
}

// EnableShadows marks the mesh as both casting and receiving shadows.
func (m *Mesh) EnableShadows() {
	m.CastShadow = true
	m.ReceiveShadow = true
}
