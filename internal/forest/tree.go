package forest

import (
	"errors"
	"fmt"
	"math"

	"snowglobe/internal/mesh"
	"snowglobe/internal/scene"
)

const (
	DefaultTiers          = 3
	DefaultRadialSegments = 160

	canopyShare = 0.8
	trunkShare  = 0.2
)

var ErrInvalidTreeParameters = errors.New("invalid tree parameters")

// TreeMaterials are the render handles applied to the two parts of a tree.
type TreeMaterials struct {
	Canopy *mesh.Material
	Trunk  *mesh.Material
}

// TreeParameters describe one tree.
type TreeParameters struct {
	CanopyWidth float64
	TreeHeight  float64
	Tiers       int
}

func (p TreeParameters) Validate() error {
	switch {
	case !finitePositive(p.CanopyWidth):
		return fmt.Errorf("%w: canopy width %v must be positive", ErrInvalidTreeParameters, p.CanopyWidth)
	case !finitePositive(p.TreeHeight):
		return fmt.Errorf("%w: tree height %v must be positive", ErrInvalidTreeParameters, p.TreeHeight)
	case p.Tiers < 1:
		return fmt.Errorf("%w: tier count %d must be at least 1", ErrInvalidTreeParameters, p.Tiers)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Tier is one stacked frustum of the canopy. SkirtRadius is the wide lower
// rim and CrownRadius the narrow upper rim; the first tier's crown is zero so
// the tree ends in a point.
type Tier struct {
	Index       int
	SkirtRadius float64
	CrownRadius float64
	Offset      float64
}

// Layout holds every derived dimension of a tree.
type Layout struct {
	CanopyHeight  float64
	TrunkHeight   float64
	TrunkRadius   float64
	SegmentHeight float64
	RadiusRatio   float64
	CanopyOffset  float64
	Tiers         []Tier
}

// Plan computes the tree layout without building any geometry.
func Plan(p TreeParameters) (Layout, error) {
	if err := p.Validate(); err != nil {
		return Layout{}, err
	}
	canopy := p.TreeHeight * canopyShare
	trunk := p.TreeHeight * trunkShare
	segment := canopy / float64(p.Tiers)
	ratio := (p.CanopyWidth / 2) / canopy

	tiers := make([]Tier, p.Tiers)
	for i := range tiers {
		skirt := segment * float64(i+1) * ratio
		crown := 0.0
		if i > 0 {
			crown = skirt / float64(p.Tiers+1) * float64(i)
		}
		tiers[i] = Tier{
			Index:       i,
			SkirtRadius: skirt,
			CrownRadius: crown,
			Offset:      -segment * float64(i),
		}
	}

	return Layout{
		CanopyHeight:  canopy,
		TrunkHeight:   trunk,
		TrunkRadius:   p.CanopyWidth / 6,
		SegmentHeight: segment,
		RadiusRatio:   ratio,
		CanopyOffset:  segment*(float64(p.Tiers)-0.5) + trunk,
		Tiers:         tiers,
	}, nil
}

// Builder turns TreeParameters into scene nodes.
type Builder struct {
	Materials      TreeMaterials
	RadialSegments int
}

func NewBuilder(materials TreeMaterials) *Builder {
	return &Builder{Materials: materials, RadialSegments: DefaultRadialSegments}
}

// Build returns a group holding the canopy and trunk meshes. The trunk base
// sits at the group's origin.
func (b *Builder) Build(p TreeParameters) (*scene.Node, error) {
	layout, err := Plan(p)
	if err != nil {
		return nil, err
	}
	segments := b.RadialSegments
	if segments <= 0 {
		segments = DefaultRadialSegments
	}

	canopyGeometry := &mesh.Geometry{}
	for _, tier := range layout.Tiers {
		segment := mesh.Cylinder(tier.CrownRadius, tier.SkirtRadius, layout.SegmentHeight, segments)
		segment.Translate(0, tier.Offset, 0)
		canopyGeometry.Merge(segment)
	}
	canopyGeometry.ComputeBoundingBox()

	canopyMesh := mesh.New(canopyGeometry, b.Materials.Canopy)
	canopyMesh.EnableShadows()
	canopy := scene.NewMeshNode("canopy", canopyMesh)
	canopy.Position.Y = layout.CanopyOffset

	trunkGeometry := mesh.Cylinder(layout.TrunkRadius, layout.TrunkRadius, layout.TrunkHeight, segments)
	trunkGeometry.ComputeBoundingBox()
	trunkMesh := mesh.New(trunkGeometry, b.Materials.Trunk)
	trunkMesh.EnableShadows()
	trunk := scene.NewMeshNode("trunk", trunkMesh)
	trunk.Position.Y = layout.TrunkHeight / 2

	tree := scene.NewNode("tree")
	tree.Add(canopy, trunk)
	return tree, nil
}

// BuildTree builds a single tree with the default radial resolution.
func BuildTree(materials TreeMaterials, width, height float64, tiers int) (*scene.Node, error) {
	return NewBuilder(materials).Build(TreeParameters{CanopyWidth: width, TreeHeight: height, Tiers: tiers})
}
