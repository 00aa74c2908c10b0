package forest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/mesh"
	"snowglobe/internal/scene"
)

func testMaterials() TreeMaterials {
	return TreeMaterials{
		Canopy: mesh.NewMaterial("cone", "#f1bc5f"),
		Trunk:  mesh.NewMaterial("log", "#4d1e00"),
	}
}

func TestPlanReferenceTree(t *testing.T) {
	layout, err := Plan(TreeParameters{CanopyWidth: 40, TreeHeight: 100, Tiers: 3})
	require.NoError(t, err)

	assert.InDelta(t, 80, layout.CanopyHeight, 1e-9)
	assert.InDelta(t, 20, layout.TrunkHeight, 1e-9)
	assert.InDelta(t, 80.0/3, layout.SegmentHeight, 1e-9)
	assert.InDelta(t, 0.25, layout.RadiusRatio, 1e-9)
	assert.InDelta(t, 40.0/6, layout.TrunkRadius, 1e-9)
	assert.InDelta(t, 80.0/3*2.5+20, layout.CanopyOffset, 1e-9)

	require.Len(t, layout.Tiers, 3)
	want := []float64{80.0 / 3 * 0.25, 80.0 / 3 * 2 * 0.25, 80.0 / 3 * 3 * 0.25}
	for i, tier := range layout.Tiers {
		assert.InDelta(t, want[i], tier.SkirtRadius, 1e-9, "tier %d", i)
		if i > 0 {
			assert.Greater(t, tier.SkirtRadius, layout.Tiers[i-1].SkirtRadius)
		}
	}
	assert.Zero(t, layout.Tiers[0].CrownRadius)
	assert.InDelta(t, want[1]/4, layout.Tiers[1].CrownRadius, 1e-9)
	assert.InDelta(t, want[2]/4*2, layout.Tiers[2].CrownRadius, 1e-9)
}

func TestPlanTierRadiiInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		params := TreeParameters{
			CanopyWidth: 0.1 + rng.Float64()*200,
			TreeHeight:  0.1 + rng.Float64()*400,
			Tiers:       1 + rng.Intn(12),
		}
		layout, err := Plan(params)
		require.NoError(t, err)
		for _, tier := range layout.Tiers {
			assert.GreaterOrEqual(t, tier.CrownRadius, 0.0)
			if tier.Index == 0 {
				assert.Zero(t, tier.CrownRadius)
				continue
			}
			assert.Less(t, tier.CrownRadius, tier.SkirtRadius, "%+v tier %d", params, tier.Index)
		}
	}
}

func TestPlanRejectsInvalidParameters(t *testing.T) {
	cases := []TreeParameters{
		{CanopyWidth: 0, TreeHeight: 10, Tiers: 1},
		{CanopyWidth: 10, TreeHeight: -1, Tiers: 1},
		{CanopyWidth: 10, TreeHeight: 10, Tiers: 0},
		{CanopyWidth: math.NaN(), TreeHeight: 10, Tiers: 1},
		{CanopyWidth: 10, TreeHeight: math.Inf(1), Tiers: 1},
	}
	for _, params := range cases {
		_, err := BuildTree(testMaterials(), params.CanopyWidth, params.TreeHeight, params.Tiers)
		assert.ErrorIs(t, err, ErrInvalidTreeParameters, "%+v", params)
	}
}

func TestBuildTreeProportions(t *testing.T) {
	for tiers := 1; tiers <= 6; tiers++ {
		tree, err := BuildTree(testMaterials(), 30, 120, tiers)
		require.NoError(t, err)

		canopy := tree.Find("canopy")
		trunk := tree.Find("trunk")
		require.NotNil(t, canopy)
		require.NotNil(t, trunk)

		canopyBox := canopy.WorldBounds()
		trunkBox := trunk.WorldBounds()
		assert.InDelta(t, 0.8*120, canopyBox.Size().Y, 1e-6, "tiers=%d", tiers)
		assert.InDelta(t, 0.2*120, trunkBox.Size().Y, 1e-6, "tiers=%d", tiers)
		assert.InDelta(t, 0, trunkBox.Min.Y, 1e-6)
		assert.InDelta(t, trunkBox.Max.Y, canopyBox.Min.Y, 1e-6, "canopy sits on the trunk")
		assert.InDelta(t, 120, canopyBox.Max.Y, 1e-6)
		assert.InDelta(t, 30.0/6*2, trunkBox.Size().X, 1e-6)

		for _, node := range []*scene.Node{canopy, trunk} {
			assert.True(t, node.Mesh.CastShadow)
			assert.True(t, node.Mesh.ReceiveShadow)
		}
	}
}

func TestBuildTreeUsesMaterials(t *testing.T) {
	materials := testMaterials()
	tree, err := BuildTree(materials, 40, 100, DefaultTiers)
	require.NoError(t, err)
	assert.Same(t, materials.Canopy, tree.Find("canopy").Mesh.Material)
	assert.Same(t, materials.Trunk, tree.Find("trunk").Mesh.Material)
}

func TestBuiltTreeIsHitFromAbove(t *testing.T) {
	tree, err := BuildTree(testMaterials(), 40, 100, DefaultTiers)
	require.NoError(t, err)
	tree.Position = r3.Vec{X: 50, Z: -20}

	rc := scene.NewRaycaster(scene.NewRayDown(r3.Vec{X: 50.05, Y: 150, Z: -20.05}))
	hits, err := rc.IntersectObject(tree, true)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.InDelta(t, 50, hits[0].Distance, 0.5, "first hit is the tree tip")
}
