package forest

import (
	"fmt"
	"math"
	"math/rand"

	"snowglobe/internal/scene"
)

// PlantConfig controls how a forest is scattered over the ground.
type PlantConfig struct {
	Count          int
	GridSize       float64
	Margin         float64
	MinHeight      int
	MaxHeight      int
	MinSlimness    int
	MaxSlimness    int
	MinTiers       int
	MaxTiers       int
	RadialSegments int
}

func DefaultPlantConfig() PlantConfig {
	return PlantConfig{
		Count:          30,
		GridSize:       300,
		Margin:         10,
		MinHeight:      50,
		MaxHeight:      200,
		MinSlimness:    2,
		MaxSlimness:    4,
		MinTiers:       2,
		MaxTiers:       6,
		RadialSegments: DefaultRadialSegments,
	}
}

// Plant scatters cfg.Count random trees across a square of half-width
// GridSize-Margin centred on the origin. Trees are grouped under a single
// "trees" node.
func Plant(rng *rand.Rand, cfg PlantConfig, materials TreeMaterials) (*scene.Node, error) {
	builder := NewBuilder(materials)
	builder.RadialSegments = cfg.RadialSegments
	half := cfg.GridSize - cfg.Margin

	trees := scene.NewNode("trees")
	for i := 0; i < cfg.Count; i++ {
		height := randInt(rng, float64(cfg.MinHeight), float64(cfg.MaxHeight))
		slimness := randInt(rng, float64(cfg.MinSlimness), float64(cfg.MaxSlimness))
		tiers := randInt(rng, float64(cfg.MinTiers), float64(cfg.MaxTiers))
		tree, err := builder.Build(TreeParameters{
			CanopyWidth: height / slimness,
			TreeHeight:  height,
			Tiers:       int(tiers),
		})
		if err != nil {
			return nil, fmt.Errorf("plant tree %d: %w", i, err)
		}
		tree.Position.X = randInt(rng, -half, half)
		tree.Position.Z = randInt(rng, -half, half)
		trees.Add(tree)
	}
	return trees, nil
}

// randInt draws a uniform value in [min, max] rounded to the nearest integer.
func randInt(rng *rand.Rand, min, max float64) float64 {
	return math.Round(rng.Float64()*(max-min) + min)
}
