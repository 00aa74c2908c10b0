package snowfall

import (
	"errors"
	"time"
)

// Params tunes the snowfall. Distances are in scene units and are expressed
// in the field's local frame unless noted otherwise.
type Params struct {
	Count       int
	SpawnRadius float64
	GroundLevel float64
	FallAmount  float64
	Jitter      float64
	PointSize   float64

	// FieldOffset is the height of the field origin in the frame rays are cast
	// in. Rays start at (x, y+FieldOffset, z) and head for (x, RayFloor, z).
	FieldOffset        float64
	RayFloor           float64
	OcclusionThreshold float64
	Workers            int

	ShakeRepeat   int
	ShakeInterval time.Duration
	AllowOverlap  bool
}

func DefaultParams() Params {
	return Params{
		Count:              1000,
		SpawnRadius:        450,
		GroundLevel:        -200,
		FallAmount:         3,
		Jitter:             1.5,
		PointSize:          4,
		FieldOffset:        200,
		RayFloor:           -300,
		OcclusionThreshold: 2,
		Workers:            4,
		ShakeRepeat:        50,
		ShakeInterval:      50 * time.Millisecond,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Count <= 0:
		return errors.New("snowfall count must be positive")
	case p.SpawnRadius <= 0:
		return errors.New("snowfall spawn radius must be positive")
	case p.FallAmount < 0:
		return errors.New("snowfall fall amount cannot be negative")
	case p.Jitter < 0:
		return errors.New("snowfall jitter cannot be negative")
	case p.OcclusionThreshold < 0:
		return errors.New("snowfall occlusion threshold cannot be negative")
	case p.Workers < 0:
		return errors.New("snowfall workers cannot be negative")
	case p.ShakeRepeat < 0:
		return errors.New("snowfall shake repeat cannot be negative")
	case p.ShakeInterval < 0:
		return errors.New("snowfall shake interval cannot be negative")
	}
	return nil
}
