package snowfall

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"snowglobe/internal/scene"
)

// occlusionSlack absorbs rounding in ray distances so a surface exactly
// OcclusionThreshold below a particle still catches it.
const occlusionSlack = 1e-6

// TickStats summarises one Tick.
type TickStats struct {
	Moved    int
	Frozen   int
	Grounded int
}

// Simulator advances a snow field one frame at a time and scatters it again on
// demand. It is the only writer of the field's position buffer.
type Simulator struct {
	params    Params
	points    *scene.Points
	occluders []Occluder

	rngMu sync.Mutex
	rng   *rand.Rand

	mu        sync.Mutex
	observers []Observer
	burst     *Burst
	active    map[uint64]*Burst
	burstSeq  uint64
	closed    bool
}

func NewSimulator(params Params, points *scene.Points, rng *rand.Rand, occluders ...Occluder) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if points == nil {
		return nil, fmt.Errorf("snowfall: nil particle buffer")
	}
	if rng == nil {
		return nil, fmt.Errorf("snowfall: nil random source")
	}
	return &Simulator{
		params:    params,
		points:    points,
		occluders: occluders,
		rng:       rng,
		active:    make(map[uint64]*Burst),
	}, nil
}

func (s *Simulator) Points() *scene.Points {
	return s.points
}

// Subscribe registers an observer for burst and reshuffle events. Observers
// run on the goroutine that produced the event and must not call Shake.
func (s *Simulator) Subscribe(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Simulator) emit(ev Event) {
	s.mu.Lock()
	observers := s.observers
	s.mu.Unlock()
	for _, o := range observers {
		o.OnSnowfallEvent(ev)
	}
}

// Tick lets every particle fall by amount unless a downward ray from it meets
// occluder geometry within the occlusion threshold. Falling particles also
// drift sideways by up to Jitter on x and z. Occlusion is recomputed on every
// call; nothing is remembered between ticks. Occluder failures abort the tick
// before any particle moves.
func (s *Simulator) Tick(ctx context.Context, amount float64) (TickStats, error) {
	var (
		stats   TickStats
		tickErr error
	)
	s.points.Write(func(pos []float32) bool {
		frozen, err := s.occlusion(ctx, pos)
		if err != nil {
			tickErr = err
			return false
		}

		s.rngMu.Lock()
		defer s.rngMu.Unlock()
		count := len(pos) / 3
		for i := 0; i < count; i++ {
			if frozen[i] {
				stats.Frozen++
				continue
			}
			y := float64(pos[i*3+1])
			if y <= s.params.GroundLevel {
				stats.Grounded++
				continue
			}
			pos[i*3+1] = float32(y - amount)
			pos[i*3] += float32(s.jitter())
			pos[i*3+2] += float32(s.jitter())
			stats.Moved++
		}
		return true
	})
	if tickErr != nil {
		return TickStats{}, fmt.Errorf("snowfall tick: %w", tickErr)
	}
	return stats, nil
}

func (s *Simulator) jitter() float64 {
	return (s.rng.Float64() - 0.5) * 2 * s.params.Jitter
}

// occlusion runs the per particle ray tests. They share no state, so the
// buffer is split into contiguous ranges across workers.
func (s *Simulator) occlusion(ctx context.Context, pos []float32) ([]bool, error) {
	count := len(pos) / 3
	frozen := make([]bool, count)
	if len(s.occluders) == 0 || count == 0 {
		return frozen, nil
	}

	workers := s.params.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > count {
		workers = count
	}
	span := (count + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < count; start += span {
		end := min(start+span, count)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				hit, err := s.occluded(pos, i)
				if err != nil {
					return err
				}
				frozen[i] = hit
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frozen, nil
}

func (s *Simulator) occluded(pos []float32, i int) (bool, error) {
	x := float64(pos[i*3])
	y := float64(pos[i*3+1]) + s.params.FieldOffset
	z := float64(pos[i*3+2])
	if y <= s.params.RayFloor {
		return false, nil
	}
	ray := downRay(x, y, z, s.params.RayFloor)
	for _, occluder := range s.occluders {
		hits, err := occluder.Intersect(ray)
		if err != nil {
			return false, err
		}
		for _, hit := range hits {
			if hit.Distance <= s.params.OcclusionThreshold+occlusionSlack {
				return true, nil
			}
		}
	}
	return false, nil
}

// Reshuffle scatters every particle to a fresh point in the spawn sphere.
// Samples that land below the ground leave their particle where it was. It
// returns how many particles moved.
func (s *Simulator) Reshuffle() int {
	return s.reshuffle(0)
}

func (s *Simulator) reshuffle(burst uint64) int {
	relocated := 0
	s.points.Write(func(pos []float32) bool {
		s.rngMu.Lock()
		defer s.rngMu.Unlock()
		count := len(pos) / 3
		for i := 0; i < count; i++ {
			p := SampleSphere(s.rng, s.params.SpawnRadius)
			if p.Y < s.params.GroundLevel {
				continue
			}
			pos[i*3] = float32(p.X)
			pos[i*3+1] = float32(p.Y)
			pos[i*3+2] = float32(p.Z)
			relocated++
		}
		return true
	})
	s.emit(Event{Kind: EventReshuffled, Burst: burst, Relocated: relocated})
	return relocated
}
