package card

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/config"
	"snowglobe/internal/forest"
	"snowglobe/internal/greeting"
	"snowglobe/internal/input"
	"snowglobe/internal/mesh"
	"snowglobe/internal/render"
	"snowglobe/internal/scene"
	"snowglobe/internal/snowfall"
)

const (
	groundThickness = 3
	groundSegments  = 60
	groundScale     = 1.5

	canopyColor = "#f1bc5f"
	trunkColor  = "#4d1e00"
)

// Card is one greeting card: the scene graph, the snow over it and the
// labels waiting to be revealed. The scene graph is guarded by mu; the snow
// buffer and the overlay carry their own locks so shakes never wait for a
// frame to finish.
type Card struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	scene    *scene.Scene
	trees    *scene.Node
	snow     *scene.Node
	camera   render.Camera
	frames   uint64
	lastTick snowfall.TickStats

	sim      *snowfall.Simulator
	overlay  *greeting.Overlay
	detector *input.ShakeDetector
	seed     int64
}

// New builds the scene described by cfg.
func New(cfg *config.Config, logger *zap.SugaredLogger) (*Card, error) {
	if cfg == nil {
		return nil, fmt.Errorf("card: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	sc := scene.New()
	sc.AddLight(
		&scene.Light{Kind: scene.LightAmbient, Color: "#ffffff", Intensity: 0.5},
		&scene.Light{Kind: scene.LightHemisphere, Color: "#999999", GroundColor: "#081620", Intensity: 1},
		&scene.Light{
			Kind:       scene.LightDirectional,
			Color:      "#ffffff",
			Intensity:  0.3,
			Position:   r3.Vec{X: 100, Y: 100, Z: 200},
			CastShadow: true,
		},
	)

	base := cfg.Scene.GridSize * groundScale
	groundMaterial := mesh.NewMaterial("ground", "#ffffff")
	groundMaterial.Opacity = 0.5
	groundMaterial.Transparent = true
	groundMesh := mesh.New(mesh.Cylinder(base, base, groundThickness, groundSegments), groundMaterial)
	groundMesh.ReceiveShadow = true
	sc.Add(scene.NewMeshNode("ground", groundMesh))

	plant := forest.DefaultPlantConfig()
	plant.Count = cfg.Scene.TreeCount
	plant.GridSize = cfg.Scene.GridSize
	plant.RadialSegments = cfg.Scene.RadialSegments
	trees, err := forest.Plant(rng, plant, forest.TreeMaterials{
		Canopy: mesh.NewMaterial("canopy", canopyColor),
		Trunk:  mesh.NewMaterial("trunk", trunkColor),
	})
	if err != nil {
		return nil, fmt.Errorf("plant forest: %w", err)
	}
	sc.Add(trees)

	params := SnowfallParams(cfg)
	field, err := snowfall.NewField(rng, params)
	if err != nil {
		return nil, fmt.Errorf("seed snow field: %w", err)
	}
	snow := scene.NewPointsNode("snow", field)
	snow.Position = r3.Vec{Y: cfg.Scene.Distance}
	sc.Add(snow)

	sim, err := snowfall.NewSimulator(params, field, rand.New(rand.NewSource(rng.Int63())),
		snowfall.NodeOccluder{Target: trees, Space: sc.Root})
	if err != nil {
		return nil, fmt.Errorf("create simulator: %w", err)
	}

	overlay := greeting.NewOverlay(greeting.Params{
		Name:   cfg.Greeting.Name,
		Locale: cfg.Greeting.Locale,
	}, cfg.Scene.Distance)
	sim.Subscribe(overlay)

	c := &Card{
		cfg:     cfg,
		logger:  logger,
		scene:   sc,
		trees:   trees,
		snow:    snow,
		camera:  render.DefaultCamera(),
		sim:     sim,
		overlay: overlay,
		seed:    seed,
	}
	sim.Subscribe(snowfall.ObserverFunc(c.logEvent))
	c.detector = input.NewShakeDetector(cfg.Shake.DetectorThreshold, cfg.Shake.DetectorDebounce.Duration(), func(time.Time) {
		c.Trigger(input.SourceShake, 0)
	})

	logger.Infow("card assembled",
		"seed", seed,
		"trees", len(trees.Children()),
		"flakes", field.Count(),
	)
	return c, nil
}

// SnowfallParams maps the configuration onto simulator parameters. The field
// hangs Distance above the ground, which is also the lift applied to rays.
func SnowfallParams(cfg *config.Config) snowfall.Params {
	return snowfall.Params{
		Count:              cfg.Snowfall.FlakeCount,
		SpawnRadius:        cfg.Snowfall.SpawnRadius,
		GroundLevel:        cfg.Snowfall.GroundLevel,
		FallAmount:         cfg.Snowfall.FallAmount,
		Jitter:             cfg.Snowfall.Jitter,
		PointSize:          cfg.Snowfall.PointSize,
		FieldOffset:        cfg.Scene.Distance,
		RayFloor:           cfg.Snowfall.RayFloor,
		OcclusionThreshold: cfg.Snowfall.OcclusionThreshold,
		Workers:            cfg.Snowfall.Workers,
		ShakeRepeat:        cfg.Shake.Repeat,
		ShakeInterval:      cfg.Shake.Interval.Duration(),
		AllowOverlap:       cfg.Shake.AllowOverlap,
	}
}

func (c *Card) logEvent(ev snowfall.Event) {
	switch ev.Kind {
	case snowfall.EventReshuffled:
		c.logger.Debugw("snow reshuffled", "burst", ev.Burst, "relocated", ev.Relocated)
	default:
		c.logger.Debugw("shake burst", "event", ev.Kind.String(), "burst", ev.Burst, "fired", ev.Fired)
	}
}

// Frame advances the card by one host frame: the snow falls, the labels turn
// to the camera and the whole scene spins a little.
func (c *Card) Frame(ctx context.Context) (snowfall.TickStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, err := c.sim.Tick(ctx, c.cfg.Snowfall.FallAmount)
	if err != nil {
		return snowfall.TickStats{}, err
	}
	root := c.scene.Root
	c.overlay.Face(root.World().ApplyInverse(c.camera.Position))
	root.RotationY += c.cfg.Scene.RotationSpeed
	c.frames++
	c.lastTick = stats
	return stats, nil
}

// Trigger starts a shake burst. repeat <= 0 uses the configured count.
func (c *Card) Trigger(source input.Source, repeat int) *snowfall.Burst {
	b := c.sim.Shake(repeat)
	c.logger.Infow("shake triggered", "source", string(source), "burst", b.ID, "repeat", b.Repeat)
	return b
}

// Motion feeds an accelerometer sample to the shake detector.
func (c *Card) Motion(sample input.Acceleration, now time.Time) bool {
	return c.detector.Observe(sample, now)
}

// ResetMotion makes the detector forget the previous sample, so a restarted
// device stream does not register as a jolt.
func (c *Card) ResetMotion() {
	c.detector.Reset()
}

// Relabel replaces the greeting wording.
func (c *Card) Relabel(p greeting.Params) {
	c.overlay.Relabel(p)
	p = p.Normalized()
	c.logger.Infow("greeting relabelled", "locale", p.Locale, "name", p.Name)
}

func (c *Card) Overlay() *greeting.Overlay {
	return c.overlay
}

// View runs fn with the scene graph locked against frame updates.
func (c *Card) View(fn func(sc *scene.Scene)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.scene)
}

// Preview renders the current frame as PNG.
func (c *Card) Preview(w io.Writer) error {
	r := c.renderer()
	var err error
	c.View(func(sc *scene.Scene) {
		err = r.Render(w, sc, c.labels(sc)...)
	})
	return err
}

// SavePreview renders the current frame to a PNG file.
func (c *Card) SavePreview(path string) error {
	r := c.renderer()
	var err error
	c.View(func(sc *scene.Scene) {
		err = r.SavePNG(path, sc, c.labels(sc)...)
	})
	return err
}

// labels places the overlay in world space. The labels hang off the scene
// root, so they spin with it.
func (c *Card) labels(sc *scene.Scene) []render.Label {
	root := sc.Root.World()
	overlay := c.overlay.Labels()
	out := make([]render.Label, 0, len(overlay))
	for _, l := range overlay {
		out = append(out, render.Label{
			Text:     l.Text,
			Position: root.Apply(l.Position),
			Size:     greeting.TextSize,
			Material: l.Material,
		})
	}
	return out
}

func (c *Card) renderer() *render.Renderer {
	return render.New(c.cfg.Render.Width, c.cfg.Render.Height, c.camera)
}

// Close stops any running shake bursts.
func (c *Card) Close() {
	c.sim.Close()
}
