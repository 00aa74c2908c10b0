package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a YAML-friendly wrapper around time.Duration that accepts human
// readable strings such as "50ms" while still allowing plain integers
// (nanoseconds).
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalYAML encodes the duration using the canonical string representation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes a duration from either a string or an integer number
// of nanoseconds. Empty strings decode to zero.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar, got %v", node.Tag)
	}
	if node.Value == "" {
		*d = 0
		return nil
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode %q: %w", node.Value, err)
		}
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures every tunable of the snow globe.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Scene    SceneConfig    `yaml:"scene"`
	Snowfall SnowfallConfig `yaml:"snowfall"`
	Shake    ShakeConfig    `yaml:"shake"`
	Greeting GreetingConfig `yaml:"greeting"`
	Render   RenderConfig   `yaml:"render"`
}

type ServerConfig struct {
	ListenAddress string   `yaml:"listen_address"`
	FrameInterval Duration `yaml:"frame_interval"` // e.g. "16ms"
}

type SceneConfig struct {
	Seed           int64   `yaml:"seed"` // 0 picks a time based seed
	GridSize       float64 `yaml:"grid_size"`
	Distance       float64 `yaml:"distance"` // height of the snow field above the ground
	TreeCount      int     `yaml:"tree_count"`
	RadialSegments int     `yaml:"radial_segments"`
	RotationSpeed  float64 `yaml:"rotation_speed"` // radians per frame
}

type SnowfallConfig struct {
	FlakeCount         int     `yaml:"flake_count"`
	SpawnRadius        float64 `yaml:"spawn_radius"`
	GroundLevel        float64 `yaml:"ground_level"`
	FallAmount         float64 `yaml:"fall_amount"`
	Jitter             float64 `yaml:"jitter"`
	RayFloor           float64 `yaml:"ray_floor"`
	OcclusionThreshold float64 `yaml:"occlusion_threshold"`
	Workers            int     `yaml:"workers"`
	PointSize          float64 `yaml:"point_size"`
}

type ShakeConfig struct {
	Repeat            int      `yaml:"repeat"`
	Interval          Duration `yaml:"interval"`
	AllowOverlap      bool     `yaml:"allow_overlap"`
	DetectorThreshold float64  `yaml:"detector_threshold"`
	DetectorDebounce  Duration `yaml:"detector_debounce"`
}

type GreetingConfig struct {
	Name   string `yaml:"name"`
	Locale string `yaml:"locale"`
}

type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// WriteDefault stores the default configuration at path.
func WriteDefault(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress: "127.0.0.1:8022",
			FrameInterval: Duration(16 * time.Millisecond),
		},
		Scene: SceneConfig{
			GridSize:       300,
			Distance:       200,
			TreeCount:      30,
			RadialSegments: 160,
			RotationSpeed:  0.01,
		},
		Snowfall: SnowfallConfig{
			FlakeCount:         1000,
			SpawnRadius:        450,
			GroundLevel:        -200,
			FallAmount:         3,
			Jitter:             1.5,
			RayFloor:           -300,
			OcclusionThreshold: 2,
			Workers:            4,
			PointSize:          4,
		},
		Shake: ShakeConfig{
			Repeat:            50,
			Interval:          Duration(50 * time.Millisecond),
			DetectorThreshold: 8,
			DetectorDebounce:  Duration(time.Second),
		},
		Greeting: GreetingConfig{
			Locale: "v",
		},
		Render: RenderConfig{
			Width:  1280,
			Height: 720,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ListenAddress == "" {
		return errors.New("server.listen_address must be set")
	}
	if c.Server.FrameInterval <= 0 {
		return errors.New("server.frame_interval must be positive")
	}
	if c.Scene.GridSize <= 0 {
		return errors.New("scene.grid_size must be positive")
	}
	if c.Scene.TreeCount < 0 {
		return errors.New("scene.tree_count cannot be negative")
	}
	if c.Scene.RadialSegments < 3 {
		return errors.New("scene.radial_segments must be at least 3")
	}
	if c.Snowfall.FlakeCount <= 0 {
		return errors.New("snowfall.flake_count must be positive")
	}
	if c.Snowfall.SpawnRadius <= 0 {
		return errors.New("snowfall.spawn_radius must be positive")
	}
	if c.Snowfall.FallAmount < 0 {
		return errors.New("snowfall.fall_amount cannot be negative")
	}
	if c.Snowfall.Jitter < 0 {
		return errors.New("snowfall.jitter cannot be negative")
	}
	if c.Snowfall.OcclusionThreshold < 0 {
		return errors.New("snowfall.occlusion_threshold cannot be negative")
	}
	if c.Snowfall.Workers < 0 {
		return errors.New("snowfall.workers cannot be negative")
	}
	if c.Shake.Repeat <= 0 {
		return errors.New("shake.repeat must be positive")
	}
	if c.Shake.Interval <= 0 {
		return errors.New("shake.interval must be positive")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("render dimensions must be positive")
	}
	return nil
}
