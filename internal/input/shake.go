package input

import (
	"math"
	"sync"
	"time"
)

// Source names where a shake request came from.
type Source string

const (
	SourceShake Source = "shake"
	SourceTouch Source = "touch"
	SourceClick Source = "click"
)

func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceShake, SourceTouch, SourceClick:
		return Source(s), true
	case "":
		return SourceClick, true
	}
	return "", false
}

// Acceleration is one accelerometer reading including gravity.
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

const (
	DefaultThreshold = 8
	DefaultDebounce  = time.Second
)

// ShakeDetector turns a stream of accelerometer samples into shake signals.
// A shake is a jump of more than Threshold on at least two axes between
// consecutive samples; further shakes are suppressed until Debounce has
// passed.
type ShakeDetector struct {
	Threshold float64
	Debounce  time.Duration

	mu        sync.Mutex
	last      Acceleration
	hasLast   bool
	lastShake time.Time
	onShake   func(time.Time)
}

func NewShakeDetector(threshold float64, debounce time.Duration, onShake func(time.Time)) *ShakeDetector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ShakeDetector{Threshold: threshold, Debounce: debounce, onShake: onShake}
}

// Observe feeds one sample taken at now and reports whether it triggered a
// shake.
func (d *ShakeDetector) Observe(sample Acceleration, now time.Time) bool {
	d.mu.Lock()
	if !d.hasLast {
		d.last = sample
		d.hasLast = true
		d.mu.Unlock()
		return false
	}
	dx := math.Abs(d.last.X - sample.X)
	dy := math.Abs(d.last.Y - sample.Y)
	dz := math.Abs(d.last.Z - sample.Z)
	d.last = sample

	t := d.Threshold
	jolt := (dx > t && dy > t) || (dx > t && dz > t) || (dy > t && dz > t)
	if !jolt || (!d.lastShake.IsZero() && now.Sub(d.lastShake) <= d.Debounce) {
		d.mu.Unlock()
		return false
	}
	d.lastShake = now
	cb := d.onShake
	d.mu.Unlock()

	if cb != nil {
		cb(now)
	}
	return true
}

// Reset forgets the previous sample, e.g. when the device stream restarts.
func (d *ShakeDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hasLast = false
}
