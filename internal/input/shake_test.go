package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShakeDetectorNeedsTwoAxes(t *testing.T) {
	var fired []time.Time
	d := NewShakeDetector(0, 0, func(at time.Time) { fired = append(fired, at) })
	assert.Equal(t, float64(DefaultThreshold), d.Threshold)
	assert.Equal(t, DefaultDebounce, d.Debounce)

	start := time.Unix(1700000000, 0)
	assert.False(t, d.Observe(Acceleration{Z: 9.8}, start), "first sample only primes the detector")
	assert.False(t, d.Observe(Acceleration{X: 20, Z: 9.8}, start.Add(10*time.Millisecond)), "one axis is not a shake")
	assert.True(t, d.Observe(Acceleration{X: 0, Y: 15, Z: 9.8}, start.Add(20*time.Millisecond)))
	assert.Len(t, fired, 1)
}

func TestShakeDetectorDebounces(t *testing.T) {
	d := NewShakeDetector(8, time.Second, nil)
	start := time.Unix(1700000000, 0)
	d.Observe(Acceleration{}, start)

	assert.True(t, d.Observe(Acceleration{X: 10, Y: 10}, start.Add(100*time.Millisecond)))
	assert.False(t, d.Observe(Acceleration{}, start.Add(200*time.Millisecond)))
	assert.True(t, d.Observe(Acceleration{X: 10, Y: 10}, start.Add(1500*time.Millisecond)))
}

func TestShakeDetectorReset(t *testing.T) {
	d := NewShakeDetector(8, time.Second, nil)
	now := time.Unix(1700000000, 0)
	d.Observe(Acceleration{}, now)
	d.Reset()
	assert.False(t, d.Observe(Acceleration{X: 50, Y: 50}, now.Add(time.Millisecond)))
}

func TestParseSource(t *testing.T) {
	for in, want := range map[string]Source{"shake": SourceShake, "touch": SourceTouch, "click": SourceClick, "": SourceClick} {
		got, ok := ParseSource(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSource("wiggle")
	assert.False(t, ok)
}
