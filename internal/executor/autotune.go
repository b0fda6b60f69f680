package executor

import "time"

// Tuner is the single-adjustment batch auto-tuner for the accelerator
// backend: on the first dispatch that hits the configured initial batch
// size, measure wall time; compute a new size scaled by target/measured,
// round to the nearest power of two not below the initial size, and freeze
// it for the rest of the crack. One adjustment is enough; continuous
// retuning oscillates under varying system load.
type Tuner struct {
	initialSize uint64
	target      time.Duration
	locked      bool
	current     uint64
}

// NewTuner constructs a Tuner with the configured initial batch size and
// dispatch-cadence target.
func NewTuner(initialSize uint64, target time.Duration) *Tuner {
	return &Tuner{
		initialSize: initialSize,
		target:      target,
		current:     initialSize,
	}
}

// BatchSize returns the batch size to use for the next dispatch.
func (t *Tuner) BatchSize() uint64 {
	return t.current
}

// Locked reports whether the tuner has already performed its one
// adjustment.
func (t *Tuner) Locked() bool {
	return t.locked
}

// Observe records the wall-clock duration of a dispatch that used the
// initial batch size in full (a partial final batch near the end of a
// length's space must not be used to tune, since it was capped by the
// remaining space, not chosen freely). It is a no-op once locked, or if
// dispatchedSize was not the initial size.
func (t *Tuner) Observe(dispatchedSize uint64, elapsed time.Duration) {
	if t.locked || dispatchedSize != t.initialSize || elapsed <= 0 {
		return
	}
	scaled := float64(t.initialSize) * (float64(t.target) / float64(elapsed))
	t.current = roundToPowerOfTwoFloor(scaled, t.initialSize)
	t.locked = true
}

// roundToPowerOfTwoFloor rounds value to the nearest power of two, then
// clamps the result up to at least floor.
func roundToPowerOfTwoFloor(value float64, floor uint64) uint64 {
	if value < 1 {
		return floor
	}
	lower := uint64(1)
	for lower*2 <= uint64(value) {
		lower *= 2
	}
	upper := lower * 2

	var nearest uint64
	if value-float64(lower) <= float64(upper)-value {
		nearest = lower
	} else {
		nearest = upper
	}
	if nearest < floor {
		return floor
	}
	return nearest
}
