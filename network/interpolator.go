package network

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// defaultMaxMeasurements bounds the buffer when nothing consumes it.
const defaultMaxMeasurements = 256

type measurement[T any] struct {
	time  float64
	value T
}

// BufferedLinearInterpolator turns irregularly arriving timestamped samples
// into a continuous value for a render time that trails the newest sample.
// It never extrapolates: once the render time passes the last sample the
// last value is held.
type BufferedLinearInterpolator[T any] struct {
	lerp   LerpFunc[T]
	buffer []measurement[T]

	current  T
	hasValue bool
	// consumed is the time of the sample the current bracket starts at.
	// Anything older is stale.
	consumed float64

	// Smoothing, when positive, eases the output toward the interpolated
	// target over roughly this many seconds instead of jumping to it.
	Smoothing float64
	// MaxMeasurements caps the buffer; the oldest samples are dropped.
	MaxMeasurements int
}

func NewBufferedLinearInterpolator[T any](lerp LerpFunc[T]) *BufferedLinearInterpolator[T] {
	return &BufferedLinearInterpolator[T]{
		lerp:            lerp,
		consumed:        math.Inf(-1),
		MaxMeasurements: defaultMaxMeasurements,
	}
}

func NewVec3Interpolator() *BufferedLinearInterpolator[mgl64.Vec3] {
	return NewBufferedLinearInterpolator(LerpVec3)
}

// NewQuatInterpolator blends rotations along the shortest arc.
func NewQuatInterpolator() *BufferedLinearInterpolator[mgl64.Quat] {
	i := NewBufferedLinearInterpolator(SlerpQuat)
	i.current = mgl64.QuatIdent()
	return i
}

// AddMeasurement inserts a sample in time order. A sample older than the one
// currently being interpolated from is discarded and false is returned. A
// sample at an already buffered time replaces it.
func (b *BufferedLinearInterpolator[T]) AddMeasurement(value T, time float64) bool {
	if time < b.consumed {
		return false
	}
	if !b.hasValue {
		b.current = value
		b.hasValue = true
	}

	idx := sort.Search(len(b.buffer), func(i int) bool {
		return b.buffer[i].time >= time
	})
	if idx < len(b.buffer) && b.buffer[idx].time == time {
		b.buffer[idx].value = value
		return true
	}
	b.buffer = append(b.buffer, measurement[T]{})
	copy(b.buffer[idx+1:], b.buffer[idx:])
	b.buffer[idx] = measurement[T]{time: time, value: value}

	if b.MaxMeasurements > 0 && len(b.buffer) > b.MaxMeasurements {
		drop := len(b.buffer) - b.MaxMeasurements
		b.buffer = append(b.buffer[:0], b.buffer[drop:]...)
	}
	return true
}

// Update moves the output to the value at renderTime, which is clamped to
// serverTime. It returns the new output.
func (b *BufferedLinearInterpolator[T]) Update(dt, renderTime, serverTime float64) T {
	if renderTime > serverTime {
		renderTime = serverTime
	}
	if len(b.buffer) == 0 {
		return b.current
	}

	// First sample strictly after renderTime; the one before it opens the
	// bracket.
	idx := sort.Search(len(b.buffer), func(i int) bool {
		return b.buffer[i].time > renderTime
	})

	var target T
	switch {
	case idx == 0:
		// Render time precedes every sample, nothing to move toward yet.
		return b.current
	case idx == len(b.buffer):
		last := b.buffer[len(b.buffer)-1]
		if renderTime > last.time {
			interpolatorUnderruns.Inc()
		}
		target = last.value
		b.consumed = last.time
		b.buffer = append(b.buffer[:0], last)
	default:
		start, end := b.buffer[idx-1], b.buffer[idx]
		amount := (renderTime - start.time) / (end.time - start.time)
		target = b.lerp(start.value, end.value, amount)
		b.consumed = start.time
		b.buffer = append(b.buffer[:0], b.buffer[idx-1:]...)
	}

	if b.Smoothing > 0 && dt > 0 {
		b.current = b.lerp(b.current, target, math.Min(1, dt/b.Smoothing))
	} else {
		b.current = target
	}
	return b.current
}

func (b *BufferedLinearInterpolator[T]) GetInterpolatedValue() T {
	return b.current
}

// Len is the number of buffered samples.
func (b *BufferedLinearInterpolator[T]) Len() int {
	return len(b.buffer)
}

// ResetTo drops all samples and starts over from value at time.
func (b *BufferedLinearInterpolator[T]) ResetTo(value T, time float64) {
	b.buffer = b.buffer[:0]
	b.current = value
	b.hasValue = true
	b.consumed = time
}

// Clear drops all samples. The current output is kept until the next sample.
func (b *BufferedLinearInterpolator[T]) Clear() {
	b.buffer = nil
	b.hasValue = false
	b.consumed = math.Inf(-1)
}
