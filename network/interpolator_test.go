package network

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedLinearInterpolator(t *testing.T) {
	t.Parallel()

	t.Run("interpolates between brackets", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(1, 1)
		i.AddMeasurement(2, 2)
		i.AddMeasurement(3, 3)

		assert.InDelta(t, 1.5, i.Update(0.1, 1.5, 10), 1e-12)
		assert.Equal(t, 3, i.Len(), "the opening sample stays buffered")
	})

	t.Run("holds the last value instead of extrapolating", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(1, 1)
		i.AddMeasurement(2, 2)
		i.AddMeasurement(3, 3)

		assert.Equal(t, 3.0, i.Update(0.1, 5, 10))
		assert.Equal(t, 3.0, i.Update(0.1, 6, 10))
		assert.Equal(t, 1, i.Len())
	})

	t.Run("rejects samples older than the consumed one", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(1, 1)
		i.AddMeasurement(3, 3)
		i.Update(0.1, 3, 10)

		assert.False(t, i.AddMeasurement(2, 2))
		assert.True(t, i.AddMeasurement(4, 4))
	})

	t.Run("holds the first value before any bracket", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(5, 2)
		i.AddMeasurement(7, 3)

		assert.Equal(t, 5.0, i.Update(0.1, 1, 10))
	})

	t.Run("clamps render time to server time", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(0, 1)
		i.AddMeasurement(10, 2)

		assert.InDelta(t, 5, i.Update(0.1, 1.8, 1.5), 1e-12)
	})

	t.Run("replaces a sample at the same time", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(1, 1)
		i.AddMeasurement(7, 1)

		assert.Equal(t, 1, i.Len())
		assert.Equal(t, 7.0, i.Update(0, 1, 1))
	})

	t.Run("inserts out of order samples in order", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(0, 0)
		i.AddMeasurement(20, 2)
		i.AddMeasurement(10, 1)

		assert.InDelta(t, 15, i.Update(0, 1.5, 2), 1e-12)
	})

	t.Run("smoothing eases toward the target", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.Smoothing = 0.5
		i.AddMeasurement(0, 0)
		i.AddMeasurement(10, 1)

		assert.InDelta(t, 5, i.Update(0.25, 1, 1), 1e-12)
		assert.InDelta(t, 10, i.Update(0.5, 1, 1), 1e-12)
	})

	t.Run("caps the buffer", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.MaxMeasurements = 3
		for n := range 4 {
			i.AddMeasurement(float64(n), float64(n))
		}
		assert.Equal(t, 3, i.Len())
	})

	t.Run("reset and clear", func(t *testing.T) {
		i := NewBufferedLinearInterpolator(LerpFloat)
		i.AddMeasurement(1, 1)
		i.AddMeasurement(2, 2)

		i.ResetTo(4, 10)
		assert.Equal(t, 0, i.Len())
		assert.Equal(t, 4.0, i.GetInterpolatedValue())
		assert.False(t, i.AddMeasurement(9, 9))

		i.Clear()
		assert.Equal(t, 4.0, i.GetInterpolatedValue(), "output survives a clear")
		assert.True(t, i.AddMeasurement(0, 0))
	})
}

func TestQuatInterpolator(t *testing.T) {
	t.Parallel()

	i := NewQuatInterpolator()
	require.Equal(t, mgl64.QuatIdent(), i.GetInterpolatedValue())

	i.AddMeasurement(mgl64.QuatIdent(), 0)
	i.AddMeasurement(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}), 1)

	mid := i.Update(0, 0.5, 1)
	assert.InDelta(t, math.Pi/4, QuatAngle(mgl64.QuatIdent(), mid), 1e-9)
}
