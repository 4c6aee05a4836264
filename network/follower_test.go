package network

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFollowerTicksAgo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, FollowerTicksAgo(true, 5))
	assert.Equal(t, 2, FollowerTicksAgo(false, 1))
	assert.Equal(t, 4, FollowerTicksAgo(false, 4))
}

func TestTickOffsetFollowerTrailsByTicks(t *testing.T) {
	t.Parallel()

	clock := NewNetworkTime(50, true)
	observer := NewTickOffsetFollower(clock, 6)
	owner := NewTickOffsetFollower(clock, 0)

	for k := 1; k <= 30; k++ {
		clock.SetLocalTime(clock.TickTime(k))
		fresh := mgl64.Vec3{50 * float64(k), 0, 0}
		observer.Push(TransformState{Position: fresh, Rotation: mgl64.QuatIdent()}, k)
		owner.Push(TransformState{Position: fresh, Rotation: mgl64.QuatIdent()}, k)
		observer.Update(clock.TickDelta())
		owner.Update(clock.TickDelta())

		if k > 6 {
			assert.InDelta(t, fresh.X()-300, observer.Position().X(), 1e-9, "tick %d", k)
		}
		assert.InDelta(t, fresh.X(), owner.Position().X(), 1e-9, "tick %d", k)
	}
}

func TestTickOffsetFollowerStop(t *testing.T) {
	t.Parallel()

	clock := NewNetworkTime(50, true)
	f := NewTickOffsetFollower(clock, 0)
	assert.False(t, f.IsFollowing())
	assert.Equal(t, IdentityTransform(), f.Update(0.02))

	clock.SetLocalTime(clock.TickTime(1))
	f.Push(TransformState{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()}, 1)
	f.Update(0.02)
	assert.True(t, f.IsFollowing())

	f.StopFollowing()
	assert.False(t, f.IsFollowing())
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, f.Update(0.02).Position, "the last render stays")
}
