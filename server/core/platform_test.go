package core

import (
	"testing"

	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/leveldata"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type platformFixture struct {
	clock *network.NetworkTime
	mover *PlatformMover
	tick  int
}

func newPlatformFixture(path leveldata.PlatformPath) *platformFixture {
	clock := network.NewNetworkTime(50, true)
	mover := NewPlatformMover(path, clock)
	mover.Start()
	return &platformFixture{clock: clock, mover: mover}
}

func (f *platformFixture) step() {
	f.tick++
	f.clock.SetLocalTime(f.clock.TickTime(f.tick))
	f.mover.Step(f.clock.TickDelta(), f.tick)
}

func TestPlatformCycle(t *testing.T) {
	t.Parallel()

	f := newPlatformFixture(leveldata.PlatformPath{
		Nodes: []leveldata.PathNode{{X: 0, Z: 0}, {X: 1, Z: 0}},
		Speed: 10,
		Pause: 0.1,
	})
	require.Equal(t, netconfig.PlatformMoving, f.mover.State())
	require.Equal(t, 1, f.mover.Target())

	f.step()
	assert.InDelta(t, 0.2, f.mover.Movement().X(), 1e-12)
	assert.InDelta(t, 0.2, f.mover.Transform().Position.X(), 1e-12)
	facing := f.mover.Transform().Rotation.Rotate(mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, 1, facing.X(), 1e-9, "faces the direction of travel")

	for i := 0; i < 10 && f.mover.State() == netconfig.PlatformMoving; i++ {
		f.step()
	}
	require.Equal(t, netconfig.PlatformWaitingVisual, f.mover.State())
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, f.mover.Transform().Position)
	assert.InDelta(t, 1, f.mover.Visual().Position.X(), 1e-9, "the owner view has no delay")

	f.step()
	assert.Equal(t, netconfig.PlatformPaused, f.mover.State())
	assert.Equal(t, mgl64.Vec3{}, f.mover.Movement())

	for i := 0; i < 10 && f.mover.State() == netconfig.PlatformPaused; i++ {
		f.step()
	}
	require.Equal(t, netconfig.PlatformMoving, f.mover.State())
	assert.Equal(t, 0, f.mover.Target(), "ping-pongs back")

	f.step()
	assert.InDelta(t, -0.2, f.mover.Movement().X(), 1e-12)
}

func TestPlatformWithoutPath(t *testing.T) {
	t.Parallel()

	f := newPlatformFixture(leveldata.PlatformPath{
		Nodes: []leveldata.PathNode{{X: 3, Z: 4}},
		Speed: 10,
	})
	assert.Equal(t, netconfig.PlatformNone, f.mover.State())

	f.step()
	assert.Equal(t, mgl64.Vec3{3, 0, 4}, f.mover.Transform().Position)
	assert.Equal(t, mgl64.Vec3{}, f.mover.Movement())
}

func TestPlatformPingPongsAlongLongerPaths(t *testing.T) {
	t.Parallel()

	f := newPlatformFixture(leveldata.PlatformPath{
		Nodes: []leveldata.PathNode{{X: 0}, {X: 1}, {X: 2}},
		Speed: 50,
	})

	var targets []int
	last := f.mover.Target()
	for range 100 {
		f.step()
		if f.mover.Target() != last {
			last = f.mover.Target()
			targets = append(targets, last)
		}
	}
	require.GreaterOrEqual(t, len(targets), 4)
	assert.Equal(t, []int{2, 1, 0, 1}, targets[:4])
}
