package network

import "github.com/go-gl/mathgl/mgl64"

// TickClock is a clock that also knows the fixed tick.
type TickClock interface {
	Clock
	TickSource
}

// minObserverTicksAgo keeps a full bracket of samples available to observers.
const minObserverTicksAgo = 2

// FollowerTicksAgo is the render delay for a follower: none for the owner of
// the authoritative motion, at least one replication interval otherwise.
func FollowerTicksAgo(isOwner bool, replicationTicks int) int {
	if isOwner {
		return 0
	}
	return max(replicationTicks, minObserverTicksAgo)
}

// TickOffsetFollower renders an authority's motion a fixed number of ticks in
// the past, so the same stream drives a zero-delay owner view and a smoothed
// observer view.
type TickOffsetFollower struct {
	TicksAgo int

	clock     TickClock
	position  *BufferedLinearInterpolator[mgl64.Vec3]
	rotation  *BufferedLinearInterpolator[mgl64.Quat]
	following bool
}

func NewTickOffsetFollower(clock TickClock, ticksAgo int) *TickOffsetFollower {
	return &TickOffsetFollower{
		TicksAgo: ticksAgo,
		clock:    clock,
		position: NewVec3Interpolator(),
		rotation: NewQuatInterpolator(),
	}
}

// PushNextPosition feeds the position the authority had at tick.
func (f *TickOffsetFollower) PushNextPosition(position mgl64.Vec3, tick int) {
	f.position.AddMeasurement(position, float64(tick)*f.clock.TickDelta())
	f.following = true
}

// PushNextRotation feeds the rotation the authority had at tick.
func (f *TickOffsetFollower) PushNextRotation(rotation mgl64.Quat, tick int) {
	f.rotation.AddMeasurement(rotation, float64(tick)*f.clock.TickDelta())
	f.following = true
}

// Push feeds a full transform sample.
func (f *TickOffsetFollower) Push(state TransformState, tick int) {
	f.PushNextPosition(state.Position, tick)
	f.PushNextRotation(state.Rotation, tick)
}

// Update recomputes the rendered transform for the current server time.
func (f *TickOffsetFollower) Update(dt float64) TransformState {
	if !f.following {
		return f.Transform()
	}
	render := f.clock.TimeTicksAgo(f.TicksAgo)
	server := f.clock.ServerTime()
	f.position.Update(dt, render, server)
	f.rotation.Update(dt, render, server)
	return f.Transform()
}

func (f *TickOffsetFollower) Position() mgl64.Vec3 {
	return f.position.GetInterpolatedValue()
}

func (f *TickOffsetFollower) Rotation() mgl64.Quat {
	return f.rotation.GetInterpolatedValue()
}

func (f *TickOffsetFollower) Transform() TransformState {
	return TransformState{Position: f.Position(), Rotation: f.Rotation()}
}

func (f *TickOffsetFollower) IsFollowing() bool {
	return f.following
}

// SetSmoothing applies output smoothing to both channels.
func (f *TickOffsetFollower) SetSmoothing(seconds float64) {
	f.position.Smoothing = seconds
	f.rotation.Smoothing = seconds
}

// StopFollowing discards buffered samples. The last rendered transform stays
// until new samples arrive.
func (f *TickOffsetFollower) StopFollowing() {
	f.position.Clear()
	f.rotation.Clear()
	f.following = false
}
