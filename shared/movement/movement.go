// Package movement is the player step function shared by the predicting
// client and the authority. It must stay pure: replaying the same inputs from
// the same state always lands on the same transform.
package movement

import (
	"math"
	"math/rand/v2"

	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	up      = mgl64.Vec3{0, 1, 0}
	right   = mgl64.Vec3{1, 0, 0}
	forward = mgl64.Vec3{0, 0, 1}
)

type Tuning struct {
	// MoveSpeed is in world units per second along the local right axis.
	MoveSpeed float64
	// TurnSpeed is in degrees per second.
	TurnSpeed float64
}

// Move applies one input to state. Up and Down move along the local right
// axis, Left and Right yaw, and a held teleport button jumps to the target the
// input carries. A nil arena means free movement.
func Move(state network.TransformState, input messages.PlayerInput, dt float64, tuning Tuning, a *arena.Arena) network.TransformState {
	buttons := input.Buttons

	if buttons.Has(netconfig.InputUp) {
		state.Position = slide(a, state.Position, state.Rotation.Rotate(right).Mul(dt*tuning.MoveSpeed))
	}
	if buttons.Has(netconfig.InputDown) {
		state.Position = slide(a, state.Position, state.Rotation.Rotate(right).Mul(-dt*tuning.MoveSpeed))
	}
	if buttons.Has(netconfig.InputLeft) {
		state.Rotation = yaw(state.Rotation, -tuning.TurnSpeed*dt)
	}
	if buttons.Has(netconfig.InputRight) {
		state.Rotation = yaw(state.Rotation, tuning.TurnSpeed*dt)
	}
	if buttons.Teleports() && input.Teleport != nil {
		state = FromNet(*input.Teleport)
	}
	return state
}

// Step binds tuning and arena into a replayable step function.
func Step(tuning Tuning, a *arena.Arena) network.StepFunc[network.TransformState, messages.PlayerInput] {
	return func(state network.TransformState, input messages.PlayerInput, dt float64) network.TransformState {
		return Move(state, input, dt, tuning, a)
	}
}

// Distance is the metric used to pick between suppressing, smoothing and
// snapping a correction.
func Distance(a, b network.TransformState) float64 {
	return network.PositionDistance(a, b)
}

// ResolveInput turns the buttons held this step into an input record. Teleport
// targets are rolled here, once, and stored in the record.
func ResolveInput(buttons netconfig.InputList, time, dt float64, rng *rand.Rand) messages.PlayerInput {
	input := messages.PlayerInput{Time: time, DeltaTime: dt, Buttons: buttons}

	var target network.TransformState
	switch {
	case buttons.Has(netconfig.InputRandomTeleport):
		target.Position = mgl64.Vec3{float64(rng.IntN(10) - 5), 0, float64(rng.IntN(20) - 10)}
		target.Rotation = LookRotation(mgl64.Vec3{float64(rng.IntN(10) - 5), 0, float64(rng.IntN(20) - 10)})
	case buttons.Has(netconfig.InputSmallRandomTeleport):
		target.Position = mgl64.Vec3{rng.Float64() - 0.5, 0, rng.Float64() - 0.5}
		target.Rotation = LookRotation(mgl64.Vec3{rng.Float64() - 0.5, 0, 1})
	case buttons.Has(netconfig.InputPredictableTeleport):
		target.Rotation = LookRotation(forward)
	default:
		return input
	}
	t := ToNet(target)
	input.Teleport = &t
	return input
}

// LookRotation is the yaw that turns +Z toward dir on the XZ plane. A zero
// direction gives identity.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	if dir.X() == 0 && dir.Z() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(math.Atan2(dir.X(), dir.Z()), up)
}

func yaw(rotation mgl64.Quat, degrees float64) mgl64.Quat {
	return rotation.Mul(mgl64.QuatRotate(mgl64.DegToRad(degrees), up)).Normalize()
}

func slide(a *arena.Arena, from, delta mgl64.Vec3) mgl64.Vec3 {
	if a == nil {
		return from.Add(delta)
	}
	return a.Slide(from, delta)
}
