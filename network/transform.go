package network

import "github.com/go-gl/mathgl/mgl64"

// TransformState is a position plus orientation.
type TransformState struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// IdentityTransform is the origin with no rotation.
func IdentityTransform() TransformState {
	return TransformState{Rotation: mgl64.QuatIdent()}
}

// LerpTransform blends position linearly and rotation along the shortest arc.
func LerpTransform(from, to TransformState, amount float64) TransformState {
	return TransformState{
		Position: LerpVec3(from.Position, to.Position, amount),
		Rotation: SlerpQuat(from.Rotation, to.Rotation, amount),
	}
}

// PositionDistance is the distance metric used for snap/smooth decisions.
func PositionDistance(a, b TransformState) float64 {
	return a.Position.Sub(b.Position).Len()
}

// AnticipatedTransform composes a translation and an orientation value so a
// transform can be anticipated and reconciled as one state.
type AnticipatedTransform struct {
	position *AnticipatedValue[mgl64.Vec3]
	rotation *AnticipatedValue[mgl64.Quat]
}

// NewAnticipatedTransform starts both channels at initial. Options apply to
// both channels.
func NewAnticipatedTransform(initial TransformState, opts ...ValueOption) *AnticipatedTransform {
	return &AnticipatedTransform{
		position: NewAnticipatedValue(initial.Position, LerpVec3, opts...),
		rotation: NewAnticipatedValue(initial.Rotation, SlerpQuat, opts...),
	}
}

func (t *AnticipatedTransform) Position() *AnticipatedValue[mgl64.Vec3] {
	return t.position
}

func (t *AnticipatedTransform) Rotation() *AnticipatedValue[mgl64.Quat] {
	return t.rotation
}

func (t *AnticipatedTransform) AnticipateMove(position mgl64.Vec3) {
	t.position.Anticipate(position)
}

func (t *AnticipatedTransform) AnticipateRotate(rotation mgl64.Quat) {
	t.rotation.Anticipate(rotation)
}

// Anticipate sets both channels.
func (t *AnticipatedTransform) Anticipate(state TransformState) {
	t.position.Anticipate(state.Position)
	t.rotation.Anticipate(state.Rotation)
}

func (t *AnticipatedTransform) Anticipated() TransformState {
	return TransformState{Position: t.position.Value(), Rotation: t.rotation.Value()}
}

func (t *AnticipatedTransform) PreviousAnticipated() TransformState {
	return TransformState{
		Position: t.position.PreviousAnticipated(),
		Rotation: t.rotation.PreviousAnticipated(),
	}
}

func (t *AnticipatedTransform) AuthoritativeState() TransformState {
	return TransformState{
		Position: t.position.Authoritative(),
		Rotation: t.rotation.Authoritative(),
	}
}

// SetAuthoritative applies a replicated state. When only one channel changed
// the other is reset too, so reanticipation always starts from a coherent
// authoritative baseline.
func (t *AnticipatedTransform) SetAuthoritative(state TransformState) {
	t.position.SetAuthoritative(state.Position)
	t.rotation.SetAuthoritative(state.Rotation)
	if t.position.ShouldReanticipate() != t.rotation.ShouldReanticipate() {
		if !t.position.ShouldReanticipate() {
			t.position.previous = t.position.anticipated
			t.position.shouldReanticipate = true
		}
		if !t.rotation.ShouldReanticipate() {
			t.rotation.previous = t.rotation.anticipated
			t.rotation.shouldReanticipate = true
		}
	}
}

func (t *AnticipatedTransform) ShouldReanticipate() bool {
	return t.position.ShouldReanticipate() || t.rotation.ShouldReanticipate()
}

func (t *AnticipatedTransform) ResetReanticipate() {
	t.position.ResetReanticipate()
	t.rotation.ResetReanticipate()
}

// Smooth eases both channels from from to to.
func (t *AnticipatedTransform) Smooth(from, to TransformState, duration float64) {
	t.position.Smooth(from.Position, to.Position, duration)
	t.rotation.Smooth(from.Rotation, to.Rotation, duration)
}

func (t *AnticipatedTransform) IsSmoothing() bool {
	return t.position.IsSmoothing() || t.rotation.IsSmoothing()
}

func (t *AnticipatedTransform) Update(dt float64) {
	t.position.Update(dt)
	t.rotation.Update(dt)
}

func (t *AnticipatedTransform) Despawn() {
	t.position.Despawn()
	t.rotation.Despawn()
}
