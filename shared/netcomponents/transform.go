package netcomponents

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// NetTransformData is a replicated position and orientation.
type NetTransformData struct {
	X, Y, Z        float64
	RW, RX, RY, RZ float64
}

var NetTransform = donburi.NewComponentType[NetTransformData]()

func NewNetTransform(position mgl64.Vec3, rotation mgl64.Quat) NetTransformData {
	return NetTransformData{
		X: position.X(), Y: position.Y(), Z: position.Z(),
		RW: rotation.W, RX: rotation.V.X(), RY: rotation.V.Y(), RZ: rotation.V.Z(),
	}
}

func (t NetTransformData) Position() mgl64.Vec3 {
	return mgl64.Vec3{t.X, t.Y, t.Z}
}

// Rotation returns the orientation. The zero value decodes as identity.
func (t NetTransformData) Rotation() mgl64.Quat {
	if t.RW == 0 && t.RX == 0 && t.RY == 0 && t.RZ == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: t.RW, V: mgl64.Vec3{t.RX, t.RY, t.RZ}}
}
