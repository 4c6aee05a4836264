package movement

import (
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
)

func FromNet(t netcomponents.NetTransformData) network.TransformState {
	return network.TransformState{Position: t.Position(), Rotation: t.Rotation()}
}

func ToNet(s network.TransformState) netcomponents.NetTransformData {
	return netcomponents.NewNetTransform(s.Position, s.Rotation)
}
