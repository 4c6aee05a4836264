package netcomponents

import (
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type NetPlatformData struct {
	State netconfig.PlatformState
	// Movement is the displacement over the last tick.
	MoveX, MoveY, MoveZ float64
	// Tick is the server tick the transform was sampled at.
	Tick int
}

var NetPlatform = donburi.NewComponentType[NetPlatformData]()
