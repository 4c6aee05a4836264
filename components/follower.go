package components

import (
	"github.com/automoto/anticipation-mp/network"
	"github.com/yohamta/donburi"
)

// NetFollowerData renders a replicated entity a fixed number of ticks behind
// the authority.
type NetFollowerData struct {
	Follower *network.TickOffsetFollower
	Rendered network.TransformState
}

var NetFollower = donburi.NewComponentType[NetFollowerData]()
