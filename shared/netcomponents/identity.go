package netcomponents

import (
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetIdentityData names a replicated entity independently of the transport.
type NetIdentityData struct {
	ID    uint
	Kind  netconfig.EntityKind
	Owner string // session token of the owning client, empty for world objects
}

var NetIdentity = donburi.NewComponentType[NetIdentityData]()
