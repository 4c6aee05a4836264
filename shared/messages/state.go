package messages

import "github.com/automoto/anticipation-mp/shared/netcomponents"

// EntityState is one replicated entity in a StateUpdate.
type EntityState struct {
	Identity  netcomponents.NetIdentityData
	Transform netcomponents.NetTransformData
	Player    *netcomponents.NetPlayerData
	Platform  *netcomponents.NetPlatformData
}

// StateUpdate is the authoritative world at one server tick. Transports
// deliver them in the order they were produced.
type StateUpdate struct {
	Clock    netcomponents.NetServerClockData
	Values   netcomponents.NetValuesData
	Entities []EntityState
}

// Find returns the entity with id.
func (u StateUpdate) Find(id uint) (EntityState, bool) {
	for _, e := range u.Entities {
		if e.Identity.ID == id {
			return e, true
		}
	}
	return EntityState{}, false
}

// FindOwned returns the player entity owned by token.
func (u StateUpdate) FindOwned(token string) (EntityState, bool) {
	if token == "" {
		return EntityState{}, false
	}
	for _, e := range u.Entities {
		if e.Identity.Owner == token {
			return e, true
		}
	}
	return EntityState{}, false
}
