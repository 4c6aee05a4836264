package archetypes

import (
	"slices"

	"github.com/automoto/anticipation-mp/components"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/tags"
	"github.com/yohamta/donburi"
)

var (
	LocalPlayer = newArchetype(
		tags.LocalPlayer,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
		netcomponents.NetPlayer,
		components.AnticipatedPlayer,
	)
	RemotePlayer = newArchetype(
		tags.RemotePlayer,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
		netcomponents.NetPlayer,
		components.NetFollower,
	)
	Platform = newArchetype(
		tags.Platform,
		netcomponents.NetIdentity,
		netcomponents.NetTransform,
		netcomponents.NetPlatform,
		components.NetFollower,
	)
	WorldState = newArchetype(
		tags.WorldState,
		netcomponents.NetValues,
		netcomponents.NetServerClock,
		components.AnticipatedValues,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	return world.Entry(world.Create(slices.Concat(a.components, cs)...))
}
