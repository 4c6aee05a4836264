package systems

import (
	"github.com/automoto/anticipation-mp/archetypes"
	"github.com/automoto/anticipation-mp/components"
	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/movement"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetFollowers renders entities this client does not control a few ticks in
// the past, interpolating between replicated samples.
type NetFollowers struct {
	clock network.TickClock
}

func NewNetFollowers(clock network.TickClock) *NetFollowers {
	return &NetFollowers{clock: clock}
}

// Spawn creates a remote player or platform from its first replicated state.
func (n *NetFollowers) Spawn(world donburi.World, state messages.EntityState, tick int) *donburi.Entry {
	var entry *donburi.Entry
	if state.Identity.Kind == netconfig.KindPlatform {
		entry = archetypes.Platform.Spawn(world)
	} else {
		entry = archetypes.RemotePlayer.Spawn(world)
	}

	follower := network.NewTickOffsetFollower(n.clock, network.FollowerTicksAgo(false, cfg.Net.ObserverTicksAgo))
	follower.SetSmoothing(cfg.Net.FollowerSmoothing)
	components.NetFollower.SetValue(entry, components.NetFollowerData{
		Follower: follower,
		Rendered: movement.FromNet(state.Transform),
	})

	n.Push(entry, state, tick)
	return entry
}

// Push feeds a replicated state sampled at tick.
func (n *NetFollowers) Push(entry *donburi.Entry, state messages.EntityState, tick int) {
	netcomponents.NetIdentity.SetValue(entry, state.Identity)
	netcomponents.NetTransform.SetValue(entry, state.Transform)
	if state.Player != nil && entry.HasComponent(netcomponents.NetPlayer) {
		netcomponents.NetPlayer.SetValue(entry, *state.Player)
	}
	if state.Platform != nil && entry.HasComponent(netcomponents.NetPlatform) {
		netcomponents.NetPlatform.SetValue(entry, *state.Platform)
		tick = state.Platform.Tick
	}

	f := components.NetFollower.Get(entry)
	f.Follower.Push(movement.FromNet(state.Transform), tick)
}

// Update advances every follower to the current render time.
func (n *NetFollowers) Update(world donburi.World, dt float64) {
	components.NetFollower.Each(world, func(entry *donburi.Entry) {
		f := components.NetFollower.Get(entry)
		f.Rendered = f.Follower.Update(dt)
	})
}

// Configure applies the live render delay and smoothing.
func (n *NetFollowers) Configure(world donburi.World) {
	ticksAgo := network.FollowerTicksAgo(false, cfg.Net.ObserverTicksAgo)
	components.NetFollower.Each(world, func(entry *donburi.Entry) {
		f := components.NetFollower.Get(entry)
		f.Follower.TicksAgo = ticksAgo
		f.Follower.SetSmoothing(cfg.Net.FollowerSmoothing)
	})
}

func (n *NetFollowers) Despawn(entry *donburi.Entry) {
	components.NetFollower.Get(entry).Follower.StopFollowing()
}
