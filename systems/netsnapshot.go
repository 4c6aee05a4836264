package systems

import (
	"github.com/automoto/anticipation-mp/components"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/tags"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// NetSnapshot applies authoritative state updates to the client world. Each
// replicated identity maps to one local entity; entities missing from an
// update are despawned only after the whole update was applied.
type NetSnapshot struct {
	clock      *network.NetworkTime
	token      func() string
	prediction *NetPrediction
	followers  *NetFollowers
	values     *NetValues

	entities map[uint]donburi.Entity
	present  map[uint]bool
}

func NewNetSnapshot(clock *network.NetworkTime, token func() string, prediction *NetPrediction, followers *NetFollowers, values *NetValues) *NetSnapshot {
	return &NetSnapshot{
		clock:      clock,
		token:      token,
		prediction: prediction,
		followers:  followers,
		values:     values,
		entities:   make(map[uint]donburi.Entity),
		present:    make(map[uint]bool),
	}
}

// Apply merges one update into world.
func (n *NetSnapshot) Apply(world donburi.World, update messages.StateUpdate) {
	n.clock.ObserveServerTime(update.Clock.Time)

	if entry, ok := tags.WorldState.First(world); ok {
		n.values.Apply(entry, update.Clock, update.Values)
	} else {
		n.values.Spawn(world, update.Clock, update.Values)
	}

	token := n.token()
	clear(n.present)

	for _, state := range update.Entities {
		id := state.Identity.ID
		n.present[id] = true

		entity, known := n.entities[id]
		if known && world.Valid(entity) {
			entry := world.Entry(entity)
			if entry.HasComponent(components.AnticipatedPlayer) {
				n.prediction.ApplyAuthoritative(entry, state)
			} else {
				n.followers.Push(entry, state, update.Clock.Tick)
			}
			continue
		}

		var entry *donburi.Entry
		if token != "" && state.Identity.Owner == token {
			entry = n.prediction.Spawn(world, state)
		} else {
			entry = n.followers.Spawn(world, state, update.Clock.Tick)
		}
		n.entities[id] = entry.Entity()
	}

	for id, entity := range n.entities {
		if n.present[id] {
			continue
		}
		delete(n.entities, id)
		if world.Valid(entity) {
			n.despawn(world.Entry(entity))
		}
		log.WithField("id", id).Debug("[netsnapshot] entity despawned")
	}
}

// Local returns the locally controlled player, if spawned.
func (n *NetSnapshot) Local(world donburi.World) (*donburi.Entry, bool) {
	return tags.LocalPlayer.First(world)
}

// Len is the number of replicated entities tracked.
func (n *NetSnapshot) Len() int {
	return len(n.entities)
}

func (n *NetSnapshot) despawn(entry *donburi.Entry) {
	switch {
	case entry.HasComponent(components.AnticipatedPlayer):
		n.prediction.Despawn(entry)
	case entry.HasComponent(components.NetFollower):
		n.followers.Despawn(entry)
	}
	entry.Remove()
}
