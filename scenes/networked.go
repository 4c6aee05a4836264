package scenes

import (
	"math/rand/v2"

	"github.com/automoto/anticipation-mp/components"
	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/automoto/anticipation-mp/systems"
	"github.com/automoto/anticipation-mp/tags"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// ValueRequester is an input source that also asks for sample values.
type ValueRequester interface {
	ValueRequest() (messages.ValueRequest, bool)
}

// NetworkedScene is the client side of a session over a Link. Each Update is
// one fixed step: apply what arrived, reanticipate and smooth, advance
// followers, then anticipate and send the next input.
type NetworkedScene struct {
	world donburi.World
	link  network.Link
	token string

	clock        *network.NetworkTime
	anticipation *network.AnticipationSystem

	prediction *systems.NetPrediction
	followers  *systems.NetFollowers
	values     *systems.NetValues
	snapshot   *systems.NetSnapshot
	input      *systems.NetInput
	requester  ValueRequester

	updates int
}

// NewNetworkedScene wires the client systems. token identifies the local
// player in replicated state; a nil arena predicts without collision.
func NewNetworkedScene(link network.Link, token string, a *arena.Arena, source systems.InputSource, seed uint64) *NetworkedScene {
	ns := &NetworkedScene{
		world: donburi.NewWorld(),
		link:  link,
		token: token,
		clock: network.NewNetworkTime(cfg.Net.TickRate, false),
	}
	ns.anticipation = network.NewAnticipationSystem(ns.clock)
	ns.prediction = systems.NewNetPrediction(ns.clock, ns.anticipation, a)
	ns.followers = systems.NewNetFollowers(ns.clock)
	ns.values = systems.NewNetValues(ns.anticipation, link.Send)
	ns.snapshot = systems.NewNetSnapshot(ns.clock, func() string { return ns.token }, ns.prediction, ns.followers, ns.values)

	rng := rand.New(rand.NewPCG(seed, seed^0x5bd1e995))
	ns.input = systems.NewNetInput(source, link.Send, ns.prediction, ns.clock, rng, cfg.Movement.FixedDelta)
	if r, ok := source.(ValueRequester); ok {
		ns.requester = r
	}
	return ns
}

// Update runs one step of dt seconds.
func (ns *NetworkedScene) Update(dt float64) {
	ns.clock.Advance(dt)

	for _, update := range ns.link.Poll() {
		ns.snapshot.Apply(ns.world, update)
		ns.updates++
	}

	ns.anticipation.Update(dt)
	ns.followers.Update(ns.world, dt)
	ns.input.Update(ns.world)

	if ns.requester != nil {
		if req, ok := ns.requester.ValueRequest(); ok {
			if err := ns.RequestValue(req.Field, req.Value); err != nil {
				log.WithError(err).Debug("[networked] value request skipped")
			}
		}
	}
}

// Join asks the authority for a player owned by this scene's token.
func (ns *NetworkedScene) Join(version, playerName string) error {
	return ns.link.Send(messages.JoinRequest{
		Version:    version,
		PlayerName: playerName,
		Token:      ns.token,
	})
}

// RequestValue anticipates a sample value and sends the request.
func (ns *NetworkedScene) RequestValue(field netconfig.ValueField, value float64) error {
	entry, ok := tags.WorldState.First(ns.world)
	if !ok {
		return network.ErrNotConnected
	}
	return ns.values.Request(entry, field, value)
}

// Reset drops recorded input after the link was re-established, so stale
// history is never replayed onto the new baseline.
func (ns *NetworkedScene) Reset() {
	ns.prediction.Reset(ns.world)
	log.Info("[networked] connection reset, input history cleared")
}

// Configure applies live tuning changes to every spawned entity.
func (ns *NetworkedScene) Configure() {
	ns.prediction.Configure(ns.world)
	ns.followers.Configure(ns.world)
	ns.values.Configure()
}

func (ns *NetworkedScene) World() donburi.World {
	return ns.world
}

func (ns *NetworkedScene) Clock() *network.NetworkTime {
	return ns.clock
}

// Updates is the number of authoritative updates applied.
func (ns *NetworkedScene) Updates() int {
	return ns.updates
}

// LocalPlayer returns the anticipated state of the local player.
func (ns *NetworkedScene) LocalPlayer() (*components.AnticipatedPlayerData, bool) {
	entry, ok := tags.LocalPlayer.First(ns.world)
	if !ok {
		return nil, false
	}
	return components.AnticipatedPlayer.Get(entry), true
}

// Value is the anticipated sample value of field.
func (ns *NetworkedScene) Value(field netconfig.ValueField) (float64, bool) {
	entry, ok := tags.WorldState.First(ns.world)
	if !ok {
		return 0, false
	}
	return ns.values.Value(entry, field), true
}

// Followed returns the rendered transforms of every followed entity by id.
func (ns *NetworkedScene) Followed() map[uint]network.TransformState {
	out := make(map[uint]network.TransformState)
	components.NetFollower.Each(ns.world, func(entry *donburi.Entry) {
		out[netcomponents.NetIdentity.Get(entry).ID] = components.NetFollower.Get(entry).Rendered
	})
	return out
}
