package systems

import (
	"github.com/automoto/anticipation-mp/archetypes"
	"github.com/automoto/anticipation-mp/components"
	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/movement"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// NetPrediction owns client-side anticipation for the local player: every
// input is applied locally right away and replayed on top of each new
// authoritative transform.
type NetPrediction struct {
	clock        *network.NetworkTime
	anticipation *network.AnticipationSystem
	step         network.StepFunc[network.TransformState, messages.PlayerInput]
}

// NewNetPrediction uses the same step function as the authority. A nil arena
// moves without collision.
func NewNetPrediction(clock *network.NetworkTime, anticipation *network.AnticipationSystem, a *arena.Arena) *NetPrediction {
	tuning := movement.Tuning{MoveSpeed: cfg.Movement.MoveSpeed, TurnSpeed: cfg.Movement.TurnSpeed}
	return &NetPrediction{
		clock:        clock,
		anticipation: anticipation,
		step:         movement.Step(tuning, a),
	}
}

// ReconcileConfig reads the live tuning.
func ReconcileConfig() network.ReconcileConfig {
	return network.ReconcileConfig{
		SmoothTime:         cfg.Anticipation.SmoothTime,
		SmoothDistance:     cfg.Anticipation.SmoothDistance,
		NegligibleDistance: cfg.Anticipation.NegligibleDistance,
		FixedDelta:         cfg.Movement.FixedDelta,
	}
}

// Spawn creates the local player from its first replicated state.
func (p *NetPrediction) Spawn(world donburi.World, state messages.EntityState) *donburi.Entry {
	entry := archetypes.LocalPlayer.Spawn(world)
	initial := movement.FromNet(state.Transform)

	data := components.AnticipatedPlayerData{
		Transform:    network.NewAnticipatedTransform(initial),
		Reconciler:   network.NewReconciler(p.clock, p.step, movement.Distance, ReconcileConfig(), cfg.Anticipation.HistoryLimit),
		LastReceived: initial,
		HasReceived:  true,
	}
	components.AnticipatedPlayer.SetValue(entry, data)

	player := components.AnticipatedPlayer.Get(entry)
	player.Unregister = p.anticipation.Register(network.ReanticipatorFunc(func(rtt float64) {
		if entry.Valid() {
			p.reanticipate(components.AnticipatedPlayer.Get(entry), rtt)
		}
	}), player.Transform)

	p.writeNet(entry, state)
	if state.Player != nil {
		player.AckTime = state.Player.LastInputTime
		player.HasAck = state.Player.LastInputTime > 0
	}

	log.WithField("id", state.Identity.ID).Info("[netprediction] local player spawned")
	return entry
}

// PredictStep records input and anticipates its result. A reanticipation
// still pending from ApplyAuthoritative runs first, otherwise input would be
// applied to the bare authoritative baseline and then replayed again.
func (p *NetPrediction) PredictStep(entry *donburi.Entry, input messages.PlayerInput) {
	p.anticipation.ProcessReanticipation()
	player := components.AnticipatedPlayer.Get(entry)
	player.Reconciler.Record(input, input.DeltaTime)

	current := player.Transform.Anticipated()
	next := p.step(current, input, input.DeltaTime)
	// An idle step must not cancel a correction being smoothed in.
	if next != current {
		player.Transform.Anticipate(next)
	}
}

// ApplyAuthoritative feeds a replicated state of the local player. A
// transform that differs from the anticipation resets it; the next
// reanticipation pass (AnticipationSystem.Update or PredictStep, whichever
// comes first) replays whatever the authority has not applied yet.
func (p *NetPrediction) ApplyAuthoritative(entry *donburi.Entry, state messages.EntityState) {
	player := components.AnticipatedPlayer.Get(entry)
	p.writeNet(entry, state)

	if state.Player != nil {
		ack := state.Player.LastInputTime
		if !player.HasAck || ack > player.AckTime {
			if ack > 0 {
				p.clock.SetRoundTripTime(p.clock.LocalTime() - ack)
			}
			player.AckTime = ack
			player.HasAck = true
		}
	}

	// An unchanged transform still has to be compared with the anticipation:
	// an input the authority never applied leaves them apart.
	received := movement.FromNet(state.Transform)
	player.LastReceived = received
	player.HasReceived = true
	player.Transform.SetAuthoritative(received)
	if !player.Transform.ShouldReanticipate() && player.HasAck {
		player.Reconciler.History().RemoveBefore(player.AckTime)
	}
}

// Despawn unregisters the player and drops its history.
func (p *NetPrediction) Despawn(entry *donburi.Entry) {
	player := components.AnticipatedPlayer.Get(entry)
	if player.Unregister != nil {
		player.Unregister()
		player.Unregister = nil
	}
	player.Reconciler.Clear()
	player.Transform.Despawn()
}

// Reset forgets recorded input, for when the connection was re-established.
func (p *NetPrediction) Reset(world donburi.World) {
	components.AnticipatedPlayer.Each(world, func(entry *donburi.Entry) {
		player := components.AnticipatedPlayer.Get(entry)
		player.Reconciler.Clear()
		player.HasAck = false
	})
}

// Configure applies the live tuning to every predicted player.
func (p *NetPrediction) Configure(world donburi.World) {
	rc := ReconcileConfig()
	components.AnticipatedPlayer.Each(world, func(entry *donburi.Entry) {
		components.AnticipatedPlayer.Get(entry).Reconciler.SetConfig(rc)
	})
}

func (p *NetPrediction) reanticipate(player *components.AnticipatedPlayerData, rtt float64) {
	var outcome network.Outcome
	if player.HasAck {
		outcome = player.Reconciler.ReanticipateAt(player.Transform, player.AckTime)
	} else {
		outcome = player.Reconciler.Reanticipate(player.Transform, rtt)
	}
	player.LastOutcome = outcome
	player.Outcomes[outcome]++

	log.WithFields(log.Fields{
		"outcome": outcome.String(),
		"pending": player.Reconciler.History().Len(),
		"rtt":     rtt,
	}).Debug("[netprediction] reanticipated")
}

func (p *NetPrediction) writeNet(entry *donburi.Entry, state messages.EntityState) {
	netcomponents.NetIdentity.SetValue(entry, state.Identity)
	netcomponents.NetTransform.SetValue(entry, state.Transform)
	if state.Player != nil {
		netcomponents.NetPlayer.SetValue(entry, *state.Player)
	}
}
