package systems

import (
	"math/rand/v2"

	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/movement"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/automoto/anticipation-mp/tags"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// InputSource yields the buttons held for the next fixed step.
type InputSource interface {
	Next() netconfig.InputList
}

// InputFunc adapts a function to InputSource.
type InputFunc func() netconfig.InputList

func (f InputFunc) Next() netconfig.InputList {
	return f()
}

// NetInput turns held buttons into inputs once per fixed step: resolve,
// anticipate locally, then send to the authority.
type NetInput struct {
	source     InputSource
	send       func(any) error
	prediction *NetPrediction
	clock      network.Clock
	rng        *rand.Rand
	dt         float64

	sent int
}

func NewNetInput(source InputSource, send func(any) error, prediction *NetPrediction, clock network.Clock, rng *rand.Rand, dt float64) *NetInput {
	return &NetInput{
		source:     source,
		send:       send,
		prediction: prediction,
		clock:      clock,
		rng:        rng,
		dt:         dt,
	}
}

// Update runs one fixed step. Nothing is consumed before the local player
// exists.
func (n *NetInput) Update(world donburi.World) {
	entry, ok := tags.LocalPlayer.First(world)
	if !ok {
		return
	}

	input := movement.ResolveInput(n.source.Next(), n.clock.LocalTime(), n.dt, n.rng)
	n.prediction.PredictStep(entry, input)

	if err := n.send(input); err != nil {
		log.WithError(err).Warn("[netinput] input not sent")
		return
	}
	n.sent++
}

// Sent is the number of inputs handed to the link.
func (n *NetInput) Sent() int {
	return n.sent
}
