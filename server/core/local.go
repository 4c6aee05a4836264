package core

import (
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	log "github.com/sirupsen/logrus"
)

type localSession struct {
	link  *network.SimulatedLink
	token string
}

// LocalHost runs a Simulation for clients connected through in-process
// simulated links, mirroring what Server does over websockets.
type LocalHost struct {
	sim      *Simulation
	sessions []*localSession
}

func NewLocalHost(sim *Simulation) *LocalHost {
	sim.Start()
	return &LocalHost{sim: sim}
}

// Attach connects a client link. The client joins by sending a JoinRequest.
func (h *LocalHost) Attach(link *network.SimulatedLink) {
	h.sessions = append(h.sessions, &localSession{link: link})
}

// Detach removes a link and its player.
func (h *LocalHost) Detach(link *network.SimulatedLink) {
	for i, s := range h.sessions {
		if s.link != link {
			continue
		}
		if s.token != "" {
			if err := h.sim.RemovePlayer(s.token); err != nil {
				log.WithError(err).Debug("[local] detach")
			}
		}
		h.sessions = append(h.sessions[:i], h.sessions[i+1:]...)
		return
	}
}

// Step handles arrived messages, advances the world one tick and publishes
// the result to every link.
func (h *LocalHost) Step(dt float64) {
	for _, s := range h.sessions {
		for _, msg := range s.link.Receive() {
			h.handle(s, msg)
		}
	}

	h.sim.Step(dt)

	update := h.sim.Snapshot()
	for _, s := range h.sessions {
		s.link.Publish(update)
	}
}

func (h *LocalHost) Simulation() *Simulation {
	return h.sim
}

func (h *LocalHost) handle(s *localSession, msg any) {
	switch m := msg.(type) {
	case messages.JoinRequest:
		if _, err := h.sim.AddPlayer(m.Token, m.PlayerName); err != nil {
			log.WithError(err).Warn("[local] join failed")
			return
		}
		s.token = m.Token
	case messages.PlayerInput:
		if s.token == "" {
			return
		}
		if err := h.sim.QueueInput(s.token, m); err != nil {
			log.WithError(err).Debug("[local] input dropped")
		}
	case messages.ValueRequest:
		if s.token == "" {
			return
		}
		if err := h.sim.RequestValue(m); err != nil {
			log.WithError(err).Debug("[local] value request rejected")
		}
	default:
		log.Warnf("[local] unexpected message %T", msg)
	}
}
