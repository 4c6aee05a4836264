// Package sandbox runs an authority and predicting clients in one process on
// a virtual clock, connected through simulated links.
package sandbox

import (
	"fmt"
	"math"
	"math/rand/v2"

	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/scenes"
	"github.com/automoto/anticipation-mp/server/core"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/systems"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const version = "sandbox"

// Client is one predicting client and its link.
type Client struct {
	Name  string
	Token string
	Scene *scenes.NetworkedScene
	Link  *network.SimulatedLink
	Bot   *systems.Bot
}

// Sandbox owns the virtual clock. Every Step advances it by one fixed delta,
// ticks the authority and then every client.
type Sandbox struct {
	Host    *core.LocalHost
	Clients []*Client

	arena *arena.Arena
	now   float64
	dt    float64
	steps int
	seed  uint64
}

// New creates an authority for a. Clients are added with AddClient.
func New(a *arena.Arena, seed uint64) *Sandbox {
	return &Sandbox{
		Host:  core.NewLocalHost(core.NewSimulation(a, seed)),
		arena: a,
		dt:    cfg.Movement.FixedDelta,
		seed:  seed,
	}
}

// Now is the virtual time in seconds.
func (s *Sandbox) Now() float64 {
	return s.now
}

// AddClient connects a bot driven client and sends its join request.
func (s *Sandbox) AddClient(name string) (*Client, error) {
	idx := uint64(len(s.Clients))
	seed := s.seed + 100*(idx+1)

	link := network.NewSimulatedLink(s.Now, cfg.Net.Latency, cfg.Net.Jitter, seed)
	bot := systems.NewBot(cfg.Bot, rand.New(rand.NewPCG(seed, seed+7)))
	token := uuid.NewString()

	c := &Client{
		Name:  name,
		Token: token,
		Scene: scenes.NewNetworkedScene(link, token, s.arena, bot, seed),
		Link:  link,
		Bot:   bot,
	}
	s.Host.Attach(link)
	if err := c.Scene.Join(version, name); err != nil {
		return nil, fmt.Errorf("join %s: %w", name, err)
	}
	s.Clients = append(s.Clients, c)
	return c, nil
}

// Step advances everything by one fixed delta.
func (s *Sandbox) Step() {
	s.now += s.dt
	s.steps++
	s.Host.Step(s.dt)
	for _, c := range s.Clients {
		c.Scene.Update(s.dt)
	}
}

// Run steps until duration seconds of virtual time have passed, calling
// report every reportEvery seconds when it is non-nil.
func (s *Sandbox) Run(duration, reportEvery float64, report func(*Sandbox)) {
	var nextReport float64
	if reportEvery > 0 {
		nextReport = (math.Floor(s.now/reportEvery+1e-9) + 1) * reportEvery
	}
	for s.now+s.dt/2 < duration {
		s.Step()
		if report != nil && reportEvery > 0 && s.now+s.dt/2 >= nextReport {
			report(s)
			nextReport += reportEvery
		}
	}
}

// SetConditions changes every link and resets the clients, as a reconnect
// would.
func (s *Sandbox) SetConditions(latency, jitter float64) {
	for _, c := range s.Clients {
		c.Link.SetConditions(latency, jitter)
		c.Scene.Reset()
	}
	log.WithFields(log.Fields{"latency": latency, "jitter": jitter}).Info("[sandbox] link conditions changed")
}

// Report is a snapshot of how far each client's anticipation is from the
// authority.
type Report struct {
	Time    float64
	Clients []ClientReport
}

type ClientReport struct {
	Name      string
	Spawned   bool
	Error     float64
	Pending   int
	Outcomes  [3]int
	RTT       float64
	Followers int
}

// Report measures every client's local player against the authority.
func (s *Sandbox) Report() Report {
	r := Report{Time: s.now}
	sim := s.Host.Simulation()
	for _, c := range s.Clients {
		cr := ClientReport{
			Name:      c.Name,
			RTT:       c.Scene.Clock().LastRoundTripTime(),
			Followers: len(c.Scene.Followed()),
		}
		if p, ok := c.Scene.LocalPlayer(); ok {
			cr.Spawned = true
			cr.Pending = p.Reconciler.History().Len()
			cr.Outcomes = p.Outcomes
			if auth, ok := sim.PlayerTransform(c.Token); ok {
				cr.Error = network.PositionDistance(p.Transform.Anticipated(), auth)
			}
		}
		r.Clients = append(r.Clients, cr)
	}
	return r
}

// LogReport writes Report through logrus.
func LogReport(s *Sandbox) {
	r := s.Report()
	for _, c := range r.Clients {
		log.WithFields(log.Fields{
			"t":          fmt.Sprintf("%.2f", r.Time),
			"client":     c.Name,
			"spawned":    c.Spawned,
			"error":      fmt.Sprintf("%.3f", c.Error),
			"pending":    c.Pending,
			"suppressed": c.Outcomes[network.OutcomeSuppressed],
			"smoothed":   c.Outcomes[network.OutcomeSmoothed],
			"snapped":    c.Outcomes[network.OutcomeSnapped],
			"rtt":        fmt.Sprintf("%.3f", c.RTT),
			"followers":  c.Followers,
		}).Info("[sandbox] report")
	}
}
