package core

import (
	"sync"

	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// Server exposes a Simulation over necs websockets. Router callbacks run on
// transport goroutines, so they only queue commands; the tick loop drains
// the queue before each tick.
type Server struct {
	sim       *Simulation
	loop      *TickLoop
	transport *transports.WsServerTransport
	version   string

	mu       sync.Mutex
	commands []func()
	// Track which network client owns which session token
	clientTokens map[*router.NetworkClient]string
}

// NewServer wraps sim. An empty version accepts any client.
func NewServer(sim *Simulation, tickRate int, version string) *Server {
	s := &Server{
		sim:          sim,
		version:      version,
		clientTokens: make(map[*router.NetworkClient]string),
	}
	s.loop = NewTickLoop(s, tickRate)

	srvsync.UseEsync(sim.World())
	sim.OnSpawn = s.syncEntity

	s.setupRouterCallbacks()
	return s
}

// Start begins the server on the given port.
func (s *Server) Start(port uint) error {
	s.sim.Start()
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.loop.Stop()
	s.sim.Close()
}

// Tick runs one authority step: queued client commands, the simulation,
// then replication of the new state.
func (s *Server) Tick(dt float64) {
	s.ProcessCommands()
	s.sim.Step(dt)

	if err := srvsync.DoSync(); err != nil {
		log.WithError(err).Warn("[server] sync error")
	}
}

func (s *Server) Simulation() *Simulation {
	return s.sim
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Infof("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.onJoin(client, req)
	})

	router.On(func(client *router.NetworkClient, input messages.PlayerInput) {
		s.withToken(client, func(token string) {
			if err := s.sim.QueueInput(token, input); err != nil {
				log.WithError(err).Debug("[server] input dropped")
			}
		})
	})

	router.On(func(client *router.NetworkClient, req messages.ValueRequest) {
		s.withToken(client, func(string) {
			if err := s.sim.RequestValue(req); err != nil {
				log.WithError(err).Warn("[server] value request rejected")
			}
		})
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.WithError(err).Warnf("[server] client %s error", client.Id())
	})
}

func (s *Server) onJoin(client *router.NetworkClient, req messages.JoinRequest) {
	if s.version != "" && req.Version != s.version {
		log.Warnf("[server] rejecting %s: version %q, want %q", client.Id(), req.Version, s.version)
		return
	}

	s.enqueue(func() {
		id, err := s.sim.AddPlayer(req.Token, req.PlayerName)
		if err != nil {
			log.WithError(err).Warnf("[server] join from %s failed", client.Id())
			return
		}
		s.mu.Lock()
		s.clientTokens[client] = req.Token
		s.mu.Unlock()
		log.Infof("[server] player %d spawned for client %s", id, client.Id())
	})
}

func (s *Server) onDisconnect(client *router.NetworkClient, err error) {
	if err != nil {
		log.Infof("[server] client %s disconnected with error: %v", client.Id(), err)
	} else {
		log.Infof("[server] client %s disconnected", client.Id())
	}

	s.enqueue(func() {
		s.mu.Lock()
		token, ok := s.clientTokens[client]
		delete(s.clientTokens, client)
		s.mu.Unlock()
		if !ok {
			return
		}
		if err := s.sim.RemovePlayer(token); err != nil {
			log.WithError(err).Debug("[server] remove player")
		}
	})
}

// withToken queues fn for a client that already joined.
func (s *Server) withToken(client *router.NetworkClient, fn func(token string)) {
	s.enqueue(func() {
		s.mu.Lock()
		token, ok := s.clientTokens[client]
		s.mu.Unlock()
		if ok {
			fn(token)
		}
	})
}

func (s *Server) enqueue(cmd func()) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// ProcessCommands runs everything queued by router callbacks, in order.
func (s *Server) ProcessCommands() {
	s.mu.Lock()
	cmds := s.commands
	s.commands = nil
	s.mu.Unlock()

	for _, cmd := range cmds {
		cmd()
	}
}

// PlayerCount returns the number of joined players.
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clientTokens)
}

// syncEntity marks a new entity for replication with the components its
// kind carries.
func (s *Server) syncEntity(entity donburi.Entity) {
	world := s.sim.World()
	entry := world.Entry(entity)

	var err error
	switch {
	case entry.HasComponent(netcomponents.NetServerClock):
		err = srvsync.NetworkSync(world, &entity, netcomponents.NetValues, netcomponents.NetServerClock)
	case entry.HasComponent(netcomponents.NetPlatform):
		err = srvsync.NetworkSync(world, &entity, netcomponents.NetIdentity, netcomponents.NetTransform, netcomponents.NetPlatform)
	default:
		err = srvsync.NetworkSync(world, &entity, netcomponents.NetIdentity, netcomponents.NetTransform, netcomponents.NetPlayer)
	}
	if err != nil {
		log.WithError(err).Error("[server] failed to set up network sync")
	}
}
