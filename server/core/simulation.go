package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/movement"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrEmptyToken    = errors.New("empty session token")
)

// maxInputDelta bounds the step a single input may claim.
const maxInputDelta = 0.25

// Simulation is the authoritative world. It is not safe for concurrent use;
// the network server serializes access through its command queue.
type Simulation struct {
	world  donburi.World
	clock  *network.NetworkTime
	arena  *arena.Arena
	tuning movement.Tuning

	values   *Values
	platform *PlatformMover

	worldState donburi.Entity
	platformID donburi.Entity
	players    map[string]donburi.Entity

	tick     int
	nextID   uint
	nextSlot int

	// OnSpawn is called for every replicated entity. Entities created by
	// NewSimulation are announced by Start.
	OnSpawn func(donburi.Entity)
}

// NewSimulation builds the world for an arena. seed drives the random sample
// values.
func NewSimulation(a *arena.Arena, seed uint64) *Simulation {
	s := &Simulation{
		world:   donburi.NewWorld(),
		clock:   network.NewNetworkTime(config.Net.TickRate, true),
		arena:   a,
		tuning:  movement.Tuning{MoveSpeed: config.Movement.MoveSpeed, TurnSpeed: config.Movement.TurnSpeed},
		players: make(map[string]donburi.Entity),
	}
	rng := rand.New(rand.NewPCG(seed, seed+1))
	s.values = NewValues(rng, config.Net.ValueEChangePerSecond, config.Net.ValueModulus, config.Anticipation.VariableSmoothTime)

	s.worldState = s.world.Create(netcomponents.NetValues, netcomponents.NetServerClock)
	s.platformID = s.world.Create(netcomponents.NetIdentity, netcomponents.NetTransform, netcomponents.NetPlatform)
	s.platform = NewPlatformMover(a.Data.Platform, s.clock)
	s.platform.Start()

	entry := s.world.Entry(s.platformID)
	netcomponents.NetIdentity.SetValue(entry, netcomponents.NetIdentityData{ID: s.allocID(), Kind: netconfig.KindPlatform})
	s.writePlatform(entry)
	s.writeWorldState()
	return s
}

// Start announces the entities created with the world.
func (s *Simulation) Start() {
	s.spawned(s.worldState)
	s.spawned(s.platformID)
}

func (s *Simulation) World() donburi.World {
	return s.world
}

func (s *Simulation) Clock() *network.NetworkTime {
	return s.clock
}

func (s *Simulation) Tick() int {
	return s.tick
}

func (s *Simulation) Values() *Values {
	return s.values
}

func (s *Simulation) Platform() *PlatformMover {
	return s.platform
}

func (s *Simulation) PlayerCount() int {
	return len(s.players)
}

// AddPlayer spawns a player for token, or returns the existing one when the
// token already joined.
func (s *Simulation) AddPlayer(token, name string) (uint, error) {
	if token == "" {
		return 0, ErrEmptyToken
	}
	if e, ok := s.players[token]; ok {
		return netcomponents.NetIdentity.Get(s.world.Entry(e)).ID, nil
	}

	slot := s.nextSlot
	s.nextSlot++
	spawn := network.TransformState{Position: s.arena.Spawn(slot), Rotation: mgl64.QuatIdent()}

	entity := s.world.Create(netcomponents.NetIdentity, netcomponents.NetTransform, netcomponents.NetPlayer, ServerPlayer)
	entry := s.world.Entry(entity)
	id := s.allocID()
	netcomponents.NetIdentity.SetValue(entry, netcomponents.NetIdentityData{ID: id, Kind: netconfig.KindPlayer, Owner: token})
	ServerPlayer.SetValue(entry, ServerPlayerData{
		Token:     token,
		Name:      name,
		Slot:      slot,
		Transform: network.NewAnticipatedTransform(spawn, network.AsAuthority()),
	})
	s.writePlayer(entry)
	s.players[token] = entity

	log.WithFields(log.Fields{"id": id, "slot": slot, "name": name}).Info("[sim] player joined")
	s.spawned(entity)
	return id, nil
}

// RemovePlayer despawns the player owned by token.
func (s *Simulation) RemovePlayer(token string) error {
	entity, ok := s.players[token]
	if !ok {
		return fmt.Errorf("remove %q: %w", token, ErrUnknownPlayer)
	}
	delete(s.players, token)
	if s.world.Valid(entity) {
		entry := s.world.Entry(entity)
		ServerPlayer.Get(entry).Transform.Despawn()
		s.world.Remove(entity)
	}
	log.WithField("token", token).Info("[sim] player left")
	return nil
}

// QueueInput stores an input to be applied on the next tick.
func (s *Simulation) QueueInput(token string, in messages.PlayerInput) error {
	entity, ok := s.players[token]
	if !ok || !s.world.Valid(entity) {
		return fmt.Errorf("input from %q: %w", token, ErrUnknownPlayer)
	}
	p := ServerPlayer.Get(s.world.Entry(entity))
	p.Pending = append(p.Pending, in)
	return nil
}

// RequestValue applies a client's value request.
func (s *Simulation) RequestValue(req messages.ValueRequest) error {
	if err := s.values.Set(req.Field, req.Value); err != nil {
		return fmt.Errorf("value %s: %w", req.Field, err)
	}
	s.writeWorldState()
	return nil
}

// Step advances the world by one tick of dt seconds.
func (s *Simulation) Step(dt float64) {
	s.tick++
	s.clock.SetLocalTime(s.clock.TickTime(s.tick))

	step := movement.Step(s.tuning, s.arena)
	ServerPlayer.Each(s.world, func(entry *donburi.Entry) {
		p := ServerPlayer.Get(entry)
		for _, in := range p.Pending {
			if !p.accept(in) {
				continue
			}
			inputDt := in.DeltaTime
			if inputDt <= 0 || inputDt > maxInputDelta {
				inputDt = config.Movement.FixedDelta
			}
			p.Transform.Anticipate(step(p.Transform.Anticipated(), in, inputDt))
			p.LastInputTime = in.Time
			p.HasInput = true
		}
		p.Pending = p.Pending[:0]
		s.writePlayer(entry)
	})

	s.values.Step(dt)
	s.platform.Step(dt, s.tick)
	s.writePlatform(s.world.Entry(s.platformID))
	s.writeWorldState()
}

// Snapshot collects the replicated state, entities ordered by ID.
func (s *Simulation) Snapshot() messages.StateUpdate {
	ws := s.world.Entry(s.worldState)
	update := messages.StateUpdate{
		Clock:  *netcomponents.NetServerClock.Get(ws),
		Values: *netcomponents.NetValues.Get(ws),
	}

	netcomponents.NetIdentity.Each(s.world, func(entry *donburi.Entry) {
		state := messages.EntityState{
			Identity:  *netcomponents.NetIdentity.Get(entry),
			Transform: *netcomponents.NetTransform.Get(entry),
		}
		if entry.HasComponent(netcomponents.NetPlayer) {
			p := *netcomponents.NetPlayer.Get(entry)
			state.Player = &p
		}
		if entry.HasComponent(netcomponents.NetPlatform) {
			p := *netcomponents.NetPlatform.Get(entry)
			state.Platform = &p
		}
		update.Entities = append(update.Entities, state)
	})
	sort.Slice(update.Entities, func(i, j int) bool {
		return update.Entities[i].Identity.ID < update.Entities[j].Identity.ID
	})
	return update
}

// PlayerTransform is the authoritative transform of token's player.
func (s *Simulation) PlayerTransform(token string) (network.TransformState, bool) {
	entity, ok := s.players[token]
	if !ok {
		return network.TransformState{}, false
	}
	return ServerPlayer.Get(s.world.Entry(entity)).Transform.AuthoritativeState(), true
}

// Tokens lists the joined players' tokens in join order.
func (s *Simulation) Tokens() []string {
	tokens := make([]string, 0, len(s.players))
	for t := range s.players {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b string) int {
		return s.slot(a) - s.slot(b)
	})
	return tokens
}

// Close releases observers held by the world.
func (s *Simulation) Close() {
	s.values.Close()
}

func (s *Simulation) slot(token string) int {
	return ServerPlayer.Get(s.world.Entry(s.players[token])).Slot
}

func (s *Simulation) allocID() uint {
	s.nextID++
	return s.nextID
}

func (s *Simulation) spawned(entity donburi.Entity) {
	if s.OnSpawn != nil {
		s.OnSpawn(entity)
	}
}

func (s *Simulation) writePlayer(entry *donburi.Entry) {
	p := ServerPlayer.Get(entry)
	netcomponents.NetTransform.SetValue(entry, movement.ToNet(p.Transform.AuthoritativeState()))
	netcomponents.NetPlayer.SetValue(entry, netcomponents.NetPlayerData{
		LastInputTime: p.LastInputTime,
		Name:          p.Name,
	})
}

func (s *Simulation) writePlatform(entry *donburi.Entry) {
	move := s.platform.Movement()
	netcomponents.NetTransform.SetValue(entry, movement.ToNet(s.platform.Transform()))
	netcomponents.NetPlatform.SetValue(entry, netcomponents.NetPlatformData{
		State: s.platform.State(),
		MoveX: move.X(), MoveY: move.Y(), MoveZ: move.Z(),
		Tick: s.tick,
	})
}

func (s *Simulation) writeWorldState() {
	entry := s.world.Entry(s.worldState)
	netcomponents.NetValues.SetValue(entry, s.values.Data())
	netcomponents.NetServerClock.SetValue(entry, netcomponents.NetServerClockData{
		Tick: s.tick,
		Time: s.clock.ServerTime(),
	})
}
