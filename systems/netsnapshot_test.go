package systems

import (
	"fmt"
	"testing"

	"github.com/automoto/anticipation-mp/components"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/movement"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/automoto/anticipation-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

type clientFixture struct {
	world        donburi.World
	clock        *network.NetworkTime
	anticipation *network.AnticipationSystem
	prediction   *NetPrediction
	followers    *NetFollowers
	values       *NetValues
	snapshot     *NetSnapshot
	sent         []any
}

func newClientFixture(token string) *clientFixture {
	f := &clientFixture{
		world: donburi.NewWorld(),
		clock: network.NewNetworkTime(50, false),
	}
	send := func(msg any) error {
		f.sent = append(f.sent, msg)
		return nil
	}
	f.anticipation = network.NewAnticipationSystem(f.clock)
	f.prediction = NewNetPrediction(f.clock, f.anticipation, nil)
	f.followers = NewNetFollowers(f.clock)
	f.values = NewNetValues(f.anticipation, send)
	f.snapshot = NewNetSnapshot(f.clock, func() string { return token }, f.prediction, f.followers, f.values)
	return f
}

func playerState(id uint, owner string, x, ack float64) messages.EntityState {
	return messages.EntityState{
		Identity:  netcomponents.NetIdentityData{ID: id, Kind: netconfig.KindPlayer, Owner: owner},
		Transform: netcomponents.NewNetTransform(mgl64.Vec3{x, 0, 0}, mgl64.QuatIdent()),
		Player:    &netcomponents.NetPlayerData{LastInputTime: ack},
	}
}

func platformState(tick int, x float64) messages.EntityState {
	return messages.EntityState{
		Identity:  netcomponents.NetIdentityData{ID: 1, Kind: netconfig.KindPlatform},
		Transform: netcomponents.NewNetTransform(mgl64.Vec3{x, 0, 0}, mgl64.QuatIdent()),
		Platform:  &netcomponents.NetPlatformData{State: netconfig.PlatformMoving, Tick: tick},
	}
}

type eachable interface {
	Each(world donburi.World, callback func(*donburi.Entry))
}

func countTag(world donburi.World, tag eachable) int {
	n := 0
	tag.Each(world, func(*donburi.Entry) { n++ })
	return n
}

func TestNetSnapshotSpawnsAndDespawns(t *testing.T) {
	f := newClientFixture("me")

	f.snapshot.Apply(f.world, messages.StateUpdate{
		Clock: netcomponents.NetServerClockData{Tick: 10, Time: 0.2},
		Entities: []messages.EntityState{
			platformState(10, 0),
			playerState(2, "me", 0, 0),
			playerState(3, "other", 5, 0),
		},
	})

	assert.Equal(t, 3, f.snapshot.Len())
	assert.Equal(t, 1, countTag(f.world, tags.LocalPlayer))
	assert.Equal(t, 1, countTag(f.world, tags.RemotePlayer))
	assert.Equal(t, 1, countTag(f.world, tags.Platform))
	assert.Equal(t, 1, countTag(f.world, tags.WorldState))
	assert.InDelta(t, 0.2, f.clock.ServerTime(), 1e-12, "server time follows the update")

	local, ok := f.snapshot.Local(f.world)
	require.True(t, ok)
	assert.Equal(t, uint(2), netcomponents.NetIdentity.Get(local).ID)
	assert.Equal(t, 1, f.anticipation.Len()-int(netconfig.ValueCount), "local player registered")

	f.snapshot.Apply(f.world, messages.StateUpdate{
		Clock: netcomponents.NetServerClockData{Tick: 11, Time: 0.22},
		Entities: []messages.EntityState{
			platformState(11, 0.1),
			playerState(2, "me", 0, 0),
		},
	})

	assert.Equal(t, 2, f.snapshot.Len())
	assert.Equal(t, 0, countTag(f.world, tags.RemotePlayer), "missing entities are despawned")
	assert.Equal(t, 1, countTag(f.world, tags.WorldState), "the world state is spawned once")

	f.snapshot.Apply(f.world, messages.StateUpdate{Clock: netcomponents.NetServerClockData{Tick: 12, Time: 0.24}})
	assert.Equal(t, 0, countTag(f.world, tags.LocalPlayer))
	assert.Equal(t, int(netconfig.ValueCount), f.anticipation.Len(), "despawned player unregistered")
}

func TestNetPredictionReconciles(t *testing.T) {
	f := newClientFixture("me")
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 0, 0)},
	})
	entry, ok := f.snapshot.Local(f.world)
	require.True(t, ok)
	player := components.AnticipatedPlayer.Get(entry)

	f.clock.Advance(0.02)
	f.prediction.PredictStep(entry, messages.PlayerInput{Time: 0.02, DeltaTime: 0.02, Buttons: netconfig.InputUp})
	assert.InDelta(t, 0.08, player.Transform.Anticipated().Position.X(), 1e-12, "applied before the authority answers")

	// The authority confirms the input one round trip later.
	f.clock.Advance(0.1)
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 0.08, 0.02)},
	})
	f.anticipation.Update(0.02)
	assert.InDelta(t, 0.1, f.clock.LastRoundTripTime(), 1e-9)
	assert.InDelta(t, 0.08, player.Transform.Anticipated().Position.X(), 1e-12)
	assert.Equal(t, 0.02, player.AckTime)

	// A correction replays the unconfirmed input on top and is smoothed in.
	f.clock.Advance(0.02)
	f.prediction.PredictStep(entry, messages.PlayerInput{Time: f.clock.LocalTime(), DeltaTime: 0.02, Buttons: netconfig.InputUp})
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 1, 0.02)},
	})
	f.anticipation.Update(0)
	assert.Equal(t, network.OutcomeSmoothed, player.LastOutcome)
	assert.Equal(t, 1, player.Outcomes[network.OutcomeSmoothed])
	assert.Equal(t, 1, player.Reconciler.History().Len())

	f.anticipation.Update(1)
	assert.InDelta(t, 1.08, player.Transform.Anticipated().Position.X(), 1e-9)
}

func TestNetPredictionCorrectsLostInput(t *testing.T) {
	for _, lost := range []int{1, 10} {
		t.Run(fmt.Sprintf("%d inputs", lost), func(t *testing.T) {
			f := newClientFixture("me")
			f.snapshot.Apply(f.world, messages.StateUpdate{
				Entities: []messages.EntityState{playerState(2, "me", 0, 0)},
			})
			entry, ok := f.snapshot.Local(f.world)
			require.True(t, ok)
			player := components.AnticipatedPlayer.Get(entry)

			step := func(buttons netconfig.InputList) float64 {
				f.clock.Advance(0.02)
				now := f.clock.LocalTime()
				f.prediction.PredictStep(entry, messages.PlayerInput{Time: now, DeltaTime: 0.02, Buttons: buttons})
				return now
			}

			// None of these reach the authority.
			for range lost {
				step(netconfig.InputUp)
			}
			require.InDelta(t, 0.08*float64(lost), player.Transform.Anticipated().Position.X(), 1e-9)

			// Idle inputs that do arrive are acknowledged five steps later,
			// while the authority keeps reporting the same transform.
			var sent []float64
			for range 100 {
				sent = append(sent, step(netconfig.InputNone))
				var ack float64
				if len(sent) > 5 {
					ack = sent[len(sent)-6]
				}
				f.snapshot.Apply(f.world, messages.StateUpdate{
					Entities: []messages.EntityState{playerState(2, "me", 0, ack)},
				})
				f.anticipation.Update(0.02)
			}

			assert.InDelta(t, 0, player.Transform.Anticipated().Position.X(), 1e-3)
			assert.Equal(t, 5, player.Reconciler.History().Len(), "only unacknowledged idle inputs remain")
		})
	}
}

func TestNetPredictionInputAfterUpdateCountsOnce(t *testing.T) {
	f := newClientFixture("me")
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 0, 0)},
	})
	entry, _ := f.snapshot.Local(f.world)
	player := components.AnticipatedPlayer.Get(entry)

	up := func() {
		f.clock.Advance(0.02)
		f.prediction.PredictStep(entry, messages.PlayerInput{Time: f.clock.LocalTime(), DeltaTime: 0.02, Buttons: netconfig.InputUp})
	}
	up()
	up()

	// A correction arrives and the next input is taken before the system
	// updates.
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 1, 0.02)},
	})
	up()
	assert.False(t, player.Transform.ShouldReanticipate(), "handled before the input was applied")
	assert.Equal(t, 1, player.Outcomes[network.OutcomeSmoothed])
	assert.Equal(t, 2, player.Reconciler.History().Len())

	// The authority applies the second input on top of its correction.
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 1.08, 0.04)},
	})
	f.anticipation.Update(1)
	assert.InDelta(t, 1.16, player.Transform.Anticipated().Position.X(), 1e-9, "third input replayed once")
	assert.Equal(t, 1, player.Reconciler.History().Len())
}

func TestNetPredictionIdleKeepsSmoothing(t *testing.T) {
	f := newClientFixture("me")
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 0, 0)},
	})
	entry, _ := f.snapshot.Local(f.world)
	player := components.AnticipatedPlayer.Get(entry)

	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 1, 0)},
	})
	f.anticipation.Update(0)
	require.True(t, player.Transform.IsSmoothing())

	f.clock.Advance(0.02)
	f.prediction.PredictStep(entry, messages.PlayerInput{Time: f.clock.LocalTime(), DeltaTime: 0.02})
	assert.True(t, player.Transform.IsSmoothing(), "an input that moves nothing keeps the correction going")
}

func TestNetPredictionReset(t *testing.T) {
	f := newClientFixture("me")
	f.snapshot.Apply(f.world, messages.StateUpdate{
		Entities: []messages.EntityState{playerState(2, "me", 0, 0)},
	})
	entry, _ := f.snapshot.Local(f.world)
	player := components.AnticipatedPlayer.Get(entry)

	f.clock.Advance(0.02)
	f.prediction.PredictStep(entry, messages.PlayerInput{Time: 0.02, DeltaTime: 0.02, Buttons: netconfig.InputUp})
	require.Equal(t, 1, player.Reconciler.History().Len())

	f.prediction.Reset(f.world)
	assert.Equal(t, 0, player.Reconciler.History().Len())
	assert.False(t, player.HasAck)
}

func TestNetValues(t *testing.T) {
	f := newClientFixture("me")
	f.snapshot.Apply(f.world, messages.StateUpdate{})
	entry, ok := tags.WorldState.First(f.world)
	require.True(t, ok)

	require.NoError(t, f.values.Request(entry, netconfig.ValueA, 3))
	assert.Equal(t, 3.0, f.values.Value(entry, netconfig.ValueA), "anticipated immediately")
	require.Len(t, f.sent, 1)
	assert.Equal(t, messages.ValueRequest{Field: netconfig.ValueA, Value: 3}, f.sent[0])

	assert.ErrorIs(t, f.values.Request(entry, netconfig.ValueE, 1), ErrReadOnlyValue)
	assert.ErrorIs(t, f.values.Request(entry, netconfig.ValueField(7), 1), ErrUnknownValue)

	var data netcomponents.NetValuesData
	data.Values[netconfig.ValueA] = 3
	data.Values[netconfig.ValueB] = 6
	data.Values[netconfig.ValueD] = 4
	data.Values[netconfig.ValueE] = 2
	f.snapshot.Apply(f.world, messages.StateUpdate{Values: data})
	f.anticipation.Update(0.125)

	assert.Equal(t, 3.0, f.values.Value(entry, netconfig.ValueA), "confirmed")
	assert.Equal(t, 6.0, f.values.Value(entry, netconfig.ValueB), "snapped")
	assert.InDelta(t, 2, f.values.Value(entry, netconfig.ValueD), 1e-9, "halfway through smoothing")
	assert.InDelta(t, 1.3125, f.values.Value(entry, netconfig.ValueE), 1e-9)

	f.anticipation.Update(0.125)
	assert.InDelta(t, 4, f.values.Value(entry, netconfig.ValueD), 1e-9)
	assert.InDelta(t, 2.625, f.values.Value(entry, netconfig.ValueE), 1e-9, "extrapolated past the sample")
}

func TestNetFollowersRenderInThePast(t *testing.T) {
	f := newClientFixture("me")

	var entry *donburi.Entry
	for k := 1; k <= 20; k++ {
		now := f.clock.TickTime(k)
		f.clock.SetLocalTime(now)
		f.clock.ObserveServerTime(now)
		state := playerState(3, "other", float64(k), 0)
		if entry == nil {
			entry = f.followers.Spawn(f.world, state, k)
		} else {
			f.followers.Push(entry, state, k)
		}
		f.followers.Update(f.world, f.clock.TickDelta())
	}

	rendered := components.NetFollower.Get(entry).Rendered
	assert.InDelta(t, 14, rendered.Position.X(), 1e-6)

	f.followers.Despawn(entry)
	assert.False(t, components.NetFollower.Get(entry).Follower.IsFollowing())
}

func TestFromNetRoundTrip(t *testing.T) {
	state := network.TransformState{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()}
	assert.Equal(t, state, movement.FromNet(movement.ToNet(state)))
}
