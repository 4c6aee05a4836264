package core

import (
	"testing"

	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHostSession(t *testing.T) {
	sim := newTestSimulation(t)
	host := NewLocalHost(sim)

	now := 0.0
	link := network.NewSimulatedLink(func() float64 { return now }, 0.05, 0, 1)
	host.Attach(link)

	// Inputs before joining are dropped.
	require.NoError(t, link.Send(messages.PlayerInput{Time: 0.01, Buttons: netconfig.InputUp}))
	require.NoError(t, link.Send(messages.JoinRequest{Version: "dev", PlayerName: "p", Token: "tok"}))
	require.NoError(t, link.Send(messages.ValueRequest{Field: netconfig.ValueA, Value: 6}))

	var updates []messages.StateUpdate
	for range 10 {
		now += 0.02
		host.Step(0.02)
		updates = append(updates, link.Poll()...)
	}

	assert.Equal(t, 1, sim.PlayerCount())
	require.NotEmpty(t, updates)
	latest := updates[len(updates)-1]
	owned, ok := latest.FindOwned("tok")
	require.True(t, ok)
	assert.Equal(t, 0.0, owned.Player.LastInputTime, "the early input was not applied")
	assert.Equal(t, 6.0, latest.Values.Values[netconfig.ValueA])

	host.Detach(link)
	assert.Equal(t, 0, sim.PlayerCount())
	assert.Same(t, sim, host.Simulation())
}
