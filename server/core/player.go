package core

import (
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/yohamta/donburi"
)

// ServerPlayerData holds per-player simulation state on the server. It is
// never synced; NetTransform and NetPlayer mirror it after every tick.
type ServerPlayerData struct {
	Token string
	Name  string
	Slot  int

	// Transform is in authority mode, so anticipating writes the
	// authoritative value directly.
	Transform *network.AnticipatedTransform

	// Inputs received since the last tick, in arrival order.
	Pending       []messages.PlayerInput
	LastInputTime float64
	HasInput      bool
}

var ServerPlayer = donburi.NewComponentType[ServerPlayerData]()

// accept filters inputs already applied, which a resend or reordering
// transport could deliver twice.
func (p *ServerPlayerData) accept(in messages.PlayerInput) bool {
	return !p.HasInput || in.Time > p.LastInputTime
}
