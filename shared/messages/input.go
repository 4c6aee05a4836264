package messages

import (
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
)

// PlayerInput is sent from client to server once per fixed step with the
// buttons held during that step. The authority applies it with the same step
// function the client used to anticipate.
type PlayerInput struct {
	// Time is the client-local time the input was recorded at. The authority
	// echoes it back so the client can trim its history exactly.
	Time      float64
	DeltaTime float64
	Buttons   netconfig.InputList
	// Teleport is the resolved target of a teleport button. Random targets
	// are picked once on the client and carried here so replay and the
	// authority land on the same spot.
	Teleport *netcomponents.NetTransformData
}

// ValueRequest asks the authority to set one of the sample values.
type ValueRequest struct {
	Field netconfig.ValueField
	Value float64
}
