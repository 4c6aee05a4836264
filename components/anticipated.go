package components

import (
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// AnticipatedPlayerData is the locally controlled player's predicted
// transform and the input history used to rebuild it.
type AnticipatedPlayerData struct {
	Transform  *network.AnticipatedTransform
	Reconciler *network.Reconciler[network.TransformState, messages.PlayerInput]
	Unregister func()

	// Last authoritative transform applied, to skip unchanged updates.
	LastReceived network.TransformState
	HasReceived  bool

	// AckTime is the client-local time of the newest input the authority
	// confirmed applying.
	AckTime float64
	HasAck  bool

	LastOutcome network.Outcome
	Outcomes    [3]int
}

var AnticipatedPlayer = donburi.NewComponentType[AnticipatedPlayerData]()

// AnticipatedValuesData holds the client's view of the sample values.
type AnticipatedValuesData struct {
	Values       [netconfig.ValueCount]*network.AnticipatedValue[float64]
	Observers    [netconfig.ValueCount]network.ObserverID
	LastReceived [netconfig.ValueCount]float64
	HasReceived  bool
	Unregister   func()
}

var AnticipatedValues = donburi.NewComponentType[AnticipatedValuesData]()
