// Package netconfig defines lightweight types shared between client and server
// for network serialization. It has no dependencies so the dedicated server
// binary and the sandbox both stay headless.
package netconfig

// InputList is the set of buttons held during one fixed step.
type InputList uint8

const (
	InputUp InputList = 1 << iota
	InputDown
	InputLeft
	InputRight
	InputRandomTeleport
	InputSmallRandomTeleport
	InputPredictableTeleport

	InputNone InputList = 0
)

// TeleportMask covers every input that moves the player to a resolved target.
const TeleportMask = InputRandomTeleport | InputSmallRandomTeleport | InputPredictableTeleport

func (i InputList) Has(flag InputList) bool {
	return i&flag != 0
}

// Teleports reports whether any teleport button is held.
func (i InputList) Teleports() bool {
	return i&TeleportMask != 0
}

// ValueField selects one of the sample values.
type ValueField int

const (
	ValueA ValueField = iota // snap, anticipation matches the authority
	ValueB                   // snap, authority picks a random value
	ValueC                   // smooth, anticipation matches the authority
	ValueD                   // smooth, authority picks a random value
	ValueE                   // advanced by the authority every tick
	ValueCount
)

func (f ValueField) String() string {
	switch f {
	case ValueA:
		return "A"
	case ValueB:
		return "B"
	case ValueC:
		return "C"
	case ValueD:
		return "D"
	case ValueE:
		return "E"
	}
	return "unknown"
}

// Smoothed reports whether corrections of the field are eased in.
func (f ValueField) Smoothed() bool {
	return f == ValueC || f == ValueD
}

// EntityKind tells replicated entities apart.
type EntityKind int

const (
	KindPlayer EntityKind = iota
	KindPlatform
)

func (k EntityKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindPlatform:
		return "platform"
	}
	return "unknown"
}

// PlatformState is the platform mover's state machine.
type PlatformState int

const (
	PlatformNone PlatformState = iota
	PlatformMoving
	PlatformWaitingVisual
	PlatformPaused
)

func (s PlatformState) String() string {
	switch s {
	case PlatformNone:
		return "none"
	case PlatformMoving:
		return "moving"
	case PlatformWaitingVisual:
		return "waiting-visual"
	case PlatformPaused:
		return "paused"
	}
	return "unknown"
}
