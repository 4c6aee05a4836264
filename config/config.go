package config

// AnticipationConfig tunes how corrections to anticipated state are applied.
type AnticipationConfig struct {
	// Player transform reconciliation
	SmoothTime         float64 // Seconds a correction is eased in
	SmoothDistance     float64 // Corrections at or beyond this snap
	NegligibleDistance float64 // Corrections at or below this are dropped

	// Sample values C, D and E
	VariableSmoothTime float64

	HistoryLimit int // Recorded inputs kept per player
}

// MovementConfig contains the player step function's tuning.
type MovementConfig struct {
	MoveSpeed  float64 // Units per second
	TurnSpeed  float64 // Degrees per second
	FixedDelta float64 // Seconds per fixed step
}

// NetConfig contains tick and link settings shared by hosts.
type NetConfig struct {
	TickRate          int
	ObserverTicksAgo  int // Render delay for followers not owning the motion
	FollowerSmoothing float64

	// Simulated link, in seconds
	Latency float64
	Jitter  float64

	ValueEChangePerSecond float64
	ValueModulus          float64 // Sample values live in [0, ValueModulus)
}

// Global configuration instances
var (
	Anticipation AnticipationConfig
	Movement     MovementConfig
	Net          NetConfig
)

func init() {
	Anticipation = AnticipationConfig{
		SmoothTime:         0.1,
		SmoothDistance:     3.0,
		NegligibleDistance: 0.001,
		VariableSmoothTime: 0.25,
		HistoryLimit:       1024,
	}

	Movement = MovementConfig{
		MoveSpeed:  4.0,
		TurnSpeed:  180.0,
		FixedDelta: 1.0 / 50.0,
	}

	Net = NetConfig{
		TickRate:              50,
		ObserverTicksAgo:      6,
		FollowerSmoothing:     0,
		Latency:               0.2,
		Jitter:                0.025,
		ValueEChangePerSecond: 2.5,
		ValueModulus:          10,
	}
}
