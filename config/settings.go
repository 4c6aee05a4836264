package config

// SavedSettings is the persisted subset of tuning, stored between sandbox runs.
type SavedSettings struct {
	Latency            float64 `json:"latency"`
	Jitter             float64 `json:"jitter"`
	SmoothTime         float64 `json:"smoothTime"`
	SmoothDistance     float64 `json:"smoothDistance"`
	NegligibleDistance float64 `json:"negligibleDistance"`
	VariableSmoothTime float64 `json:"variableSmoothTime"`
}

// CurrentSettings captures the live tuning.
func CurrentSettings() SavedSettings {
	return SavedSettings{
		Latency:            Net.Latency,
		Jitter:             Net.Jitter,
		SmoothTime:         Anticipation.SmoothTime,
		SmoothDistance:     Anticipation.SmoothDistance,
		NegligibleDistance: Anticipation.NegligibleDistance,
		VariableSmoothTime: Anticipation.VariableSmoothTime,
	}
}

// Apply writes saved tuning back into the globals. Negative values are
// ignored.
func (s SavedSettings) Apply() {
	if s.Latency >= 0 {
		Net.Latency = s.Latency
	}
	if s.Jitter >= 0 {
		Net.Jitter = s.Jitter
	}
	if s.SmoothTime >= 0 {
		Anticipation.SmoothTime = s.SmoothTime
	}
	if s.SmoothDistance >= 0 {
		Anticipation.SmoothDistance = s.SmoothDistance
	}
	if s.NegligibleDistance >= 0 {
		Anticipation.NegligibleDistance = s.NegligibleDistance
	}
	if s.VariableSmoothTime >= 0 {
		Anticipation.VariableSmoothTime = s.VariableSmoothTime
	}
}
