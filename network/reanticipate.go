package network

// StepFunc advances state by one recorded input. It must be pure: the same
// state, input and dt always give the same result, or replay drifts.
type StepFunc[S, I any] func(state S, input I, dt float64) S

// DistanceFunc measures how far apart two states are.
type DistanceFunc[S any] func(a, b S) float64

// Reanticipatable is the state a Reconciler rebuilds. AnticipatedValue and
// AnticipatedTransform both satisfy it.
type Reanticipatable[S any] interface {
	Anticipated() S
	PreviousAnticipated() S
	Anticipate(S)
	Smooth(from, to S, duration float64)
}

type ReconcileConfig struct {
	// SmoothTime is how long a correction is eased in, in seconds.
	SmoothTime float64
	// SmoothDistance is the exclusive upper bound for smoothing. Larger
	// corrections snap.
	SmoothDistance float64
	// NegligibleDistance and below keeps the previous anticipation.
	NegligibleDistance float64
	// FixedDelta replays frames recorded without their own DeltaTime.
	FixedDelta float64
}

// Outcome reports how a reconciliation resolved.
type Outcome int

const (
	OutcomeSuppressed Outcome = iota
	OutcomeSmoothed
	OutcomeSnapped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeSmoothed:
		return "smoothed"
	case OutcomeSnapped:
		return "snapped"
	}
	return "unknown"
}

// Reconciler owns one entity's input history and rebuilds its anticipated
// state whenever the authority reports a new baseline.
type Reconciler[S, I any] struct {
	history  *FrameHistory[I]
	clock    Clock
	step     StepFunc[S, I]
	distance DistanceFunc[S]
	cfg      ReconcileConfig
}

func NewReconciler[S, I any](clock Clock, step StepFunc[S, I], distance DistanceFunc[S], cfg ReconcileConfig, historyLimit int) *Reconciler[S, I] {
	return &Reconciler[S, I]{
		history:  NewFrameHistory[I](historyLimit),
		clock:    clock,
		step:     step,
		distance: distance,
		cfg:      cfg,
	}
}

func (r *Reconciler[S, I]) History() *FrameHistory[I] {
	return r.history
}

func (r *Reconciler[S, I]) Config() ReconcileConfig {
	return r.cfg
}

func (r *Reconciler[S, I]) SetConfig(cfg ReconcileConfig) {
	r.cfg = cfg
}

// Record stores input at the current local time and returns that time, which
// the caller sends along so the authority can echo it back.
func (r *Reconciler[S, I]) Record(input I, dt float64) float64 {
	now := r.clock.LocalTime()
	r.history.AddFrame(FrameData[I]{Time: now, DeltaTime: dt, Item: input})
	return now
}

// Reanticipate rebuilds target from the authoritative baseline it currently
// holds, estimating the authoritative sample time as one round trip ago.
func (r *Reconciler[S, I]) Reanticipate(target Reanticipatable[S], lastRTT float64) Outcome {
	return r.ReanticipateAt(target, r.clock.LocalTime()-lastRTT)
}

// ReanticipateAt replays every recorded input newer than authorityTime on top
// of target's current anticipated value, which must already hold the fresh
// authoritative baseline. History up to authorityTime is dropped afterwards.
// A gap of at most NegligibleDistance keeps the previous anticipation when
// inputs were replayed.
func (r *Reconciler[S, I]) ReanticipateAt(target Reanticipatable[S], authorityTime float64) Outcome {
	previous := target.PreviousAnticipated()
	state := target.Anticipated()

	replayed := 0
	for frame := range r.history.After(authorityTime) {
		dt := frame.DeltaTime
		if dt <= 0 {
			dt = r.cfg.FixedDelta
		}
		state = r.step(state, frame.Item, dt)
		replayed++
	}
	r.history.RemoveBefore(authorityTime)
	replayedInputs.Add(float64(replayed))

	var outcome Outcome
	dist := r.distance(previous, state)
	switch {
	// Only replay noise is suppressed. With nothing replayed the baseline is
	// the authority itself, so even a small gap is corrected.
	case dist <= r.cfg.NegligibleDistance && replayed > 0:
		target.Anticipate(previous)
		outcome = OutcomeSuppressed
	case dist < r.cfg.SmoothDistance && r.cfg.SmoothTime > 0:
		target.Smooth(previous, state, r.cfg.SmoothTime)
		outcome = OutcomeSmoothed
	default:
		target.Anticipate(state)
		outcome = OutcomeSnapped
	}
	reconcileOutcomes.WithLabelValues(outcome.String()).Inc()
	return outcome
}

// Clear drops all recorded input, used when the connection is reset.
func (r *Reconciler[S, I]) Clear() {
	r.history.Clear()
}

// RateExtrapolator predicts a quantity the authority advances on its own at a
// known rate. There is no input to replay, so the authoritative sample is
// pushed forward by the time it has been in flight.
type RateExtrapolator struct {
	// Rate is the change per second.
	Rate       float64
	SmoothTime float64
	// Modulus wraps the prediction into [0, Modulus) when positive.
	Modulus float64
	// Lerp overrides the value's default smoothing function.
	Lerp LerpFunc[float64]
}

// SecondsBehind is how far in the past a sample received now was taken, plus
// the delay smoothing adds on top.
func (e RateExtrapolator) SecondsBehind(lastRTT float64) float64 {
	return lastRTT*0.5 + e.SmoothTime
}

// Predict extrapolates authoritative forward by SecondsBehind.
func (e RateExtrapolator) Predict(authoritative, lastRTT float64) float64 {
	predicted := authoritative + e.Rate*e.SecondsBehind(lastRTT)
	if e.Modulus > 0 {
		predicted = Wrap(predicted, e.Modulus)
	}
	return predicted
}

// Reanticipate smooths v from its previous anticipation to the prediction.
func (e RateExtrapolator) Reanticipate(v *AnticipatedValue[float64], lastRTT float64) {
	v.SmoothWith(v.PreviousAnticipated(), e.Predict(v.Authoritative(), lastRTT), e.SmoothTime, e.Lerp)
}

// SmoothToAuthority eases v from its previous anticipation to the latest
// authoritative value, for values that are corrected rather than replayed.
func SmoothToAuthority[T comparable](v *AnticipatedValue[T], smoothTime float64) {
	v.Smooth(v.PreviousAnticipated(), v.Authoritative(), smoothTime)
}
