package network

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type move struct {
	Delta mgl64.Vec3
	// Teleport, when set, replaces the position. It is stored resolved so
	// replay lands on the same spot.
	Teleport *mgl64.Vec3
}

func stepMove(state TransformState, in move, dt float64) TransformState {
	if in.Teleport != nil {
		state.Position = *in.Teleport
		return state
	}
	state.Position = state.Position.Add(in.Delta.Mul(dt / 0.02))
	return state
}

func defaultReconcile() ReconcileConfig {
	return ReconcileConfig{
		SmoothTime:         0.1,
		SmoothDistance:     3,
		NegligibleDistance: 0.25,
		FixedDelta:         0.02,
	}
}

type reconcileFixture struct {
	clock     *NetworkTime
	transform *AnticipatedTransform
	rec       *Reconciler[TransformState, move]
}

func newReconcileFixture(cfg ReconcileConfig) *reconcileFixture {
	clock := NewNetworkTime(50, false)
	return &reconcileFixture{
		clock:     clock,
		transform: NewAnticipatedTransform(IdentityTransform()),
		rec:       NewReconciler(clock, stepMove, PositionDistance, cfg, 0),
	}
}

// input advances the clock one step, then records and anticipates in.
func (f *reconcileFixture) input(in move) float64 {
	f.clock.Advance(0.02)
	at := f.rec.Record(in, 0.02)
	f.transform.Anticipate(stepMove(f.transform.Anticipated(), in, 0.02))
	return at
}

func TestReconcileConfirmation(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture(defaultReconcile())
	f.input(move{Delta: mgl64.Vec3{1, 0, 0}})
	require.Equal(t, mgl64.Vec3{1, 0, 0}, f.transform.Anticipated().Position)

	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{1, 0, 0}, Rotation: mgl64.QuatIdent()})

	assert.False(t, f.transform.ShouldReanticipate(), "a matching update needs no reanticipation")
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, f.transform.Anticipated().Position)
	assert.False(t, f.transform.IsSmoothing())
	assert.Equal(t, 1, f.rec.History().Len())
}

func TestReconcileSnap(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture(defaultReconcile())
	ack := f.input(move{Delta: mgl64.Vec3{1, 0, 0}})

	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{5, 5, 5}, Rotation: mgl64.QuatIdent()})
	require.True(t, f.transform.ShouldReanticipate())

	outcome := f.rec.ReanticipateAt(f.transform, ack)

	assert.Equal(t, OutcomeSnapped, outcome)
	assert.Equal(t, mgl64.Vec3{5, 5, 5}, f.transform.Anticipated().Position)
	assert.False(t, f.transform.IsSmoothing(), "a snap applies immediately")
}

func TestReconcileReplaysPendingInput(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture(defaultReconcile())
	ack := f.input(move{Delta: mgl64.Vec3{1, 0, 0}})
	f.input(move{Delta: mgl64.Vec3{1, 0, 0}})
	f.input(move{Delta: mgl64.Vec3{0, 0, 1}})
	require.Equal(t, mgl64.Vec3{2, 0, 1}, f.transform.Anticipated().Position)

	// The authority applied the first input but nudged it.
	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{1.5, 0, 0}, Rotation: mgl64.QuatIdent()})
	outcome := f.rec.ReanticipateAt(f.transform, ack)

	assert.Equal(t, OutcomeSmoothed, outcome)
	assert.True(t, f.transform.IsSmoothing())
	assert.Equal(t, mgl64.Vec3{2, 0, 1}, f.transform.Anticipated().Position, "smoothing starts at the previous anticipation")

	f.transform.Update(0.1)
	assert.Equal(t, mgl64.Vec3{2.5, 0, 1}, f.transform.Anticipated().Position)

	for _, frame := range f.rec.History().GetHistory() {
		assert.Greater(t, frame.Time, ack)
	}
	assert.Equal(t, 2, f.rec.History().Len())
}

func TestReconcileNegligibleCorrection(t *testing.T) {
	t.Parallel()

	for _, smoothTime := range []float64{0.1, 0} {
		cfg := defaultReconcile()
		cfg.SmoothTime = smoothTime
		f := newReconcileFixture(cfg)
		ack := f.input(move{Delta: mgl64.Vec3{1, 0, 0}})
		f.input(move{Delta: mgl64.Vec3{1, 0, 0}})

		f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{1.1, 0, 0}, Rotation: mgl64.QuatIdent()})
		outcome := f.rec.ReanticipateAt(f.transform, ack)

		assert.Equal(t, OutcomeSuppressed, outcome, "smooth time %v", smoothTime)
		assert.Equal(t, mgl64.Vec3{2, 0, 0}, f.transform.Anticipated().Position)
	}
}

func TestReconcileSmallGapWithoutReplay(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		smoothTime float64
		outcome    Outcome
	}{
		{0.1, OutcomeSmoothed},
		{0, OutcomeSnapped},
	} {
		cfg := defaultReconcile()
		cfg.SmoothTime = tc.smoothTime
		f := newReconcileFixture(cfg)
		ack := f.input(move{Delta: mgl64.Vec3{1, 0, 0}})

		f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{1.1, 0, 0}, Rotation: mgl64.QuatIdent()})
		outcome := f.rec.ReanticipateAt(f.transform, ack)
		f.transform.Update(tc.smoothTime)

		assert.Equal(t, tc.outcome, outcome, "smooth time %v", tc.smoothTime)
		assert.InDelta(t, 1.1, f.transform.Anticipated().Position.X(), 1e-12, "settles on the authority")
		assert.Equal(t, 0, f.rec.History().Len())
	}
}

func TestReconcileWithoutSmoothingSnaps(t *testing.T) {
	t.Parallel()

	cfg := defaultReconcile()
	cfg.SmoothTime = 0
	f := newReconcileFixture(cfg)
	ack := f.input(move{Delta: mgl64.Vec3{1, 0, 0}})

	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{2, 0, 0}, Rotation: mgl64.QuatIdent()})
	outcome := f.rec.ReanticipateAt(f.transform, ack)

	assert.Equal(t, OutcomeSnapped, outcome)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, f.transform.Anticipated().Position)
}

func TestReconcileReplayIsDeterministic(t *testing.T) {
	t.Parallel()

	target := mgl64.Vec3{-4, 0, 2}
	inputs := []move{
		{Delta: mgl64.Vec3{1, 0, 0}},
		{Delta: mgl64.Vec3{0, 0, 0.5}},
		{Teleport: &target},
		{Delta: mgl64.Vec3{0.25, 0, 0}},
		{Delta: mgl64.Vec3{0.25, 0, 0}},
	}

	straight := IdentityTransform()
	for _, in := range inputs {
		straight = stepMove(straight, in, 0.02)
	}

	for reconcileEvery := 1; reconcileEvery <= len(inputs); reconcileEvery++ {
		cfg := defaultReconcile()
		cfg.NegligibleDistance = 0
		cfg.SmoothTime = 0
		f := newReconcileFixture(cfg)
		var times []float64
		for i, in := range inputs {
			times = append(times, f.input(in))
			if (i+1)%reconcileEvery == 0 {
				// The authority is one input behind and agrees so far.
				if i == 0 {
					continue
				}
				authState := IdentityTransform()
				for _, applied := range inputs[:i] {
					authState = stepMove(authState, applied, 0.02)
				}
				f.transform.SetAuthoritative(authState)
				f.rec.ReanticipateAt(f.transform, times[i-1])
			}
		}
		assert.Equal(t, straight.Position, f.transform.Anticipated().Position, "reconciling every %d inputs", reconcileEvery)
	}
}

func TestReconcileStaleAuthority(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture(defaultReconcile())
	f.input(move{Delta: mgl64.Vec3{1, 0, 0}})
	f.input(move{Delta: mgl64.Vec3{1, 0, 0}})

	// An authority time older than every input replays all of them.
	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{0, 0, 0.5}, Rotation: mgl64.QuatIdent()})
	outcome := f.rec.ReanticipateAt(f.transform, -1)

	assert.Equal(t, OutcomeSmoothed, outcome)
	assert.Equal(t, 2, f.rec.History().Len())
	f.transform.Update(1)
	assert.Equal(t, mgl64.Vec3{2, 0, 0.5}, f.transform.Anticipated().Position)
}

func TestReconcileRoundTripEstimate(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture(defaultReconcile())
	for range 10 {
		f.input(move{Delta: mgl64.Vec3{1, 0, 0}})
	}
	// Local time is 0.2; a 0.09 round trip puts the authority between the
	// fifth and sixth input.
	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{5, 0, 0}, Rotation: mgl64.QuatIdent()})
	f.rec.Reanticipate(f.transform, 0.09)

	assert.Equal(t, 5, f.rec.History().Len())
	assert.InDelta(t, 10.0, f.transform.Anticipated().Position.X(), 1e-9)
}

func TestReconcileFixedDeltaFallback(t *testing.T) {
	t.Parallel()

	f := newReconcileFixture(defaultReconcile())
	f.rec.History().Add(0.5, move{Delta: mgl64.Vec3{1, 0, 0}})

	f.transform.SetAuthoritative(TransformState{Position: mgl64.Vec3{10, 0, 0}, Rotation: mgl64.QuatIdent()})
	f.rec.ReanticipateAt(f.transform, 0)

	assert.Equal(t, mgl64.Vec3{11, 0, 0}, f.transform.Anticipated().Position)
}

func TestRateExtrapolator(t *testing.T) {
	t.Parallel()

	e := RateExtrapolator{Rate: 2.5, SmoothTime: 0.25, Modulus: 10, Lerp: WrapLerp(10)}

	assert.InDelta(t, 0.35, e.SecondsBehind(0.2), 1e-12)
	assert.InDelta(t, 4.875, e.Predict(4, 0.2), 1e-9)
	assert.InDelta(t, 0.375, e.Predict(9.5, 0.2), 1e-9, "prediction wraps")

	v := NewAnticipatedValue(9.0, WrapLerp(10), WithStaleHandling(StaleReanticipate))
	v.SetAuthoritative(9.5)
	require.True(t, v.ShouldReanticipate())
	require.Equal(t, 9.0, v.PreviousAnticipated())

	e.Reanticipate(v, 0.2)
	assert.Equal(t, 9.0, v.Value())

	v.Update(0.125)
	assert.InDelta(t, 9.6875, v.Value(), 1e-9, "moves forward across the wrap")
	v.Update(0.125)
	assert.InDelta(t, 0.375, v.Value(), 1e-9)
	assert.False(t, v.IsSmoothing())
}

func TestSmoothToAuthority(t *testing.T) {
	t.Parallel()

	v := NewAnticipatedValue(0.0, LerpFloat)
	v.Anticipate(2)
	v.SetAuthoritative(6)

	SmoothToAuthority(v, 0.5)
	assert.Equal(t, 2.0, v.Value())
	v.Update(0.25)
	assert.InDelta(t, 4.0, v.Value(), 1e-9)
	v.Update(0.25)
	assert.Equal(t, 6.0, v.Value())
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "suppressed", OutcomeSuppressed.String())
	assert.Equal(t, "smoothed", OutcomeSmoothed.String())
	assert.Equal(t, "snapped", OutcomeSnapped.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
