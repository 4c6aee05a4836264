package network

import "github.com/tanema/gween/ease"

// StaleDataHandling decides what an authoritative update that agrees with the
// pending anticipation means.
type StaleDataHandling int

const (
	// StaleIgnore treats an update equal to the anticipated value as a
	// confirmation. Only a differing update requests reanticipation.
	StaleIgnore StaleDataHandling = iota
	// StaleReanticipate requests reanticipation on every update, for values
	// the authority keeps changing on its own (clocks, timers).
	StaleReanticipate
)

func (s StaleDataHandling) String() string {
	switch s {
	case StaleIgnore:
		return "ignore"
	case StaleReanticipate:
		return "reanticipate"
	}
	return "unknown"
}

// LerpFunc blends from toward to. amount is in [0, 1].
type LerpFunc[T any] func(from, to T, amount float64) T

// ObserverID identifies a subscription for Unsubscribe.
type ObserverID int

type valueOptions struct {
	stale     StaleDataHandling
	authority bool
	easing    ease.TweenFunc
}

// ValueOption configures an anticipated value.
type ValueOption func(*valueOptions)

func WithStaleHandling(s StaleDataHandling) ValueOption {
	return func(o *valueOptions) { o.stale = s }
}

// AsAuthority marks the value as living on the authority, where anticipation
// writes through to the authoritative value.
func AsAuthority() ValueOption {
	return func(o *valueOptions) { o.authority = true }
}

// WithEasing reshapes smoothing progress. fn is called as fn(t, 0, 1, 1).
func WithEasing(fn ease.TweenFunc) ValueOption {
	return func(o *valueOptions) { o.easing = fn }
}

type smoothing[T any] struct {
	from, to T
	duration float64
	elapsed  float64
	lerp     LerpFunc[T]
}

type observer[T any] struct {
	id ObserverID
	fn func(previous, current T)
}

// AnticipatedValue wraps one piece of authoritative state with a locally
// anticipated overlay. Consumers on the predicting side read Value.
type AnticipatedValue[T comparable] struct {
	authoritative T
	anticipated   T
	previous      T

	lerp      LerpFunc[T]
	stale     StaleDataHandling
	authority bool
	easing    ease.TweenFunc

	shouldReanticipate bool
	smooth             *smoothing[T]

	observers []observer[T]
	nextID    ObserverID
}

// NewAnticipatedValue creates a value with authoritative, anticipated and
// previous all set to initial. lerp is the default smoothing function and may
// be nil, in which case smoothing without an explicit function snaps.
func NewAnticipatedValue[T comparable](initial T, lerp LerpFunc[T], opts ...ValueOption) *AnticipatedValue[T] {
	var o valueOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &AnticipatedValue[T]{
		authoritative: initial,
		anticipated:   initial,
		previous:      initial,
		lerp:          lerp,
		stale:         o.stale,
		authority:     o.authority,
		easing:        o.easing,
	}
}

// Value is the anticipated value, the one to render and simulate with.
func (v *AnticipatedValue[T]) Value() T {
	return v.anticipated
}

func (v *AnticipatedValue[T]) Anticipated() T {
	return v.anticipated
}

func (v *AnticipatedValue[T]) Authoritative() T {
	return v.authoritative
}

// PreviousAnticipated is the anticipated value right before the last local
// mutation or reanticipation reset.
func (v *AnticipatedValue[T]) PreviousAnticipated() T {
	return v.previous
}

func (v *AnticipatedValue[T]) StaleHandling() StaleDataHandling {
	return v.stale
}

func (v *AnticipatedValue[T]) IsAuthority() bool {
	return v.authority
}

func (v *AnticipatedValue[T]) ShouldReanticipate() bool {
	return v.shouldReanticipate
}

// ResetReanticipate clears the reanticipation request once it was handled.
func (v *AnticipatedValue[T]) ResetReanticipate() {
	v.shouldReanticipate = false
}

func (v *AnticipatedValue[T]) IsSmoothing() bool {
	return v.smooth != nil
}

// Anticipate sets the value locally. It sends nothing; the caller notifies
// the authority. On the authority it also sets the authoritative value.
func (v *AnticipatedValue[T]) Anticipate(value T) {
	v.previous = v.anticipated
	v.anticipated = value
	v.smooth = nil
	if v.authority {
		v.writeAuthoritative(value)
	}
}

// SetAuthoritative applies a value received from the authority (or set by the
// authority itself).
func (v *AnticipatedValue[T]) SetAuthoritative(value T) {
	if v.authority {
		v.previous = v.anticipated
		v.anticipated = value
		v.smooth = nil
		v.writeAuthoritative(value)
		return
	}

	if v.stale == StaleReanticipate || value != v.anticipated {
		// Reset to the authoritative baseline. The reanticipation handler
		// rebuilds from here and smooths from previous.
		v.previous = v.anticipated
		v.anticipated = value
		v.smooth = nil
		v.shouldReanticipate = true
	}
	v.writeAuthoritative(value)
}

// Smooth eases the anticipated value from from to to over duration seconds
// using the default lerp.
func (v *AnticipatedValue[T]) Smooth(from, to T, duration float64) {
	v.SmoothWith(from, to, duration, nil)
}

// SmoothWith eases using lerp, which lets wrap-around domains define their
// own shortest path. A new call replaces any smoothing in progress. A
// duration <= 0 snaps to to.
func (v *AnticipatedValue[T]) SmoothWith(from, to T, duration float64, lerp LerpFunc[T]) {
	if lerp == nil {
		lerp = v.lerp
	}
	if v.authority || duration <= 0 || lerp == nil {
		v.Anticipate(to)
		return
	}
	v.smooth = &smoothing[T]{
		from:     from,
		to:       to,
		duration: duration,
		lerp:     lerp,
	}
	v.anticipated = from
}

// Update advances smoothing by dt seconds.
func (v *AnticipatedValue[T]) Update(dt float64) {
	s := v.smooth
	if s == nil {
		return
	}
	if dt > 0 {
		s.elapsed += dt
	}
	if s.elapsed >= s.duration {
		v.anticipated = s.to
		v.smooth = nil
		return
	}
	amount := s.elapsed / s.duration
	if v.easing != nil {
		amount = float64(v.easing(float32(amount), 0, 1, 1))
	}
	v.anticipated = s.lerp(s.from, s.to, amount)
}

// Subscribe registers fn for authoritative value changes. Pair every call
// with Unsubscribe, or Despawn the value.
func (v *AnticipatedValue[T]) Subscribe(fn func(previous, current T)) ObserverID {
	v.nextID++
	v.observers = append(v.observers, observer[T]{id: v.nextID, fn: fn})
	return v.nextID
}

// Unsubscribe removes a subscription. It reports whether id was registered.
func (v *AnticipatedValue[T]) Unsubscribe(id ObserverID) bool {
	for i, o := range v.observers {
		if o.id == id {
			v.observers = append(v.observers[:i], v.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Despawn drops observers, pending smoothing and any reanticipation request.
func (v *AnticipatedValue[T]) Despawn() {
	v.observers = nil
	v.smooth = nil
	v.shouldReanticipate = false
}

func (v *AnticipatedValue[T]) writeAuthoritative(value T) {
	old := v.authoritative
	v.authoritative = value
	if old == value {
		return
	}
	for _, o := range v.observers {
		o.fn(old, value)
	}
}
