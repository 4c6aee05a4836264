package network

import "math"

// Clock supplies the local and estimated authoritative times plus the latest
// round trip estimate. All values are in seconds.
type Clock interface {
	LocalTime() float64
	ServerTime() float64
	LastRoundTripTime() float64
}

// TickSource exposes the fixed simulation tick used for tick-offset math.
type TickSource interface {
	CurrentTick() int
	TickDelta() float64
	// TimeTicksAgo returns the server time n ticks in the past.
	TimeTicksAgo(n int) float64
}

// rttSmoothing is the weight given to a new round trip sample.
const rttSmoothing = 0.125

// NetworkTime is a host-driven clock. The host loop advances it explicitly,
// nothing here reads the wall clock.
//
// On the authority ServerTime equals LocalTime. On a predicting client the
// local time is treated as one round trip ahead of the authority, so
// ServerTime = LocalTime - RTT, until ObserveServerTime has seen the
// authority's own clock. From then on ServerTime tracks the newest observed
// authority time, advancing with local time in between.
type NetworkTime struct {
	tickRate  int
	tickDelta float64
	authority bool

	localTime float64
	rtt       float64
	hasRTT    bool

	serverOffset float64
	hasOffset    bool
}

// NewNetworkTime creates a clock stepping at tickRate ticks per second.
func NewNetworkTime(tickRate int, authority bool) *NetworkTime {
	if tickRate < 1 {
		tickRate = 1
	}
	return &NetworkTime{
		tickRate:  tickRate,
		tickDelta: 1.0 / float64(tickRate),
		authority: authority,
	}
}

// Advance moves local time forward by dt seconds.
func (t *NetworkTime) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	t.localTime += dt
}

// SetLocalTime jumps the clock, used when a connection is re-established.
func (t *NetworkTime) SetLocalTime(now float64) {
	t.localTime = now
}

// SetRoundTripTime feeds a round trip sample. The first sample is taken as is,
// later ones are blended in.
func (t *NetworkTime) SetRoundTripTime(sample float64) {
	if sample < 0 {
		return
	}
	if !t.hasRTT {
		t.rtt = sample
		t.hasRTT = true
		return
	}
	t.rtt += (sample - t.rtt) * rttSmoothing
}

// ObserveServerTime records the authority time carried by a received update.
// The offset only moves forward, so a late packet cannot rewind ServerTime.
func (t *NetworkTime) ObserveServerTime(serverTime float64) {
	if t.authority {
		return
	}
	offset := serverTime - t.localTime
	if !t.hasOffset || offset > t.serverOffset {
		t.serverOffset = offset
		t.hasOffset = true
	}
}

// Reset forgets the round trip estimate and server offset and rewinds to zero.
func (t *NetworkTime) Reset() {
	t.localTime = 0
	t.rtt = 0
	t.hasRTT = false
	t.serverOffset = 0
	t.hasOffset = false
}

func (t *NetworkTime) LocalTime() float64 {
	return t.localTime
}

func (t *NetworkTime) ServerTime() float64 {
	if t.authority {
		return t.localTime
	}
	if t.hasOffset {
		return t.localTime + t.serverOffset
	}
	return t.localTime - t.rtt
}

func (t *NetworkTime) LastRoundTripTime() float64 {
	return t.rtt
}

func (t *NetworkTime) TickRate() int {
	return t.tickRate
}

func (t *NetworkTime) TickDelta() float64 {
	return t.tickDelta
}

// CurrentTick is the server tick containing ServerTime.
func (t *NetworkTime) CurrentTick() int {
	tick, _ := t.split(t.ServerTime())
	return tick
}

// TimeTicksAgo keeps the fractional part of the current tick so that whole
// tick offsets land exactly on tick timestamps (tick * TickDelta).
func (t *NetworkTime) TimeTicksAgo(n int) float64 {
	tick, frac := t.split(t.ServerTime())
	return (float64(tick-n) + frac) * t.tickDelta
}

// TickTime converts a tick number into its timestamp.
func (t *NetworkTime) TickTime(tick int) float64 {
	return float64(tick) * t.tickDelta
}

func (t *NetworkTime) split(now float64) (int, float64) {
	ticks := now * float64(t.tickRate)
	whole := math.Floor(ticks + 1e-9)
	frac := ticks - whole
	if frac < 1e-9 {
		frac = 0
	}
	return int(whole), frac
}
