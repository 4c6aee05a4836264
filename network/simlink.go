package network

import (
	"math/rand/v2"
	"sync"

	"github.com/automoto/anticipation-mp/shared/messages"
)

type inflight[T any] struct {
	deliverAt float64
	msg       T
}

// SimulatedPipe delays messages by a latency plus uniform jitter while keeping
// them in the order they were pushed. Time comes from the now func, so a host
// stepping a virtual clock gets reproducible delivery.
type SimulatedPipe[T any] struct {
	mu sync.Mutex

	now     func() float64
	latency float64
	jitter  float64
	rng     *rand.Rand

	queue []inflight[T]
	last  float64
}

func NewSimulatedPipe[T any](now func() float64, latency, jitter float64, seed uint64) *SimulatedPipe[T] {
	return &SimulatedPipe[T]{
		now:     now,
		latency: max(latency, 0),
		jitter:  max(jitter, 0),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetConditions changes latency and jitter for messages pushed from now on.
func (p *SimulatedPipe[T]) SetConditions(latency, jitter float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency = max(latency, 0)
	p.jitter = max(jitter, 0)
}

func (p *SimulatedPipe[T]) Push(msg T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	at := p.now() + p.latency
	if p.jitter > 0 {
		at += p.jitter * (p.rng.Float64()*2 - 1)
	}
	// A later message never overtakes an earlier one.
	if at < p.last {
		at = p.last
	}
	p.last = at
	p.queue = append(p.queue, inflight[T]{deliverAt: at, msg: msg})
}

// Poll returns every message due by now, oldest first.
func (p *SimulatedPipe[T]) Poll() []T {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	n := 0
	for n < len(p.queue) && p.queue[n].deliverAt <= now {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	for i := range n {
		out[i] = p.queue[i].msg
	}
	rest := copy(p.queue, p.queue[n:])
	clear(p.queue[rest:])
	p.queue = p.queue[:rest]
	return out
}

// Pending is the number of messages still in flight.
func (p *SimulatedPipe[T]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Reset drops everything in flight.
func (p *SimulatedPipe[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.queue)
	p.queue = p.queue[:0]
	p.last = 0
}

// SimulatedLink is an in-process connection with artificial latency in both
// directions, used by the sandbox and tests in place of a socket.
type SimulatedLink struct {
	up   *SimulatedPipe[any]
	down *SimulatedPipe[messages.StateUpdate]
}

func NewSimulatedLink(now func() float64, latency, jitter float64, seed uint64) *SimulatedLink {
	return &SimulatedLink{
		up:   NewSimulatedPipe[any](now, latency, jitter, seed),
		down: NewSimulatedPipe[messages.StateUpdate](now, latency, jitter, seed+1),
	}
}

// Send queues msg toward the authority.
func (l *SimulatedLink) Send(msg any) error {
	l.up.Push(msg)
	linkMessages.WithLabelValues("up").Inc()
	return nil
}

// Poll returns the authoritative updates that have arrived.
func (l *SimulatedLink) Poll() []messages.StateUpdate {
	return l.down.Poll()
}

// Receive returns the client messages that have reached the authority.
func (l *SimulatedLink) Receive() []any {
	return l.up.Poll()
}

// Publish queues an authoritative update toward the client.
func (l *SimulatedLink) Publish(update messages.StateUpdate) {
	l.down.Push(update)
	linkMessages.WithLabelValues("down").Inc()
}

func (l *SimulatedLink) SetConditions(latency, jitter float64) {
	l.up.SetConditions(latency, jitter)
	l.down.SetConditions(latency, jitter)
}

// Reset drops everything in flight in both directions.
func (l *SimulatedLink) Reset() {
	l.up.Reset()
	l.down.Reset()
}
