package core

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Stepper advances an authority by one fixed tick of dt seconds.
type Stepper interface {
	Tick(dt float64)
}

// TickLoop calls its Stepper at a fixed wall-clock rate. The authority's
// simulated time only moves through Tick, so every tick advances it by
// exactly 1/tickRate seconds however late the ticker fires.
type TickLoop struct {
	stepper  Stepper
	tickRate int
	dt       float64

	ticks    atomic.Int64
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewTickLoop(stepper Stepper, tickRate int) *TickLoop {
	if tickRate < 1 {
		tickRate = 1
	}
	return &TickLoop{
		stepper:  stepper,
		tickRate: tickRate,
		dt:       1 / float64(tickRate),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks until Stop.
func (l *TickLoop) Run() {
	defer close(l.done)

	interval := time.Second / time.Duration(l.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("[loop] authority ticking at %d Hz", l.tickRate)
	for {
		select {
		case <-l.stopChan:
			log.WithField("ticks", l.ticks.Load()).Info("[loop] authority stopped")
			return
		case <-ticker.C:
			start := time.Now()
			l.stepper.Tick(l.dt)
			l.ticks.Add(1)
			if took := time.Since(start); took > interval {
				log.WithField("took", took).Warn("[loop] tick overran its interval")
			}
		}
	}
}

// Stop ends Run and waits for the tick in progress. It is safe to call more
// than once, but only after Run was started.
func (l *TickLoop) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
	<-l.done
}

// Ticks is the number of ticks run so far.
func (l *TickLoop) Ticks() int64 {
	return l.ticks.Load()
}

func (l *TickLoop) TickDelta() float64 {
	return l.dt
}
