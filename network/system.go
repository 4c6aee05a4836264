package network

import "slices"

// Reanticipator rebuilds an owner's anticipated state after one or more of
// its values received a differing authoritative update.
type Reanticipator interface {
	OnReanticipate(lastRTT float64)
}

// ReanticipatorFunc adapts a function to Reanticipator.
type ReanticipatorFunc func(lastRTT float64)

func (f ReanticipatorFunc) OnReanticipate(lastRTT float64) {
	f(lastRTT)
}

// Tracked is an anticipated value as seen by the system.
type Tracked interface {
	ShouldReanticipate() bool
	ResetReanticipate()
	Update(dt float64)
}

type registration struct {
	id     int
	owner  Reanticipator
	values []Tracked
}

// AnticipationSystem drives reanticipation and smoothing for every registered
// owner, once per simulation step, after authoritative updates were applied.
// Hosts that anticipate new input between applying updates and Update must
// call ProcessReanticipation before anticipating.
type AnticipationSystem struct {
	clock  Clock
	owners []*registration
	nextID int
}

func NewAnticipationSystem(clock Clock) *AnticipationSystem {
	return &AnticipationSystem{clock: clock}
}

// Register adds owner with the values it is responsible for. The returned
// func removes it again and is safe to call more than once.
func (s *AnticipationSystem) Register(owner Reanticipator, values ...Tracked) func() {
	s.nextID++
	reg := &registration{id: s.nextID, owner: owner, values: values}
	s.owners = append(s.owners, reg)
	return func() { s.unregister(reg.id) }
}

func (s *AnticipationSystem) unregister(id int) {
	s.owners = slices.DeleteFunc(s.owners, func(r *registration) bool {
		return r.id == id
	})
}

func (s *AnticipationSystem) Len() int {
	return len(s.owners)
}

// ProcessReanticipation calls OnReanticipate at most once per owner that has
// a flagged value, then clears the flags. It reports how many owners ran.
func (s *AnticipationSystem) ProcessReanticipation() int {
	rtt := s.clock.LastRoundTripTime()
	ran := 0
	// Copy so an owner may unregister itself from its callback.
	for _, reg := range slices.Clone(s.owners) {
		flagged := false
		for _, v := range reg.values {
			if v.ShouldReanticipate() {
				flagged = true
				break
			}
		}
		if !flagged {
			continue
		}
		reg.owner.OnReanticipate(rtt)
		for _, v := range reg.values {
			v.ResetReanticipate()
		}
		ran++
	}
	return ran
}

// Update runs reanticipation and then advances all smoothing by dt.
func (s *AnticipationSystem) Update(dt float64) {
	s.ProcessReanticipation()
	for _, reg := range s.owners {
		for _, v := range reg.values {
			v.Update(dt)
		}
	}
}
