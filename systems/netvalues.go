package systems

import (
	"errors"
	"fmt"

	"github.com/automoto/anticipation-mp/archetypes"
	"github.com/automoto/anticipation-mp/components"
	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

var (
	ErrReadOnlyValue = errors.New("value is driven by the server")
	ErrUnknownValue  = errors.New("unknown value field")
)

// NetValues anticipates the sample values. A and B snap to corrections, C and
// D smooth into them, E is extrapolated from the authority's rate.
type NetValues struct {
	anticipation *network.AnticipationSystem
	send         func(any) error
	extrapolator network.RateExtrapolator
}

func NewNetValues(anticipation *network.AnticipationSystem, send func(any) error) *NetValues {
	return &NetValues{
		anticipation: anticipation,
		send:         send,
		extrapolator: network.RateExtrapolator{
			Rate:       cfg.Net.ValueEChangePerSecond,
			SmoothTime: cfg.Anticipation.VariableSmoothTime,
			Modulus:    cfg.Net.ValueModulus,
			Lerp:       network.WrapLerp(cfg.Net.ValueModulus),
		},
	}
}

// Spawn creates the world state entity from the first replicated values.
func (n *NetValues) Spawn(world donburi.World, clock netcomponents.NetServerClockData, data netcomponents.NetValuesData) *donburi.Entry {
	entry := archetypes.WorldState.Spawn(world)

	var values components.AnticipatedValuesData
	unregisters := make([]func(), 0, netconfig.ValueCount)
	for f := netconfig.ValueA; f < netconfig.ValueCount; f++ {
		field := f
		var v *network.AnticipatedValue[float64]
		switch {
		case field == netconfig.ValueE:
			v = network.NewAnticipatedValue(data.Get(field), network.WrapLerp(cfg.Net.ValueModulus),
				network.WithStaleHandling(network.StaleReanticipate))
		case field.Smoothed():
			v = network.NewAnticipatedValue(data.Get(field), network.LerpFloat)
		default:
			v = network.NewAnticipatedValue(data.Get(field), nil)
		}
		values.Values[field] = v
		values.LastReceived[field] = data.Get(field)
		values.Observers[field] = v.Subscribe(func(previous, current float64) {
			log.WithField("field", field.String()).Debugf("[netvalues] authority changed %s: %.3f -> %.3f", field, previous, current)
		})
		unregisters = append(unregisters, n.anticipation.Register(network.ReanticipatorFunc(func(rtt float64) {
			n.reanticipate(field, v, rtt)
		}), v))
	}
	values.HasReceived = true
	values.Unregister = func() {
		for _, u := range unregisters {
			u()
		}
	}

	components.AnticipatedValues.SetValue(entry, values)
	netcomponents.NetValues.SetValue(entry, data)
	netcomponents.NetServerClock.SetValue(entry, clock)
	return entry
}

// Request anticipates field locally and asks the authority for it.
func (n *NetValues) Request(entry *donburi.Entry, field netconfig.ValueField, value float64) error {
	if field == netconfig.ValueE {
		return ErrReadOnlyValue
	}
	if field < 0 || field >= netconfig.ValueCount {
		return ErrUnknownValue
	}
	value = network.Wrap(value, cfg.Net.ValueModulus)

	values := components.AnticipatedValues.Get(entry)
	values.Values[field].Anticipate(value)

	if err := n.send(messages.ValueRequest{Field: field, Value: value}); err != nil {
		return fmt.Errorf("request %s: %w", field, err)
	}
	return nil
}

// Apply feeds replicated values. Fields identical to the last update are
// skipped so a requested value stays anticipated until the authority answers;
// values have no recorded input to replay on top of the old one.
func (n *NetValues) Apply(entry *donburi.Entry, clock netcomponents.NetServerClockData, data netcomponents.NetValuesData) {
	values := components.AnticipatedValues.Get(entry)
	for f, v := range values.Values {
		received := data.Values[f]
		if values.HasReceived && received == values.LastReceived[f] {
			continue
		}
		values.LastReceived[f] = received
		v.SetAuthoritative(received)
	}
	values.HasReceived = true

	netcomponents.NetValues.SetValue(entry, data)
	netcomponents.NetServerClock.SetValue(entry, clock)
}

// Value is the anticipated value of field.
func (n *NetValues) Value(entry *donburi.Entry, field netconfig.ValueField) float64 {
	if field < 0 || field >= netconfig.ValueCount {
		return 0
	}
	return components.AnticipatedValues.Get(entry).Values[field].Value()
}

// Configure applies the live smoothing tuning.
func (n *NetValues) Configure() {
	n.extrapolator.SmoothTime = cfg.Anticipation.VariableSmoothTime
}

func (n *NetValues) Despawn(entry *donburi.Entry) {
	values := components.AnticipatedValues.Get(entry)
	if values.Unregister != nil {
		values.Unregister()
		values.Unregister = nil
	}
	for f, v := range values.Values {
		v.Unsubscribe(values.Observers[f])
		v.Despawn()
	}
}

func (n *NetValues) reanticipate(field netconfig.ValueField, v *network.AnticipatedValue[float64], rtt float64) {
	switch {
	case field == netconfig.ValueE:
		n.extrapolator.Reanticipate(v, rtt)
	case field.Smoothed():
		network.SmoothToAuthority(v, cfg.Anticipation.VariableSmoothTime)
	}
	// A and B were already reset to the authoritative value.
}
