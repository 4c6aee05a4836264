package core

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownField  = errors.New("unknown value field")
	ErrReadOnlyField = errors.New("value field is driven by the server")
	ErrInvalidValue  = errors.New("invalid value")
)

// Values is the authority's copy of the sample values. Every field lives in
// authority mode, so anticipating or smoothing writes straight through.
type Values struct {
	fields    [netconfig.ValueCount]*network.AnticipatedValue[float64]
	observers [netconfig.ValueCount]network.ObserverID

	rng        *rand.Rand
	rate       float64
	modulus    float64
	smoothTime float64
}

func NewValues(rng *rand.Rand, rate, modulus, smoothTime float64) *Values {
	v := &Values{
		rng:        rng,
		rate:       rate,
		modulus:    modulus,
		smoothTime: smoothTime,
	}
	for f := netconfig.ValueA; f < netconfig.ValueCount; f++ {
		lerp := network.LerpFloat
		if f == netconfig.ValueE {
			lerp = network.WrapLerp(modulus)
		}
		v.fields[f] = network.NewAnticipatedValue(0, lerp, network.AsAuthority())
		if f == netconfig.ValueE {
			continue
		}
		field := f
		v.observers[f] = v.fields[f].Subscribe(func(_, current float64) {
			log.WithField("field", field.String()).Debugf("[values] value %s updated to %.3f", field, current)
		})
	}
	return v
}

// Set handles a client request. A and C take the requested value, B and D
// replace it with a random one, E cannot be set.
func (v *Values) Set(field netconfig.ValueField, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidValue
	}
	value = network.Wrap(value, v.modulus)

	switch field {
	case netconfig.ValueA:
		v.fields[field].SetAuthoritative(value)
	case netconfig.ValueB, netconfig.ValueD:
		v.fields[field].SetAuthoritative(v.rng.Float64() * v.modulus)
	case netconfig.ValueC:
		f := v.fields[field]
		f.Smooth(f.Value(), value, v.smoothTime)
	case netconfig.ValueE:
		return ErrReadOnlyField
	default:
		return ErrUnknownField
	}
	return nil
}

// Step advances E and any smoothing.
func (v *Values) Step(dt float64) {
	e := v.fields[netconfig.ValueE]
	e.SetAuthoritative(network.Wrap(e.Authoritative()+v.rate*dt, v.modulus))
	for _, f := range v.fields {
		f.Update(dt)
	}
}

func (v *Values) Get(field netconfig.ValueField) float64 {
	if field < 0 || field >= netconfig.ValueCount {
		return 0
	}
	return v.fields[field].Authoritative()
}

func (v *Values) Data() netcomponents.NetValuesData {
	var data netcomponents.NetValuesData
	for f, value := range v.fields {
		data.Values[f] = value.Authoritative()
	}
	return data
}

// Close drops the change observers.
func (v *Values) Close() {
	for f, id := range v.observers {
		if id != 0 {
			v.fields[f].Unsubscribe(id)
		}
	}
}
