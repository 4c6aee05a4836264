package netcomponents

import (
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetValuesData carries the authoritative sample values A through E.
type NetValuesData struct {
	Values [netconfig.ValueCount]float64
}

var NetValues = donburi.NewComponentType[NetValuesData]()

func (v NetValuesData) Get(field netconfig.ValueField) float64 {
	if field < 0 || field >= netconfig.ValueCount {
		return 0
	}
	return v.Values[field]
}
