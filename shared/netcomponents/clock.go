package netcomponents

import "github.com/yohamta/donburi"

// NetServerClockData is the authority's tick and time at the last sync.
type NetServerClockData struct {
	Tick int
	Time float64
}

var NetServerClock = donburi.NewComponentType[NetServerClockData]()
