package netcomponents

import "github.com/yohamta/donburi"

type NetPlayerData struct {
	// LastInputTime echoes the client-local time of the newest input the
	// authority applied, so the owner knows which inputs are confirmed.
	LastInputTime float64
	Name          string
}

var NetPlayer = donburi.NewComponentType[NetPlayerData]()
