package tags

import "github.com/yohamta/donburi"

var (
	LocalPlayer  = donburi.NewTag().SetName("LocalPlayer")
	RemotePlayer = donburi.NewTag().SetName("RemotePlayer")
	Platform     = donburi.NewTag().SetName("Platform")
	WorldState   = donburi.NewTag().SetName("WorldState")
)
