package config

import "github.com/automoto/anticipation-mp/shared/netconfig"

// BotStep is one segment of the sandbox bot's input script.
type BotStep struct {
	Buttons netconfig.InputList
	Steps   int // Fixed steps to hold the buttons for
}

// BotConfigData holds the scripted input the headless sandbox replays.
type BotConfigData struct {
	Script []BotStep
	// ValueEvery requests a new sample value every this many fixed steps.
	ValueEvery int
}

// Bot holds the sandbox bot configuration
var Bot BotConfigData

func init() {
	Bot = BotConfigData{
		Script: []BotStep{
			{Buttons: netconfig.InputUp, Steps: 50},
			{Buttons: netconfig.InputUp | netconfig.InputRight, Steps: 25},
			{Buttons: netconfig.InputNone, Steps: 10},
			{Buttons: netconfig.InputSmallRandomTeleport, Steps: 1},
			{Buttons: netconfig.InputDown | netconfig.InputLeft, Steps: 40},
			{Buttons: netconfig.InputRandomTeleport, Steps: 1},
			{Buttons: netconfig.InputUp, Steps: 30},
			{Buttons: netconfig.InputPredictableTeleport, Steps: 1},
			{Buttons: netconfig.InputNone, Steps: 20},
		},
		ValueEvery: 40,
	}
}
