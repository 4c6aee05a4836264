package systems

import (
	"math/rand/v2"

	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netconfig"
)

// Bot replays the configured input script in a loop and periodically asks
// for a new sample value, standing in for a player at the keyboard.
type Bot struct {
	script     []cfg.BotStep
	valueEvery int
	rng        *rand.Rand

	segment int
	held    int
	steps   int
	field   netconfig.ValueField
}

func NewBot(bot cfg.BotConfigData, rng *rand.Rand) *Bot {
	return &Bot{
		script:     bot.Script,
		valueEvery: bot.ValueEvery,
		rng:        rng,
	}
}

// Next returns the buttons for the coming step.
func (b *Bot) Next() netconfig.InputList {
	b.steps++
	if len(b.script) == 0 {
		return netconfig.InputNone
	}
	for b.held >= b.script[b.segment].Steps {
		b.held = 0
		b.segment = (b.segment + 1) % len(b.script)
		if b.script[b.segment].Steps <= 0 && b.allEmpty() {
			return netconfig.InputNone
		}
	}
	b.held++
	return b.script[b.segment].Buttons
}

// ValueRequest returns a request every ValueEvery steps, cycling through the
// settable fields.
func (b *Bot) ValueRequest() (messages.ValueRequest, bool) {
	if b.valueEvery <= 0 || b.steps == 0 || b.steps%b.valueEvery != 0 {
		return messages.ValueRequest{}, false
	}
	req := messages.ValueRequest{
		Field: b.field,
		Value: float64(b.rng.IntN(max(1, int(cfg.Net.ValueModulus)))),
	}
	b.field = (b.field + 1) % netconfig.ValueE
	return req, true
}

func (b *Bot) allEmpty() bool {
	for _, s := range b.script {
		if s.Steps > 0 {
			return false
		}
	}
	return true
}
