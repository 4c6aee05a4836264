package network

import (
	"errors"

	"github.com/automoto/anticipation-mp/shared/messages"
)

var ErrNotConnected = errors.New("not connected")

// Link is the client's view of the transport: fire-and-forget sends toward
// the authority and a poll for authoritative updates, oldest first.
type Link interface {
	Send(msg any) error
	Poll() []messages.StateUpdate
}
