package messages

// JoinRequest is sent by a client after connecting to request joining the game.
type JoinRequest struct {
	Version    string
	PlayerName string
	// Token identifies the session. The owned player entity carries it in
	// its identity so the client can find itself in the replicated world.
	Token string
}

// JoinAccepted is sent by an in-process authority when a join succeeds.
type JoinAccepted struct {
	EntityID uint
	Token    string
	TickRate int
}

// JoinRejected is sent when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}
