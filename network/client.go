package network

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/automoto/anticipation-mp/shared/messages"
	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	log "github.com/sirupsen/logrus"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Client manages a WebSocket connection to the game server and implements
// Link on top of necs world snapshots.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	token     string
	conn      *websocket.Conn

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		token:      uuid.NewString(),
		snapshotCh: make(chan esync.WorldSnapshot, 1),
	}
}

// Token is the session token sent with the join request. The owned player
// entity carries it in its identity.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	token := c.token
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.Send(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
			Token:      token,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Send serializes msg with the necs router and writes it to the server.
func (c *Client) Send(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	if err := conn.Write(context.Background(), websocket.MessageBinary, payload); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Poll returns the latest world snapshot as a StateUpdate. Non-blocking.
func (c *Client) Poll() []messages.StateUpdate {
	select {
	case snap := <-c.snapshotCh:
		return []messages.StateUpdate{SnapshotToUpdate(snap)}
	default:
		return nil
	}
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// SnapshotToUpdate converts a necs world snapshot into a StateUpdate. The
// entity carrying the server clock provides the update's clock and values;
// every entity with an identity becomes an EntityState.
func SnapshotToUpdate(snapshot esync.WorldSnapshot) messages.StateUpdate {
	var update messages.StateUpdate

	for _, ent := range snapshot {
		var (
			state       messages.EntityState
			hasIdentity bool
		)
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			switch v := instance.(type) {
			case netcomponents.NetIdentityData:
				state.Identity = v
				hasIdentity = true
			case netcomponents.NetTransformData:
				state.Transform = v
			case netcomponents.NetPlayerData:
				p := v
				state.Player = &p
			case netcomponents.NetPlatformData:
				p := v
				state.Platform = &p
			case netcomponents.NetServerClockData:
				update.Clock = v
			case netcomponents.NetValuesData:
				update.Values = v
			}
		}
		if hasIdentity {
			update.Entities = append(update.Entities, state)
		}
	}

	sort.Slice(update.Entities, func(i, j int) bool {
		return update.Entities[i].Identity.ID < update.Entities[j].Identity.ID
	})
	return update
}
