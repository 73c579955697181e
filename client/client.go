// Package client is the game-facing connection library: it owns the
// websocket channel, keeps the latest authoritative game snapshot, and
// layers optimistic local chat on top of the server's echo stream.
package client

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lukeharwood11/coup-o-clock/game"
	"github.com/lukeharwood11/coup-o-clock/network"
)

var (
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrDuplicateName     = errors.New("player name already taken")
	ErrAbnormalClosure   = errors.New("connection closed abnormally")
	ErrConnectFailure    = errors.New("could not establish connection")
	ErrNotConnected      = errors.New("not connected")
)

// Conn is the transport surface the client needs. Satisfied by
// network.WSConnection; tests substitute their own.
type Conn interface {
	Send(msgType string, payload any) error
	ReadEnvelope() (*network.Envelope, error)
	Close() error
}

// Dialer opens the channel. The default wraps the gorilla dialer.
type Dialer func(rawURL string) (Conn, error)

func defaultDialer(rawURL string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(rawURL, nil)
	if err != nil {
		return nil, err
	}
	return network.NewWSConnection(ws), nil
}

// ChatMessage is one line of room chat. Pending marks a local append that the
// server has not echoed back yet.
type ChatMessage struct {
	MessageID string
	Player    string
	Message   string
	Pending   bool
}

// Client connects a player to one room and reconciles server broadcasts into
// local state. Game state is replaced wholesale on every snapshot; chat keeps
// a pending layer merged with confirmed history by message id.
type Client struct {
	baseURL string
	dial    Dialer

	mutex      sync.Mutex
	conn       Conn
	done       chan struct{}
	router     *network.Router
	playerID   string
	playerName string
	roomCode   string

	state     *game.View
	confirmed []ChatMessage
	pending   []ChatMessage

	onState      func(*game.View)
	onChat       func([]ChatMessage)
	onDisconnect func(error)
}

// New builds a client for a server base URL, e.g. "ws://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		dial:    defaultDialer,
		router:  network.NewRouter(),
	}
}

// NewWithDialer is the test seam.
func NewWithDialer(baseURL string, dial Dialer) *Client {
	c := New(baseURL)
	c.dial = dial
	return c
}

// OnStateChange registers the snapshot callback. Invoked after every
// authoritative replacement.
func (c *Client) OnStateChange(fn func(*game.View)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onState = fn
}

// OnChat registers the chat callback, invoked with the merged history.
func (c *Client) OnChat(fn func([]ChatMessage)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onChat = fn
}

// OnDisconnect registers the teardown callback. A nil error is a graceful
// close.
func (c *Client) OnDisconnect(fn func(error)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onDisconnect = fn
}

// OnMessageType registers a raw handler for one message type and returns its
// unsubscribe func. At most one handler per type: registering again replaces
// the previous one.
func (c *Client) OnMessageType(msgType string, handler network.HandlerFunc) func() {
	return c.router.Register(msgType, handler)
}

// Connect opens the channel and blocks until the server confirms the join or
// rejects it. Calling Connect while connected closes the previous channel
// first. Failure kinds are distinguished: ErrConnectFailure (channel never
// opened), ErrRoomAlreadyExists / ErrRoomNotFound / ErrDuplicateName (join
// conflicts, carried by close codes), ErrAbnormalClosure (anything else).
func (c *Client) Connect(roomCode, playerName string, create bool) error {
	c.Disconnect()

	rawURL := fmt.Sprintf("%s/ws/room/%s?player_name=%s&create=%t",
		c.baseURL, url.PathEscape(roomCode), url.QueryEscape(playerName), create)

	conn, err := c.dial(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailure, err)
	}

	// Wait for the join confirmation before handing the channel over to the
	// read loop.
	var joined network.RoomJoinedPayload
	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			conn.Close()
			if cerr := classifyCloseError(err); cerr != nil {
				return cerr
			}
			// A graceful close before the join confirmation still means the
			// join never completed.
			return fmt.Errorf("%w: closed before join confirmation", ErrAbnormalClosure)
		}
		if env.Type != network.MsgTypeRoomJoined {
			continue
		}
		if err := env.Decode(&joined); err != nil {
			conn.Close()
			return fmt.Errorf("%w: %v", ErrAbnormalClosure, err)
		}
		break
	}

	c.mutex.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	c.playerID = joined.PlayerID
	c.playerName = playerName
	c.roomCode = joined.RoomCode
	c.state = nil
	c.confirmed = nil
	c.pending = nil
	done := c.done
	c.mutex.Unlock()

	go c.readLoop(conn, done)
	return nil
}

func classifyCloseError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case network.CloseRoomExists:
			return ErrRoomAlreadyExists
		case network.CloseRoomNotFound:
			return ErrRoomNotFound
		case network.CloseDuplicateName:
			return ErrDuplicateName
		case network.CloseNormal:
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrAbnormalClosure, err)
}

// Disconnect closes the current channel, if any. Safe to call repeatedly.
func (c *Client) Disconnect() {
	c.mutex.Lock()
	conn := c.conn
	done := c.done
	c.conn = nil
	c.done = nil
	c.mutex.Unlock()

	if done != nil {
		close(done)
	}
	if conn != nil {
		conn.Close()
	}
}

func (c *Client) readLoop(conn Conn, done chan struct{}) {
	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			select {
			case <-done:
				// Local Disconnect already tore the channel down.
				c.notifyDisconnect(nil)
			default:
				c.notifyDisconnect(classifyCloseError(err))
			}
			return
		}
		c.handle(env)
	}
}

func (c *Client) notifyDisconnect(err error) {
	c.mutex.Lock()
	fn := c.onDisconnect
	c.mutex.Unlock()
	if fn != nil {
		fn(err)
	}
}

// handle applies built-in reconciliation first, then forwards the envelope to
// any user handler registered for its type.
func (c *Client) handle(env *network.Envelope) {
	switch env.Type {
	case network.MsgTypeGameState:
		var payload network.GameStatePayload
		if err := env.Decode(&payload); err == nil {
			c.replaceState(payload.State)
		}
	case network.MsgTypeChat:
		var payload network.ChatPayload
		if err := env.Decode(&payload); err == nil {
			c.confirmChat(payload)
		}
	}
	c.router.Dispatch(env)
}

// replaceState swaps in the authoritative snapshot wholesale. Local state is
// never merged with it; the server copy always wins.
func (c *Client) replaceState(view *game.View) {
	c.mutex.Lock()
	c.state = view
	fn := c.onState
	c.mutex.Unlock()
	if fn != nil {
		fn(view)
	}
}

// confirmChat appends the server echo and drops the matching pending entry.
func (c *Client) confirmChat(payload network.ChatPayload) {
	c.mutex.Lock()
	c.confirmed = append(c.confirmed, ChatMessage{
		MessageID: payload.MessageID,
		Player:    payload.Player,
		Message:   payload.Message,
	})
	for i, p := range c.pending {
		if p.MessageID == payload.MessageID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	merged := c.mergedChatLocked()
	fn := c.onChat
	c.mutex.Unlock()
	if fn != nil {
		fn(merged)
	}
}

func (c *Client) mergedChatLocked() []ChatMessage {
	merged := make([]ChatMessage, 0, len(c.confirmed)+len(c.pending))
	merged = append(merged, c.confirmed...)
	merged = append(merged, c.pending...)
	return merged
}

// State returns the latest authoritative snapshot, nil before the first one.
func (c *Client) State() *game.View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Messages returns confirmed history followed by unconfirmed local appends.
func (c *Client) Messages() []ChatMessage {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.mergedChatLocked()
}

// PlayerID returns the server-assigned identity for this connection.
func (c *Client) PlayerID() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.playerID
}

func (c *Client) RoomCode() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.roomCode
}

// SendMessage sends chat with an optimistic local append. The entry stays
// pending until the server echoes the same message id back.
func (c *Client) SendMessage(text string) error {
	c.mutex.Lock()
	conn := c.conn
	name := c.playerName
	c.mutex.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg := ChatMessage{
		MessageID: uuid.New().String(),
		Player:    name,
		Message:   text,
		Pending:   true,
	}

	c.mutex.Lock()
	c.pending = append(c.pending, msg)
	merged := c.mergedChatLocked()
	fn := c.onChat
	c.mutex.Unlock()
	if fn != nil {
		fn(merged)
	}

	return conn.Send(network.MsgTypeChat, network.ChatPayload{
		MessageID: msg.MessageID,
		Message:   text,
	})
}

// SendAction submits an in-game action, counter, challenge, pass, or
// exchange selection.
func (c *Client) SendAction(req network.GameActionRequest) error {
	c.mutex.Lock()
	conn := c.conn
	c.mutex.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.Send(network.MsgTypeGameAction, network.GameActionPayload{Action: req})
}

// SendReady toggles the lobby ready flag.
func (c *Client) SendReady(ready bool) error {
	c.mutex.Lock()
	conn := c.conn
	c.mutex.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.Send(network.MsgTypeReady, network.ReadyPayload{Ready: ready})
}
