package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lukeharwood11/coup-o-clock/game"
	"github.com/lukeharwood11/coup-o-clock/network"
)

type sentFrame struct {
	MsgType string
	Payload any
}

// fakeConn is a scripted test double for the Conn interface. Inbound frames
// and read errors are fed through a single channel in order.
type fakeConn struct {
	inbound chan any // *network.Envelope or error

	mutex  sync.Mutex
	sent   []sentFrame
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan any, 16)}
}

func (c *fakeConn) push(t *testing.T, msgType string, payload any) {
	t.Helper()
	frame, err := network.EncodeFrame(msgType, payload)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	env, err := network.ParseEnvelope(frame)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	c.inbound <- env
}

func (c *fakeConn) pushErr(err error) {
	c.inbound <- err
}

func (c *fakeConn) Send(msgType string, payload any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.sent = append(c.sent, sentFrame{MsgType: msgType, Payload: payload})
	return nil
}

func (c *fakeConn) ReadEnvelope() (*network.Envelope, error) {
	item, ok := <-c.inbound
	if !ok {
		return nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	if err, isErr := item.(error); isErr {
		return nil, err
	}
	return item.(*network.Envelope), nil
}

func (c *fakeConn) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

func (c *fakeConn) lastSent() (sentFrame, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.sent) == 0 {
		return sentFrame{}, false
	}
	return c.sent[len(c.sent)-1], true
}

// connectedClient returns a client already joined to room TEST1 as p1.
func connectedClient(t *testing.T) (*Client, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	conn.push(t, network.MsgTypeRoomJoined, network.RoomJoinedPayload{
		RoomCode: "TEST1",
		Players:  []string{"Player 1"},
		PlayerID: "p1",
	})

	c := NewWithDialer("ws://test", func(rawURL string) (Conn, error) {
		return conn, nil
	})
	if err := c.Connect("TEST1", "Player 1", true); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c, conn
}

func TestConnect_Success(t *testing.T) {
	c, _ := connectedClient(t)

	if c.PlayerID() != "p1" {
		t.Errorf("Expected player id p1, got %q", c.PlayerID())
	}
	if c.RoomCode() != "TEST1" {
		t.Errorf("Expected room code TEST1, got %q", c.RoomCode())
	}
}

func TestConnect_DialFailure(t *testing.T) {
	c := NewWithDialer("ws://test", func(rawURL string) (Conn, error) {
		return nil, fmt.Errorf("connection refused")
	})
	err := c.Connect("TEST1", "Player 1", false)
	if !errors.Is(err, ErrConnectFailure) {
		t.Errorf("Expected ErrConnectFailure, got %v", err)
	}
}

func TestConnect_RoomExistsCloseCode(t *testing.T) {
	conn := newFakeConn()
	conn.pushErr(&websocket.CloseError{Code: network.CloseRoomExists})

	c := NewWithDialer("ws://test", func(rawURL string) (Conn, error) {
		return conn, nil
	})
	err := c.Connect("TEST1", "Player 1", true)
	if !errors.Is(err, ErrRoomAlreadyExists) {
		t.Errorf("Expected ErrRoomAlreadyExists, got %v", err)
	}
}

func TestConnect_OtherCloseCodeIsAbnormal(t *testing.T) {
	conn := newFakeConn()
	conn.pushErr(&websocket.CloseError{Code: websocket.CloseGoingAway})

	c := NewWithDialer("ws://test", func(rawURL string) (Conn, error) {
		return conn, nil
	})
	err := c.Connect("TEST1", "Player 1", false)
	if !errors.Is(err, ErrAbnormalClosure) {
		t.Errorf("Expected ErrAbnormalClosure, got %v", err)
	}
}

func TestConnect_ClosesPreviousChannel(t *testing.T) {
	first := newFakeConn()
	first.push(t, network.MsgTypeRoomJoined, network.RoomJoinedPayload{RoomCode: "AAAAA", PlayerID: "p1"})
	second := newFakeConn()
	second.push(t, network.MsgTypeRoomJoined, network.RoomJoinedPayload{RoomCode: "BBBBB", PlayerID: "p2"})

	conns := []Conn{first, second}
	c := NewWithDialer("ws://test", func(rawURL string) (Conn, error) {
		conn := conns[0]
		conns = conns[1:]
		return conn, nil
	})

	if err := c.Connect("AAAAA", "Player 1", true); err != nil {
		t.Fatalf("First connect failed: %v", err)
	}
	if err := c.Connect("BBBBB", "Player 1", true); err != nil {
		t.Fatalf("Second connect failed: %v", err)
	}
	defer c.Disconnect()

	if !first.isClosed() {
		t.Error("Reconnecting must close the previous channel")
	}
	if c.RoomCode() != "BBBBB" {
		t.Errorf("Expected room code BBBBB, got %q", c.RoomCode())
	}
}

func TestGameState_ReplacedWholesale(t *testing.T) {
	c, conn := connectedClient(t)

	states := make(chan *game.View, 2)
	c.OnStateChange(func(v *game.View) { states <- v })

	conn.push(t, network.MsgTypeGameState, network.GameStatePayload{
		State: &game.View{RoomCode: "TEST1", TurnNumber: 1},
	})
	conn.push(t, network.MsgTypeGameState, network.GameStatePayload{
		State: &game.View{RoomCode: "TEST1", TurnNumber: 2},
	})

	for i := 0; i < 2; i++ {
		select {
		case <-states:
		case <-time.After(time.Second):
			t.Fatal("Timed out waiting for a snapshot")
		}
	}

	if got := c.State(); got == nil || got.TurnNumber != 2 {
		t.Errorf("Expected the latest snapshot to fully replace the previous one, got %+v", got)
	}
}

func TestChat_OptimisticAppendAndReconcile(t *testing.T) {
	c, conn := connectedClient(t)

	updates := make(chan []ChatMessage, 4)
	c.OnChat(func(msgs []ChatMessage) { updates <- msgs })

	if err := c.SendMessage("hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	msgs := c.Messages()
	if len(msgs) != 1 || !msgs[0].Pending {
		t.Fatalf("Expected one pending message, got %+v", msgs)
	}

	// Echo the message back with the id the client generated.
	frame, ok := conn.lastSent()
	if !ok || frame.MsgType != network.MsgTypeChat {
		t.Fatalf("Expected a chat frame on the wire, got %+v", frame)
	}
	sentPayload := frame.Payload.(network.ChatPayload)
	conn.push(t, network.MsgTypeChat, network.ChatPayload{
		MessageID: sentPayload.MessageID,
		Player:    "Player 1",
		Message:   "hello",
	})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		msgs = c.Messages()
		if len(msgs) == 1 && !msgs[0].Pending {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected the pending message confirmed, got %+v", c.Messages())
}

func TestOnMessageType_ReceivesRawEnvelope(t *testing.T) {
	c, conn := connectedClient(t)

	got := make(chan string, 1)
	c.OnMessageType(network.MsgTypeGameOver, func(env *network.Envelope) {
		var payload network.GameOverPayload
		if err := env.Decode(&payload); err != nil {
			t.Errorf("Decode failed: %v", err)
		}
		got <- payload.Winner
	})

	conn.push(t, network.MsgTypeGameOver, network.GameOverPayload{Winner: "Player 1"})

	select {
	case winner := <-got:
		if winner != "Player 1" {
			t.Errorf("Expected winner Player 1, got %q", winner)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the handler")
	}
}

func TestSendAction_RequiresConnection(t *testing.T) {
	c := New("ws://test")
	err := c.SendAction(network.GameActionRequest{Type: network.GameActionChallenge})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestSendAction_EncodesRequest(t *testing.T) {
	c, conn := connectedClient(t)

	err := c.SendAction(network.GameActionRequest{
		Type:       network.GameActionPerform,
		GameAction: &game.Action{Type: game.ActionSteal, TargetID: "p2"},
	})
	if err != nil {
		t.Fatalf("SendAction failed: %v", err)
	}

	frame, ok := conn.lastSent()
	if !ok || frame.MsgType != network.MsgTypeGameAction {
		t.Fatalf("Expected a game_action frame, got %+v", frame)
	}

	raw, err := json.Marshal(frame.Payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded network.GameActionPayload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Action.Type != network.GameActionPerform {
		t.Errorf("Expected action type %s, got %s", network.GameActionPerform, decoded.Action.Type)
	}
	if decoded.Action.GameAction == nil || decoded.Action.GameAction.TargetID != "p2" {
		t.Errorf("Expected steal targeting p2, got %+v", decoded.Action.GameAction)
	}
}
