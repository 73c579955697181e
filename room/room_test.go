package room

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lukeharwood11/coup-o-clock/config"
	"github.com/lukeharwood11/coup-o-clock/game"
	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/network"
	"github.com/lukeharwood11/coup-o-clock/timer"
)

func init() {
	logger.InitDevelopment()
}

// sentFrame is one recorded outbound message.
type sentFrame struct {
	SessionID string
	MsgType   string
	Payload   any
}

// MockBroadcaster is a test double for the Broadcaster interface. It records
// every frame so tests can assert on delivery and personalization.
type MockBroadcaster struct {
	mutex  sync.Mutex
	frames []sentFrame
}

func (m *MockBroadcaster) BroadcastToSessions(sessionIDs []string, msgType string, payload any) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, id := range sessionIDs {
		m.frames = append(m.frames, sentFrame{SessionID: id, MsgType: msgType, Payload: payload})
	}
}

func (m *MockBroadcaster) SendToSession(sessionID string, msgType string, payload any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.frames = append(m.frames, sentFrame{SessionID: sessionID, MsgType: msgType, Payload: payload})
	return nil
}

func (m *MockBroadcaster) framesOfType(msgType string) []sentFrame {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var out []sentFrame
	for _, f := range m.frames {
		if f.MsgType == msgType {
			out = append(out, f)
		}
	}
	return out
}

func testConfig() config.GameConfig {
	return config.GameConfig{
		MinPlayers:          2,
		MaxPlayers:          4,
		ChallengeWindow:     time.Minute,
		CounteractionWindow: time.Minute,
		EmptyRoomGrace:      time.Minute,
	}
}

func newTestManager(t *testing.T, onGameOver func(GameSummary)) (*Manager, *MockBroadcaster) {
	t.Helper()
	b := &MockBroadcaster{}
	timers := timer.NewManager()
	t.Cleanup(timers.Stop)
	m := NewManager(testConfig(), b, timers, onGameOver)
	t.Cleanup(m.Shutdown)
	return m, b
}

// barrier waits until the room loop has drained everything posted before it.
func barrier(r *Room) Info {
	return r.Info()
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	if len(code) != codeLength {
		t.Errorf("Expected code length %d, got %d", codeLength, len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(codeCharset, c) {
			t.Errorf("Code contains unexpected character %q", c)
		}
	}
}

func TestManager_CreateVsJoin(t *testing.T) {
	m, _ := newTestManager(t, nil)

	r, err := m.Create("1234")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.Join("s1", "Player 1"); err != nil {
		t.Fatalf("Creator join failed: %v", err)
	}

	joined, err := m.Get("1234")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := joined.Join("s2", "Player 2"); err != nil {
		t.Fatalf("Second join failed: %v", err)
	}

	if _, err := m.Create("1234"); !errors.Is(err, ErrRoomAlreadyExists) {
		t.Errorf("Expected ErrRoomAlreadyExists, got %v", err)
	}
	if _, err := m.Get("9999"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestManager_GeneratesCodeWhenEmpty(t *testing.T) {
	m, _ := newTestManager(t, nil)

	r, err := m.Create("")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(r.Code) != codeLength {
		t.Errorf("Expected a generated %d character code, got %q", codeLength, r.Code)
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 room, got %d", m.Count())
	}
}

func TestRoom_DuplicateNameRejected(t *testing.T) {
	m, _ := newTestManager(t, nil)
	r, _ := m.Create("ABCDE")

	if _, err := r.Join("s1", "Player 1"); err != nil {
		t.Fatalf("First join failed: %v", err)
	}
	if _, err := r.Join("s2", "Player 1"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
}

func TestRoom_FullRejected(t *testing.T) {
	b := &MockBroadcaster{}
	timers := timer.NewManager()
	defer timers.Stop()
	cfg := testConfig()
	cfg.MaxPlayers = 1
	m := NewManager(cfg, b, timers, nil)
	defer m.Shutdown()

	r, _ := m.Create("ABCDE")
	if _, err := r.Join("s1", "Player 1"); err != nil {
		t.Fatalf("First join failed: %v", err)
	}
	if _, err := r.Join("s2", "Player 2"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
}

func TestRoom_ReadyStartsGame(t *testing.T) {
	m, b := newTestManager(t, nil)
	r, _ := m.Create("ABCDE")
	r.Join("s1", "Player 1")
	r.Join("s2", "Player 2")

	r.Post(Ready{PlayerID: "s1", Ready: true})
	if info := barrier(r); info.Status != game.StatusWaiting {
		t.Fatal("Game must not start before everyone is ready")
	}

	r.Post(Ready{PlayerID: "s2", Ready: true})
	if info := barrier(r); info.Status != game.StatusPlaying {
		t.Fatalf("Expected status %s, got %s", game.StatusPlaying, info.Status)
	}

	if starts := b.framesOfType(network.MsgTypeGameStart); len(starts) != 2 {
		t.Errorf("Expected game_start delivered to both players, got %d frames", len(starts))
	}

	// Snapshots are personalized: each recipient sees their own cards, and
	// only hidden placeholders for the other seat.
	states := b.framesOfType(network.MsgTypeGameState)
	if len(states) != 2 {
		t.Fatalf("Expected 2 personalized snapshots, got %d", len(states))
	}
	for _, f := range states {
		payload, ok := f.Payload.(network.GameStatePayload)
		if !ok {
			t.Fatalf("Expected GameStatePayload, got %T", f.Payload)
		}
		for _, pv := range payload.State.Players {
			concealed := 0
			for _, c := range pv.Cards {
				if c == game.CardHidden {
					concealed++
				}
			}
			if pv.ID == f.SessionID && concealed != 0 {
				t.Errorf("Recipient %s got hidden placeholders for their own hand", f.SessionID)
			}
			if pv.ID != f.SessionID && concealed != len(pv.Cards) {
				t.Errorf("Snapshot for %s leaked cards of %s", f.SessionID, pv.ID)
			}
		}
	}
}

func TestRoom_RejectionGoesToOffenderOnly(t *testing.T) {
	m, b := newTestManager(t, nil)
	r, _ := m.Create("ABCDE")
	r.Join("s1", "Player 1")
	r.Join("s2", "Player 2")
	r.Post(Ready{PlayerID: "s1", Ready: true})
	r.Post(Ready{PlayerID: "s2", Ready: true})
	barrier(r)

	// s2 acts out of turn.
	r.Post(GameCommand{PlayerID: "s2", Request: network.GameActionRequest{
		Type:       network.GameActionPerform,
		GameAction: &game.Action{Type: game.ActionIncome},
	}})
	barrier(r)

	errs := b.framesOfType(network.MsgTypeError)
	if len(errs) != 1 {
		t.Fatalf("Expected exactly one rejection frame, got %d", len(errs))
	}
	if errs[0].SessionID != "s2" {
		t.Errorf("Rejection must go to the offender, went to %s", errs[0].SessionID)
	}
	payload, ok := errs[0].Payload.(network.ErrorPayload)
	if !ok {
		t.Fatalf("Expected ErrorPayload, got %T", errs[0].Payload)
	}
	if payload.Code != string(game.RejectNotYourTurn) {
		t.Errorf("Expected code %s, got %s", game.RejectNotYourTurn, payload.Code)
	}
}

func TestRoom_ChatIsEchoedWithMessageID(t *testing.T) {
	m, b := newTestManager(t, nil)
	r, _ := m.Create("ABCDE")
	r.Join("s1", "Player 1")
	r.Join("s2", "Player 2")

	r.Post(Chat{PlayerID: "s1", MessageID: "m-1", Text: "hello"})
	barrier(r)

	chats := b.framesOfType(network.MsgTypeChat)
	if len(chats) != 2 {
		t.Fatalf("Expected chat echoed to both players, got %d frames", len(chats))
	}
	payload := chats[0].Payload.(network.ChatPayload)
	if payload.MessageID != "m-1" || payload.Player != "Player 1" || payload.Message != "hello" {
		t.Errorf("Unexpected chat payload: %+v", payload)
	}
}

func TestRoom_LeaveMidGameForfeitsAndSettles(t *testing.T) {
	summaries := make(chan GameSummary, 1)
	m, b := newTestManager(t, func(s GameSummary) { summaries <- s })

	r, _ := m.Create("ABCDE")
	r.Join("s1", "Player 1")
	r.Join("s2", "Player 2")
	r.Post(Ready{PlayerID: "s1", Ready: true})
	r.Post(Ready{PlayerID: "s2", Ready: true})
	barrier(r)

	r.Post(Leave{PlayerID: "s2"})
	barrier(r)

	if overs := b.framesOfType(network.MsgTypeGameOver); len(overs) == 0 {
		t.Error("Expected a game_over broadcast after the forfeit")
	}

	select {
	case summary := <-summaries:
		if summary.Winner != "Player 1" {
			t.Errorf("Expected Player 1 to win by forfeit, got %q", summary.Winner)
		}
		if summary.RoomCode != "ABCDE" {
			t.Errorf("Expected room code ABCDE, got %q", summary.RoomCode)
		}
		if len(summary.Players) != 2 {
			t.Errorf("Expected 2 player outcomes, got %d", len(summary.Players))
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the game summary")
	}
}

func TestRoom_JoinAfterStartRejected(t *testing.T) {
	m, _ := newTestManager(t, nil)
	r, _ := m.Create("ABCDE")
	r.Join("s1", "Player 1")
	r.Join("s2", "Player 2")
	r.Post(Ready{PlayerID: "s1", Ready: true})
	r.Post(Ready{PlayerID: "s2", Ready: true})
	barrier(r)

	if _, err := r.Join("s3", "Player 3"); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("Expected ErrGameInProgress, got %v", err)
	}
}

func TestRoom_EmptyRoomTornDownAfterGrace(t *testing.T) {
	b := &MockBroadcaster{}
	timers := timer.NewManager()
	defer timers.Stop()
	cfg := testConfig()
	cfg.EmptyRoomGrace = 50 * time.Millisecond
	m := NewManager(cfg, b, timers, nil)
	defer m.Shutdown()

	r, _ := m.Create("ABCDE")
	r.Join("s1", "Player 1")
	r.Post(Leave{PlayerID: "s1"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Count() == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Expected the empty room to be torn down, still %d rooms", m.Count())
}

func TestRoom_PostAfterShutdownFails(t *testing.T) {
	m, _ := newTestManager(t, nil)
	r, _ := m.Create("ABCDE")

	r.Post(Shutdown{})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if err := r.Post(Chat{PlayerID: "s1", Text: "x"}); errors.Is(err, ErrRoomClosed) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Expected ErrRoomClosed after shutdown")
}
