package session

import (
	"net"
	"testing"

	"github.com/lukeharwood11/coup-o-clock/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent []string
}

func (m *MockConnection) Send(msgType string, payload any) error {
	m.sent = append(m.sent, msgType)
	return nil
}
func (m *MockConnection) ReadEnvelope() (*network.Envelope, error)   { return nil, nil }
func (m *MockConnection) CloseWithCode(code int, reason string) error { return nil }
func (m *MockConnection) Close() error                                { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                        { return &net.TCPAddr{} }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sess := NewSession("session1", "Player 1", &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrieved, exists := manager.Get("session1")
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrieved != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove("session1")
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}
	if _, exists = manager.Get("session1"); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByRoom(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", "Player 1", &MockConnection{})
	sess1.RoomCode = "AAAAA"
	sess2 := NewSession("session2", "Player 2", &MockConnection{})
	sess2.RoomCode = "BBBBB"
	sess3 := NewSession("session3", "Player 3", &MockConnection{})
	sess3.RoomCode = "AAAAA"

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	if got := manager.GetByRoom("AAAAA"); len(got) != 2 {
		t.Errorf("Expected 2 sessions in room AAAAA, got %d", len(got))
	}
	if got := manager.GetByRoom("BBBBB"); len(got) != 1 {
		t.Errorf("Expected 1 session in room BBBBB, got %d", len(got))
	}
	if got := manager.GetByRoom("CCCCC"); len(got) != 0 {
		t.Errorf("Expected 0 sessions in room CCCCC, got %d", len(got))
	}
}

func TestSession_SendUpdatesLastActive(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("session1", "Player 1", conn)
	before := sess.LastActive

	if err := sess.Send(network.MsgTypeChat, nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeChat {
		t.Errorf("Expected one chat frame, got %v", conn.sent)
	}
	if sess.LastActive.Before(before) {
		t.Error("Send should refresh LastActive")
	}
}
