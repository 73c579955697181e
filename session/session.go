package session

import (
	"sync"
	"time"

	"github.com/lukeharwood11/coup-o-clock/network"
)

// Session binds one websocket connection to one player identity. The session
// ID doubles as the player ID for the lifetime of the connection.
type Session struct {
	ID         string
	PlayerName string
	Conn       network.Connection
	RoomCode   string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.Mutex
}

func NewSession(id, playerName string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		PlayerName: playerName,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msgType string, payload any) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(msgType, payload)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks every live session on the server.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// GetByRoom returns every session currently bound to a room code.
func (m *Manager) GetByRoom(roomCode string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.RoomCode == roomCode {
			result = append(result, session)
		}
	}
	return result
}
