package broadcast

import (
	"errors"

	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/session"
)

var ErrSessionNotFound = errors.New("session not found")

// Broadcaster fans messages out to sessions. Rooms address recipients by
// session ID so that per-recipient (personalized) payloads stay possible.
type Broadcaster interface {
	BroadcastToSessions(sessionIDs []string, msgType string, payload any)
	SendToSession(sessionID string, msgType string, payload any) error
}

// SessionBroadcaster resolves session IDs through the session manager.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessionManager: sessionManager}
}

// BroadcastToSessions delivers the same frame to every listed session. Send
// failures are logged and skipped; a dead connection is reaped by its own
// read loop, not here.
func (b *SessionBroadcaster) BroadcastToSessions(sessionIDs []string, msgType string, payload any) {
	for _, id := range sessionIDs {
		sess, exists := b.sessionManager.Get(id)
		if !exists {
			continue
		}
		if err := sess.Send(msgType, payload); err != nil {
			logger.Log.Warnf("Broadcast to session %s failed: %v", id, err)
		}
	}
}

func (b *SessionBroadcaster) SendToSession(sessionID string, msgType string, payload any) error {
	sess, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return sess.Send(msgType, payload)
}
