package room

// Broadcaster is the outbound fan-out a room depends on. Defined here to
// break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToSessions(sessionIDs []string, msgType string, payload any)
	SendToSession(sessionID string, msgType string, payload any) error
}
