package network

// Message types carried in the "type" field of every frame. The same envelope
// shape is used in both directions; the type tag is the dispatch key.
const (
	// Client -> server
	MsgTypeChat       = "chat"
	MsgTypeReady      = "ready"
	MsgTypeGameAction = "game_action"

	// Server -> client
	MsgTypeRoomJoined       = "room_joined"
	MsgTypePlayerJoined     = "player_joined"
	MsgTypePlayerLeft       = "player_left"
	MsgTypePlayerReady      = "player_ready"
	MsgTypeGameStart        = "game_start"
	MsgTypeGameState        = "game_state"
	MsgTypeGameActionResult = "game_action_result"
	MsgTypeGameOver         = "game_over"
	MsgTypeError            = "error"
)

// Close codes. 1000 is the websocket normal closure; the 4xxx range carries
// join failures so the client can tell them apart from generic abnormal
// closures.
const (
	CloseNormal        = 1000
	CloseInternalError = 1011
	CloseRoomExists    = 4000
	CloseRoomNotFound  = 4001
	CloseDuplicateName = 4002
)
