package room

import (
	"time"

	"github.com/lukeharwood11/coup-o-clock/game"
	"github.com/lukeharwood11/coup-o-clock/network"
)

// Msg is an inbox message for the room's single-writer loop. Everything that
// mutates room or game state arrives as one of these.
type Msg interface{ isRoomMsg() }

type Join struct {
	PlayerID   string
	PlayerName string
	Reply      chan JoinReply
}

type JoinReply struct {
	Err     error
	Players []string
}

type Leave struct {
	PlayerID string
}

type Chat struct {
	PlayerID  string
	MessageID string
	Text      string
}

type Ready struct {
	PlayerID string
	Ready    bool
}

type GameCommand struct {
	PlayerID string
	Request  network.GameActionRequest
}

type GetInfo struct {
	Reply chan Info
}

type GetView struct {
	PlayerID string
	Reply    chan *game.View
}

type Shutdown struct{}

func (Join) isRoomMsg()        {}
func (Leave) isRoomMsg()       {}
func (Chat) isRoomMsg()        {}
func (Ready) isRoomMsg()       {}
func (GameCommand) isRoomMsg() {}
func (GetInfo) isRoomMsg()     {}
func (GetView) isRoomMsg()     {}
func (Shutdown) isRoomMsg()    {}

type windowTimeout struct {
	version uint64
}

type emptyCheck struct{}

func (windowTimeout) isRoomMsg() {}
func (emptyCheck) isRoomMsg()    {}

// Info is a point-in-time summary for the REST/RPC surfaces.
type Info struct {
	Code        string      `json:"code"`
	Status      game.Status `json:"status"`
	PlayerCount int         `json:"player_count"`
	Players     []string    `json:"players"`
}

// PlayerOutcome and GameSummary describe a finished game for persistence.
type PlayerOutcome struct {
	PlayerID string
	Name     string
	Outcome  string // "win" or "lose"
}

type GameSummary struct {
	RoomCode string
	Winner   string
	Duration time.Duration
	Players  []PlayerOutcome
}
