package network

import (
	"github.com/lukeharwood11/coup-o-clock/game"
)

// Sub-types of the game_action envelope.
const (
	GameActionPerform          = "perform_action"
	GameActionChallenge        = "challenge"
	GameActionPassChallenge    = "pass_challenge"
	GameActionCounter          = "counter"
	GameActionPassCounter      = "pass_counter"
	GameActionCompleteExchange = "complete_exchange"
)

// ChatPayload travels in both directions. The client generates MessageID so
// it can reconcile its optimistic local append against the server echo.
type ChatPayload struct {
	MessageID string `json:"message_id"`
	Player    string `json:"player,omitempty"`
	Message   string `json:"message"`
}

type ReadyPayload struct {
	Ready bool `json:"ready"`
}

// GameActionRequest wraps every in-game submission: declaring an action,
// challenging, blocking, passing on either, or finishing an exchange.
type GameActionRequest struct {
	Type          string              `json:"action_type"`
	GameAction    *game.Action        `json:"game_action,omitempty"`
	CounterAction *game.CounterAction `json:"counter_action,omitempty"`
	KeptIndices   []int               `json:"kept_indices,omitempty"`
}

type GameActionPayload struct {
	Action GameActionRequest `json:"action"`
}

// --- server -> client payloads ---

type RoomJoinedPayload struct {
	RoomCode  string   `json:"room_code"`
	Players   []string `json:"players"`
	IsCreator bool     `json:"is_creator"`
	PlayerID  string   `json:"player_id"`
}

type PlayerJoinedPayload struct {
	PlayerName string   `json:"player_name"`
	Players    []string `json:"players"`
}

type PlayerLeftPayload struct {
	PlayerName string   `json:"player_name"`
	Players    []string `json:"players"`
}

type PlayerReadyPayload struct {
	Player  string `json:"player"`
	IsReady bool   `json:"is_ready"`
}

type GameStartPayload struct {
	Players []string `json:"players"`
}

type GameStatePayload struct {
	State *game.View `json:"state"`
}

type GameActionResultPayload struct {
	ActionType string `json:"action_type"`
	Player     string `json:"player"`
	Message    string `json:"message"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
}

// ErrorPayload is targeted at the offending client only, never broadcast.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
