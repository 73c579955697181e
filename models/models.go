// models/models.go
package models

import (
	"time"
)

// PlayerResult is one seat's outcome inside a game record.
type PlayerResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Outcome  string `json:"outcome"` // win/lose
}

// GameRecord describes a finished game.
type GameRecord struct {
	RoomCode  string         `json:"room_code"`
	Winner    string         `json:"winner"`
	Players   []PlayerResult `json:"players"`
	Duration  time.Duration  `json:"duration"`
	CreatedAt time.Time      `json:"created_at"`
}

// PlayerStats is the aggregate record served over REST and RPC.
type PlayerStats struct {
	PlayerName string `json:"player_name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	PlayTime   int    `json:"play_time"` // seconds
}
