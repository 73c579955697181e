// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord is one finished game.
type GormGameRecord struct {
	gorm.Model
	RoomCode string `gorm:"index;not null"`
	Winner   string `gorm:"not null"`
	Players  string `gorm:"type:jsonb;not null"` // JSON array of PlayerResult
	Duration int    `gorm:"default:0"`           // seconds
}

// GormPlayerStats is the running tally per player name.
type GormPlayerStats struct {
	gorm.Model
	PlayerName string `gorm:"uniqueIndex;not null"`
	TotalGames int    `gorm:"default:0"`
	Wins       int    `gorm:"default:0"`
	Losses     int    `gorm:"default:0"`
	PlayTime   int    `gorm:"default:0"` // seconds across all games
}

// GormRoom mirrors a live room's lobby state for the REST surface.
type GormRoom struct {
	gorm.Model
	RoomCode string `gorm:"uniqueIndex;not null"`
	Status   string `gorm:"not null"`
	Players  string `gorm:"type:jsonb"` // JSON array of player names
}
