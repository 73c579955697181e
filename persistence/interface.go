// persistence/interface.go
package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lukeharwood11/coup-o-clock/models"
)

// Database is the storage surface the services need. Both the GORM and the
// raw database/sql implementations satisfy it.
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	SaveRoomState(roomCode, status string, players []string) error
	RecentGames(limit int) ([]models.GameRecord, error)
	GetPlayerStats(playerName string) (*models.PlayerStats, error)
	Transaction(fn func(tx *gorm.DB) error) error
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
