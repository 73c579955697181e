// services/stats_service.go
package services

import (
	"time"

	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/models"
	"github.com/lukeharwood11/coup-o-clock/persistence"
	"github.com/lukeharwood11/coup-o-clock/room"
)

// StatsService records finished games and serves player statistics. A nil
// database turns it into a no-op so the server can run without postgres.
type StatsService struct {
	db persistence.Database
}

func NewStatsService(db persistence.Database) *StatsService {
	return &StatsService{db: db}
}

// RecordGame persists the summary a room emits when its game ends.
func (s *StatsService) RecordGame(summary room.GameSummary) {
	if s.db == nil {
		return
	}

	record := &models.GameRecord{
		RoomCode:  summary.RoomCode,
		Winner:    summary.Winner,
		Duration:  summary.Duration,
		CreatedAt: time.Now(),
	}
	for _, p := range summary.Players {
		record.Players = append(record.Players, models.PlayerResult{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Outcome:  p.Outcome,
		})
	}

	if err := s.db.SaveGameRecord(record); err != nil {
		logger.Log.Errorf("Failed to record game for room %s: %v", summary.RoomCode, err)
	}
}

// RecordRoomState upserts the lifecycle row for a room. Called off the hot
// path; failures are logged, never surfaced to gameplay.
func (s *StatsService) RecordRoomState(roomCode, status string, players []string) {
	if s.db == nil {
		return
	}
	if err := s.db.SaveRoomState(roomCode, status, players); err != nil {
		logger.Log.Errorf("Failed to record room state for %s: %v", roomCode, err)
	}
}

// GetPlayerStats returns the running tally for one player name.
func (s *StatsService) GetPlayerStats(playerName string) (*models.PlayerStats, error) {
	if s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.db.GetPlayerStats(playerName)
}

// RecentGames returns the newest finished games.
func (s *StatsService) RecentGames(limit int) ([]models.GameRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.RecentGames(limit)
}
