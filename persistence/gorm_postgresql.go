// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lukeharwood11/coup-o-clock/models"
)

// GormPostgreSQL is the primary Database implementation.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}, &models.GormPlayerStats{}, &models.GormRoom{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord appends the finished game and bumps every participant's
// stats row in a single transaction.
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	playersJSON, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		row := models.GormGameRecord{
			RoomCode: record.RoomCode,
			Winner:   record.Winner,
			Players:  string(playersJSON),
			Duration: int(record.Duration.Seconds()),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		for _, pr := range record.Players {
			wins := 0
			losses := 0
			if pr.Outcome == "win" {
				wins = 1
			} else {
				losses = 1
			}

			var stats models.GormPlayerStats
			result := tx.Where("player_name = ?", pr.Name).First(&stats)
			if result.Error == gorm.ErrRecordNotFound {
				stats = models.GormPlayerStats{
					PlayerName: pr.Name,
					TotalGames: 1,
					Wins:       wins,
					Losses:     losses,
					PlayTime:   int(record.Duration.Seconds()),
				}
				if err := tx.Create(&stats).Error; err != nil {
					return err
				}
				continue
			} else if result.Error != nil {
				return result.Error
			}

			updates := map[string]interface{}{
				"total_games": gorm.Expr("total_games + 1"),
				"wins":        gorm.Expr("wins + ?", wins),
				"losses":      gorm.Expr("losses + ?", losses),
				"play_time":   gorm.Expr("play_time + ?", int(record.Duration.Seconds())),
			}
			if err := tx.Model(&stats).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveRoomState upserts the lifecycle record for one room code.
func (p *GormPostgreSQL) SaveRoomState(roomCode, status string, players []string) error {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}

	var row models.GormRoom
	result := p.db.Where("room_code = ?", roomCode).First(&row)
	if result.Error == gorm.ErrRecordNotFound {
		row = models.GormRoom{
			RoomCode: roomCode,
			Status:   status,
			Players:  string(playersJSON),
		}
		return p.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	row.Status = status
	row.Players = string(playersJSON)
	return p.db.Save(&row).Error
}

// RecentGames returns the newest finished games, newest first.
func (p *GormPostgreSQL) RecentGames(limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := p.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		var players []models.PlayerResult
		if err := json.Unmarshal([]byte(row.Players), &players); err != nil {
			return nil, err
		}
		records = append(records, models.GameRecord{
			RoomCode:  row.RoomCode,
			Winner:    row.Winner,
			Players:   players,
			Duration:  time.Duration(row.Duration) * time.Second,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

func (p *GormPostgreSQL) GetPlayerStats(playerName string) (*models.PlayerStats, error) {
	var stats models.GormPlayerStats
	if err := p.db.Where("player_name = ?", playerName).First(&stats).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &models.PlayerStats{
		PlayerName: stats.PlayerName,
		TotalGames: stats.TotalGames,
		Wins:       stats.Wins,
		Losses:     stats.Losses,
		PlayTime:   stats.PlayTime,
	}, nil
}

func (p *GormPostgreSQL) Transaction(fn func(tx *gorm.DB) error) error {
	return p.db.Transaction(fn)
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
