// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgreSQL is a plain database/sql implementation kept for deployments
// that cannot run migrations through GORM. It covers the write path only.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            winner VARCHAR(255) NOT NULL,
            players JSONB NOT NULL,
            duration INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_player_stats (
            id SERIAL PRIMARY KEY,
            player_name VARCHAR(255) UNIQUE NOT NULL,
            total_games INT DEFAULT 0,
            wins INT DEFAULT 0,
            losses INT DEFAULT 0,
            play_time INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_rooms (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) UNIQUE NOT NULL,
            status VARCHAR(32) NOT NULL,
            players JSONB,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON gorm_game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON gorm_game_records(created_at);
    `)

	return err
}

// SaveRoomState upserts the lifecycle record for one room code.
func (p *PostgreSQL) SaveRoomState(roomCode, status string, players []string) error {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO gorm_rooms (room_code, status, players)
        VALUES ($1, $2, $3)
        ON CONFLICT (room_code)
        DO UPDATE SET status = $2, players = $3, updated_at = CURRENT_TIMESTAMP
    `
	_, err = p.db.ExecContext(ctx, query, roomCode, status, playersJSON)
	return err
}

// SaveGameRecord writes one finished game row.
func (p *PostgreSQL) SaveGameRecord(roomCode, winner string, players interface{}, duration time.Duration) error {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO gorm_game_records (room_code, winner, players, duration)
        VALUES ($1, $2, $3, $4)
    `
	_, err = p.db.ExecContext(ctx, query, roomCode, winner, playersJSON, int(duration.Seconds()))
	return err
}

// BumpPlayerStats upserts the running tally for one player.
func (p *PostgreSQL) BumpPlayerStats(playerName string, won bool, duration time.Duration) error {
	wins := 0
	losses := 1
	if won {
		wins, losses = 1, 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO gorm_player_stats (player_name, total_games, wins, losses, play_time)
        VALUES ($1, 1, $2, $3, $4)
        ON CONFLICT (player_name)
        DO UPDATE SET
            total_games = gorm_player_stats.total_games + 1,
            wins = gorm_player_stats.wins + $2,
            losses = gorm_player_stats.losses + $3,
            play_time = gorm_player_stats.play_time + $4,
            updated_at = CURRENT_TIMESTAMP
    `
	_, err := p.db.ExecContext(ctx, query, playerName, wins, losses, int(duration.Seconds()))
	return err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
