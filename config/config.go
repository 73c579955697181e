package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// GameConfig holds the per-room policy constants: how many players a room
// accepts, how long the challenge/counteraction windows stay open before the
// server resolves them, and how long an empty room lingers before teardown.
type GameConfig struct {
	MinPlayers          int           `mapstructure:"min_players"`
	MaxPlayers          int           `mapstructure:"max_players"`
	ChallengeWindow     time.Duration `mapstructure:"challenge_window"`
	CounteractionWindow time.Duration `mapstructure:"counteraction_window"`
	EmptyRoomGrace      time.Duration `mapstructure:"empty_room_grace"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("game.min_players", 2)
	viper.SetDefault("game.max_players", 6)
	viper.SetDefault("game.challenge_window", 15*time.Second)
	viper.SetDefault("game.counteraction_window", 15*time.Second)
	viper.SetDefault("game.empty_room_grace", 30*time.Second)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
