package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lukeharwood11/coup-o-clock/config"
	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/monitor"
	"github.com/lukeharwood11/coup-o-clock/persistence"
	"github.com/lukeharwood11/coup-o-clock/server"
	"github.com/lukeharwood11/coup-o-clock/timer"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	var db persistence.Database
	gormDB, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		// Rooms and gameplay are fully in-memory; stats just stop recording.
		logger.Log.Warnf("Running without database: %v", err)
	} else {
		logger.Log.Info("Database connection successful.")
		db = gormDB
		defer gormDB.Close()
	}

	mon := monitor.NewMonitor("coup")
	mon.StartServer(cfg.Server.MetricsAddress)

	timers := timer.NewManager()
	defer timers.Stop()

	gameServer := server.NewGameServer(cfg, db, mon, timers)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info("Shutting down.")
		gameServer.Shutdown()
	}()

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Infof("Server stopped: %v", err)
	}
}
