package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/gestobra/internal/config"
	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/logger"
)

func main() {
	_ = godotenv.Load()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(cfg.App.Env))

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, command); err != nil {
		slog.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}

	slog.Info("migration finished", "command", command)
}
