package main

import (
	"context"
	"database/sql"
	"embed"
	"os"

	"mcdiscord/internal/application"
	"mcdiscord/internal/delivery/api"
	"mcdiscord/internal/delivery/discord"
	"mcdiscord/internal/repository"
	"mcdiscord/pkg/config"
	"mcdiscord/pkg/logger"
	service "mcdiscord/pkg/services"

	"github.com/joho/godotenv"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel})

	var db *sql.DB
	if cfg.Repo.Driver == repository.DriverPostgres {
		var err error
		db, err = repository.NewPostgresDB(&cfg.Repo)
		if err != nil {
			log.Error("failed to init db: %s", err.Error())
			return err
		}

		log.Info("Running migrations...")
		if err := repository.RunMigrations(db, migrationFS, "migrations"); err != nil {
			log.Error("failed to run migrations: %s", err.Error())
			return err
		}
		log.Info("Migrations applied successfully")
	}

	repos, err := repository.NewRepository(&cfg.Repo, db)
	if err != nil {
		log.Error("failed to init store: %s", err.Error())
		if db != nil {
			db.Close()
		}
		return err
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Warn("failed to close store: %s", err.Error())
		}
	}()

	registry, err := application.NewLinkRegistry(repos.ConfigStore, cfg.Links, log.With("registry"))
	if err != nil {
		log.Error("failed to load linked accounts: %s", err.Error())
		return err
	}

	services := application.NewService(registry, log.With("service"))

	bot, err := discord.NewBot(&cfg, services, log.With("discord"))
	if err != nil {
		log.Error("failed to init bot: %s", err.Error())
		return err
	}
	services.Connections.SetRoleAssigner(bot)

	manager := service.NewManager(log)
	manager.AddService(bot, application.NewLinkSaver(registry, cfg.Links.SaveInterval, log.With("autosave")))
	if cfg.API.Token != "" {
		manager.AddService(api.NewServer(&cfg.API, services, log.With("api")))
	} else {
		log.Warn("HTTP_TOKEN is empty, game API disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := manager.Run(ctx)
	if runErr != nil {
		log.Error("failed to start services: %s", runErr.Error())
	}

	if err := registry.Persist(); err != nil {
		log.Error("failed to save linked accounts: %s", err.Error())
		return err
	}
	log.Info("Bot Stopped")
	return runErr
}
