package main

import (
	"errors"
	"flag"
	"os"

	"agencycrm/internal/config"
	"agencycrm/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command (up, down, force)")
		source  = flag.String("source", "file://migrations", "Migration source URL")
		version = flag.Int("version", 1, "Version used by the force command")
	)
	flag.Parse()

	log, err := logger.New("info", "console", "agencycrm-migrate")
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	pgCfg, err := pgx.ParseConfig(cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to parse DSN", zap.Error(err))
	}
	db := stdlib.OpenDB(*pgCfg)
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("failed to create migration driver", zap.Error(err))
	}

	m, err := migrate.NewWithDatabaseInstance(*source, "postgres", driver)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}

	switch *command {
	case "up":
		log.Info("applying migrations")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	case "down":
		log.Info("reverting migrations")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("failed to revert migrations", zap.Error(err))
		}
		log.Info("migrations reverted")
	case "force":
		if err := m.Force(*version); err != nil {
			log.Fatal("failed to force migration version", zap.Error(err))
		}
		log.Info("migration version forced", zap.Int("version", *version))
	default:
		log.Fatal("unknown command", zap.String("command", *command))
	}
}
