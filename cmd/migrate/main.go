package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/almas-cp/Saner-sub000/pkg/logger"
)

// Applies the schema migrations under migrations/. Usage:
//
//	migrate [up|down]
//
// DB_URL names the target database; MIGRATIONS_PATH overrides the directory
// lookup, which otherwise walks upward from the working directory.
func main() {
	// Running without a .env is normal in deployed environments.
	_ = godotenv.Load()
	log := logger.New(os.Getenv("APP_ENV"))

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal().Msg("DB_URL is required")
	}

	migrationsPath, err := resolveMigrationsDir()
	if err != nil {
		log.Fatal().Err(err).Msg("could not locate migrations directory")
	}

	m, err := migrate.New("file://"+migrationsPath, dbURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationsPath).Msg("failed to open migrator")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		log.Fatal().Str("command", direction).Msg("unknown command, expected up or down")
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("command", direction).Msg("schema already current")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", direction).Msg("migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal().Err(err).Msg("failed to read schema version")
	}
	log.Info().
		Str("command", direction).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("migrations applied")
}

// resolveMigrationsDir honors MIGRATIONS_PATH when set, then walks up from
// the working directory so the binary works from the repo root, cmd/migrate,
// or a build directory next to the tree.
func resolveMigrationsDir() (string, error) {
	if override := os.Getenv("MIGRATIONS_PATH"); override != "" {
		return filepath.Abs(override)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no migrations directory above " + dir)
		}
		dir = parent
	}
}
