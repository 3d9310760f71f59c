package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var dbMigrations embed.FS

func migrateDB(db *DB) error {
	src, err := iofs.New(dbMigrations, "migrations/"+db.DriverName())
	if err != nil {
		return fmt.Errorf("db.migrate.source: %w", err)
	}

	var dst migratedb.Driver
	switch db.DriverName() {
	case "sqlite3":
		dst, err = sqlite3.WithInstance(db.DB.DB, &sqlite3.Config{})
	case "postgres":
		dst, err = postgres.WithInstance(db.DB.DB, &postgres.Config{})
	default:
		err = fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("db.migrate.driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, db.DriverName(), dst)
	if err != nil {
		return fmt.Errorf("db.migrate.init: %w", err)
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
		break
	case err != nil:
		return fmt.Errorf("db.migrate.up: %w", err)
	}
	return nil
}
