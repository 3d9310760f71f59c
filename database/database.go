package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/waterlily/config"
)

// DB is the relational store shared by every service. Queries are written
// with ? placeholders and passed through Rebind for the active driver.
type DB struct {
	*sqlx.DB
}

func Open(cfg config.Config) (db *DB, err error) {
	dsn := cfg.DBUrl
	if cfg.DBDriver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	sdb, err := sqlx.Open(cfg.DBDriver, dsn)
	if err != nil {
		return
	}
	db = &DB{sdb}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return
}

// sqliteDSN turns on foreign keys (needed for the cascades), WAL journaling
// and a busy timeout for every pooled connection.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// InTx runs fn in a transaction, committing only if fn succeeds. Any error
// or panic rolls every statement back.
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.begin_tx: %w", err)
	}
	defer tx.Rollback()

	err = fn(tx)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("db.commit: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint, for
// either supported driver.
func IsUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
