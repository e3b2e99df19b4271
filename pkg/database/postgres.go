package database

import (
	"database/sql"
	"fmt"
	"time"

	"attendance.service/internal/config"
)

// DSN builds the pgx connection string for the configured database.
func DSN(cfg config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// configurePool applies the pool limits shared by the api and the worker.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
}
