package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/smartboa/sbsbs/internal/config"
	nuts "github.com/vaudience/go-nuts"
)

// DB is an interface every SQL backend must implement
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	GetDB() *sqlx.DB
	Dialect() string
}

// SQLDB wraps a sqlx connection together with its driver name
type SQLDB struct {
	db      *sqlx.DB
	dialect string
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg config.PostgresConfig) (DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}

	nuts.L.Infof("[PostgresDB] Connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &SQLDB{db: db, dialect: "postgres"}, nil
}

// NewSQLiteDB opens (and creates if needed) a SQLite database file.
// Use ":memory:" for a throwaway database.
func NewSQLiteDB(path string) (DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening SQLite database %s: %w", path, err)
	}
	// sqlite serialises writers; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	nuts.L.Infof("[SQLiteDB] Opened %s", path)
	return &SQLDB{db: db, dialect: "sqlite3"}, nil
}

func (s *SQLDB) Close() error {
	return s.db.Close()
}

func (s *SQLDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDB) GetDB() *sqlx.DB {
	return s.db
}

func (s *SQLDB) Dialect() string {
	return s.dialect
}
