package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/HankLeo/21-points/internal/config"
)

// DB is a connection pool that speaks one Dialect. Its Context methods
// accept ? placeholders whatever the driver.
type DB struct {
	*sql.DB
	Dialect Dialect
}

func Connect(cfg *config.Config) (*DB, error) {
	db, err := Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	if db.Dialect.Name != SQLite {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("database connection established (%s)", db.Dialect.Name)
	return db, nil
}

// Open opens a pool without checking connectivity.
func Open(driver, dsn string) (*DB, error) {
	var sqlDriver string
	switch driver {
	case MySQL:
		sqlDriver = "mysql"
	case Postgres:
		sqlDriver = "pgx"
	case SQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == SQLite {
		// one writer, and an in-memory database lives only as long as its connection
		conn.SetMaxOpenConns(1)
	}
	return &DB{DB: conn, Dialect: Dialect{Name: driver}}, nil
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory() (*DB, error) {
	return Open(SQLite, "file::memory:?_pragma=foreign_keys(1)")
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.Rebind(query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.Rebind(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.Rebind(query), args...)
}

// Insert runs an INSERT and returns the generated id.
func (db *DB) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	if db.Dialect.Returning() {
		var id int64
		if err := db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
