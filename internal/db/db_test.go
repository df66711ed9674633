package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HankLeo/21-points/internal/domain"
)

func TestRebind(t *testing.T) {
	pg := Dialect{Name: Postgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	my := Dialect{Name: MySQL}
	assert.Equal(t, "a = ?", my.Rebind("a = ?"))
}

func TestDDL(t *testing.T) {
	stmt := "id {{id}}, at {{datetime}} DEFAULT {{now}}"
	assert.Equal(t, "id BIGINT AUTO_INCREMENT PRIMARY KEY, at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)", Dialect{Name: MySQL}.DDL(stmt))
	assert.Equal(t, "id BIGSERIAL PRIMARY KEY, at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP", Dialect{Name: Postgres}.DDL(stmt))
	assert.Equal(t, "id INTEGER PRIMARY KEY AUTOINCREMENT, at TEXT DEFAULT CURRENT_TIMESTAMP", Dialect{Name: SQLite}.DDL(stmt))

	idx := "{{create_index}} idx_a ON a (b)"
	assert.Equal(t, "CREATE INDEX idx_a ON a (b)", Dialect{Name: MySQL}.DDL(idx))
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS idx_a ON a (b)", Dialect{Name: Postgres}.DDL(idx))
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS idx_a ON a (b)", Dialect{Name: SQLite}.DDL(idx))
}

func TestMigrationRerunsOverExistingIndex(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	_, err = db.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", "003_create_weights")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, db))
	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	assert.True(t, IsDuplicateIndex(&mysql.MySQLError{Number: 1061}))
	assert.False(t, IsDuplicateIndex(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicateIndex(errors.New("boom")))
}

func TestTimeAndDateValues(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.FixedZone("x", 3600))

	assert.Equal(t, "2024-05-06T06:08:09.123456000Z", Dialect{Name: SQLite}.Time(at))
	assert.Equal(t, time.Date(2024, 5, 6, 6, 8, 9, 123456000, time.UTC), Dialect{Name: MySQL}.Time(at))

	d := domain.NewLocalDate(2024, 5, 6)
	assert.Equal(t, "2024-05-06", Dialect{Name: SQLite}.Date(d))
	assert.Equal(t, d.Time, Dialect{Name: Postgres}.Date(d))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	id, err := db.Insert(ctx, "INSERT INTO users (login, password_hash, created_at) VALUES (?, ?, ?)",
		"alice", "x", db.Dialect.Time(time.Now()))
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = db.Insert(ctx, "INSERT INTO users (login, password_hash, created_at) VALUES (?, ?, ?)",
		"alice", "y", db.Dialect.Time(time.Now()))
	assert.True(t, IsDuplicate(err))

	_, err = db.Insert(ctx, "INSERT INTO points (entry_date, user_id) VALUES (?, ?)", "2024-01-01", 999)
	assert.True(t, IsForeignKey(err))
}

func TestIsDuplicateByDriver(t *testing.T) {
	assert.True(t, IsDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsDuplicate(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsForeignKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDuplicate(errors.New("boom")))
	assert.False(t, IsDuplicate(nil))
}
