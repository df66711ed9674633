package db

import (
	"strconv"
	"strings"
	"time"

	"github.com/HankLeo/21-points/internal/domain"
)

const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// SQLiteTimeLayout is fixed width so that stored timestamps sort as text.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Dialect covers the differences between the supported databases.
type Dialect struct {
	Name string
}

// Rebind rewrites ? placeholders into $1, $2, ... for Postgres.
func (d Dialect) Rebind(query string) string {
	if d.Name != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DDL expands the column type macros used by the migrations. MySQL has no
// CREATE INDEX IF NOT EXISTS; the migration runner skips its duplicate
// index error instead.
func (d Dialect) DDL(stmt string) string {
	var r *strings.Replacer
	switch d.Name {
	case Postgres:
		r = strings.NewReplacer(
			"{{id}}", "BIGSERIAL PRIMARY KEY",
			"{{bigint}}", "BIGINT",
			"{{datetime}}", "TIMESTAMPTZ",
			"{{now}}", "CURRENT_TIMESTAMP",
			"{{date}}", "DATE",
			"{{double}}", "DOUBLE PRECISION",
			"{{create_index}}", "CREATE INDEX IF NOT EXISTS",
		)
	case SQLite:
		r = strings.NewReplacer(
			"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{bigint}}", "INTEGER",
			"{{datetime}}", "TEXT",
			"{{now}}", "CURRENT_TIMESTAMP",
			"{{date}}", "TEXT",
			"{{double}}", "REAL",
			"{{create_index}}", "CREATE INDEX IF NOT EXISTS",
		)
	default:
		r = strings.NewReplacer(
			"{{id}}", "BIGINT AUTO_INCREMENT PRIMARY KEY",
			"{{bigint}}", "BIGINT",
			"{{datetime}}", "DATETIME(6)",
			"{{now}}", "CURRENT_TIMESTAMP(6)",
			"{{date}}", "DATE",
			"{{double}}", "DOUBLE",
			"{{create_index}}", "CREATE INDEX",
		)
	}
	return r.Replace(stmt)
}

// Time converts t into the value stored for a timestamp column.
func (d Dialect) Time(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if d.Name == SQLite {
		return t.Format(SQLiteTimeLayout)
	}
	return t
}

// Date converts a calendar day into the value stored for a date column.
func (d Dialect) Date(ld domain.LocalDate) any {
	if d.Name == SQLite {
		return ld.String()
	}
	return ld.Time
}

// Returning reports whether inserts read the new id with RETURNING.
func (d Dialect) Returning() bool {
	return d.Name == Postgres
}
