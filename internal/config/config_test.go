package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("APP_NAME", "")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "twentyOnePointsApp", cfg.AppName)
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "points")

	cfg := Load()
	assert.Equal(t, "postgres://app:secret@db:5432/points?sslmode=disable", cfg.DSN())

	cfg.DBDriver = "mysql"
	cfg.DBPort = "3306"
	assert.Equal(t, "app:secret@tcp(db:3306)/points?parseTime=true&charset=utf8mb4", cfg.DSN())

	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = "/tmp/p.db"
	assert.Contains(t, cfg.DSN(), "file:/tmp/p.db?")
}

func TestListAndIntParsing(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("TOKEN_TTL_HOURS", "nope")

	cfg := Load()
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
