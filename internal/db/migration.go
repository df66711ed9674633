package db

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "000_create_users",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id            {{id}},
				login         VARCHAR(50) NOT NULL UNIQUE,
				email         VARCHAR(254) UNIQUE,
				password_hash VARCHAR(60) NOT NULL,
				created_at    {{datetime}} NOT NULL
			)`,
	},
	{
		version: "001_create_password_reset_tokens",
		sql: `
			CREATE TABLE IF NOT EXISTS password_reset_tokens (
				id         {{id}},
				user_id    {{bigint}} NOT NULL,
				token      VARCHAR(20) NOT NULL,
				expires_at {{datetime}} NOT NULL,
				used       BOOLEAN NOT NULL DEFAULT FALSE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "002_create_points",
		sql: `
			CREATE TABLE IF NOT EXISTS points (
				id         {{id}},
				entry_date {{date}} NOT NULL,
				exercise   INT,
				meals      INT,
				alcohol    INT,
				notes      VARCHAR(140),
				user_id    {{bigint}},
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);
			{{create_index}} idx_points_user ON points (user_id)`,
	},
	{
		version: "003_create_weights",
		sql: `
			CREATE TABLE IF NOT EXISTS weights (
				id          {{id}},
				measured_at {{datetime}} NOT NULL,
				weight      {{double}} NOT NULL,
				user_id     {{bigint}},
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);
			{{create_index}} idx_weights_user ON weights (user_id)`,
	},
	{
		version: "004_create_blood_pressures",
		sql: `
			CREATE TABLE IF NOT EXISTS blood_pressures (
				id          {{id}},
				measured_at {{datetime}} NOT NULL,
				systolic    INT NOT NULL,
				diastolic   INT NOT NULL,
				user_id     {{bigint}},
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);
			{{create_index}} idx_blood_pressures_user ON blood_pressures (user_id)`,
	},
	{
		version: "005_create_preferences",
		sql: `
			CREATE TABLE IF NOT EXISTS preferences (
				id           {{id}},
				weekly_goal  INT NOT NULL,
				weight_units VARCHAR(10) NOT NULL,
				user_id      {{bigint}} UNIQUE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
}

func RunMigrations(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, db.Dialect.DDL(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at {{datetime}} DEFAULT {{now}}
		)
	`)); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := executeMigration(ctx, db, m); err != nil {
			return err
		}

		log.Printf("applied migration: %s", m.version)
	}

	return nil
}

func isMigrationApplied(ctx context.Context, db *DB, version string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}

func executeMigration(ctx context.Context, db *DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", m.version, err)
	}

	for _, stmt := range strings.Split(db.Dialect.DDL(m.sql), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if IsDuplicateIndex(err) {
				log.Printf("migration %s: index already exists, skipping", m.version)
				continue
			}
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		db.Dialect.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"),
		m.version,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.version, err)
	}

	return tx.Commit()
}
