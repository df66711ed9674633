package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
)

type ResetTokenRepository struct {
	db *db.DB
}

func NewResetTokenRepository(db *db.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (user_id, token, expires_at, used) VALUES (?, ?, ?, ?)`,
		userID, token, r.db.Dialect.Time(expiresAt), false,
	)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetValid returns the newest unused, unexpired token for login, or nil.
func (r *ResetTokenRepository) GetValid(ctx context.Context, login, token string) (*domain.PasswordResetToken, error) {
	var (
		t       domain.PasswordResetToken
		expires any
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT prt.id, prt.user_id, prt.token, prt.expires_at, prt.used
		FROM password_reset_tokens prt
		JOIN users u ON u.id = prt.user_id
		WHERE u.login = ? AND prt.token = ? AND prt.used = ? AND prt.expires_at > ?
		ORDER BY prt.id DESC
		LIMIT 1`,
		strings.ToLower(login), token, false, r.db.Dialect.Time(time.Now()),
	).Scan(&t.ID, &t.UserID, &t.Token, &expires, &t.Used)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	if t.ExpiresAt, err = timeValue(expires); err != nil {
		return nil, fmt.Errorf("failed to read reset token expiry: %w", err)
	}
	return &t, nil
}

func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = ? WHERE id = ?`,
		true, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete old tokens: %w", err)
	}
	return nil
}
