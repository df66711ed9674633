package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/pagination"
)

type UserRepository struct {
	db *db.DB
}

func NewUserRepository(db *db.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, login, email, password_hash, created_at"

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	id, err := r.db.Insert(ctx,
		`INSERT INTO users (login, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Login, u.Email, u.PasswordHash, r.db.Dialect.Time(u.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.getOne(ctx, "login = ?", strings.ToLower(login))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var (
		u       domain.User
		email   sql.NullString
		created any
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where, arg,
	).Scan(&u.ID, &u.Login, &email, &u.PasswordHash, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if email.Valid {
		u.Email = &email.String
	}
	if u.CreatedAt, err = timeValue(created); err != nil {
		return nil, fmt.Errorf("failed to read user created_at: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// FindAll pages through the public view of users, ordered by id unless
// sorted by login.
func (r *UserRepository) FindAll(ctx context.Context, p pagination.Pageable) (pagination.Page[domain.UserRef], error) {
	page := pagination.Page[domain.UserRef]{Number: p.Page, Size: p.Size}
	orderBy, err := userOrder(p.Sort)
	if err != nil {
		return page, err
	}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&page.Total); err != nil {
		return page, fmt.Errorf("failed to count users: %w", err)
	}
	page.Content, err = r.refs(ctx, "SELECT id, login FROM users"+orderBy+" LIMIT ? OFFSET ?", p.Size, p.Offset())
	return page, err
}

// Search finds users whose login contains query.
func (r *UserRepository) Search(ctx context.Context, query string) ([]domain.UserRef, error) {
	return r.refs(ctx,
		"SELECT id, login FROM users WHERE login LIKE ? ESCAPE '!' ORDER BY id ASC",
		"%"+escapeLike(strings.ToLower(query))+"%",
	)
}

func (r *UserRepository) refs(ctx context.Context, query string, args ...any) ([]domain.UserRef, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserRef
	for rows.Next() {
		var u domain.UserRef
		if err := rows.Scan(&u.ID, &u.Login); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func userOrder(sort []pagination.Order) (string, error) {
	var parts []string
	hasID := false
	for _, o := range sort {
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		switch o.Property {
		case "id":
			hasID = true
			parts = append(parts, "id"+dir)
		case "login":
			parts = append(parts, "login"+dir)
		default:
			return "", fmt.Errorf("%w: users have no property %q", pagination.ErrInvalidSort, o.Property)
		}
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
