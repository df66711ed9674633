package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/pagination"
)

// EntityRepository stores one entity type described by a Table.
type EntityRepository[T any, P domain.EntityPtr[T]] struct {
	db    *db.DB
	table Table[T]
}

func NewEntityRepository[T any, P domain.EntityPtr[T]](db *db.DB, table Table[T]) *EntityRepository[T, P] {
	return &EntityRepository[T, P]{db: db, table: table}
}

func (r *EntityRepository[T, P]) selectFrom() string {
	cols := make([]string, 0, len(r.table.Columns)+3)
	cols = append(cols, "t.id")
	for _, c := range r.table.Columns {
		cols = append(cols, "t."+c.Name)
	}
	cols = append(cols, "t.user_id", "u.login")
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + r.table.Name +
		" t LEFT JOIN users u ON u.id = t.user_id"
}

func (r *EntityRepository[T, P]) args(e P) []any {
	out := make([]any, 0, len(r.table.Columns)+1)
	for _, c := range r.table.Columns {
		out = append(out, bind(r.db.Dialect, c.value((*T)(e))))
	}
	var userID any
	if u := e.GetUser(); u != nil {
		userID = u.ID
	}
	return append(out, userID)
}

func (r *EntityRepository[T, P]) Create(ctx context.Context, e P) (P, error) {
	names := make([]string, 0, len(r.table.Columns)+1)
	for _, c := range r.table.Columns {
		names = append(names, c.Name)
	}
	names = append(names, "user_id")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	id, err := r.db.Insert(ctx,
		"INSERT INTO "+r.table.Name+" ("+strings.Join(names, ", ")+") VALUES ("+marks+")",
		r.args(e)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.table.Name, err)
	}
	return r.Get(ctx, id)
}

// Update overwrites every column of the row with e's id. It returns nil
// when the row does not exist.
func (r *EntityRepository[T, P]) Update(ctx context.Context, e P) (P, error) {
	id := e.GetID()
	if id == nil {
		return nil, errors.New("cannot update an entity without id")
	}
	sets := make([]string, 0, len(r.table.Columns)+1)
	for _, c := range r.table.Columns {
		sets = append(sets, c.Name+" = ?")
	}
	sets = append(sets, "user_id = ?")

	args := append(r.args(e), *id)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE "+r.table.Name+" SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.table.Name, err)
	}
	return r.Get(ctx, *id)
}

func (r *EntityRepository[T, P]) Get(ctx context.Context, id int64) (P, error) {
	rows, err := r.db.QueryContext(ctx, r.selectFrom()+" WHERE t.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", r.table.Name, err)
	}
	list, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *EntityRepository[T, P]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.table.Name+" WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", r.table.Name, err)
	}
	return count > 0, nil
}

func (r *EntityRepository[T, P]) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+r.table.Name+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.table.Name, err)
	}
	return nil
}

// FindAll returns one page of every row.
func (r *EntityRepository[T, P]) FindAll(ctx context.Context, p pagination.Pageable) (pagination.Page[P], error) {
	return r.page(ctx, "", nil, p)
}

// FindAllSorted returns every row without paging.
func (r *EntityRepository[T, P]) FindAllSorted(ctx context.Context, sort []pagination.Order) ([]P, error) {
	return r.list(ctx, "", nil, sort)
}

// Search returns one page of the rows matching query.
func (r *EntityRepository[T, P]) Search(ctx context.Context, query string, p pagination.Pageable) (pagination.Page[P], error) {
	where, args := searchClause(r.db.Dialect, r.table, query)
	return r.page(ctx, where, args, p)
}

// SearchAll returns every row matching query without paging.
func (r *EntityRepository[T, P]) SearchAll(ctx context.Context, query string, sort []pagination.Order) ([]P, error) {
	where, args := searchClause(r.db.Dialect, r.table, query)
	return r.list(ctx, where, args, sort)
}

func (r *EntityRepository[T, P]) page(ctx context.Context, where string, args []any, p pagination.Pageable) (pagination.Page[P], error) {
	page := pagination.Page[P]{Number: p.Page, Size: p.Size}
	orderBy, err := r.orderBy(p.Sort)
	if err != nil {
		return page, err
	}

	if where != "" {
		where = " WHERE " + where
	}
	countQuery := "SELECT COUNT(*) FROM " + r.table.Name + " t LEFT JOIN users u ON u.id = t.user_id" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("failed to count %s: %w", r.table.Name, err)
	}

	rows, err := r.db.QueryContext(ctx,
		r.selectFrom()+where+orderBy+" LIMIT ? OFFSET ?",
		append(args, p.Size, p.Offset())...,
	)
	if err != nil {
		return page, fmt.Errorf("failed to list %s: %w", r.table.Name, err)
	}
	page.Content, err = r.scanAll(rows)
	return page, err
}

func (r *EntityRepository[T, P]) list(ctx context.Context, where string, args []any, sort []pagination.Order) ([]P, error) {
	orderBy, err := r.orderBy(sort)
	if err != nil {
		return nil, err
	}
	if where != "" {
		where = " WHERE " + where
	}
	rows, err := r.db.QueryContext(ctx, r.selectFrom()+where+orderBy, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table.Name, err)
	}
	return r.scanAll(rows)
}

func (r *EntityRepository[T, P]) orderBy(sort []pagination.Order) (string, error) {
	var parts []string
	hasID := false
	for _, o := range sort {
		var expr string
		switch o.Property {
		case "id":
			expr, hasID = "t.id", true
		case "user", "user.id":
			expr = "t.user_id"
		case "user.login":
			expr = "u.login"
		default:
			col, ok := r.table.column(o.Property)
			if !ok {
				return "", fmt.Errorf("%w: %s has no property %q", pagination.ErrInvalidSort, r.table.Name, o.Property)
			}
			expr = "t." + col.Name
		}
		if o.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		parts = append(parts, expr)
	}
	if !hasID {
		parts = append(parts, "t.id ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (r *EntityRepository[T, P]) scanAll(rows *sql.Rows) ([]P, error) {
	defer rows.Close()

	var out []P
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.table.Name, err)
	}
	return out, nil
}

func (r *EntityRepository[T, P]) scan(rows *sql.Rows) (P, error) {
	var (
		id     int64
		userID sql.NullInt64
		login  sql.NullString
	)
	dests := make([]any, 0, len(r.table.Columns)+3)
	dests = append(dests, &id)
	for _, c := range r.table.Columns {
		dests = append(dests, c.dest())
	}
	dests = append(dests, &userID, &login)

	if err := rows.Scan(dests...); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.table.Name, err)
	}

	e := P(new(T))
	e.SetID(id)
	for i, c := range r.table.Columns {
		if err := c.assign((*T)(e), dests[i+1]); err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", r.table.Name, c.Prop, err)
		}
	}
	if userID.Valid {
		e.SetUser(&domain.UserRef{ID: userID.Int64, Login: login.String})
	}
	return e, nil
}
