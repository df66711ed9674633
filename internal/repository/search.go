package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
)

const matchNothing = "1 = 0"

// searchClause turns a free-text query into a WHERE condition.
//
// Terms are separated by whitespace and OR-ed together. A term written as
// field:value, where field is id, user.id, user.login or a property, compares
// that one field exactly; any other term is bare and matches any text column
// by case-insensitive substring and any numeric, date or timestamp column that
// it parses as. An empty query or "*" matches everything.
func searchClause[T any](d db.Dialect, table Table[T], query string) (string, []any) {
	terms := strings.Fields(query)
	if len(terms) == 0 || len(terms) == 1 && terms[0] == "*" {
		return "", nil
	}

	var (
		conds []string
		args  []any
	)
	for _, term := range terms {
		var c string
		var a []any
		if field, value, ok := strings.Cut(term, ":"); ok && isField(table, field) {
			c, a = fieldCondition(d, table, field, value)
		} else {
			c, a = termCondition(d, table, term)
		}
		conds = append(conds, "("+c+")")
		args = append(args, a...)
	}
	return strings.Join(conds, " OR "), args
}

// isField reports whether name can prefix a field:value term. Anything
// else, such as the hour of an RFC 3339 timestamp, is a bare term.
func isField[T any](table Table[T], name string) bool {
	switch name {
	case "id", "user.id", "user.login":
		return true
	}
	_, ok := table.column(name)
	return ok
}

func fieldCondition[T any](d db.Dialect, table Table[T], field, value string) (string, []any) {
	switch field {
	case "id":
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			return "t.id = ?", []any{id}
		}
		return matchNothing, nil
	case "user.id":
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			return "t.user_id = ?", []any{id}
		}
		return matchNothing, nil
	case "user.login":
		return "LOWER(u.login) = ?", []any{strings.ToLower(value)}
	}
	col, ok := table.column(field)
	if !ok {
		return matchNothing, nil
	}
	if col.Kind == KindText {
		return "LOWER(t." + col.Name + ") = ?", []any{strings.ToLower(value)}
	}
	if v, ok := parseFor(col.Kind, value); ok {
		return "t." + col.Name + " = ?", []any{bind(d, v)}
	}
	return matchNothing, nil
}

func termCondition[T any](d db.Dialect, table Table[T], term string) (string, []any) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	conds := []string{"LOWER(u.login) LIKE ? ESCAPE '!'"}
	args := []any{pattern}

	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		conds = append(conds, "t.id = ?")
		args = append(args, id)
	}
	for _, col := range table.Columns {
		if col.Kind == KindText {
			conds = append(conds, "LOWER(t."+col.Name+") LIKE ? ESCAPE '!'")
			args = append(args, pattern)
			continue
		}
		if v, ok := parseFor(col.Kind, term); ok {
			conds = append(conds, "t."+col.Name+" = ?")
			args = append(args, bind(d, v))
		}
	}
	return strings.Join(conds, " OR "), args
}

func parseFor(kind Kind, s string) (any, bool) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case KindDate:
		ld, err := domain.ParseLocalDate(s)
		return ld, err == nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		return t, err == nil
	}
	return nil, false
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
