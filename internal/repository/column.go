package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
)

type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindDate
	KindTime
)

// Column maps one JSON property of T onto a table column.
type Column[T any] struct {
	Prop string
	Name string
	Kind Kind

	value  func(*T) any
	assign func(*T, any) error
}

func (c Column[T]) dest() any {
	switch c.Kind {
	case KindInt:
		return new(sql.NullInt64)
	case KindFloat:
		return new(sql.NullFloat64)
	case KindText:
		return new(sql.NullString)
	}
	return new(any)
}

func IntColumn[T any](prop, name string, field func(*T) **int) Column[T] {
	return Column[T]{
		Prop: prop, Name: name, Kind: KindInt,
		value: func(e *T) any {
			if p := *field(e); p != nil {
				return int64(*p)
			}
			return nil
		},
		assign: func(e *T, v any) error {
			*field(e) = nil
			if n := v.(*sql.NullInt64); n.Valid {
				x := int(n.Int64)
				*field(e) = &x
			}
			return nil
		},
	}
}

func FloatColumn[T any](prop, name string, field func(*T) **float64) Column[T] {
	return Column[T]{
		Prop: prop, Name: name, Kind: KindFloat,
		value: func(e *T) any {
			if p := *field(e); p != nil {
				return *p
			}
			return nil
		},
		assign: func(e *T, v any) error {
			*field(e) = nil
			if n := v.(*sql.NullFloat64); n.Valid {
				x := n.Float64
				*field(e) = &x
			}
			return nil
		},
	}
}

// StringColumn serves plain text as well as string enums such as Units.
func StringColumn[T any, S ~string](prop, name string, field func(*T) **S) Column[T] {
	return Column[T]{
		Prop: prop, Name: name, Kind: KindText,
		value: func(e *T) any {
			if p := *field(e); p != nil {
				return string(*p)
			}
			return nil
		},
		assign: func(e *T, v any) error {
			*field(e) = nil
			if n := v.(*sql.NullString); n.Valid {
				x := S(n.String)
				*field(e) = &x
			}
			return nil
		},
	}
}

func DateColumn[T any](prop, name string, field func(*T) **domain.LocalDate) Column[T] {
	return Column[T]{
		Prop: prop, Name: name, Kind: KindDate,
		value: func(e *T) any {
			if p := *field(e); p != nil {
				return *p
			}
			return nil
		},
		assign: func(e *T, v any) error {
			*field(e) = nil
			raw := *v.(*any)
			if raw == nil {
				return nil
			}
			d, err := dateValue(raw)
			if err != nil {
				return err
			}
			*field(e) = &d
			return nil
		},
	}
}

func TimeColumn[T any](prop, name string, field func(*T) **time.Time) Column[T] {
	return Column[T]{
		Prop: prop, Name: name, Kind: KindTime,
		value: func(e *T) any {
			if p := *field(e); p != nil {
				return *p
			}
			return nil
		},
		assign: func(e *T, v any) error {
			*field(e) = nil
			raw := *v.(*any)
			if raw == nil {
				return nil
			}
			t, err := timeValue(raw)
			if err != nil {
				return err
			}
			*field(e) = &t
			return nil
		},
	}
}

// bind converts a Go value into what the dialect stores.
func bind(d db.Dialect, v any) any {
	switch x := v.(type) {
	case domain.LocalDate:
		return d.Date(x)
	case time.Time:
		return d.Time(x)
	}
	return v
}

var timeLayouts = []string{
	db.SQLiteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func timeValue(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return timeValue(string(v))
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
}

func dateValue(raw any) (domain.LocalDate, error) {
	switch v := raw.(type) {
	case time.Time:
		return domain.NewLocalDate(v.Year(), v.Month(), v.Day()), nil
	case []byte:
		return dateValue(string(v))
	case string:
		if len(v) > len(domain.DateLayout) {
			v = v[:len(domain.DateLayout)]
		}
		return domain.ParseLocalDate(strings.TrimSpace(v))
	}
	return domain.LocalDate{}, fmt.Errorf("unsupported date type %T", raw)
}
