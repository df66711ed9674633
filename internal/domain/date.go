package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
)

const DateLayout = "2006-01-02"

// LocalDate is a calendar day without time zone, serialised as YYYY-MM-DD.
type LocalDate struct {
	time.Time
}

func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current day in the local time zone.
func Today() LocalDate {
	now := time.Now()
	return NewLocalDate(now.Year(), now.Month(), now.Day())
}

func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return LocalDate{t}, nil
}

func (d LocalDate) String() string {
	return d.Format(DateLayout)
}

func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *LocalDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (LocalDate) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "date"}
}
