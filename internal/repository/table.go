package repository

import (
	"time"

	"github.com/HankLeo/21-points/internal/domain"
)

// Table describes how one entity type is stored. Every table also has an
// id primary key and a nullable user_id referencing users.
type Table[T any] struct {
	Name    string
	Columns []Column[T]
}

func (t Table[T]) column(prop string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Prop == prop {
			return c, true
		}
	}
	return Column[T]{}, false
}

var PointsTable = Table[domain.Points]{
	Name: "points",
	Columns: []Column[domain.Points]{
		DateColumn("date", "entry_date", func(p *domain.Points) **domain.LocalDate { return &p.Date }),
		IntColumn("exercise", "exercise", func(p *domain.Points) **int { return &p.Exercise }),
		IntColumn("meals", "meals", func(p *domain.Points) **int { return &p.Meals }),
		IntColumn("alcohol", "alcohol", func(p *domain.Points) **int { return &p.Alcohol }),
		StringColumn("notes", "notes", func(p *domain.Points) **string { return &p.Notes }),
	},
}

var WeightTable = Table[domain.Weight]{
	Name: "weights",
	Columns: []Column[domain.Weight]{
		TimeColumn("timestamp", "measured_at", func(w *domain.Weight) **time.Time { return &w.Timestamp }),
		FloatColumn("weight", "weight", func(w *domain.Weight) **float64 { return &w.Weight }),
	},
}

var BloodPressureTable = Table[domain.BloodPressure]{
	Name: "blood_pressures",
	Columns: []Column[domain.BloodPressure]{
		TimeColumn("timestamp", "measured_at", func(b *domain.BloodPressure) **time.Time { return &b.Timestamp }),
		IntColumn("systolic", "systolic", func(b *domain.BloodPressure) **int { return &b.Systolic }),
		IntColumn("diastolic", "diastolic", func(b *domain.BloodPressure) **int { return &b.Diastolic }),
	},
}

var PreferencesTable = Table[domain.Preferences]{
	Name: "preferences",
	Columns: []Column[domain.Preferences]{
		IntColumn("weeklyGoal", "weekly_goal", func(p *domain.Preferences) **int { return &p.WeeklyGoal }),
		StringColumn("weightUnits", "weight_units", func(p *domain.Preferences) **domain.Units { return &p.WeightUnits }),
	},
}
