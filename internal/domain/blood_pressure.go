package domain

import "time"

type BloodPressure struct {
	ID        *int64     `json:"id,omitempty"`
	Timestamp *time.Time `json:"timestamp" validate:"required"`
	Systolic  *int       `json:"systolic" validate:"required"`
	Diastolic *int       `json:"diastolic" validate:"required"`
	User      *UserRef   `json:"user,omitempty"`
}

func (b *BloodPressure) GetID() *int64      { return b.ID }
func (b *BloodPressure) SetID(id int64)     { b.ID = &id }
func (b *BloodPressure) GetUser() *UserRef  { return b.User }
func (b *BloodPressure) SetUser(u *UserRef) { b.User = u }

func (b *BloodPressure) Merge(o *BloodPressure) {
	if o.Timestamp != nil {
		b.Timestamp = o.Timestamp
	}
	if o.Systolic != nil {
		b.Systolic = o.Systolic
	}
	if o.Diastolic != nil {
		b.Diastolic = o.Diastolic
	}
}

func (b *BloodPressure) Clone() *BloodPressure {
	return &BloodPressure{
		ID:        clonePtr(b.ID),
		Timestamp: clonePtr(b.Timestamp),
		Systolic:  clonePtr(b.Systolic),
		Diastolic: clonePtr(b.Diastolic),
		User:      clonePtr(b.User),
	}
}
