package domain

import "time"

type Weight struct {
	ID        *int64     `json:"id,omitempty"`
	Timestamp *time.Time `json:"timestamp" validate:"required"`
	Weight    *float64   `json:"weight" validate:"required"`
	User      *UserRef   `json:"user,omitempty"`
}

func (w *Weight) GetID() *int64      { return w.ID }
func (w *Weight) SetID(id int64)     { w.ID = &id }
func (w *Weight) GetUser() *UserRef  { return w.User }
func (w *Weight) SetUser(u *UserRef) { w.User = u }

func (w *Weight) Merge(o *Weight) {
	if o.Timestamp != nil {
		w.Timestamp = o.Timestamp
	}
	if o.Weight != nil {
		w.Weight = o.Weight
	}
}

func (w *Weight) Clone() *Weight {
	return &Weight{
		ID:        clonePtr(w.ID),
		Timestamp: clonePtr(w.Timestamp),
		Weight:    clonePtr(w.Weight),
		User:      clonePtr(w.User),
	}
}
