package ui

import (
	"context"
	"errors"

	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/store"
)

// UpdateForm creates a new entity or edits an existing one.
type UpdateForm[T any, P domain.EntityPtr[T]] struct {
	slice    *store.Slice[T, P]
	defaults func() P
	id       *int64
}

// NewUpdateForm takes the values a new entity starts from; nil means an
// empty entity.
func NewUpdateForm[T any, P domain.EntityPtr[T]](slice *store.Slice[T, P], defaults func() P) *UpdateForm[T, P] {
	if defaults == nil {
		defaults = func() P { return P(new(T)) }
	}
	return &UpdateForm[T, P]{slice: slice, defaults: defaults}
}

func (f *UpdateForm[T, P]) IsNew() bool { return f.id == nil }

// Open starts a create form when id is nil, otherwise loads the entity.
func (f *UpdateForm[T, P]) Open(ctx context.Context, id *int64) error {
	f.id = id
	if id == nil {
		f.slice.Reset()
		return nil
	}
	return f.slice.GetEntity(ctx, *id)
}

// Values are the initial field values shown in the form. They are a copy;
// editing them leaves the slice untouched.
func (f *UpdateForm[T, P]) Values() P {
	if f.IsNew() {
		return f.defaults()
	}
	return f.slice.State().Entity
}

// Validate checks values field by field; the result is nil or a
// *domain.ValidationError.
func (f *UpdateForm[T, P]) Validate(values P) error {
	return domain.Validate(f.slice.Descriptor().Name, values)
}

// Submit validates values and saves them. On success it returns the list
// route to go back to.
func (f *UpdateForm[T, P]) Submit(ctx context.Context, values P) (string, error) {
	if err := f.Validate(values); err != nil {
		return "", err
	}

	var err error
	if f.IsNew() {
		err = f.slice.CreateEntity(ctx, values)
	} else {
		values.SetID(*f.id)
		err = f.slice.UpdateEntity(ctx, values)
	}
	if err != nil {
		return "", err
	}
	if !f.slice.State().UpdateSuccess {
		return "", errors.New("save did not complete")
	}
	return "/" + f.slice.Descriptor().Route, nil
}

// PointsDefaults starts a new day of points today, with nothing scored.
func PointsDefaults() *domain.Points {
	today := domain.Today()
	exercise, meals, alcohol := 0, 0, 0
	return &domain.Points{Date: &today, Exercise: &exercise, Meals: &meals, Alcohol: &alcohol}
}
