package ui

import (
	"context"
	"errors"

	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/store"
)

type DeleteDialog[T any, P domain.EntityPtr[T]] struct {
	slice *store.Slice[T, P]
}

func NewDeleteDialog[T any, P domain.EntityPtr[T]](slice *store.Slice[T, P]) *DeleteDialog[T, P] {
	return &DeleteDialog[T, P]{slice: slice}
}

// Open loads the entity to show in the confirmation.
func (d *DeleteDialog[T, P]) Open(ctx context.Context, id int64) error {
	return d.slice.GetEntity(ctx, id)
}

func (d *DeleteDialog[T, P]) Entity() P {
	return d.slice.State().Entity
}

// Confirm deletes the loaded entity and returns the list route.
func (d *DeleteDialog[T, P]) Confirm(ctx context.Context) (string, error) {
	id := d.Entity().GetID()
	if id == nil {
		return "", errors.New("no entity loaded")
	}
	if err := d.slice.DeleteEntity(ctx, *id); err != nil {
		return "", err
	}
	return "/" + d.slice.Descriptor().Route, nil
}
