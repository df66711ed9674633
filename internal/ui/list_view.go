// Package ui holds the screen logic of the entity pages: the infinite
// scrolling list, the update form, the delete dialog and the routes that
// lead to them. Rendering is left to the caller.
package ui

import (
	"context"
	"sync"

	"github.com/HankLeo/21-points/internal/client"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/store"
)

const (
	ASC          = "asc"
	DESC         = "desc"
	ItemsPerPage = 20
)

// PaginationState is 1-based; the request for ActivePage asks for page
// ActivePage-1.
type PaginationState struct {
	ActivePage   int
	ItemsPerPage int
	Sort         string
	Order        string
}

func (p PaginationState) params(query string) client.QueryParams {
	return client.QueryParams{
		Query: query,
		Page:  p.ActivePage - 1,
		Size:  p.ItemsPerPage,
		Sort:  p.Sort + "," + p.Order,
	}
}

// ListView is the list page of one entity type.
type ListView[T any, P domain.EntityPtr[T]] struct {
	slice *store.Slice[T, P]

	mu         sync.Mutex
	search     string
	pagination PaginationState
}

func NewListView[T any, P domain.EntityPtr[T]](slice *store.Slice[T, P]) *ListView[T, P] {
	return &ListView[T, P]{
		slice: slice,
		pagination: PaginationState{
			ActivePage:   1,
			ItemsPerPage: ItemsPerPage,
			Sort:         "id",
			Order:        ASC,
		},
	}
}

func (v *ListView[T, P]) Pagination() PaginationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pagination
}

func (v *ListView[T, P]) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

func (v *ListView[T, P]) State() store.State[P] {
	return v.slice.State()
}

func (v *ListView[T, P]) Items() []P {
	return v.slice.State().Entities
}

// HasMore reports whether the next page exists.
func (v *ListView[T, P]) HasMore() bool {
	links := v.slice.State().Links
	return v.Pagination().ActivePage-1 < links["next"]
}

// ResetAll clears the list and loads the first page in server order.
func (v *ListView[T, P]) ResetAll(ctx context.Context) error {
	v.slice.Reset()
	v.mu.Lock()
	v.pagination.ActivePage = 1
	v.mu.Unlock()
	return v.slice.GetEntities(ctx, client.QueryParams{})
}

// Search replaces the list with the first page of matches. An empty query
// does nothing; use Clear to leave search mode.
func (v *ListView[T, P]) Search(ctx context.Context, query string) error {
	v.mu.Lock()
	v.search = query
	if query == "" {
		v.mu.Unlock()
		return nil
	}
	v.pagination.ActivePage = 1
	params := v.pagination.params(query)
	v.mu.Unlock()

	v.slice.Reset()
	return v.slice.SearchEntities(ctx, params)
}

func (v *ListView[T, P]) Clear(ctx context.Context) error {
	v.mu.Lock()
	v.search = ""
	v.mu.Unlock()
	return v.ResetAll(ctx)
}

// LoadMore appends the next page, if there is one.
func (v *ListView[T, P]) LoadMore(ctx context.Context) error {
	if !v.HasMore() {
		return nil
	}
	v.mu.Lock()
	v.pagination.ActivePage++
	v.mu.Unlock()
	return v.fetch(ctx)
}

// Sort reorders by field from the first page. Every call flips the
// direction, whether or not the field changed.
func (v *ListView[T, P]) Sort(ctx context.Context, field string) error {
	v.slice.Reset()
	v.mu.Lock()
	v.pagination.ActivePage = 1
	if v.pagination.Order == ASC {
		v.pagination.Order = DESC
	} else {
		v.pagination.Order = ASC
	}
	v.pagination.Sort = field
	v.mu.Unlock()
	return v.fetch(ctx)
}

// SortIndicator is "" for an unsorted column, else the current order.
func (v *ListView[T, P]) SortIndicator(field string) string {
	p := v.Pagination()
	if p.Sort != field {
		return ""
	}
	return p.Order
}

// Refresh reloads the list after a successful write elsewhere.
func (v *ListView[T, P]) Refresh(ctx context.Context) error {
	if !v.slice.State().UpdateSuccess {
		return nil
	}
	return v.ResetAll(ctx)
}

func (v *ListView[T, P]) fetch(ctx context.Context) error {
	v.mu.Lock()
	query := v.search
	params := v.pagination.params(query)
	v.mu.Unlock()

	if query != "" {
		return v.slice.SearchEntities(ctx, params)
	}
	return v.slice.GetEntities(ctx, params)
}
