// Package store keeps the client-side state of one entity type and moves
// it through the pending, fulfilled and rejected phases of each request.
package store

import (
	"context"
	"maps"
	"sync"

	"github.com/HankLeo/21-points/internal/client"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/pagination"
)

// API is the remote resource a Slice drives; *client.Resource satisfies it.
type API[T any, P domain.EntityPtr[T]] interface {
	Descriptor() domain.Descriptor
	List(ctx context.Context, p client.QueryParams) (client.ListResult[P], error)
	Search(ctx context.Context, p client.QueryParams) (client.ListResult[P], error)
	Get(ctx context.Context, id int64) (P, error)
	Create(ctx context.Context, e P) (P, error)
	Update(ctx context.Context, e P) (P, error)
	PartialUpdate(ctx context.Context, e P) (P, error)
	Delete(ctx context.Context, id int64) error
}

type State[P any] struct {
	Loading       bool
	ErrorMessage  string
	Entities      []P
	Entity        P
	Links         map[string]int
	Updating      bool
	TotalItems    int
	UpdateSuccess bool
}

// Slice is safe for concurrent use. Requests are not serialised, so when
// two overlap the one that resolves last decides the state.
type Slice[T any, P domain.EntityPtr[T]] struct {
	api   API[T, P]
	mu    sync.Mutex
	state State[P]
}

func NewSlice[T any, P domain.EntityPtr[T]](api API[T, P]) *Slice[T, P] {
	s := &Slice[T, P]{api: api}
	s.state = s.initial()
	return s
}

func (s *Slice[T, P]) initial() State[P] {
	return State[P]{
		Entities: []P{},
		Entity:   P(new(T)),
		Links:    map[string]int{"next": 0},
	}
}

func (s *Slice[T, P]) Descriptor() domain.Descriptor {
	return s.api.Descriptor()
}

// State returns a snapshot that later transitions do not modify.
func (s *Slice[T, P]) State() State[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Entities = make([]P, len(s.state.Entities))
	for i, e := range s.state.Entities {
		st.Entities[i] = clone(e)
	}
	st.Entity = clone(st.Entity)
	st.Links = maps.Clone(st.Links)
	return st
}

func clone[T any, P domain.EntityPtr[T]](e P) P {
	if e == nil {
		return nil
	}
	return P(e.Clone())
}

func (s *Slice[T, P]) Reset() {
	s.mu.Lock()
	s.state = s.initial()
	s.mu.Unlock()
}

func (s *Slice[T, P]) update(f func(st *State[P])) {
	s.mu.Lock()
	f(&s.state)
	s.mu.Unlock()
}

func (s *Slice[T, P]) pendingFetch(st *State[P]) {
	st.ErrorMessage = ""
	st.UpdateSuccess = false
	st.Loading = true
}

func (s *Slice[T, P]) pendingWrite(st *State[P]) {
	st.ErrorMessage = ""
	st.UpdateSuccess = false
	st.Updating = true
}

func (s *Slice[T, P]) reject(err error) error {
	s.update(func(st *State[P]) {
		st.Loading = false
		st.Updating = false
		st.UpdateSuccess = false
		st.ErrorMessage = err.Error()
	})
	return err
}

func (s *Slice[T, P]) GetEntities(ctx context.Context, p client.QueryParams) error {
	return s.fetchList(ctx, func() (client.ListResult[P], error) { return s.api.List(ctx, p) })
}

func (s *Slice[T, P]) SearchEntities(ctx context.Context, p client.QueryParams) error {
	return s.fetchList(ctx, func() (client.ListResult[P], error) { return s.api.Search(ctx, p) })
}

func (s *Slice[T, P]) fetchList(ctx context.Context, fetch func() (client.ListResult[P], error)) error {
	s.update(s.pendingFetch)
	res, err := fetch()
	if err != nil {
		return s.reject(err)
	}
	paginated := s.api.Descriptor().Paginated
	s.update(func(st *State[P]) {
		st.Loading = false
		if !paginated {
			st.Entities = res.Items
			return
		}
		st.Links = res.Links
		st.Entities = pagination.AppendPage(st.Entities, res.Items, res.Links)
		st.TotalItems = res.TotalItems
	})
	return nil
}

func (s *Slice[T, P]) GetEntity(ctx context.Context, id int64) error {
	s.update(s.pendingFetch)
	e, err := s.api.Get(ctx, id)
	if err != nil {
		return s.reject(err)
	}
	s.update(func(st *State[P]) {
		st.Loading = false
		st.Entity = e
	})
	return nil
}

func (s *Slice[T, P]) CreateEntity(ctx context.Context, e P) error {
	return s.write(ctx, func() (P, error) { return s.api.Create(ctx, e) })
}

func (s *Slice[T, P]) UpdateEntity(ctx context.Context, e P) error {
	return s.write(ctx, func() (P, error) { return s.api.Update(ctx, e) })
}

func (s *Slice[T, P]) PartialUpdateEntity(ctx context.Context, e P) error {
	return s.write(ctx, func() (P, error) { return s.api.PartialUpdate(ctx, e) })
}

func (s *Slice[T, P]) write(ctx context.Context, send func() (P, error)) error {
	s.update(s.pendingWrite)
	e, err := send()
	if err != nil {
		return s.reject(err)
	}
	s.update(func(st *State[P]) {
		st.Updating = false
		st.Loading = false
		st.UpdateSuccess = true
		st.Entity = e
	})
	return nil
}

func (s *Slice[T, P]) DeleteEntity(ctx context.Context, id int64) error {
	s.update(s.pendingWrite)
	if err := s.api.Delete(ctx, id); err != nil {
		return s.reject(err)
	}
	s.update(func(st *State[P]) {
		st.Updating = false
		st.UpdateSuccess = true
		st.Entity = P(new(T))
	})
	return nil
}
