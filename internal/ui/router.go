package ui

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/HankLeo/21-points/internal/domain"
)

type Page int

const (
	ListPage Page = iota
	NewPage
	DetailPage
	EditPage
	DeletePage
)

func (p Page) String() string {
	return [...]string{"list", "new", "detail", "edit", "delete"}[p]
}

// Match is a resolved UI path. ID is set for detail, edit and delete.
type Match struct {
	Entity domain.Descriptor
	Page   Page
	ID     int64
}

type route struct {
	entity domain.Descriptor
	page   Page
}

// Router resolves UI paths such as /blood-pressure/3/edit.
type Router struct {
	mux    *mux.Router
	routes map[*mux.Route]route
}

func NewRouter(entities []domain.Descriptor) *Router {
	r := &Router{mux: mux.NewRouter(), routes: map[*mux.Route]route{}}
	for _, d := range entities {
		base := "/" + d.Route
		r.add(base, d, ListPage)
		r.add(base+"/new", d, NewPage)
		r.add(base+"/{id:[0-9]+}", d, DetailPage)
		r.add(base+"/{id:[0-9]+}/edit", d, EditPage)
		r.add(base+"/{id:[0-9]+}/delete", d, DeletePage)
	}
	return r
}

func (r *Router) add(path string, d domain.Descriptor, p Page) {
	rt := r.mux.NewRoute().Path(path)
	r.routes[rt] = route{entity: d, page: p}
}

func (r *Router) Resolve(path string) (Match, bool) {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return Match{}, false
	}
	var rm mux.RouteMatch
	if !r.mux.Match(req, &rm) {
		return Match{}, false
	}
	rt, ok := r.routes[rm.Route]
	if !ok {
		return Match{}, false
	}
	m := Match{Entity: rt.entity, Page: rt.page}
	if s, ok := rm.Vars["id"]; ok {
		if m.ID, err = strconv.ParseInt(s, 10, 64); err != nil {
			return Match{}, false
		}
	}
	return m, true
}
