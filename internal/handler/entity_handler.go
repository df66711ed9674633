package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/middleware"
	"github.com/HankLeo/21-points/internal/pagination"
)

// EntityStore is the persistence an EntityHandler needs.
type EntityStore[T any, P domain.EntityPtr[T]] interface {
	Create(ctx context.Context, e P) (P, error)
	Update(ctx context.Context, e P) (P, error)
	Get(ctx context.Context, id int64) (P, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context, p pagination.Pageable) (pagination.Page[P], error)
	FindAllSorted(ctx context.Context, sort []pagination.Order) ([]P, error)
	Search(ctx context.Context, query string, p pagination.Pageable) (pagination.Page[P], error)
	SearchAll(ctx context.Context, query string, sort []pagination.Order) ([]P, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// EntityHandler serves the REST resource of one entity type.
type EntityHandler[T any, P domain.EntityPtr[T]] struct {
	desc   domain.Descriptor
	store  EntityStore[T, P]
	users  UserLookup
	alerts alerts
}

func NewEntityHandler[T any, P domain.EntityPtr[T]](
	desc domain.Descriptor,
	store EntityStore[T, P],
	users UserLookup,
	appName string,
) *EntityHandler[T, P] {
	return &EntityHandler[T, P]{desc: desc, store: store, users: users, alerts: alerts{app: appName}}
}

func (h *EntityHandler[T, P]) Routes(r *mux.Router) {
	base := "/" + h.desc.APIPath
	r.HandleFunc(base, h.Create).Methods(http.MethodPost)
	r.HandleFunc(base, h.List).Methods(http.MethodGet)
	r.HandleFunc(base+"/_search", h.Search).Methods(http.MethodGet)
	r.HandleFunc(base+"/_schema", h.Schema).Methods(http.MethodGet)
	r.HandleFunc(base+"/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc(base+"/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc(base+"/{id}", h.PartialUpdate).Methods(http.MethodPatch)
	r.HandleFunc(base+"/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *EntityHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decode(w, r)
	if !ok {
		return
	}
	if e.GetID() != nil {
		h.alerts.badRequest(w, h.desc.Name, "idexists", "A new "+h.desc.Name+" cannot already have an ID")
		return
	}
	if !h.prepare(w, r, e) {
		return
	}

	created, err := h.store.Create(r.Context(), e)
	if err != nil {
		h.storeError(w, err, "failed to create "+h.desc.Name)
		return
	}

	id := *created.GetID()
	w.Header().Set("Location", "/api/"+h.desc.APIPath+"/"+strconv.FormatInt(id, 10))
	h.alerts.success(w, h.desc.Name, "created", id)
	writeJSON(w, http.StatusCreated, created)
}

func (h *EntityHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	id, e, ok := h.decodeWithID(w, r)
	if !ok {
		return
	}
	if !h.prepare(w, r, e) {
		return
	}

	updated, err := h.store.Update(r.Context(), e)
	if err != nil {
		h.storeError(w, err, "failed to update "+h.desc.Name)
		return
	}
	h.alerts.success(w, h.desc.Name, "updated", id)
	writeJSON(w, http.StatusOK, updated)
}

// PartialUpdate merges the non-null fields of the body into the stored
// entity and validates the result.
func (h *EntityHandler[T, P]) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	id, patch, ok := h.decodeWithID(w, r)
	if !ok {
		return
	}

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get "+h.desc.Name)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, h.desc.Name+" not found")
		return
	}
	existing.Merge((*T)(patch))
	if u := patch.GetUser(); u != nil {
		existing.SetUser(u)
	}
	if !h.prepare(w, r, existing) {
		return
	}

	updated, err := h.store.Update(r.Context(), existing)
	if err != nil {
		h.storeError(w, err, "failed to update "+h.desc.Name)
		return
	}
	h.alerts.success(w, h.desc.Name, "updated", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *EntityHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	if !h.desc.Paginated {
		sort, ok := h.sort(w, r)
		if !ok {
			return
		}
		list, err := h.store.FindAllSorted(r.Context(), sort)
		if err != nil {
			h.listError(w, err)
			return
		}
		writeList(w, list)
		return
	}

	p, ok := h.pageable(w, r)
	if !ok {
		return
	}
	page, err := h.store.FindAll(r.Context(), p)
	if err != nil {
		h.listError(w, err)
		return
	}
	pagination.SetHeaders(w.Header(), requestURL(r), page)
	writeList(w, page.Content)
}

func (h *EntityHandler[T, P]) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if !h.desc.Paginated {
		sort, ok := h.sort(w, r)
		if !ok {
			return
		}
		list, err := h.store.SearchAll(r.Context(), query, sort)
		if err != nil {
			h.listError(w, err)
			return
		}
		writeList(w, list)
		return
	}

	p, ok := h.pageable(w, r)
	if !ok {
		return
	}
	page, err := h.store.Search(r.Context(), query, p)
	if err != nil {
		h.listError(w, err)
		return
	}
	pagination.SetHeaders(w.Header(), requestURL(r), page)
	writeList(w, page.Content)
}

func (h *EntityHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	e, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get "+h.desc.Name)
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, h.desc.Name+" not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntityHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete "+h.desc.Name)
		return
	}
	h.alerts.success(w, h.desc.Name, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntityHandler[T, P]) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Schema[T]())
}

func (h *EntityHandler[T, P]) decode(w http.ResponseWriter, r *http.Request) (P, bool) {
	e := P(new(T))
	if err := json.NewDecoder(r.Body).Decode(e); err != nil {
		h.alerts.badRequest(w, h.desc.Name, "invalidbody", "invalid request body")
		return nil, false
	}
	return e, true
}

// decodeWithID reads the body of a PUT or PATCH and checks that it names
// an existing entity with the id of the path.
func (h *EntityHandler[T, P]) decodeWithID(w http.ResponseWriter, r *http.Request) (int64, P, bool) {
	id, ok := h.pathID(w, r)
	if !ok {
		return 0, nil, false
	}
	e, ok := h.decode(w, r)
	if !ok {
		return 0, nil, false
	}
	if e.GetID() == nil {
		h.alerts.badRequest(w, h.desc.Name, "idnull", "Invalid id")
		return 0, nil, false
	}
	if *e.GetID() != id {
		h.alerts.badRequest(w, h.desc.Name, "idinvalid", "Invalid ID")
		return 0, nil, false
	}
	exists, err := h.store.Exists(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check "+h.desc.Name)
		return 0, nil, false
	}
	if !exists {
		h.alerts.badRequest(w, h.desc.Name, "idnotfound", "Entity not found")
		return 0, nil, false
	}
	return id, e, true
}

// prepare resolves the owner and validates e. An entity without a user is
// assigned to the caller.
func (h *EntityHandler[T, P]) prepare(w http.ResponseWriter, r *http.Request, e P) bool {
	if u := e.GetUser(); u != nil {
		user, err := h.users.GetByID(r.Context(), u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get user")
			return false
		}
		if user == nil {
			h.alerts.badRequest(w, h.desc.Name, "usernotfound", "User not found")
			return false
		}
		e.SetUser(user.Ref())
	} else if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		e.SetUser(&domain.UserRef{ID: p.UserID, Login: p.Login})
	}

	if err := domain.Validate(h.desc.Name, e); err != nil {
		if !h.alerts.invalid(w, h.desc.Name, err) {
			writeError(w, http.StatusInternalServerError, "failed to validate "+h.desc.Name)
		}
		return false
	}
	return true
}

func (h *EntityHandler[T, P]) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.alerts.badRequest(w, h.desc.Name, "idinvalid", "Invalid ID")
		return 0, false
	}
	return id, true
}

func (h *EntityHandler[T, P]) pageable(w http.ResponseWriter, r *http.Request) (pagination.Pageable, bool) {
	p, err := pagination.ParsePageable(r.URL.Query())
	if err != nil {
		h.alerts.badRequest(w, h.desc.Name, "sortinvalid", err.Error())
		return p, false
	}
	return p, true
}

func (h *EntityHandler[T, P]) sort(w http.ResponseWriter, r *http.Request) ([]pagination.Order, bool) {
	sort, err := pagination.ParseSort(r.URL.Query())
	if err != nil {
		h.alerts.badRequest(w, h.desc.Name, "sortinvalid", err.Error())
		return nil, false
	}
	return sort, true
}

func (h *EntityHandler[T, P]) listError(w http.ResponseWriter, err error) {
	if errors.Is(err, pagination.ErrInvalidSort) {
		h.alerts.badRequest(w, h.desc.Name, "sortinvalid", err.Error())
		return
	}
	log.Printf("[%s] list failed: %v", h.desc.Name, err)
	writeError(w, http.StatusInternalServerError, "failed to list "+h.desc.Name)
}

func (h *EntityHandler[T, P]) storeError(w http.ResponseWriter, err error, message string) {
	switch {
	case db.IsDuplicate(err):
		h.alerts.badRequest(w, h.desc.Name, "duplicate", "A "+h.desc.Name+" already exists for this user")
	case db.IsForeignKey(err):
		h.alerts.badRequest(w, h.desc.Name, "usernotfound", "User not found")
	default:
		log.Printf("[%s] %s: %v", h.desc.Name, message, err)
		writeError(w, http.StatusInternalServerError, message)
	}
}

func writeList[E any](w http.ResponseWriter, list []E) {
	if list == nil {
		list = []E{}
	}
	writeJSON(w, http.StatusOK, list)
}

func requestURL(r *http.Request) *url.URL {
	return &url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
}
