package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HankLeo/21-points/internal/pagination"
	"github.com/HankLeo/21-points/internal/repository"
)

// UserHandler exposes the public id and login of users, for choosing the
// owner of an entity.
type UserHandler struct {
	repo *repository.UserRepository
}

func NewUserHandler(repo *repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	p, err := pagination.ParsePageable(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.repo.FindAll(r.Context(), p)
	if errors.Is(err, pagination.ErrInvalidSort) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	pagination.SetHeaders(w.Header(), requestURL(r), page)
	writeList(w, page.Content)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.Search(r.Context(), mux.Vars(r)["query"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search users")
		return
	}
	writeList(w, users)
}
