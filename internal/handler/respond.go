package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/HankLeo/21-points/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeProblem(w, domain.Problem{
		Title:   message,
		Status:  status,
		Message: "error.http." + strconv.Itoa(status),
	})
}

func writeProblem(w http.ResponseWriter, p domain.Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Printf("failed to encode problem: %v", err)
	}
}

// alerts writes the X-<app>-alert / X-<app>-error headers a client shows
// as notifications.
type alerts struct {
	app string
}

func (a alerts) success(w http.ResponseWriter, entity, action string, id int64) {
	w.Header().Set("X-"+a.app+"-alert", a.app+"."+entity+"."+action)
	w.Header().Set("X-"+a.app+"-params", strconv.FormatInt(id, 10))
}

func (a alerts) badRequest(w http.ResponseWriter, entity, key, title string) {
	w.Header().Set("X-"+a.app+"-error", "error."+key)
	w.Header().Set("X-"+a.app+"-params", entity)
	writeProblem(w, domain.Problem{
		Title:      title,
		Status:     http.StatusBadRequest,
		Message:    "error." + key,
		EntityName: entity,
		ErrorKey:   key,
		Params:     entity,
	})
}

// invalid reports a validation failure, or false if err is something else.
func (a alerts) invalid(w http.ResponseWriter, entity string, err error) bool {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	w.Header().Set("X-"+a.app+"-error", "error.validation")
	writeProblem(w, domain.Problem{
		Title:       "Method argument not valid",
		Status:      http.StatusBadRequest,
		Message:     "error.validation",
		EntityName:  entity,
		FieldErrors: verr.Fields,
	})
	return true
}

func (a alerts) exposed() []string {
	return []string{"X-Total-Count", "Link", "Location", "X-" + a.app + "-alert", "X-" + a.app + "-error", "X-" + a.app + "-params"}
}
