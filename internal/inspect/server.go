// Package inspect serves a read-only view of processor state over HTTP, for
// operators debugging a running processor without a validator-side query
// tool. It never mutates state.
package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"dgc-processor/core"
)

// Server exposes core state over chi routes.
type Server struct {
	ctx core.StateContext
	log *logrus.Entry
}

// New returns a Server backed by ctx.
func New(ctx core.StateContext) *Server {
	return &Server{ctx: ctx, log: logrus.WithField("component", "inspect")}
}

// Router builds the chi mux this server answers on.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/state/{address}", s.getState)
	r.Get("/namespace", s.getNamespace)
	return r
}

func (s *Server) getNamespace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"namespace":      core.Namespace,
		"family_name":    core.FamilyName,
		"family_version": core.FamilyVersion,
	})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	res, err := s.ctx.GetState([]string{address})
	if err != nil {
		s.log.WithError(err).WithField("address", address).Error("read failed")
		http.Error(w, "state read failed", http.StatusInternalServerError)
		return
	}

	raw, ok := res[address]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
