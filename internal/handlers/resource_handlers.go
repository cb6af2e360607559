package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

type createResourceRequest struct {
	ID string `json:"id"`
}

// resourceID extracts the wildcard tail of a resource item route. The tail
// may span several path segments since resource IDs contain slashes.
func resourceID(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var req createResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rctx := s.rctx(r)
	res, err := s.resources.CreateResource(r.Context(), rctx, req.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/organizations/%s/resources/%s", rctx.OrgID, res.ID))
	writeJSON(w, http.StatusCreated, newResourceView(res))
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	resources, err := s.resources.ListByIDPrefix(r.Context(), s.rctx(r), prefix)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]resourceView, 0, len(resources))
	for _, res := range resources {
		views = append(views, newResourceView(res))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.resources.GetResource(r.Context(), s.rctx(r), resourceID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResourceView(res))
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.resources.DeleteResource(r.Context(), s.rctx(r), resourceID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
