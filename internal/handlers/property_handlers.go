package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/torii-auth/torii/internal/entities"
)

type setPropertyRequest struct {
	Value any `json:"value"`
}

// propertyTarget extracts the entity coordinates of a property route.
// Resource entity IDs carry their slashes percent-encoded in the path.
func propertyTarget(r *http.Request) (entities.EntityType, string) {
	entityType := entities.EntityType(chi.URLParam(r, "entityType"))
	entityID := chi.URLParam(r, "entityID")
	if decoded, err := url.PathUnescape(entityID); err == nil {
		entityID = decoded
	}
	return entityType, entityID
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	entityType, entityID := propertyTarget(r)

	prop, err := s.properties.GetProperty(r.Context(), s.rctx(r), entityType, entityID, chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if prop == nil {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, newPropertyView(prop))
}

func (s *Server) handleSetProperty(w http.ResponseWriter, r *http.Request) {
	var req setPropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entityType, entityID := propertyTarget(r)
	prop, err := s.properties.SetProperty(r.Context(), s.rctx(r), entityType, entityID, chi.URLParam(r, "name"), req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPropertyView(prop))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	entityType, entityID := propertyTarget(r)

	removed, err := s.properties.DeleteProperty(r.Context(), s.rctx(r), entityType, entityID, chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	entityType, entityID := propertyTarget(r)

	props, err := s.properties.ListProperties(r.Context(), s.rctx(r), entityType, entityID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]propertyView, 0, len(props))
	for _, prop := range props {
		views = append(views, newPropertyView(prop))
	}
	writeJSON(w, http.StatusOK, views)
}
