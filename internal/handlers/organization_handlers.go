package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createOrganizationRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := s.tenants.CreateOrganization(r.Context(), req.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/organizations/%s", org.ID))
	writeJSON(w, http.StatusCreated, newOrgView(org))
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.tenants.ListOrganizations(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]orgView, 0, len(orgs))
	for _, org := range orgs {
		views = append(views, newOrgView(org))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.tenants.GetOrganization(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrgView(org))
}

func (s *Server) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := s.tenants.DeleteOrganization(r.Context(), chi.URLParam(r, "orgID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
