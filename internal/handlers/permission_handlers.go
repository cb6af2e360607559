package handlers

import (
	"net/http"
	"strconv"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
	"github.com/torii-auth/torii/internal/services/authorization"
)

type grantRequest struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	ResourceID  string `json:"resource_id"`
	Action      string `json:"action"`
}

type checkAllRequest struct {
	UserID     string   `json:"user"`
	ResourceID string   `json:"resource"`
	Actions    []string `json:"actions"`
	Strict     bool     `json:"strict"`
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	subject := entities.Subject{Type: entities.SubjectType(req.SubjectType), ID: req.SubjectID}
	grant, err := s.permissions.Grant(r.Context(), s.rctx(r), subject, req.ResourceID, req.Action)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPermissionView(grant))
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	subject := entities.Subject{Type: entities.SubjectType(req.SubjectType), ID: req.SubjectID}
	removed, err := s.permissions.Revoke(r.Context(), s.rctx(r), subject, req.ResourceID, req.Action)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "grant not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter *repositories.PermissionFilter
	if q.Get("subject_type") != "" || q.Get("subject_id") != "" || q.Get("resource_id") != "" || q.Get("action") != "" {
		filter = &repositories.PermissionFilter{
			SubjectType: entities.SubjectType(q.Get("subject_type")),
			SubjectID:   q.Get("subject_id"),
			ResourceID:  q.Get("resource_id"),
			Action:      q.Get("action"),
		}
	}

	grants, err := s.permissions.ListGrants(r.Context(), s.rctx(r), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]permissionView, 0, len(grants))
	for _, grant := range grants {
		views = append(views, newPermissionView(grant))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	strict, _ := strconv.ParseBool(q.Get("strict"))

	req := &authorization.CheckRequest{
		UserID:        q.Get("user"),
		ResourceID:    q.Get("resource"),
		Action:        q.Get("action"),
		StrictSubject: strict,
	}

	allowed, err := s.checker.Check(r.Context(), s.rctx(r), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	var req checkAllRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.checker.CheckAll(r.Context(), s.rctx(r), &authorization.CheckAllRequest{
		UserID:        req.UserID,
		ResourceID:    req.ResourceID,
		Actions:       req.Actions,
		StrictSubject: req.Strict,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string]bool{"results": results})
}
