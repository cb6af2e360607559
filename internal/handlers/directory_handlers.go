package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/torii-auth/torii/internal/repositories"
)

type createUserRequest struct {
	ID string `json:"id"`
}

type createRoleRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rctx := s.rctx(r)
	user, err := s.directory.CreateUser(r.Context(), rctx, req.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/organizations/%s/users/%s", rctx.OrgID, user.ID))
	writeJSON(w, http.StatusCreated, newUserView(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	var filter *repositories.UserFilter
	if roleID := r.URL.Query().Get("role"); roleID != "" {
		filter = &repositories.UserFilter{RoleID: roleID}
	}

	users, err := s.directory.ListUsers(r.Context(), s.rctx(r), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.directory.GetUser(r.Context(), s.rctx(r), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.DeleteUser(r.Context(), s.rctx(r), chi.URLParam(r, "userID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rctx := s.rctx(r)
	role, err := s.directory.CreateRole(r.Context(), rctx, req.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/organizations/%s/roles/%s", rctx.OrgID, role.ID))
	writeJSON(w, http.StatusCreated, newRoleView(role))
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.directory.ListRoles(r.Context(), s.rctx(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]roleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, newRoleView(role))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := s.directory.GetRole(r.Context(), s.rctx(r), chi.URLParam(r, "roleID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoleView(role))
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.DeleteRole(r.Context(), s.rctx(r), chi.URLParam(r, "roleID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	err := s.directory.AssignRole(r.Context(), s.rctx(r), chi.URLParam(r, "userID"), chi.URLParam(r, "roleID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnassignRole(w http.ResponseWriter, r *http.Request) {
	removed, err := s.directory.UnassignRole(r.Context(), s.rctx(r), chi.URLParam(r, "userID"), chi.URLParam(r, "roleID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "role assignment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
