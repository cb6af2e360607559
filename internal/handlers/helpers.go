package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}

// respondError translates repository error kinds to HTTP status codes.
// Storage failures are logged server-side and reported without detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case repositories.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case repositories.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case repositories.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// --- response views ---

type orgView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newOrgView(o *entities.Organization) orgView {
	return orgView{ID: o.ID, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt}
}

type userView struct {
	ID        string    `json:"id"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserView(u *entities.User) userView {
	roles := u.RoleIDs
	if roles == nil {
		roles = []string{}
	}
	return userView{ID: u.ID, Roles: roles, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

type roleView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newRoleView(ro *entities.Role) roleView {
	return roleView{ID: ro.ID, CreatedAt: ro.CreatedAt, UpdatedAt: ro.UpdatedAt}
}

type resourceView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newResourceView(res *entities.Resource) resourceView {
	return resourceView{ID: res.ID, CreatedAt: res.CreatedAt, UpdatedAt: res.UpdatedAt}
}

type permissionView struct {
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	ResourceID  string    `json:"resource_id"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"created_at"`
}

func newPermissionView(p *entities.Permission) permissionView {
	return permissionView{
		SubjectType: string(p.SubjectType),
		SubjectID:   p.SubjectID,
		ResourceID:  p.ResourceID,
		Action:      p.Action,
		CreatedAt:   p.CreatedAt,
	}
}

type propertyView struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Name       string    `json:"name"`
	Value      any       `json:"value"`
	ValueType  string    `json:"value_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newPropertyView(p *entities.Property) propertyView {
	return propertyView{
		EntityType: string(p.EntityType),
		EntityID:   p.EntityID,
		Name:       p.Name,
		Value:      p.Value,
		ValueType:  string(p.ValueType),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
