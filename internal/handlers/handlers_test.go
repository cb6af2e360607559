package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/torii-auth/torii/internal/repositories/memory"
	"github.com/torii-auth/torii/internal/services/authorization"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repos := memory.NewSet()
	server := NewServer(repos, authorization.NewChecker(), nil, zap.NewNop())
	return server.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

func TestOrganizationLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": "acme"})
	mustStatus(t, rec, http.StatusCreated)
	if loc := rec.Header().Get("Location"); loc != "/v1/organizations/acme" {
		t.Errorf("Location = %q, want /v1/organizations/acme", loc)
	}

	// Duplicate ID maps to 409
	rec = doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": "acme"})
	mustStatus(t, rec, http.StatusConflict)

	// Empty ID maps to 400
	rec = doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": ""})
	mustStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme", nil)
	mustStatus(t, rec, http.StatusOK)
	org := decodeBody[orgView](t, rec)
	if org.ID != "acme" {
		t.Errorf("get org ID = %q, want acme", org.ID)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations", nil)
	mustStatus(t, rec, http.StatusOK)
	orgs := decodeBody[[]orgView](t, rec)
	if len(orgs) != 1 {
		t.Errorf("list orgs = %d, want 1", len(orgs))
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme", nil)
	mustStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme", nil)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestUserAndRoleFlow(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": "acme"})

	rec := doJSON(t, h, http.MethodPost, "/v1/organizations/acme/users", map[string]string{"id": "alice"})
	mustStatus(t, rec, http.StatusCreated)

	// Creating a user in an unknown org fails with 404
	rec = doJSON(t, h, http.MethodPost, "/v1/organizations/ghost/users", map[string]string{"id": "alice"})
	mustStatus(t, rec, http.StatusNotFound)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizations/acme/roles", map[string]string{"id": "admin"})
	mustStatus(t, rec, http.StatusCreated)

	rec = doJSON(t, h, http.MethodPut, "/v1/organizations/acme/users/alice/roles/admin", nil)
	mustStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/users/alice", nil)
	mustStatus(t, rec, http.StatusOK)
	user := decodeBody[userView](t, rec)
	if len(user.Roles) != 1 || user.Roles[0] != "admin" {
		t.Errorf("user roles = %v, want [admin]", user.Roles)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/users?role=admin", nil)
	mustStatus(t, rec, http.StatusOK)
	users := decodeBody[[]userView](t, rec)
	if len(users) != 1 || users[0].ID != "alice" {
		t.Errorf("filtered users = %v, want [alice]", users)
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/users/alice/roles/admin", nil)
	mustStatus(t, rec, http.StatusNoContent)

	// Removing an assignment the user does not hold yields 404
	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/users/alice/roles/admin", nil)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestResourceRoutesCarrySlashes(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": "acme"})

	for _, id := range []string{"docs", "docs/readme", "docs/guides/intro"} {
		rec := doJSON(t, h, http.MethodPost, "/v1/organizations/acme/resources", map[string]string{"id": id})
		mustStatus(t, rec, http.StatusCreated)
	}

	// Malformed ID is rejected with 400
	rec := doJSON(t, h, http.MethodPost, "/v1/organizations/acme/resources", map[string]string{"id": "/a"})
	mustStatus(t, rec, http.StatusBadRequest)

	// Item routes take the full slash-bearing ID as the path tail
	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/resources/docs/guides/intro", nil)
	mustStatus(t, rec, http.StatusOK)
	res := decodeBody[resourceView](t, rec)
	if res.ID != "docs/guides/intro" {
		t.Errorf("resource ID = %q, want docs/guides/intro", res.ID)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/resources?prefix=docs", nil)
	mustStatus(t, rec, http.StatusOK)
	list := decodeBody[[]resourceView](t, rec)
	if len(list) != 3 {
		t.Errorf("prefix list = %d resources, want 3", len(list))
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/resources/docs/readme", nil)
	mustStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/resources/docs/readme", nil)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestPermissionAndCheckEndpoints(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": "acme"})
	doJSON(t, h, http.MethodPost, "/v1/organizations/acme/users", map[string]string{"id": "alice"})
	doJSON(t, h, http.MethodPost, "/v1/organizations/acme/roles", map[string]string{"id": "admin"})
	doJSON(t, h, http.MethodPut, "/v1/organizations/acme/users/alice/roles/admin", nil)

	grant := map[string]string{
		"subject_type": "role",
		"subject_id":   "admin",
		"resource_id":  "docs",
		"action":       "read",
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/organizations/acme/permissions", grant)
	mustStatus(t, rec, http.StatusCreated)

	// Unknown subject is 404
	badGrant := map[string]string{
		"subject_type": "user",
		"subject_id":   "mallory",
		"resource_id":  "docs",
		"action":       "read",
	}
	rec = doJSON(t, h, http.MethodPost, "/v1/organizations/acme/permissions", badGrant)
	mustStatus(t, rec, http.StatusNotFound)

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/check?user=alice&resource=docs/readme&action=read", nil)
	mustStatus(t, rec, http.StatusOK)
	check := decodeBody[map[string]bool](t, rec)
	if !check["allowed"] {
		t.Errorf("check allowed = false, want true")
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/check?user=alice&resource=other&action=read", nil)
	mustStatus(t, rec, http.StatusOK)
	check = decodeBody[map[string]bool](t, rec)
	if check["allowed"] {
		t.Errorf("check allowed = true, want false")
	}

	// Malformed resource in a check is 400
	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/check?user=alice&resource=/a&action=read", nil)
	mustStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizations/acme/check", map[string]any{
		"user":     "alice",
		"resource": "docs/readme",
		"actions":  []string{"read", "write"},
	})
	mustStatus(t, rec, http.StatusOK)
	batch := decodeBody[map[string]map[string]bool](t, rec)
	if !batch["results"]["read"] || batch["results"]["write"] {
		t.Errorf("batch results = %v, want read=true write=false", batch["results"])
	}

	// A strict batch check surfaces an unknown user as 404 instead of
	// all-false results
	rec = doJSON(t, h, http.MethodPost, "/v1/organizations/acme/check", map[string]any{
		"user":     "mallory",
		"resource": "docs",
		"actions":  []string{"read"},
		"strict":   true,
	})
	mustStatus(t, rec, http.StatusNotFound)

	rec = doJSON(t, h, http.MethodPost, "/v1/organizations/acme/check", map[string]any{
		"user":     "mallory",
		"resource": "docs",
		"actions":  []string{"read"},
	})
	mustStatus(t, rec, http.StatusOK)
	batch = decodeBody[map[string]map[string]bool](t, rec)
	if batch["results"]["read"] {
		t.Errorf("batch results for unknown user = %v, want read=false", batch["results"])
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/permissions?subject_type=role&subject_id=admin", nil)
	mustStatus(t, rec, http.StatusOK)
	grants := decodeBody[[]permissionView](t, rec)
	if len(grants) != 1 || grants[0].ResourceID != "docs" {
		t.Errorf("grants = %v, want one on docs", grants)
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/permissions", grant)
	mustStatus(t, rec, http.StatusNoContent)

	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/permissions", grant)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestPropertyEndpoints(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/v1/organizations", map[string]string{"id": "acme"})
	doJSON(t, h, http.MethodPost, "/v1/organizations/acme/users", map[string]string{"id": "alice"})

	rec := doJSON(t, h, http.MethodPut, "/v1/organizations/acme/user/alice/properties/department", map[string]any{"value": "engineering"})
	mustStatus(t, rec, http.StatusOK)
	prop := decodeBody[propertyView](t, rec)
	if prop.Value != "engineering" || prop.ValueType != "string" {
		t.Errorf("set property = %+v", prop)
	}

	// Overwriting switches the stored type
	rec = doJSON(t, h, http.MethodPut, "/v1/organizations/acme/user/alice/properties/department", map[string]any{"value": 42})
	mustStatus(t, rec, http.StatusOK)
	prop = decodeBody[propertyView](t, rec)
	if prop.ValueType != "number" {
		t.Errorf("overwrite value_type = %q, want number", prop.ValueType)
	}

	// Property on a missing entity is 404
	rec = doJSON(t, h, http.MethodPut, "/v1/organizations/acme/user/ghost/properties/k", map[string]any{"value": "v"})
	mustStatus(t, rec, http.StatusNotFound)

	// Unknown entity type is 400
	rec = doJSON(t, h, http.MethodPut, "/v1/organizations/acme/team/eng/properties/k", map[string]any{"value": "v"})
	mustStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/user/alice/properties", nil)
	mustStatus(t, rec, http.StatusOK)
	props := decodeBody[[]propertyView](t, rec)
	if len(props) != 1 {
		t.Errorf("list properties = %d, want 1", len(props))
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/organizations/acme/user/alice/properties/missing", nil)
	mustStatus(t, rec, http.StatusNotFound)

	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/user/alice/properties/department", nil)
	mustStatus(t, rec, http.StatusNoContent)
	rec = doJSON(t, h, http.MethodDelete, "/v1/organizations/acme/user/alice/properties/department", nil)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	mustStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "given-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "given-id" {
		t.Errorf("X-Request-Id = %q, want given-id", got)
	}
}
