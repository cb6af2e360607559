package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/torii-auth/torii/internal/infrastructure/metrics"
	"github.com/torii-auth/torii/internal/repositories"
	"github.com/torii-auth/torii/internal/services"
	"github.com/torii-auth/torii/internal/services/authorization"
)

// Server is the HTTP JSON boundary. It owns the service layer and builds a
// per-request tenant context from the orgID path parameter.
type Server struct {
	repos       *repositories.Set
	tenants     *services.TenantService
	directory   *services.DirectoryService
	resources   *services.ResourceService
	properties  *services.PropertyService
	permissions *services.PermissionService
	checker     authorization.CheckerInterface
	collector   *metrics.Collector
	log         *zap.Logger
}

// NewServer creates an HTTP server over the given repository set.
// collector may be nil when metrics are disabled.
func NewServer(repos *repositories.Set, checker authorization.CheckerInterface, collector *metrics.Collector, log *zap.Logger) *Server {
	return &Server{
		repos:       repos,
		tenants:     services.NewTenantService(repos, log),
		directory:   services.NewDirectoryService(),
		resources:   services.NewResourceService(),
		properties:  services.NewPropertyService(),
		permissions: services.NewPermissionService(),
		checker:     checker,
		collector:   collector,
		log:         log,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	if s.collector != nil {
		r.Use(s.collector.Middleware)
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/organizations", func(r chi.Router) {
		r.Post("/", s.handleCreateOrganization)
		r.Get("/", s.handleListOrganizations)

		r.Route("/{orgID}", func(r chi.Router) {
			r.Get("/", s.handleGetOrganization)
			r.Delete("/", s.handleDeleteOrganization)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", s.handleCreateUser)
				r.Get("/", s.handleListUsers)
				r.Route("/{userID}", func(r chi.Router) {
					r.Get("/", s.handleGetUser)
					r.Delete("/", s.handleDeleteUser)
					r.Put("/roles/{roleID}", s.handleAssignRole)
					r.Delete("/roles/{roleID}", s.handleUnassignRole)
				})
			})

			r.Route("/roles", func(r chi.Router) {
				r.Post("/", s.handleCreateRole)
				r.Get("/", s.handleListRoles)
				r.Get("/{roleID}", s.handleGetRole)
				r.Delete("/{roleID}", s.handleDeleteRole)
			})

			// Resource IDs contain slashes, so item routes use a wildcard.
			r.Route("/resources", func(r chi.Router) {
				r.Post("/", s.handleCreateResource)
				r.Get("/", s.handleListResources)
				r.Get("/*", s.handleGetResource)
				r.Delete("/*", s.handleDeleteResource)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.Post("/", s.handleGrant)
				r.Delete("/", s.handleRevoke)
				r.Get("/", s.handleListGrants)
			})

			r.Get("/check", s.handleCheck)
			r.Post("/check", s.handleCheckAll)

			r.Route("/{entityType}/{entityID}/properties", func(r chi.Router) {
				r.Get("/", s.handleListProperties)
				r.Get("/{name}", s.handleGetProperty)
				r.Put("/{name}", s.handleSetProperty)
				r.Delete("/{name}", s.handleDeleteProperty)
			})
		})
	})

	return r
}

// rctx builds the tenant context for the request from the orgID path param.
func (s *Server) rctx(r *http.Request) *repositories.RequestContext {
	return repositories.NewRequestContext(chi.URLParam(r, "orgID"), s.repos)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
