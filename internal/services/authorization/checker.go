// Package authorization answers has-permission queries. Resolution is a
// pure, uncached read: every call walks the resource ancestry and the
// subject's role memberships against the permission store.
package authorization

import (
	"context"
	"fmt"
	"time"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/infrastructure/metrics"
	"github.com/torii-auth/torii/internal/repositories"
)

// CheckerInterface defines the interface for permission checking
type CheckerInterface interface {
	Check(ctx context.Context, rctx *repositories.RequestContext, req *CheckRequest) (bool, error)
	CheckAll(ctx context.Context, rctx *repositories.RequestContext, req *CheckAllRequest) (map[string]bool, error)
}

// CheckRequest contains the parameters for a permission check
type CheckRequest struct {
	UserID     string // Subject user ID (e.g., "alice")
	ResourceID string // Resource ID, normalized or raw (e.g., "docs/readme")
	Action     string // Action to check (e.g., "read")

	// StrictSubject makes an unknown user a NotFound error instead of a
	// plain denial.
	StrictSubject bool
}

// CheckAllRequest bundles several actions to resolve for one user and
// resource.
type CheckAllRequest struct {
	UserID     string
	ResourceID string
	Actions    []string

	// StrictSubject makes an unknown user a NotFound error instead of an
	// all-false result map.
	StrictSubject bool
}

// Checker resolves permission checks for one tenant at a time.
type Checker struct {
	metrics *metrics.Collector // Optional; nil disables instrumentation
}

// NewChecker creates a new Checker
func NewChecker() *Checker {
	return &Checker{}
}

// NewCheckerWithMetrics creates a Checker that reports check outcomes and
// latency to the collector.
func NewCheckerWithMetrics(collector *metrics.Collector) *Checker {
	return &Checker{metrics: collector}
}

// Check reports whether the user may perform the action on the resource.
//
// A grant matches when its subject is the user itself or one of the user's
// roles, its action equals the requested action, and its resource scope is
// the resource or a delimiter-bounded ancestor of it. One matching row
// anywhere is sufficient: direct and role-derived grants have no precedence,
// and narrower scopes do not beat broader ones. Absence of a match is the
// only denial, and denial is never an error.
//
// The resource does not have to exist as a stored row; scopes are matched on
// the ID text alone.
func (c *Checker) Check(ctx context.Context, rctx *repositories.RequestContext, req *CheckRequest) (bool, error) {
	start := time.Now()
	allowed, err := c.resolve(ctx, rctx, req)
	if err != nil {
		return false, err
	}
	if c.metrics != nil {
		c.metrics.ObserveCheck(allowed, time.Since(start))
	}
	return allowed, nil
}

// CheckAll resolves several actions for the same user and resource in one
// pass, loading the subject list once.
func (c *Checker) CheckAll(ctx context.Context, rctx *repositories.RequestContext, req *CheckAllRequest) (map[string]bool, error) {
	if req == nil {
		return nil, repositories.Validation(fmt.Errorf("check request is required"))
	}
	if req.UserID == "" {
		return nil, repositories.Validation(fmt.Errorf("user ID is required"))
	}
	scopes, err := entities.ResourceScopes(req.ResourceID)
	if err != nil {
		return nil, repositories.Validation(err)
	}
	subjects, err := c.subjects(ctx, rctx, req.UserID)
	if err != nil {
		if repositories.IsNotFound(err) && !req.StrictSubject {
			// Unknown subject holds no grants.
			subjects = nil
		} else {
			return nil, err
		}
	}

	results := make(map[string]bool, len(req.Actions))
	for _, action := range req.Actions {
		if action == "" {
			return nil, repositories.Validation(fmt.Errorf("action is required"))
		}
		if subjects == nil {
			results[action] = false
			continue
		}
		allowed, err := rctx.Repos.Permissions.AnyMatch(ctx, rctx.OrgID, subjects, action, scopes)
		if err != nil {
			return nil, err
		}
		results[action] = allowed
	}
	return results, nil
}

func (c *Checker) resolve(ctx context.Context, rctx *repositories.RequestContext, req *CheckRequest) (bool, error) {
	if err := c.validateRequest(req); err != nil {
		return false, repositories.Validation(err)
	}

	scopes, err := entities.ResourceScopes(req.ResourceID)
	if err != nil {
		return false, repositories.Validation(err)
	}

	subjects, err := c.subjects(ctx, rctx, req.UserID)
	if err != nil {
		if repositories.IsNotFound(err) && !req.StrictSubject {
			// Unknown subject holds no grants.
			return false, nil
		}
		return false, err
	}

	return rctx.Repos.Permissions.AnyMatch(ctx, rctx.OrgID, subjects, req.Action, scopes)
}

// subjects returns the user plus its roles
func (c *Checker) subjects(ctx context.Context, rctx *repositories.RequestContext, userID string) ([]entities.Subject, error) {
	user, err := rctx.Repos.Users.GetByID(ctx, rctx.OrgID, userID)
	if err != nil {
		return nil, err
	}
	subjects := make([]entities.Subject, 0, len(user.RoleIDs)+1)
	subjects = append(subjects, entities.Subject{Type: entities.SubjectUser, ID: user.ID})
	for _, roleID := range user.RoleIDs {
		subjects = append(subjects, entities.Subject{Type: entities.SubjectRole, ID: roleID})
	}
	return subjects, nil
}

func (c *Checker) validateRequest(req *CheckRequest) error {
	if req == nil {
		return fmt.Errorf("check request is required")
	}
	if req.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if req.ResourceID == "" {
		return fmt.Errorf("resource ID is required")
	}
	if req.Action == "" {
		return fmt.Errorf("action is required")
	}
	return nil
}
