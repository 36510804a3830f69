// Package service contains the business logic layer of the application:
// who may read, create, delete and promote records.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → resolves identity and role, enforces rules
//	Repository (data layer)  → reads/writes SQLite
//
// Services accept context.Context and plain Go values, never *http.Request,
// so the same rules serve the HTTP API, the operator CLI and tests.
//
// AUTHORIZATION ORDER:
// Every mutation resolves the caller and checks permission BEFORE it writes,
// so a rejected call never leaves a partial change behind.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/auth"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// Identity is the resolved caller: who they are and what they may do.
// Role always comes from the role store, never from request input.
type Identity struct {
	UserID   string
	Username string
	Role     model.Role
}

// IsAdmin reports whether the identity holds the admin role.
func (id *Identity) IsAdmin() bool {
	return id.Role == model.RoleAdmin
}

// Policy resolves callers to identities. It is shared by the services that
// need an authorization decision.
type Policy struct {
	roles  repository.RoleRepository
	logger *slog.Logger
}

// NewPolicy creates a Policy backed by the given role store.
func NewPolicy(roles repository.RoleRepository, logger *slog.Logger) *Policy {
	return &Policy{roles: roles, logger: logger}
}

// RequireAuth is the single authentication checkpoint used by every
// protected operation.
//
// It fails with apperror.ErrUnauthenticated when ctx carries no verified
// caller. A caller without a role row resolves to model.RoleUser; absence is
// the default-privilege case, not an error.
func (p *Policy) RequireAuth(ctx context.Context) (*Identity, error) {
	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthenticated()
	}

	role, err := p.RoleOf(ctx, caller.Subject)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:   caller.Subject,
		Username: caller.DisplayName(),
		Role:     role,
	}, nil
}

// RoleOf returns the stored role of userID, or model.RoleUser when the
// subject has no role row.
func (p *Policy) RoleOf(ctx context.Context, userID string) (model.Role, error) {
	ur, err := p.roles.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.RoleUser, nil
		}
		p.logger.Error("failed to resolve role",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("resolving role for %s: %w", userID, err)
	}
	return ur.Role, nil
}

// AdminSet returns the subjects that are admins right now.
//
// It is re-read on every call rather than cached: the operator CLI writes
// roles from another process, and a list request issued right after a role
// change must already see it.
func (p *Policy) AdminSet(ctx context.Context) (map[string]struct{}, error) {
	ids, err := p.roles.ListAdminIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
