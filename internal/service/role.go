package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/auth"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// RoleService exposes role lookup and assignment on the public surface.
type RoleService struct {
	roles  repository.RoleRepository
	policy *Policy
	logger *slog.Logger
}

// NewRoleService creates a RoleService.
func NewRoleService(roles repository.RoleRepository, policy *Policy, logger *slog.Logger) *RoleService {
	return &RoleService{roles: roles, policy: policy, logger: logger}
}

// GetMyRole returns the caller's role, or nil for an anonymous caller.
// Only the role is returned, never the rest of the stored row.
func (s *RoleService) GetMyRole(ctx context.Context) (*model.Role, error) {
	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		return nil, nil
	}

	role, err := s.policy.RoleOf(ctx, caller.Subject)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SetRole assigns role to userID. Admin only: without this check any
// signed-in user could promote themselves.
//
// Repeating the same call is a no-op on the stored row.
func (s *RoleService) SetRole(ctx context.Context, userID string, role model.Role) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("userId", "target user ID is required")
	}
	if !role.Valid() {
		return apperror.ValidationFailed("role", "role must be admin or user")
	}

	if err := s.roles.UpsertRole(ctx, userID, role); err != nil {
		s.logger.Error("failed to assign role",
			slog.String("target", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("assigning role: %w", err)
	}

	s.logger.Info("role assigned",
		slog.String("target", userID),
		slog.String("role", role.String()),
		slog.String("by", caller.UserID),
	)
	return nil
}

// AuthorizeSetRole reports whether the caller may assign roles at all,
// without looking at a payload. Handlers use it to rank a permission
// failure above a malformed request body.
func (s *RoleService) AuthorizeSetRole(ctx context.Context) error {
	_, err := s.requireAdmin(ctx)
	return err
}

func (s *RoleService) requireAdmin(ctx context.Context) (*Identity, error) {
	caller, err := s.policy.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		s.logger.Warn("role assignment rejected", slog.String("by", caller.UserID))
		return nil, apperror.Forbidden("only admins can assign roles")
	}
	return caller, nil
}
