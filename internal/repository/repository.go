// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/hypeshelf/internal/model"
)

// ListOptions controls which recommendations List returns.
//
// Limit <= 0 means "no limit". Genre == "" matches every genre; callers
// translate the model.GenreAll sentinel before reaching the repository.
// Results are always ordered most-recent-first.
type ListOptions struct {
	Limit  int
	Genre  string
	Author string // case-insensitive substring of AuthorUsername; "" matches all
}

type RecommendationRepository interface {
	Create(ctx context.Context, rec *model.Recommendation) error
	// CreateBatch inserts all records in one transaction: either every
	// record is stored or none is.
	CreateBatch(ctx context.Context, recs []*model.Recommendation) error
	GetByID(ctx context.Context, id string) (*model.Recommendation, error)
	List(ctx context.Context, opts ListOptions) ([]model.Recommendation, error)
	Delete(ctx context.Context, id string) error
	// ToggleStaffPick flips the stored flag in a single statement and
	// returns the new value.
	ToggleStaffPick(ctx context.Context, id string) (bool, error)
	// MarkStaffPicks sets the stored flag on every not-yet-picked record
	// whose author is in authorIDs and returns how many rows changed.
	MarkStaffPicks(ctx context.Context, authorIDs []string) (int64, error)
	ExistsByAuthor(ctx context.Context, authorID string) (bool, error)
}

type RoleRepository interface {
	// GetRole returns apperror.ErrNotFound when the subject has no row.
	GetRole(ctx context.Context, userID string) (*model.UserRole, error)
	// UpsertRole inserts a row or patches the role of an existing one.
	UpsertRole(ctx context.Context, userID string, role model.Role) error
	ListAdminIDs(ctx context.Context) ([]string, error)
}
