package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// Bootstrap holds the operator-only maintenance operations.
//
// OPERATOR-ONLY:
// Nothing in the HTTP server constructs a Bootstrap. It is wired only into
// cmd/shelfctl, which talks to the database directly, so these operations
// skip caller resolution entirely: having shell access to the database IS
// the authorization.
type Bootstrap struct {
	recs   repository.RecommendationRepository
	roles  repository.RoleRepository
	logger *slog.Logger
}

// NewBootstrap creates a Bootstrap.
func NewBootstrap(recs repository.RecommendationRepository, roles repository.RoleRepository, logger *slog.Logger) *Bootstrap {
	return &Bootstrap{recs: recs, roles: roles, logger: logger}
}

// SeedResult reports what SeedMovies did.
type SeedResult struct {
	Skipped bool `json:"skipped"`
	Count   int  `json:"count"`
}

// GrantAdmin makes userID an admin, creating the role row if needed.
// Safe to repeat.
func (b *Bootstrap) GrantAdmin(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}

	if err := b.roles.UpsertRole(ctx, userID, model.RoleAdmin); err != nil {
		return fmt.Errorf("granting admin to %s: %w", userID, err)
	}

	b.logger.Info("granted admin", slog.String("userID", userID))
	return nil
}

// BackfillAdminStaffPicks marks every recommendation written by a current
// admin as a staff pick, and returns how many records changed. A second run
// right after the first changes nothing.
func (b *Bootstrap) BackfillAdminStaffPicks(ctx context.Context) (int64, error) {
	admins, err := b.roles.ListAdminIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("backfilling staff picks: %w", err)
	}
	if len(admins) == 0 {
		b.logger.Info("no admins found, nothing to backfill")
		return 0, nil
	}

	updated, err := b.recs.MarkStaffPicks(ctx, admins)
	if err != nil {
		return 0, fmt.Errorf("backfilling staff picks: %w", err)
	}

	b.logger.Info("backfilled staff picks",
		slog.Int64("updated", updated),
		slog.Int("admins", len(admins)),
	)
	return updated, nil
}

// SeedMovies inserts the curated sample list unless it is already present.
//
// Presence is detected by any record authored by SeedUserID. The insert runs
// in one transaction, so a failed seed leaves nothing behind and can simply
// be retried.
func (b *Bootstrap) SeedMovies(ctx context.Context) (SeedResult, error) {
	exists, err := b.recs.ExistsByAuthor(ctx, SeedUserID)
	if err != nil {
		return SeedResult{}, fmt.Errorf("checking seed state: %w", err)
	}
	if exists {
		b.logger.Info("seed already ran, skipping")
		return SeedResult{Skipped: true}, nil
	}

	// Spread creation times so the list keeps the curated order, first
	// movie newest.
	now := time.Now().UTC()
	recs := make([]*model.Recommendation, len(seedMovies))
	for i, m := range seedMovies {
		recs[i] = &model.Recommendation{
			Title:          m.title,
			Genre:          m.genre,
			Link:           m.link,
			Blurb:          m.blurb,
			AuthorUserID:   SeedUserID,
			AuthorUsername: SeedUsername,
			IsStaffPick:    m.staffPick,
			CreatedAt:      now.Add(-time.Duration(i) * time.Millisecond),
		}
	}

	if err := b.recs.CreateBatch(ctx, recs); err != nil {
		return SeedResult{}, fmt.Errorf("seeding movies: %w", err)
	}

	b.logger.Info("seeded movies", slog.Int("count", len(recs)))
	return SeedResult{Count: len(recs)}, nil
}
