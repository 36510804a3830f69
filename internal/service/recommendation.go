package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// PublicPageSize is how many recommendations the landing page shows.
const PublicPageSize = 50

// Length caps for caller-supplied text, in runes. Content is otherwise
// opaque: URL form and genre vocabulary are not validated. The max= tags on
// CreateInput must match.
const (
	MaxTitleLength = 200
	MaxGenreLength = 50
	MaxLinkLength  = 2048
	MaxBlurbLength = 2000
)

// CreateInput is everything a caller may supply when creating a
// recommendation. Author fields are deliberately absent.
type CreateInput struct {
	Title string `json:"title" validate:"required,max=200"`
	Genre string `json:"genre" validate:"max=50"`
	Link  string `json:"link" validate:"max=2048"`
	Blurb string `json:"blurb" validate:"max=2000"`
}

// ListFilter narrows ListAll. Empty fields do not filter.
type ListFilter struct {
	Genre  string // exact match; "" or model.GenreAll means every genre
	Author string // case-insensitive substring of the author's username
}

// RecommendationService holds the read and write rules for recommendations.
type RecommendationService struct {
	recs   repository.RecommendationRepository
	policy *Policy
	logger *slog.Logger
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(recs repository.RecommendationRepository, policy *Policy, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		recs:   recs,
		policy: policy,
		logger: logger,
	}
}

// ListPublic returns the newest PublicPageSize recommendations. Open read.
func (s *RecommendationService) ListPublic(ctx context.Context) ([]model.Recommendation, error) {
	return s.list(ctx, repository.ListOptions{Limit: PublicPageSize})
}

// ListAll returns every recommendation matching f, newest first. Open read.
func (s *RecommendationService) ListAll(ctx context.Context, f ListFilter) ([]model.Recommendation, error) {
	opts := repository.ListOptions{Author: strings.TrimSpace(f.Author)}
	if g := strings.TrimSpace(f.Genre); g != "" && g != model.GenreAll {
		opts.Genre = g
	}
	return s.list(ctx, opts)
}

// list fetches records and annotates each with the LIVE staff flag: true
// when the author is an admin right now. The stored flag is not consulted,
// so promoting or demoting a user retroactively changes how their posts are
// shown without rewriting them.
func (s *RecommendationService) list(ctx context.Context, opts repository.ListOptions) ([]model.Recommendation, error) {
	admins, err := s.policy.AdminSet(ctx)
	if err != nil {
		s.logger.Error("failed to load admin set", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}

	recs, err := s.recs.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to list recommendations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}

	for i := range recs {
		_, recs[i].IsStaffPick = admins[recs[i].AuthorUserID]
	}
	return recs, nil
}

// Create stores a new recommendation by the caller and returns its id.
//
// The author is always the resolved caller. An admin's post starts as a
// staff pick; anyone else's does not.
func (s *RecommendationService) Create(ctx context.Context, in CreateInput) (string, error) {
	id, err := s.policy.RequireAuth(ctx)
	if err != nil {
		return "", err
	}

	in, err = normalizeCreateInput(in)
	if err != nil {
		return "", err
	}

	rec := &model.Recommendation{
		Title:          in.Title,
		Genre:          in.Genre,
		Link:           in.Link,
		Blurb:          in.Blurb,
		AuthorUserID:   id.UserID,
		AuthorUsername: id.Username,
		IsStaffPick:    id.IsAdmin(),
	}

	if err := s.recs.Create(ctx, rec); err != nil {
		s.logger.Error("failed to create recommendation",
			slog.String("userID", id.UserID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("creating recommendation: %w", err)
	}

	s.logger.Info("recommendation created",
		slog.String("id", rec.ID),
		slog.String("userID", id.UserID),
		slog.Bool("staffPick", rec.IsStaffPick),
	)
	return rec.ID, nil
}

// AuthorizeCreate reports whether the caller may create recommendations,
// without looking at a payload.
func (s *RecommendationService) AuthorizeCreate(ctx context.Context) error {
	_, err := s.policy.RequireAuth(ctx)
	return err
}

// Remove deletes a recommendation. Admins may delete any record; everyone
// else only their own.
func (s *RecommendationService) Remove(ctx context.Context, recID string) error {
	id, err := s.policy.RequireAuth(ctx)
	if err != nil {
		return err
	}

	recID = strings.TrimSpace(recID)
	if recID == "" {
		return apperror.ValidationFailed("id", "recommendation ID is required")
	}

	rec, err := s.recs.GetByID(ctx, recID)
	if err != nil {
		return err
	}

	if !id.IsAdmin() && rec.AuthorUserID != id.UserID {
		s.logger.Warn("delete rejected",
			slog.String("id", recID),
			slog.String("userID", id.UserID),
		)
		return apperror.Forbidden("you can only delete your own recommendations")
	}

	if err := s.recs.Delete(ctx, recID); err != nil {
		return err
	}

	s.logger.Info("recommendation deleted",
		slog.String("id", recID),
		slog.String("by", id.UserID),
	)
	return nil
}

// ToggleStaffPick flips the stored staff-pick flag. Admin only.
//
// The role check comes before the existence check: a non-admin learns
// nothing about which ids exist.
func (s *RecommendationService) ToggleStaffPick(ctx context.Context, recID string) error {
	id, err := s.policy.RequireAuth(ctx)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return apperror.Forbidden("only admins can set staff picks")
	}

	recID = strings.TrimSpace(recID)
	if recID == "" {
		return apperror.ValidationFailed("id", "recommendation ID is required")
	}

	picked, err := s.recs.ToggleStaffPick(ctx, recID)
	if err != nil {
		return err
	}

	s.logger.Info("staff pick toggled",
		slog.String("id", recID),
		slog.Bool("staffPick", picked),
		slog.String("by", id.UserID),
	)
	return nil
}

func normalizeCreateInput(in CreateInput) (CreateInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Link = strings.TrimSpace(in.Link)
	in.Blurb = strings.TrimSpace(in.Blurb)
	return in, validateStruct(in)
}
