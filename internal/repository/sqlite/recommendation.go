package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// compile-time check that *DB implements repository.RecommendationRepository
var _ repository.RecommendationRepository = (*DB)(nil)

const recommendationColumns = `id, title, genre, link, blurb, author_user_id, author_username, is_staff_pick, created_at`

// execer is satisfied by both *sql.DB and *sql.Tx, so single inserts and
// batch inserts share one code path.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts a new recommendation. It fills in rec.ID, and rec.CreatedAt
// when the caller left it zero.
//
// xid IDs are 20 URL-safe characters and sort by creation time, which keeps
// ORDER BY created_at DESC, id DESC stable for rows created in the same
// nanosecond.
func (db *DB) Create(ctx context.Context, rec *model.Recommendation) error {
	if err := insertRecommendation(ctx, db.conn, rec); err != nil {
		return fmt.Errorf("sqlite: creating recommendation: %w", err)
	}
	return nil
}

// CreateBatch inserts every record inside one transaction.
func (db *DB) CreateBatch(ctx context.Context, recs []*model.Recommendation) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning batch insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, rec := range recs {
		if err = insertRecommendation(ctx, tx, rec); err != nil {
			return fmt.Errorf("sqlite: inserting batch item %d (%q): %w", i, rec.Title, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing batch insert: %w", err)
	}
	return nil
}

func insertRecommendation(ctx context.Context, ex execer, rec *model.Recommendation) error {
	rec.ID = xid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO recommendations (`+recommendationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Title,
		rec.Genre,
		rec.Link,
		rec.Blurb,
		rec.AuthorUserID,
		rec.AuthorUsername,
		rec.IsStaffPick,
		toNanos(rec.CreatedAt),
	)
	return err
}

// GetByID retrieves a single recommendation.
// Returns apperror.ErrNotFound if no row has that id.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Recommendation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations WHERE id = ?`,
		id,
	)

	rec, err := scanRecommendation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recommendation", id)
		}
		return nil, fmt.Errorf("sqlite: getting recommendation %s: %w", id, err)
	}
	return rec, nil
}

// List returns recommendations most-recent-first, filtered by opts.
//
// The WHERE clause is assembled from fixed fragments only; every user value
// goes through a ? placeholder. The author filter runs in Go: SQLite's
// lower() folds ASCII only, so "élodie" would never match "Élodie".
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Recommendation, error) {
	var (
		where []string
		args  []any
	)
	if opts.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, opts.Genre)
	}
	author := strings.ToLower(strings.TrimSpace(opts.Author))

	query := `SELECT ` + recommendationColumns + ` FROM recommendations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 && author == "" {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]model.Recommendation, 0, max(opts.Limit, 0))
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning recommendation row: %w", err)
		}
		if author != "" && !strings.Contains(strings.ToLower(rec.AuthorUsername), author) {
			continue
		}
		recs = append(recs, *rec)
		if opts.Limit > 0 && len(recs) == opts.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recommendations: %w", err)
	}

	return recs, nil
}

// Delete permanently removes a recommendation.
// Returns apperror.ErrNotFound if nothing was deleted.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM recommendations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recommendation %s: %w", id, err)
	}
	return requireAffected(result, "recommendation", id)
}

// ToggleStaffPick flips is_staff_pick with a single UPDATE, so two
// concurrent toggles can never both read the same old value.
func (db *DB) ToggleStaffPick(ctx context.Context, id string) (bool, error) {
	var picked bool
	err := db.conn.QueryRowContext(ctx,
		`UPDATE recommendations
		 SET is_staff_pick = NOT is_staff_pick
		 WHERE id = ?
		 RETURNING is_staff_pick`,
		id,
	).Scan(&picked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, apperror.NotFound("recommendation", id)
		}
		return false, fmt.Errorf("sqlite: toggling staff pick on %s: %w", id, err)
	}
	return picked, nil
}

// MarkStaffPicks sets is_staff_pick on every record by one of authorIDs
// that is not already a staff pick.
func (db *DB) MarkStaffPicks(ctx context.Context, authorIDs []string) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}

	args := make([]any, len(authorIDs))
	for i, id := range authorIDs {
		args[i] = id
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE recommendations SET is_staff_pick = 1
		 WHERE is_staff_pick = 0 AND author_user_id IN (`+placeholders(len(authorIDs))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: marking staff picks: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

// ExistsByAuthor reports whether any recommendation has the given author.
func (db *DB) ExistsByAuthor(ctx context.Context, authorID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM recommendations WHERE author_user_id = ?)`,
		authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking recommendations by %s: %w", authorID, err)
	}
	return exists, nil
}

// scanner is the common part of *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(s scanner) (*model.Recommendation, error) {
	var (
		rec       model.Recommendation
		createdAt int64
	)
	if err := s.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Genre,
		&rec.Link,
		&rec.Blurb,
		&rec.AuthorUserID,
		&rec.AuthorUsername,
		&rec.IsStaffPick,
		&createdAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = fromNanos(createdAt)
	return &rec, nil
}

// requireAffected turns "zero rows changed" into a NotFound error.
func requireAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
