package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// compile-time check that *DB implements repository.RoleRepository
var _ repository.RoleRepository = (*DB)(nil)

// GetRole returns the role row for userID, or apperror.ErrNotFound when the
// subject has never been assigned a role.
func (db *DB) GetRole(ctx context.Context, userID string) (*model.UserRole, error) {
	var (
		ur                   model.UserRole
		role                 string
		createdAt, updatedAt int64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, role, created_at, updated_at FROM users WHERE user_id = ?`,
		userID,
	).Scan(&ur.UserID, &role, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: getting role for %s: %w", userID, err)
	}

	ur.Role = model.Role(role)
	ur.CreatedAt = fromNanos(createdAt)
	ur.UpdatedAt = fromNanos(updatedAt)
	return &ur, nil
}

// UpsertRole inserts a role row or patches the role of an existing one.
//
// ON CONFLICT ... WHERE:
// The update branch only fires when the role actually changes, so repeating
// the same assignment leaves the row (including updated_at) untouched.
// The whole thing is one statement, so it is atomic without a transaction.
func (db *DB) UpsertRole(ctx context.Context, userID string, role model.Role) error {
	now := toNanos(time.Now())
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE
		 SET role = excluded.role, updated_at = excluded.updated_at
		 WHERE users.role <> excluded.role`,
		userID, string(role), now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting role for %s: %w", userID, err)
	}
	return nil
}

// ListAdminIDs returns the subjects that currently hold the admin role.
func (db *DB) ListAdminIDs(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id FROM users WHERE role = ? ORDER BY user_id`,
		string(model.RoleAdmin),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing admins: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning admin row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating admins: %w", err)
	}
	return ids, nil
}
