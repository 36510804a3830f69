package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/auth"
	"github.com/sakif/hypeshelf/internal/model"
	"github.com/sakif/hypeshelf/internal/repository"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// In-memory implementations of the repository interfaces. They keep the
// same observable contract as the SQLite store (NotFound errors, newest-first
// ordering) so the service rules can be tested without a database.

type mockRecRepo struct {
	recs   map[string]*model.Recommendation
	nextID int
	clock  time.Time
	err    error // when set, every call fails with it
}

func newMockRecRepo() *mockRecRepo {
	return &mockRecRepo{
		recs:  make(map[string]*model.Recommendation),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockRecRepo) Create(_ context.Context, rec *model.Recommendation) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	rec.ID = fmt.Sprintf("rec-%03d", m.nextID)
	if rec.CreatedAt.IsZero() {
		m.clock = m.clock.Add(time.Second)
		rec.CreatedAt = m.clock
	}
	stored := *rec
	m.recs[rec.ID] = &stored
	return nil
}

func (m *mockRecRepo) CreateBatch(ctx context.Context, recs []*model.Recommendation) error {
	if m.err != nil {
		return m.err
	}
	for _, rec := range recs {
		if err := m.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRecRepo) GetByID(_ context.Context, id string) (*model.Recommendation, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.recs[id]
	if !ok {
		return nil, apperror.NotFound("recommendation", id)
	}
	out := *rec
	return &out, nil
}

func (m *mockRecRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Recommendation, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Recommendation, 0, len(m.recs))
	for _, rec := range m.recs {
		if opts.Genre != "" && rec.Genre != opts.Genre {
			continue
		}
		if opts.Author != "" && !strings.Contains(strings.ToLower(rec.AuthorUsername), strings.ToLower(opts.Author)) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockRecRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.recs[id]; !ok {
		return apperror.NotFound("recommendation", id)
	}
	delete(m.recs, id)
	return nil
}

func (m *mockRecRepo) ToggleStaffPick(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	rec, ok := m.recs[id]
	if !ok {
		return false, apperror.NotFound("recommendation", id)
	}
	rec.IsStaffPick = !rec.IsStaffPick
	return rec.IsStaffPick, nil
}

func (m *mockRecRepo) MarkStaffPicks(_ context.Context, authorIDs []string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	var n int64
	for _, rec := range m.recs {
		if authors[rec.AuthorUserID] && !rec.IsStaffPick {
			rec.IsStaffPick = true
			n++
		}
	}
	return n, nil
}

func (m *mockRecRepo) ExistsByAuthor(_ context.Context, authorID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, rec := range m.recs {
		if rec.AuthorUserID == authorID {
			return true, nil
		}
	}
	return false, nil
}

type mockRoleRepo struct {
	rows    map[string]model.UserRole
	upserts int
	err     error
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{rows: make(map[string]model.UserRole)}
}

func (m *mockRoleRepo) GetRole(_ context.Context, userID string) (*model.UserRole, error) {
	if m.err != nil {
		return nil, m.err
	}
	ur, ok := m.rows[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	return &ur, nil
}

func (m *mockRoleRepo) UpsertRole(_ context.Context, userID string, role model.Role) error {
	if m.err != nil {
		return m.err
	}
	m.upserts++
	ur, ok := m.rows[userID]
	if !ok {
		ur = model.UserRole{UserID: userID, CreatedAt: time.Unix(int64(m.upserts), 0)}
	}
	if ur.Role != role {
		ur.Role = role
		ur.UpdatedAt = time.Unix(int64(m.upserts), 0)
	}
	m.rows[userID] = ur
	return nil
}

func (m *mockRoleRepo) ListAdminIDs(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var ids []string
	for id, ur := range m.rows {
		if ur.Role == model.RoleAdmin {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

type testEnv struct {
	recs      *mockRecRepo
	roles     *mockRoleRepo
	policy    *Policy
	recSvc    *RecommendationService
	roleSvc   *RoleService
	bootstrap *Bootstrap
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recs := newMockRecRepo()
	roles := newMockRoleRepo()
	policy := NewPolicy(roles, logger)
	return &testEnv{
		recs:      recs,
		roles:     roles,
		policy:    policy,
		recSvc:    NewRecommendationService(recs, policy, logger),
		roleSvc:   NewRoleService(roles, policy, logger),
		bootstrap: NewBootstrap(recs, roles, logger),
	}
}

// as returns a context carrying a verified caller with the given subject.
func as(subject string) context.Context {
	return auth.WithCaller(context.Background(), auth.Caller{Subject: subject, Name: subject + " name"})
}

// anon is a context with no verified caller.
var anon = context.Background()

// makeAdmin gives subject a stored admin row.
func (e *testEnv) makeAdmin(t *testing.T, subject string) {
	t.Helper()
	if err := e.roles.UpsertRole(context.Background(), subject, model.RoleAdmin); err != nil {
		t.Fatalf("UpsertRole: %v", err)
	}
}

// create makes subject post a recommendation and returns its id.
func (e *testEnv) create(t *testing.T, subject, title, genre string) string {
	t.Helper()
	id, err := e.recSvc.Create(as(subject), CreateInput{Title: title, Genre: genre, Link: "https://example.com", Blurb: "b"})
	if err != nil {
		t.Fatalf("Create(%s, %s): %v", subject, title, err)
	}
	return id
}
