package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/model"
)

func TestGrantAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := env.bootstrap.GrantAdmin(ctx, "user_abc"); err != nil {
			t.Fatalf("GrantAdmin() call %d error = %v", i+1, err)
		}
	}
	if got := env.roles.rows["user_abc"].Role; got != model.RoleAdmin {
		t.Errorf("role = %q, want admin", got)
	}

	if err := env.bootstrap.GrantAdmin(ctx, ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GrantAdmin(\"\") error = %v, want ErrValidation", err)
	}
}

func TestBackfillAdminStaffPicks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Posted while still a regular user, so stored flag is false.
	early := env.create(t, "u1", "Mad Max", "action")
	other := env.create(t, "u2", "Get Out", "horror")

	n, err := env.bootstrap.BackfillAdminStaffPicks(ctx)
	if err != nil {
		t.Fatalf("backfill with no admins error = %v", err)
	}
	if n != 0 {
		t.Errorf("backfill with no admins updated %d, want 0", n)
	}

	env.makeAdmin(t, "u1")

	n, err = env.bootstrap.BackfillAdminStaffPicks(ctx)
	if err != nil {
		t.Fatalf("BackfillAdminStaffPicks() error = %v", err)
	}
	if n != 1 {
		t.Errorf("updated = %d, want 1", n)
	}
	if !env.recs.recs[early].IsStaffPick || env.recs.recs[other].IsStaffPick {
		t.Error("only the admin's record should be marked")
	}

	n, err = env.bootstrap.BackfillAdminStaffPicks(ctx)
	if err != nil {
		t.Fatalf("second BackfillAdminStaffPicks() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second run updated = %d, want 0", n)
	}
}

func TestSeedMovies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.bootstrap.SeedMovies(ctx)
	if err != nil {
		t.Fatalf("SeedMovies() error = %v", err)
	}
	if res.Skipped || res.Count != len(seedMovies) {
		t.Fatalf("first run = %+v, want {Skipped:false Count:%d}", res, len(seedMovies))
	}

	picks := 0
	for _, rec := range env.recs.recs {
		if rec.AuthorUserID != SeedUserID || rec.AuthorUsername != SeedUsername {
			t.Errorf("seed record %q has author %s/%s", rec.Title, rec.AuthorUserID, rec.AuthorUsername)
		}
		if rec.IsStaffPick {
			picks++
		}
	}
	if picks != 3 {
		t.Errorf("stored staff picks = %d, want 3 curated picks", picks)
	}

	res, err = env.bootstrap.SeedMovies(ctx)
	if err != nil {
		t.Fatalf("second SeedMovies() error = %v", err)
	}
	if !res.Skipped || res.Count != 0 {
		t.Errorf("second run = %+v, want {Skipped:true Count:0}", res)
	}
	if len(env.recs.recs) != len(seedMovies) {
		t.Errorf("store has %d records after re-seed, want %d", len(env.recs.recs), len(seedMovies))
	}
}

func TestSeedMovies_KeepsCuratedOrder(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.bootstrap.SeedMovies(context.Background()); err != nil {
		t.Fatalf("SeedMovies() error = %v", err)
	}

	recs, err := env.recSvc.ListAll(anon, ListFilter{})
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if recs[0].Title != seedMovies[0].title {
		t.Errorf("newest seeded = %q, want %q", recs[0].Title, seedMovies[0].title)
	}
	if recs[len(recs)-1].Title != seedMovies[len(seedMovies)-1].title {
		t.Errorf("oldest seeded = %q, want %q", recs[len(recs)-1].Title, seedMovies[len(seedMovies)-1].title)
	}
}
