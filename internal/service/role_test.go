package service

import (
	"errors"
	"testing"

	"github.com/sakif/hypeshelf/internal/apperror"
	"github.com/sakif/hypeshelf/internal/model"
)

func TestGetMyRole(t *testing.T) {
	env := newTestEnv(t)
	env.makeAdmin(t, "admin")

	t.Run("anonymous gets nil", func(t *testing.T) {
		role, err := env.roleSvc.GetMyRole(anon)
		if err != nil {
			t.Fatalf("GetMyRole() error = %v", err)
		}
		if role != nil {
			t.Errorf("GetMyRole() = %v, want nil", *role)
		}
	})

	t.Run("no role row defaults to user", func(t *testing.T) {
		role, err := env.roleSvc.GetMyRole(as("newcomer"))
		if err != nil {
			t.Fatalf("GetMyRole() error = %v", err)
		}
		if role == nil || *role != model.RoleUser {
			t.Errorf("GetMyRole() = %v, want user", role)
		}
		if _, ok := env.roles.rows["newcomer"]; ok {
			t.Error("reading a role must not create a role row")
		}
	})

	t.Run("admin row", func(t *testing.T) {
		role, err := env.roleSvc.GetMyRole(as("admin"))
		if err != nil {
			t.Fatalf("GetMyRole() error = %v", err)
		}
		if role == nil || *role != model.RoleAdmin {
			t.Errorf("GetMyRole() = %v, want admin", role)
		}
	})
}

func TestSetRole_NonAdminForbidden(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"self", "someone-else"} {
		err := env.roleSvc.SetRole(as("self"), target, model.RoleAdmin)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("SetRole(%s) error = %v, want ErrForbidden", target, err)
		}
	}
	if len(env.roles.rows) != 0 {
		t.Errorf("role rows = %v, want none after rejected escalation", env.roles.rows)
	}
}

func TestSetRole_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	env.makeAdmin(t, "admin")

	if err := env.roleSvc.SetRole(as("admin"), "u1", model.RoleAdmin); err != nil {
		t.Fatalf("first SetRole() error = %v", err)
	}
	first := env.roles.rows["u1"]

	if err := env.roleSvc.SetRole(as("admin"), "u1", model.RoleAdmin); err != nil {
		t.Fatalf("second SetRole() error = %v", err)
	}
	if second := env.roles.rows["u1"]; second != first {
		t.Errorf("row after second call = %+v, want %+v", second, first)
	}
}

func TestSetRole_PatchExisting(t *testing.T) {
	env := newTestEnv(t)
	env.makeAdmin(t, "admin")
	env.makeAdmin(t, "u1")

	if err := env.roleSvc.SetRole(as("admin"), "u1", model.RoleUser); err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if got := env.roles.rows["u1"].Role; got != model.RoleUser {
		t.Errorf("role = %q, want user", got)
	}
}

func TestSetRole_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.makeAdmin(t, "admin")

	tests := []struct {
		name   string
		target string
		role   model.Role
	}{
		{"unknown role", "u1", model.Role("root")},
		{"empty role", "u1", model.Role("")},
		{"empty target", "  ", model.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.roleSvc.SetRole(as("admin"), tt.target, tt.role)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSetRole_PermissionBeforeValidation(t *testing.T) {
	env := newTestEnv(t)

	if err := env.roleSvc.SetRole(anon, "", "superuser"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("anonymous SetRole error = %v, want ErrUnauthenticated", err)
	}
	if err := env.roleSvc.SetRole(as("bob"), "", "superuser"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("non-admin SetRole error = %v, want ErrForbidden", err)
	}
}

func TestAuthorizeSetRole(t *testing.T) {
	env := newTestEnv(t)
	env.makeAdmin(t, "admin")

	tests := []struct {
		name   string
		caller string
		want   error
	}{
		{"anonymous", "", apperror.ErrUnauthenticated},
		{"regular user", "bob", apperror.ErrForbidden},
		{"admin", "admin", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := anon
			if tt.caller != "" {
				ctx = as(tt.caller)
			}
			err := env.roleSvc.AuthorizeSetRole(ctx)
			if (tt.want == nil && err != nil) || (tt.want != nil && !errors.Is(err, tt.want)) {
				t.Errorf("AuthorizeSetRole() error = %v, want %v", err, tt.want)
			}
		})
	}
}
