package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/meetingsphere/internal/persistence"
)

type userStoreStub struct {
	users map[string]User

	createErr error
	updateErr error
	listErr   error
}

func newUserStoreStub(users ...User) *userStoreStub {
	s := &userStoreStub{users: make(map[string]User)}
	for _, u := range users {
		s.users[u.UID] = u
	}
	return s
}

func (s *userStoreStub) CreateUser(ctx context.Context, user User) (User, error) {
	if s.createErr != nil {
		return User{}, s.createErr
	}
	s.users[user.UID] = user
	return user, nil
}

func (s *userStoreStub) GetUser(ctx context.Context, uid string) (User, error) {
	if user, ok := s.users[uid]; ok {
		return user, nil
	}
	return User{}, persistence.ErrNotFound
}

func (s *userStoreStub) GetUserByEmail(ctx context.Context, email string) (User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, persistence.ErrNotFound
}

func (s *userStoreStub) UpdateUser(ctx context.Context, user User) (User, error) {
	if s.updateErr != nil {
		return User{}, s.updateErr
	}
	if _, ok := s.users[user.UID]; !ok {
		return User{}, persistence.ErrNotFound
	}
	s.users[user.UID] = user
	return user, nil
}

func (s *userStoreStub) ListUsers(ctx context.Context) ([]User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

type disablerStub struct {
	calls    []string
	disabled []bool
	err      error
}

func (d *disablerStub) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	d.calls = append(d.calls, uid)
	d.disabled = append(d.disabled, disabled)
	return d.err
}

func admin() Principal {
	return Principal{UserID: "admin-1", IsAdmin: true}
}

func TestUserService_SetRole(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewUserService(newUserStoreStub(), nil, fixedNow)

		_, err := svc.SetRole(context.Background(), SetUserRoleParams{
			Principal: Principal{UserID: "user-1"},
			UserID:    "user-2",
			Role:      RoleAdmin,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		svc := NewUserService(newUserStoreStub(), nil, fixedNow)

		_, err := svc.SetRole(context.Background(), SetUserRoleParams{
			Principal: admin(),
			UserID:    "user-2",
			Role:      "superuser",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["role"]; !ok {
			t.Fatalf("expected role validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("promotes a user to administrator", func(t *testing.T) {
		store := newUserStoreStub(User{UID: "user-2", Email: "b@example.com", Role: RoleUser, Status: StatusActive})
		svc := NewUserService(store, nil, fixedNow)

		user, err := svc.SetRole(context.Background(), SetUserRoleParams{
			Principal: admin(),
			UserID:    "user-2",
			Role:      RoleAdmin,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Role != RoleAdmin {
			t.Fatalf("expected admin role, got %q", user.Role)
		}
	})

	t.Run("reports a missing user", func(t *testing.T) {
		svc := NewUserService(newUserStoreStub(), nil, fixedNow)

		_, err := svc.SetRole(context.Background(), SetUserRoleParams{
			Principal: admin(),
			UserID:    "missing",
			Role:      RoleUser,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUserService_SetStatus(t *testing.T) {
	t.Run("blocking pushes a disable to the identity provider", func(t *testing.T) {
		store := newUserStoreStub(User{UID: "user-2", Role: RoleUser, Status: StatusActive})
		disabler := &disablerStub{}
		svc := NewUserService(store, disabler, fixedNow)

		user, err := svc.SetStatus(context.Background(), SetUserStatusParams{
			Principal: admin(),
			UserID:    "user-2",
			Status:    StatusBlocked,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Status != StatusBlocked {
			t.Fatalf("expected blocked status, got %q", user.Status)
		}
		if len(disabler.calls) != 1 || disabler.calls[0] != "user-2" || !disabler.disabled[0] {
			t.Fatalf("expected disable call for user-2, got %v %v", disabler.calls, disabler.disabled)
		}
	})

	t.Run("a provider outage does not roll back the local change", func(t *testing.T) {
		store := newUserStoreStub(User{UID: "user-2", Role: RoleUser, Status: StatusActive})
		disabler := &disablerStub{err: errors.New("provider down")}
		svc := NewUserService(store, disabler, fixedNow)

		user, err := svc.SetStatus(context.Background(), SetUserStatusParams{
			Principal: admin(),
			UserID:    "user-2",
			Status:    StatusBlocked,
		})
		if err != nil {
			t.Fatalf("expected local change to succeed, got %v", err)
		}
		if user.Status != StatusBlocked {
			t.Fatalf("expected blocked status, got %q", user.Status)
		}
	})

	t.Run("administrators cannot block themselves", func(t *testing.T) {
		store := newUserStoreStub(User{UID: "admin-1", Role: RoleAdmin, Status: StatusActive})
		svc := NewUserService(store, nil, fixedNow)

		_, err := svc.SetStatus(context.Background(), SetUserStatusParams{
			Principal: admin(),
			UserID:    "admin-1",
			Status:    StatusBlocked,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unblocking pushes an enable to the identity provider", func(t *testing.T) {
		store := newUserStoreStub(User{UID: "user-2", Role: RoleUser, Status: StatusBlocked})
		disabler := &disablerStub{}
		svc := NewUserService(store, disabler, fixedNow)

		user, err := svc.SetStatus(context.Background(), SetUserStatusParams{
			Principal: admin(),
			UserID:    "user-2",
			Status:    StatusActive,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Status != StatusActive {
			t.Fatalf("expected active status, got %q", user.Status)
		}
		if len(disabler.calls) != 1 || disabler.disabled[0] {
			t.Fatalf("expected enable call, got %v %v", disabler.calls, disabler.disabled)
		}
	})
}

func TestUserService_ListUsers(t *testing.T) {
	store := newUserStoreStub(
		User{UID: "u-2", Email: "b@example.com"},
		User{UID: "u-1", Email: "a@example.com"},
	)
	svc := NewUserService(store, nil, fixedNow)

	t.Run("requires administrator privileges", func(t *testing.T) {
		_, err := svc.ListUsers(context.Background(), Principal{UserID: "user-1"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("returns accounts sorted by email", func(t *testing.T) {
		users, err := svc.ListUsers(context.Background(), admin())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[0].Email != "a@example.com" || users[1].Email != "b@example.com" {
			t.Fatalf("unexpected order: %v", users)
		}
	})
}

func TestUserService_GetUser(t *testing.T) {
	store := newUserStoreStub(
		User{UID: "user-1", Email: "a@example.com"},
		User{UID: "user-2", Email: "b@example.com"},
	)
	svc := NewUserService(store, nil, fixedNow)

	t.Run("users may read their own record", func(t *testing.T) {
		user, err := svc.GetUser(context.Background(), Principal{UserID: "user-1"}, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.UID != "user-1" {
			t.Fatalf("expected user-1, got %q", user.UID)
		}
	})

	t.Run("reading another account requires an administrator", func(t *testing.T) {
		_, err := svc.GetUser(context.Background(), Principal{UserID: "user-1"}, "user-2")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
