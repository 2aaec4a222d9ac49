package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
)

// UserStore captures the persistence interactions needed by the service.
type UserStore interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, uid string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// AccountDisabler pushes an enable or disable flag to the external identity
// provider so a blocked account also loses its upstream credential.
type AccountDisabler interface {
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}

// UserService handles the administrator surface for account management.
type UserService struct {
	users    UserStore
	disabler AccountDisabler
	now      func() time.Time
	logger   *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users UserStore, disabler AccountDisabler, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, disabler, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserStore, disabler AccountDisabler, now func() time.Time, logger *slog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:    users,
		disabler: disabler,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// SetRole changes the role on a user account. Administrator only. An active
// session issued before the change keeps its old privileges until it is next
// re-validated.
func (s *UserService) SetRole(ctx context.Context, params SetUserRoleParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetRole",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
		"role", params.Role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role changed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if params.Role != RoleAdmin && params.Role != RoleUser {
		vErr := &ValidationError{}
		vErr.add("role", "role must be admin or user")
		err = vErr
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, strings.TrimSpace(params.UserID))
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	if existing.Role == params.Role {
		user = existing
		return
	}

	existing.Role = params.Role
	existing.UpdatedAt = s.now()

	user, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapUserRepoError(err)
	}
	return
}

// SetStatus changes the status on a user account. Administrator only. When an
// account is blocked the change is also pushed to the identity provider, but a
// provider outage never blocks the local update; the failure is logged and the
// local record stays authoritative.
func (s *UserService) SetStatus(ctx context.Context, params SetUserStatusParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetStatus",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
		"status", params.Status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status changed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if params.Status != StatusActive && params.Status != StatusBlocked {
		vErr := &ValidationError{}
		vErr.add("status", "status must be active or blocked")
		err = vErr
		return
	}
	if params.Principal.UserID == strings.TrimSpace(params.UserID) && params.Status == StatusBlocked {
		vErr := &ValidationError{}
		vErr.add("user_id", "administrators cannot block their own account")
		err = vErr
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, strings.TrimSpace(params.UserID))
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	if existing.Status != params.Status {
		existing.Status = params.Status
		existing.UpdatedAt = s.now()

		existing, err = s.users.UpdateUser(ctx, existing)
		if err != nil {
			err = mapUserRepoError(err)
			return
		}
	}
	user = existing

	if s.disabler != nil {
		if dErr := s.disabler.SetDisabled(ctx, user.UID, params.Status == StatusBlocked); dErr != nil {
			wrapped := &ExternalServiceError{Op: "identity.SetDisabled", Err: dErr}
			logger.WarnContext(ctx, "identity provider update failed", "error", wrapped, "error_kind", ErrorKind(wrapped))
		}
	}
	return
}

// GetUser returns a single account. Users may read their own record;
// everything else requires an administrator.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	uid := strings.TrimSpace(userID)
	if !principal.IsAdmin && principal.UserID != uid {
		err = ErrUnauthorized
		return
	}

	user, err = s.users.GetUser(ctx, uid)
	if err != nil {
		err = mapUserRepoError(err)
	}
	return
}

// ListUsers returns every account, sorted by email. Administrator only.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) (users []User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListUsers",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list users", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(users)).InfoContext(ctx, "users listed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var raw []User
	raw, err = s.users.ListUsers(ctx)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	users = make([]User, len(raw))
	copy(users, raw)
	sort.Slice(users, func(i, j int) bool {
		if users[i].Email != users[j].Email {
			return users[i].Email < users[j].Email
		}
		return users[i].UID < users[j].UID
	})
	return
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("role", "role or status value is not allowed")
		return vErr
	}
	return err
}
