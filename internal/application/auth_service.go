package application

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meetingsphere/internal/identity"
	"github.com/example/meetingsphere/internal/persistence"
)

func isRepoNotFound(err error) bool {
	return errors.Is(err, persistence.ErrNotFound)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	RevokeSessionsForUser(ctx context.Context, userID string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService exchanges provider ID tokens for local sessions and gates every
// request on the account's current status.
type AuthService struct {
	provider       identity.Provider
	users          UserStore
	sessions       SessionRepository
	adminEmails    map[string]struct{}
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(provider identity.Provider, users UserStore, sessions SessionRepository, adminEmails []string, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(provider, users, sessions, adminEmails, idGenerator, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(provider identity.Provider, users UserStore, sessions SessionRepository, adminEmails []string, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &AuthService{
		provider:       provider,
		users:          users,
		sessions:       sessions,
		adminEmails:    admins,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

// NewSessionTokenGenerator returns a generator for opaque session tokens.
// Each token is the hex-encoded HMAC-SHA256 of fresh random bytes keyed by
// the deployment's session secret.
func NewSessionTokenGenerator(secret string) func() string {
	return func() string {
		buf := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			buf = []byte(fmt.Sprintf("fallback-%d", time.Now().UnixNano()))
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(buf)
		return hex.EncodeToString(mac.Sum(nil))
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// SignIn verifies a provider ID token, provisions the account on first
// contact, and issues a new session. First sign-in from an email on the
// administrator allow-list is provisioned with the admin role; everyone else
// starts as a regular active user. Blocked accounts never receive a session.
func (s *AuthService) SignIn(ctx context.Context, params SignInParams) (result SignInResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.provider == nil {
		err = fmt.Errorf("identity provider not configured")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	token := strings.TrimSpace(params.IDToken)
	logger := s.loggerWith(ctx, "SignIn", "token_provided", token != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "sign-in failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.UID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "sign-in succeeded")
	}()

	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	var ext identity.Identity
	ext, err = s.provider.VerifyIDToken(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			err = ErrInvalidCredentials
			return
		}
		err = &ExternalServiceError{Op: "identity.VerifyIDToken", Err: err}
		return
	}

	var user User
	user, err = s.provisionUser(ctx, ext)
	if err != nil {
		return
	}
	if user.Status == StatusBlocked {
		err = ErrAccountBlocked
		return
	}

	now := s.now()
	session := Session{
		ID:        s.idGenerator(),
		UserID:    user.UID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		session.Token = session.ID
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return
		}
		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = SignInResult{User: user, Session: session}
	return
}

// provisionUser looks up the verified identity and creates the local account
// on first sign-in. Email and display name shown by the provider are copied
// onto the local record whenever they drift.
func (s *AuthService) provisionUser(ctx context.Context, ext identity.Identity) (User, error) {
	existing, err := s.users.GetUser(ctx, ext.Subject)
	if err == nil {
		changed := false
		if email := strings.TrimSpace(strings.ToLower(ext.Email)); email != "" && email != existing.Email {
			existing.Email = email
			changed = true
		}
		if name := strings.TrimSpace(ext.DisplayName); name != "" && name != existing.DisplayName {
			existing.DisplayName = name
			changed = true
		}
		if !changed {
			return existing, nil
		}
		existing.UpdatedAt = s.now()
		updated, uErr := s.users.UpdateUser(ctx, existing)
		if uErr != nil {
			return User{}, mapUserRepoError(uErr)
		}
		return updated, nil
	}
	if !errors.Is(err, ErrNotFound) && !isRepoNotFound(err) {
		return User{}, mapUserRepoError(err)
	}

	now := s.now()
	user := User{
		UID:         ext.Subject,
		Email:       strings.TrimSpace(strings.ToLower(ext.Email)),
		DisplayName: strings.TrimSpace(ext.DisplayName),
		Role:        RoleUser,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, ok := s.adminEmails[user.Email]; ok {
		user.Role = RoleAdmin
	}

	created, cErr := s.users.CreateUser(ctx, user)
	if cErr != nil {
		return User{}, mapUserRepoError(cErr)
	}
	return created, nil
}

// ValidateSession verifies the token, re-checks the account's current status,
// and returns the acting principal. A session whose account has since been
// blocked is revoked on the spot together with every other session the
// account holds.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).InfoContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) || isRepoNotFound(err) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	var user User
	user, err = s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || isRepoNotFound(err) {
			err = ErrUnauthorized
		}
		return
	}

	if user.Status == StatusBlocked {
		if rErr := s.sessions.RevokeSessionsForUser(ctx, user.UID, now); rErr != nil {
			logger.WarnContext(ctx, "failed to revoke sessions for blocked account", "error", rErr)
		}
		err = ErrAccountBlocked
		return
	}

	principal = Principal{UserID: user.UID, DisplayName: user.DisplayName, IsAdmin: user.IsAdmin()}
	return
}

// SignOut revokes the session identified by the token and prunes anything
// already expired.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "SignOut", "token_provided", trimmed != "")

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) || isRepoNotFound(err) {
			logger.InfoContext(ctx, "session already gone")
			return nil
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}
