package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// idTokenClaims carries the profile fields the provider embeds in ID tokens.
type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HMAC-signed ID tokens and talks to the provider's
// account management endpoint.
type JWTProvider struct {
	secret   []byte
	issuer   string
	adminURL string
	client   *http.Client
}

// NewJWTProvider constructs a provider client. adminURL may be empty, in
// which case SetDisabled is a no-op.
func NewJWTProvider(secret, issuer, adminURL string) *JWTProvider {
	return &JWTProvider{
		secret:   []byte(secret),
		issuer:   issuer,
		adminURL: strings.TrimRight(adminURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyIDToken parses and validates the token signature, expiry and issuer.
func (p *JWTProvider) VerifyIDToken(_ context.Context, idToken string) (Identity, error) {
	if strings.TrimSpace(idToken) == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Subject:     claims.Subject,
		Email:       strings.ToLower(strings.TrimSpace(claims.Email)),
		DisplayName: strings.TrimSpace(claims.Name),
	}, nil
}

// SetDisabled posts the desired account state to the provider admin API.
func (p *JWTProvider) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	if p.adminURL == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]any{"uid": uid, "disabled": disabled})
	if err != nil {
		return fmt.Errorf("failed to encode account update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.adminURL+"/accounts/"+uid, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build account update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("identity provider rejected account update: status %d", resp.StatusCode)
	}
	return nil
}
