package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/auth"
)

// firebaseAuth is the subset of *auth.Client used here.
type firebaseAuth interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider delegates to Firebase Authentication.
type FirebaseProvider struct {
	client firebaseAuth
}

// NewFirebaseProvider wraps an auth client obtained from firebase.App.Auth.
func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

// Verify checks a Firebase ID token.
func (p *FirebaseProvider) Verify(ctx context.Context, code string) (Identity, error) {
	tok, err := p.client.VerifyIDToken(ctx, code)
	if err != nil {
		slog.Warn("identity_event", "event", "id_token_rejected", "error", err)
		return Identity{}, fmt.Errorf("verify id token: %w", ErrInvalidCredential)
	}
	return identityFromToken(tok), nil
}

// CreateSession mints a Firebase session cookie from an ID token.
func (p *FirebaseProvider) CreateSession(ctx context.Context, code string, ttl time.Duration) (string, error) {
	cookie, err := p.client.SessionCookie(ctx, code, ttl)
	if err != nil {
		if auth.IsIDTokenInvalid(err) || auth.IsIDTokenExpired(err) {
			return "", fmt.Errorf("create session cookie: %w", ErrInvalidCredential)
		}
		return "", fmt.Errorf("create session cookie: %w", err)
	}
	return cookie, nil
}

// VerifySession checks a Firebase session cookie and its revocation status.
func (p *FirebaseProvider) VerifySession(ctx context.Context, cookie string) (Identity, error) {
	tok, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return Identity{}, fmt.Errorf("verify session cookie: %w", ErrInvalidCredential)
	}
	return identityFromToken(tok), nil
}

// Revoke revokes the user's refresh tokens, which also invalidates session cookies.
func (p *FirebaseProvider) Revoke(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

func identityFromToken(tok *auth.Token) Identity {
	id := Identity{UID: tok.UID}
	if v, ok := tok.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		id.EmailVerified = v
	}
	if v, ok := tok.Claims["name"].(string); ok {
		id.Name = v
	}
	return id
}
