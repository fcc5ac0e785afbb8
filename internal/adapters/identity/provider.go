// Package identity verifies sign-in codes from the hosted identity provider and
// manages the long-lived session cookie derived from them.
package identity

import (
	"context"
	"errors"
	"time"
)

// SessionTTL is how long a session cookie stays valid.
const SessionTTL = 5 * 24 * time.Hour

// ErrInvalidCredential is returned for malformed, expired or revoked codes and cookies.
var ErrInvalidCredential = errors.New("invalid or expired credential")

// Identity is what the provider asserts about a signed-in person.
type Identity struct {
	UID   string
	Email string
	// EmailVerified is true only when the provider has confirmed the person owns Email.
	EmailVerified bool
	Name          string
}

// Provider is the hosted identity service seen by the HTTP layer.
type Provider interface {
	// Verify checks a sign-in code (an ID token) handed over by the browser.
	Verify(ctx context.Context, code string) (Identity, error)
	// CreateSession exchanges a verified code for a session cookie value.
	CreateSession(ctx context.Context, code string, ttl time.Duration) (string, error)
	// VerifySession checks a session cookie value, including revocation.
	VerifySession(ctx context.Context, cookie string) (Identity, error)
	// Revoke invalidates every session previously issued to uid.
	Revoke(ctx context.Context, uid string) error
}

// CodeIssuer is implemented by providers that can mint sign-in codes themselves.
// Only the local development provider does; the login page offers a plain email
// form when it is available.
type CodeIssuer interface {
	IssueCode(email, name string) (string, error)
}
