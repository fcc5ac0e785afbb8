package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	localIssuer     = "stayfit-local"
	audienceCode    = "code"
	audienceSession = "session"
	codeTTL         = 5 * time.Minute
)

// localClaims is the token body for both sign-in codes and session cookies.
type localClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// LocalProvider signs its own HS256 tokens. It stands in for the hosted provider
// in development and tests; anyone who can reach the login form can sign in.
type LocalProvider struct {
	key []byte
	now func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time // uid -> revocation instant
}

// NewLocalProvider creates a provider signing with key.
// PRE: len(key) >= 32
func NewLocalProvider(key []byte) *LocalProvider {
	return &LocalProvider{key: key, now: time.Now, revoked: make(map[string]time.Time)}
}

// LocalUID derives the stable uid the local provider assigns to an email.
func LocalUID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email)))).String()
}

// IssueCode mints a short-lived sign-in code for email.
func (p *LocalProvider) IssueCode(email, name string) (string, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("issue code: %w", ErrInvalidCredential)
	}
	return p.sign(LocalUID(email), email, name, audienceCode, codeTTL)
}

// Verify checks a sign-in code.
func (p *LocalProvider) Verify(_ context.Context, code string) (Identity, error) {
	c, err := p.parse(code, audienceCode)
	if err != nil {
		return Identity{}, err
	}
	return localIdentity(c), nil
}

// CreateSession exchanges a valid code for a session token.
func (p *LocalProvider) CreateSession(_ context.Context, code string, ttl time.Duration) (string, error) {
	c, err := p.parse(code, audienceCode)
	if err != nil {
		return "", err
	}
	return p.sign(c.Subject, c.Email, c.Name, audienceSession, ttl)
}

// VerifySession checks a session token and rejects ones issued before a revocation.
func (p *LocalProvider) VerifySession(_ context.Context, cookie string) (Identity, error) {
	c, err := p.parse(cookie, audienceSession)
	if err != nil {
		return Identity{}, err
	}
	p.mu.RLock()
	revokedAt, ok := p.revoked[c.Subject]
	p.mu.RUnlock()
	if ok && c.IssuedAt != nil && !c.IssuedAt.Time.After(revokedAt) {
		return Identity{}, fmt.Errorf("session revoked: %w", ErrInvalidCredential)
	}
	return localIdentity(c), nil
}

// Revoke invalidates every session issued to uid up to now.
func (p *LocalProvider) Revoke(_ context.Context, uid string) error {
	p.mu.Lock()
	p.revoked[uid] = p.now().Truncate(time.Second)
	p.mu.Unlock()
	return nil
}

// localIdentity treats the email as verified: the local provider exists for development
// and tests, where whoever types an address owns it.
func localIdentity(c localClaims) Identity {
	return Identity{UID: c.Subject, Email: c.Email, EmailVerified: true, Name: c.Name}
}

func (p *LocalProvider) sign(uid, email, name, audience string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := localClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   uid,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *LocalProvider) parse(raw, audience string) (localClaims, error) {
	var claims localClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.key, nil
	})
	if err != nil {
		return localClaims{}, fmt.Errorf("parse token: %w", ErrInvalidCredential)
	}
	if claims.Issuer != localIssuer || !claims.VerifyAudience(audience, true) || claims.Subject == "" {
		return localClaims{}, fmt.Errorf("token claims: %w", ErrInvalidCredential)
	}
	return claims, nil
}
