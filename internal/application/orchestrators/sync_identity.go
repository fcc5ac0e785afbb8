package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stayfit/internal/adapters/identity"
	"stayfit/internal/adapters/storage"
	domainUser "stayfit/internal/domain/user"
)

// ErrEmailUnverified is returned when an unverified sign-in claims an address that
// already belongs to an account or to the administrator.
var ErrEmailUnverified = errors.New("email address is not verified")

// SyncIdentityInput carries a freshly verified sign-in.
type SyncIdentityInput struct {
	Identity   identity.Identity
	AdminEmail string // the configured administrator address; may be empty
}

// SyncIdentityDeps holds dependencies for SyncIdentity.
type SyncIdentityDeps struct {
	UserStore  UserStore
	GenerateID func() string
	Now        func() time.Time
}

// SyncIdentityResult is the application user behind the sign-in.
type SyncIdentityResult struct {
	User    domainUser.User
	Created bool
}

// ExecuteSyncIdentity mirrors a provider identity into the user store.
// A user pre-registered by email (e.g. a coach added by an admin) is linked on first sign-in.
// Linking, admin promotion and email refresh all require a verified email.
// PRE: in.Identity has been verified by the identity provider
// POST: exactly one user carries in.Identity.UID; new users are clients unless their
// verified email is the admin email, in which case they are (and stay) admins
func ExecuteSyncIdentity(ctx context.Context, input SyncIdentityInput, deps SyncIdentityDeps) (SyncIdentityResult, error) {
	id := input.Identity
	if strings.TrimSpace(id.UID) == "" {
		return SyncIdentityResult{}, domainUser.ErrEmptyExternalID
	}
	email := domainUser.NormalizeEmail(id.Email)
	adminEmail := input.AdminEmail != "" && email == domainUser.NormalizeEmail(input.AdminEmail)
	isAdmin := adminEmail && id.EmailVerified
	now := deps.Now()

	linked := false
	u, err := deps.UserStore.GetByExternalID(ctx, id.UID)
	if errors.Is(err, storage.ErrNotFound) && email != "" {
		owner, lookupErr := deps.UserStore.GetByEmail(ctx, email)
		switch {
		case lookupErr == nil && id.EmailVerified:
			slog.Info("identity_event", "event", "user_linked", "user_id", owner.ID, "external_id", id.UID)
			u, err = owner, nil
			u.ExternalID = id.UID
			linked = true
		case lookupErr == nil:
			slog.Warn("identity_event", "event", "unverified_email_claim", "user_id", owner.ID, "external_id", id.UID)
			return SyncIdentityResult{}, ErrEmailUnverified
		case !errors.Is(lookupErr, storage.ErrNotFound):
			return SyncIdentityResult{}, fmt.Errorf("look up user by email: %w", lookupErr)
		case adminEmail && !id.EmailVerified:
			slog.Warn("identity_event", "event", "unverified_email_claim", "external_id", id.UID)
			return SyncIdentityResult{}, ErrEmailUnverified
		}
	}

	if errors.Is(err, storage.ErrNotFound) {
		first, last := splitName(id.Name)
		u = domainUser.User{
			ID:         deps.GenerateID(),
			ExternalID: id.UID,
			Email:      email,
			FirstName:  first,
			LastName:   last,
			Role:       domainUser.RoleClient,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if isAdmin {
			u.Role = domainUser.RoleAdmin
		}
		if err := u.Validate(); err != nil {
			return SyncIdentityResult{}, err
		}
		if err := deps.UserStore.Create(ctx, u); err != nil {
			return SyncIdentityResult{}, fmt.Errorf("create user: %w", err)
		}
		slog.Info("identity_event", "event", "user_created", "user_id", u.ID, "role", u.Role)
		return SyncIdentityResult{User: u, Created: true}, nil
	}
	if err != nil {
		return SyncIdentityResult{}, fmt.Errorf("look up user: %w", err)
	}

	if !id.EmailVerified {
		email = ""
	}
	if refreshUser(&u, email, id.Name, isAdmin) || linked {
		u.UpdatedAt = now
		if err := u.Validate(); err != nil {
			return SyncIdentityResult{}, err
		}
		if err := deps.UserStore.Update(ctx, u); err != nil {
			return SyncIdentityResult{}, fmt.Errorf("refresh user: %w", err)
		}
		slog.Info("identity_event", "event", "user_refreshed", "user_id", u.ID, "role", u.Role)
	}
	return SyncIdentityResult{User: u}, nil
}

// refreshUser copies provider-owned fields onto u and reports whether anything changed.
// A name already set in the app is kept: users may edit it.
func refreshUser(u *domainUser.User, email, name string, isAdmin bool) bool {
	changed := false
	if email != "" && u.Email != email {
		u.Email = email
		changed = true
	}
	if u.FirstName == "" && u.LastName == "" && strings.TrimSpace(name) != "" {
		u.FirstName, u.LastName = splitName(name)
		changed = true
	}
	if isAdmin && u.Role != domainUser.RoleAdmin {
		u.Role = domainUser.RoleAdmin
		changed = true
	}
	return changed
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
