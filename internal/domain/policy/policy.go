// Package policy decides who may perform which action on which resource.
// Handlers call Evaluate once, before touching any store.
package policy

import (
	"errors"

	"stayfit/internal/domain/user"
)

// Resource kinds
const (
	KindUser       = "user"
	KindPack       = "pack"
	KindClientPack = "client-pack"
	KindSession    = "session"
	KindReview     = "review"
	KindCoupon     = "coupon"
	KindService    = "service"
	KindCoachWeek  = "coach-week"
)

// Action is the verb being attempted.
type Action string

// Actions
const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionCancel Action = "cancel"
)

// Errors returned by Evaluate.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Caller is the resolved application user making the request.
// The zero value is an anonymous visitor.
type Caller struct {
	UserID string
	Role   string
}

// Authenticated reports whether the caller resolved to an application user.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == user.RoleAdmin
}

// Resource describes the target of an action.
// OwnerID is the client (or user) the record belongs to; CoachID is the assigned coach.
// Either may be empty when the request is not scoped.
type Resource struct {
	Kind         string
	OwnerID      string
	CoachID      string
	CoachListing bool // user listing filtered to role=coach
}

// Evaluate returns nil when caller may perform action on resource.
// PRE: resource.Kind is one of the Kind constants
// POST: returns nil, ErrUnauthenticated or ErrForbidden
func Evaluate(caller Caller, resource Resource, action Action) error {
	switch resource.Kind {
	case KindPack, KindService:
		if isRead(action) {
			return nil
		}
		return adminOnly(caller)

	case KindReview:
		if isRead(action) {
			return nil
		}
		if action == ActionCreate {
			return authenticated(caller)
		}
		return adminOr(caller, caller.UserID == resource.OwnerID)

	case KindUser:
		if action == ActionList {
			if resource.CoachListing {
				return nil
			}
			return adminOnly(caller)
		}
		if action == ActionCreate {
			return adminOnly(caller)
		}
		return adminOr(caller, caller.UserID == resource.OwnerID)

	case KindClientPack:
		switch action {
		case ActionList, ActionRead, ActionCreate:
			return adminOr(caller, caller.UserID == resource.OwnerID)
		default:
			return adminOnly(caller)
		}

	case KindSession:
		isCoach := caller.Role == user.RoleCoach && caller.UserID == resource.CoachID
		isOwner := caller.UserID == resource.OwnerID
		switch action {
		case ActionList, ActionRead, ActionCancel:
			return adminOr(caller, isCoach || isOwner)
		case ActionCreate, ActionUpdate:
			return adminOr(caller, isCoach)
		default:
			return adminOnly(caller)
		}

	case KindCoupon:
		if action == ActionRead {
			return authenticated(caller)
		}
		return adminOnly(caller)

	case KindCoachWeek:
		if action != ActionRead {
			return ErrForbidden
		}
		return adminOr(caller, caller.Role == user.RoleCoach && caller.UserID == resource.CoachID)
	}
	return ErrForbidden
}

func isRead(action Action) bool {
	return action == ActionList || action == ActionRead
}

func authenticated(caller Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func adminOnly(caller Caller) error {
	return adminOr(caller, false)
}

// adminOr allows admins, plus anyone for whom granted holds.
func adminOr(caller Caller, granted bool) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if caller.IsAdmin() || granted {
		return nil
	}
	return ErrForbidden
}
