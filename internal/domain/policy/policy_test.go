package policy

import (
	"testing"

	"stayfit/internal/domain/user"
)

var (
	anon   = Caller{}
	admin  = Caller{UserID: "admin-1", Role: user.RoleAdmin}
	coach  = Caller{UserID: "coach-1", Role: user.RoleCoach}
	coach2 = Caller{UserID: "coach-2", Role: user.RoleCoach}
	client = Caller{UserID: "client-1", Role: user.RoleClient}
	other  = Caller{UserID: "client-2", Role: user.RoleClient}
)

// TestEvaluate walks the access table.
func TestEvaluate(t *testing.T) {
	ownSession := Resource{Kind: KindSession, OwnerID: "client-1", CoachID: "coach-1"}
	ownPack := Resource{Kind: KindClientPack, OwnerID: "client-1"}

	tests := []struct {
		name     string
		caller   Caller
		resource Resource
		action   Action
		want     error
	}{
		{"anyone lists packs", anon, Resource{Kind: KindPack}, ActionList, nil},
		{"anyone reads a service", anon, Resource{Kind: KindService}, ActionRead, nil},
		{"client cannot create pack", client, Resource{Kind: KindPack}, ActionCreate, ErrForbidden},
		{"anon cannot create pack", anon, Resource{Kind: KindPack}, ActionCreate, ErrUnauthenticated},
		{"admin creates pack", admin, Resource{Kind: KindPack}, ActionCreate, nil},

		{"anyone lists reviews", anon, Resource{Kind: KindReview}, ActionList, nil},
		{"client creates review", client, Resource{Kind: KindReview}, ActionCreate, nil},
		{"anon cannot create review", anon, Resource{Kind: KindReview}, ActionCreate, ErrUnauthenticated},
		{"owner edits review", client, Resource{Kind: KindReview, OwnerID: "client-1"}, ActionUpdate, nil},
		{"other cannot delete review", other, Resource{Kind: KindReview, OwnerID: "client-1"}, ActionDelete, ErrForbidden},

		{"public coach directory", anon, Resource{Kind: KindUser, CoachListing: true}, ActionList, nil},
		{"client cannot list users", client, Resource{Kind: KindUser}, ActionList, ErrForbidden},
		{"admin lists users", admin, Resource{Kind: KindUser}, ActionList, nil},
		{"user reads self", client, Resource{Kind: KindUser, OwnerID: "client-1"}, ActionRead, nil},
		{"user cannot update other", client, Resource{Kind: KindUser, OwnerID: "client-2"}, ActionUpdate, ErrForbidden},

		{"owner lists client packs", client, ownPack, ActionList, nil},
		{"other cannot read client pack", other, ownPack, ActionRead, ErrForbidden},
		{"client buys for self", client, ownPack, ActionCreate, nil},
		{"client cannot buy for other", other, ownPack, ActionCreate, ErrForbidden},
		{"anon cannot buy", anon, ownPack, ActionCreate, ErrUnauthenticated},
		{"owner cannot update client pack", client, ownPack, ActionUpdate, ErrForbidden},
		{"admin updates client pack", admin, ownPack, ActionUpdate, nil},

		{"owner reads session", client, ownSession, ActionRead, nil},
		{"assigned coach reads session", coach, ownSession, ActionRead, nil},
		{"other coach cannot read session", coach2, ownSession, ActionRead, ErrForbidden},
		{"owner cancels session", client, ownSession, ActionCancel, nil},
		{"other client cannot cancel", other, ownSession, ActionCancel, ErrForbidden},
		{"owner cannot update session", client, ownSession, ActionUpdate, ErrForbidden},
		{"assigned coach books", coach, ownSession, ActionCreate, nil},
		{"coach cannot delete session", coach, ownSession, ActionDelete, ErrForbidden},
		{"admin deletes session", admin, ownSession, ActionDelete, nil},
		{"client cannot list all sessions", client, Resource{Kind: KindSession}, ActionList, ErrForbidden},
		{"client id spoofed as coach id", Caller{UserID: "coach-1", Role: user.RoleClient}, Resource{Kind: KindSession, CoachID: "coach-1"}, ActionCreate, ErrForbidden},

		{"client validates coupon", client, Resource{Kind: KindCoupon}, ActionRead, nil},
		{"anon cannot validate coupon", anon, Resource{Kind: KindCoupon}, ActionRead, ErrUnauthenticated},
		{"client cannot list coupons", client, Resource{Kind: KindCoupon}, ActionList, ErrForbidden},

		{"coach reads own week", coach, Resource{Kind: KindCoachWeek, CoachID: "coach-1"}, ActionRead, nil},
		{"coach cannot read other week", coach2, Resource{Kind: KindCoachWeek, CoachID: "coach-1"}, ActionRead, ErrForbidden},
		{"admin reads any week", admin, Resource{Kind: KindCoachWeek, CoachID: "coach-1"}, ActionRead, nil},
		{"client cannot read week", client, Resource{Kind: KindCoachWeek, CoachID: "coach-1"}, ActionRead, ErrForbidden},

		{"unknown kind", admin, Resource{Kind: "invoice"}, ActionRead, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.caller, tt.resource, tt.action); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}
