package user_test

import (
	"strings"
	"testing"

	"stayfit/internal/domain/user"
)

// TestUser_Validate tests validation of User.
func TestUser_Validate(t *testing.T) {
	valid := func() user.User {
		return user.User{ID: "u1", ExternalID: "ext-1", Email: "sara@example.com", FirstName: "Sara", Role: user.RoleClient}
	}
	tests := []struct {
		name    string
		mutate  func(u *user.User)
		wantErr error
	}{
		{"valid client", func(u *user.User) {}, nil},
		{"valid coach", func(u *user.User) { u.Role = user.RoleCoach; u.ExperienceYears = 6 }, nil},
		{"missing external id", func(u *user.User) { u.ExternalID = " " }, user.ErrEmptyExternalID},
		{"missing email", func(u *user.User) { u.Email = "" }, user.ErrEmptyEmail},
		{"email without at", func(u *user.User) { u.Email = "sara.example.com" }, user.ErrInvalidEmail},
		{"email too long", func(u *user.User) { u.Email = strings.Repeat("a", 250) + "@x.com" }, user.ErrEmailTooLong},
		{"unknown role", func(u *user.User) { u.Role = "member" }, user.ErrInvalidRole},
		{"negative experience", func(u *user.User) { u.ExperienceYears = -1 }, user.ErrNegativeYears},
		{"name too long", func(u *user.User) { u.LastName = strings.Repeat("x", 101) }, user.ErrNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(&u)
			if err := u.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_FullName(t *testing.T) {
	u := user.User{FirstName: "Omar", LastName: "Haddad", Email: "omar@example.com"}
	if got := u.FullName(); got != "Omar Haddad" {
		t.Errorf("FullName() = %q", got)
	}
	u = user.User{Email: "omar@example.com"}
	if got := u.FullName(); got != "omar@example.com" {
		t.Errorf("FullName() without names = %q, want email", got)
	}
}
