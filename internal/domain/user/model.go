package user

import (
	"errors"
	"strings"
	"time"

	"stayfit/internal/domain/i18n"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
	MaxBioLength   = 4000
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleCoach  = "coach"
	RoleClient = "client"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleCoach, RoleClient}

// Domain errors
var (
	ErrEmptyExternalID = errors.New("external identity id cannot be empty")
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrInvalidEmail    = errors.New("email must contain '@'")
	ErrEmailTooLong    = errors.New("email cannot exceed 254 characters")
	ErrNameTooLong     = errors.New("name cannot exceed 100 characters")
	ErrBioTooLong      = errors.New("bio cannot exceed 4000 characters")
	ErrInvalidRole     = errors.New("role must be one of: admin, coach, client")
	ErrNegativeYears   = errors.New("experience years cannot be negative")
)

// User is the application-level mirror of an identity-provider account.
// Coaches additionally carry the public profile shown in the coach directory.
type User struct {
	ID              string               `json:"id" firestore:"-"`
	ExternalID      string               `json:"externalId" firestore:"externalId"`
	Email           string               `json:"email" firestore:"email"`
	FirstName       string               `json:"firstName" firestore:"firstName"`
	LastName        string               `json:"lastName" firestore:"lastName"`
	Role            string               `json:"role" firestore:"role"`
	Phone           string               `json:"phone,omitempty" firestore:"phone"`
	ProfilePic      string               `json:"profilePic,omitempty" firestore:"profilePic"`
	Bio             i18n.LocalizedText   `json:"bio" firestore:"bio"`
	Specialties     []i18n.LocalizedText `json:"specialties" firestore:"specialties"`
	ExperienceYears int                  `json:"experienceYears" firestore:"experienceYears"`
	Languages       []string             `json:"languages" firestore:"languages"`
	CreatedAt       time.Time            `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" firestore:"updatedAt"`
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.ExternalID) == "" {
		return ErrEmptyExternalID
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if len(u.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if len(u.FirstName) > MaxNameLength || len(u.LastName) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(u.Bio.En) > MaxBioLength || len(u.Bio.Ar) > MaxBioLength {
		return ErrBioTooLong
	}
	if u.ExperienceYears < 0 {
		return ErrNegativeYears
	}
	if !IsValidRole(u.Role) {
		return ErrInvalidRole
	}
	return nil
}

// FullName joins first and last name, falling back to the email address.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// IsCoach reports whether the user appears in the coach directory.
func (u User) IsCoach() bool {
	return u.Role == RoleCoach
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeEmail lower-cases and trims an email address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
