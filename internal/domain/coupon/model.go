package coupon

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Coupon status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Domain errors
var (
	ErrInvalidCode       = errors.New("code must be 3-32 characters of A-Z, 0-9, '-' or '_'")
	ErrInvalidPercentage = errors.New("percentage must be between 1 and 100")
	ErrEmptyExpiry       = errors.New("expiry date is required")
	ErrInvalidStatus     = errors.New("status must be active or inactive")
	ErrNotApplicable     = errors.New("coupon is inactive or expired")
)

// Coupon is a percentage discount code applied at purchase initiation.
type Coupon struct {
	ID         string    `json:"id" firestore:"-"`
	Code       string    `json:"code" firestore:"code"`
	Percentage int       `json:"percentage" firestore:"percentage"`
	ExpiryDate time.Time `json:"expiryDate" firestore:"expiryDate"`
	Status     string    `json:"status" firestore:"status"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// NormalizeCode upper-cases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks if the Coupon has valid data. Code is normalized in place.
// PRE: Coupon struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Coupon) Validate() error {
	c.Code = NormalizeCode(c.Code)
	if !codePattern.MatchString(c.Code) {
		return ErrInvalidCode
	}
	if c.Percentage < 1 || c.Percentage > 100 {
		return ErrInvalidPercentage
	}
	if c.ExpiryDate.IsZero() {
		return ErrEmptyExpiry
	}
	if c.Status != StatusActive && c.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// Applicable reports whether the coupon can be redeemed at now.
// The expiry date is honoured through the end of that UTC day.
func (c Coupon) Applicable(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	e := c.ExpiryDate.UTC()
	endOfDay := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	return !now.After(endOfDay)
}
