package session

import (
	"errors"
	"strings"
	"time"
)

// Session status constants
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatuses contains all valid session statuses.
var ValidStatuses = []string{StatusScheduled, StatusCompleted, StatusCancelled}

// DateLayout is the wire format of SessionDate.
const DateLayout = "2006-01-02"

// Max length constants
const (
	MaxTimeLength     = 16
	MaxLocationLength = 200
	MaxNotesLength    = 2000
	MaxDuration       = 8 * 60
)

// Domain errors
var (
	ErrEmptyClientID   = errors.New("client id cannot be empty")
	ErrEmptyCoachID    = errors.New("coach id cannot be empty")
	ErrEmptyPackID     = errors.New("client pack id cannot be empty")
	ErrEmptyDate       = errors.New("session date is required")
	ErrInvalidDate     = errors.New("session date must be formatted YYYY-MM-DD")
	ErrEmptyTime       = errors.New("session time is required")
	ErrTimeTooLong     = errors.New("session time cannot exceed 16 characters")
	ErrInvalidDuration = errors.New("duration must be between 1 and 480 minutes")
	ErrInvalidStatus   = errors.New("status must be one of: scheduled, completed, cancelled")
	ErrLocationTooLong = errors.New("location cannot exceed 200 characters")
	ErrNotesTooLong    = errors.New("notes cannot exceed 2000 characters")
	ErrAlreadyClosed   = errors.New("session is no longer scheduled")
)

// Session is one booked appointment between a client and a coach.
// SessionDate carries only the calendar date (midnight UTC); SessionTime is the
// free-text hour label such as "8AM".
type Session struct {
	ID           string    `json:"id" firestore:"-"`
	ClientID     string    `json:"clientId" firestore:"clientId"`
	CoachID      string    `json:"coachId" firestore:"coachId"`
	PackID       string    `json:"packId" firestore:"packId"`
	ClientPackID string    `json:"clientPackId" firestore:"clientPackId"`
	SessionDate  time.Time `json:"sessionDate" firestore:"sessionDate"`
	SessionTime  string    `json:"sessionTime" firestore:"sessionTime"`
	Duration     int       `json:"duration" firestore:"duration"`
	Location     string    `json:"location" firestore:"location"`
	Status       string    `json:"status" firestore:"status"`
	Notes        string    `json:"notes,omitempty" firestore:"notes"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.ClientID) == "" {
		return ErrEmptyClientID
	}
	if strings.TrimSpace(s.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if strings.TrimSpace(s.ClientPackID) == "" {
		return ErrEmptyPackID
	}
	if s.SessionDate.IsZero() {
		return ErrEmptyDate
	}
	if strings.TrimSpace(s.SessionTime) == "" {
		return ErrEmptyTime
	}
	if len(s.SessionTime) > MaxTimeLength {
		return ErrTimeTooLong
	}
	if s.Duration <= 0 || s.Duration > MaxDuration {
		return ErrInvalidDuration
	}
	if !IsValidStatus(s.Status) {
		return ErrInvalidStatus
	}
	if len(s.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if len(s.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Day returns SessionDate truncated to its UTC calendar date.
func (s Session) Day() time.Time {
	return DateOnly(s.SessionDate)
}

// IsUpcoming reports whether the session is still scheduled on or after today's date.
func (s Session) IsUpcoming(now time.Time) bool {
	return s.Status == StatusScheduled && !s.Day().Before(DateOnly(now))
}

// IsValidStatus reports whether status is one of ValidStatuses.
func IsValidStatus(status string) bool {
	for _, v := range ValidStatuses {
		if v == status {
			return true
		}
	}
	return false
}

// DateOnly strips the clock from t, keeping its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyDate
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}
