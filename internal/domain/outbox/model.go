package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status constants for outbox entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Action type constants. Only transactional email goes through the outbox.
const (
	ActionTypeEmail = "email"
)

// DefaultMaxAttempts applies when an entry is saved without MaxAttempts.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrEmptyRecipient  = errors.New("email recipient is required")
	ErrEmptySubject    = errors.New("email subject is required")
	ErrMaxRetries      = errors.New("max retry attempts reached")
)

// Entry is one queued external action with its retry bookkeeping.
type Entry struct {
	ID              string    `json:"id" firestore:"-"`
	ActionType      string    `json:"actionType" firestore:"actionType"`
	Payload         string    `json:"payload" firestore:"payload"` // JSON payload for replay
	Status          string    `json:"status" firestore:"status"`
	Attempts        int       `json:"attempts" firestore:"attempts"`
	MaxAttempts     int       `json:"maxAttempts" firestore:"maxAttempts"`
	LastAttemptedAt time.Time `json:"lastAttemptedAt" firestore:"lastAttemptedAt"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	ExternalID      string    `json:"externalId,omitempty" firestore:"externalId"` // provider message id
	ErrorMessage    string    `json:"errorMessage,omitempty" firestore:"errorMessage"`
}

// EmailPayload is the replayable body of an email entry.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Validate checks the payload has somewhere to go and something to say.
func (p EmailPayload) Validate() error {
	if strings.TrimSpace(p.To) == "" {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(p.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}

// NewEmailEntry builds a pending email entry.
// PRE: payload is valid
// POST: Status=pending, Payload holds the JSON encoding of payload
func NewEmailEntry(id string, payload EmailPayload, now time.Time) (Entry, error) {
	if err := payload.Validate(); err != nil {
		return Entry{}, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal email payload: %w", err)
	}
	return Entry{
		ID:          id,
		ActionType:  ActionTypeEmail,
		Payload:     string(raw),
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now.UTC(),
	}, nil
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise; MaxAttempts defaulted when unset
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry returns true if the entry can be retried.
// PRE: Status and Attempts fields are set
// POST: Returns true for pending/retrying/failed with attempts < max
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying || e.Status == StatusFailed) &&
		e.Attempts < e.MaxAttempts
}

// IsTerminal reports whether the entry will never be picked up again.
func (e *Entry) IsTerminal() bool {
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return true
	}
	return e.Status == StatusFailed && e.Attempts >= e.MaxAttempts
}

// MarkAttempt records a retry attempt at now.
// POST: Attempts incremented, LastAttemptedAt updated, status set to retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now.UTC()
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry done with the provider's id for the action.
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records err. The entry fails for good once attempts are exhausted.
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// MarkAbandoned marks the entry as abandoned by an admin.
func (e *Entry) MarkAbandoned() {
	e.Status = StatusAbandoned
}

// NextRetryDelay is 2^attempts * baseDelay, capped at maxDelay.
func (e *Entry) NextRetryDelay(baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	if e.Attempts >= 30 {
		return maxDelay
	}
	delay := baseDelay * (1 << e.Attempts)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// ReadyAt reports whether the backoff since the last attempt has elapsed at now.
func (e *Entry) ReadyAt(now time.Time, baseDelay, maxDelay time.Duration) bool {
	if e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(baseDelay, maxDelay)))
}
