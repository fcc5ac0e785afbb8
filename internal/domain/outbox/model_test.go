package outbox

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewEmailEntry(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e, err := NewEmailEntry("e1", EmailPayload{To: "a@example.com", Subject: "Receipt", HTML: "<p>hi</p>"}, now)
	if err != nil {
		t.Fatalf("NewEmailEntry: %v", err)
	}
	if e.Status != StatusPending || e.ActionType != ActionTypeEmail || e.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("unexpected entry: %+v", e)
	}
	var p EmailPayload
	if err := json.Unmarshal([]byte(e.Payload), &p); err != nil || p.To != "a@example.com" {
		t.Errorf("payload round trip: %v %+v", err, p)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if _, err := NewEmailEntry("e2", EmailPayload{Subject: "x"}, now); err != ErrEmptyRecipient {
		t.Errorf("missing recipient err = %v", err)
	}
}

// TestEntry_Lifecycle walks an entry through failures to terminal failure.
func TestEntry_Lifecycle(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e := Entry{ActionType: ActionTypeEmail, Payload: "{}", Status: StatusPending, MaxAttempts: 2, CreatedAt: now}

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("timeout"))
	if e.Status != StatusRetrying || !e.CanRetry() || e.IsTerminal() {
		t.Fatalf("after first failure: %+v", e)
	}

	e.MarkAttempt(now.Add(time.Minute))
	e.MarkFailed(errors.New("timeout"))
	if e.Status != StatusFailed || e.CanRetry() || !e.IsTerminal() {
		t.Fatalf("after last failure: %+v", e)
	}
	if e.ErrorMessage != "timeout" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}
}

func TestEntry_MarkSuccess(t *testing.T) {
	e := Entry{Status: StatusRetrying, ErrorMessage: "boom"}
	e.MarkSuccess("msg-1")
	if e.Status != StatusDone || e.ExternalID != "msg-1" || e.ErrorMessage != "" || !e.IsTerminal() {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestEntry_Backoff(t *testing.T) {
	base, max := 30*time.Second, time.Hour
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{3, 4 * time.Minute},
		{10, time.Hour},
		{64, time.Hour},
	}
	for _, tt := range tests {
		e := Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(base, max); got != tt.want {
			t.Errorf("attempts=%d: delay = %v, want %v", tt.attempts, got, tt.want)
		}
	}

	last := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e := Entry{Attempts: 1, LastAttemptedAt: last}
	if e.ReadyAt(last.Add(59*time.Second), base, max) {
		t.Error("should not be ready before backoff elapses")
	}
	if !e.ReadyAt(last.Add(time.Minute), base, max) {
		t.Error("should be ready once backoff elapses")
	}
}
