package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainSession "stayfit/internal/domain/session"
)

// CompleteSessionDeps holds dependencies for CompleteSession.
type CompleteSessionDeps struct {
	SessionStore    SessionStore
	ClientPackStore ClientPackStore
	Now             func() time.Time
}

// CompleteSessionResult is the completed session and the pack balance after it.
type CompleteSessionResult struct {
	Session           domainSession.Session `json:"session"`
	RemainingSessions int                   `json:"remainingSessions"`
}

// ExecuteCompleteSession marks a scheduled session completed and consumes one
// session from its pack. Only the call whose conditional status write succeeds
// decrements the pack; the two writes are not one transaction.
// PRE: caller is an admin or the assigned coach
// POST: session.Status == completed; pack remainingSessions decremented, floored at 0
func ExecuteCompleteSession(ctx context.Context, sessionID string, deps CompleteSessionDeps) (CompleteSessionResult, error) {
	s, err := deps.SessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return CompleteSessionResult{}, err
	}
	if s.Status != domainSession.StatusScheduled {
		return CompleteSessionResult{}, domainSession.ErrAlreadyClosed
	}

	now := deps.Now()
	if err := deps.SessionStore.UpdateStatus(ctx, s.ID, domainSession.StatusScheduled, domainSession.StatusCompleted, now); err != nil {
		return CompleteSessionResult{}, fmt.Errorf("complete session: %w", err)
	}
	s.Status = domainSession.StatusCompleted
	s.UpdatedAt = now

	remaining, err := deps.ClientPackStore.DecrementRemaining(ctx, s.ClientPackID, now)
	if err != nil {
		slog.Error("session_event", "event", "decrement_failed", "session_id", s.ID, "client_pack_id", s.ClientPackID, "error", err)
		return CompleteSessionResult{Session: s}, fmt.Errorf("consume pack session: %w", err)
	}

	slog.Info("session_event", "event", "completed", "session_id", s.ID, "client_pack_id", s.ClientPackID, "remaining", remaining)
	return CompleteSessionResult{Session: s, RemainingSessions: remaining}, nil
}
