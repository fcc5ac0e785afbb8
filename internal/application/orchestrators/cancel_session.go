package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stayfit/internal/domain/i18n"
	domainSession "stayfit/internal/domain/session"
)

// CancelSessionInput carries input for cancelling a session.
type CancelSessionInput struct {
	SessionID string
	Locale    i18n.Locale // for the notification email
}

// CancelSessionDeps holds dependencies for CancelSession.
type CancelSessionDeps struct {
	SessionStore SessionStore
	UserStore    UserReader
	OutboxStore  OutboxWriter
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCancelSession cancels a scheduled session and notifies the client.
// Pack sessions are not credited back.
// PRE: caller is an admin, the assigned coach or the owning client
// POST: session.Status == cancelled; cancelling twice is a no-op
func ExecuteCancelSession(ctx context.Context, input CancelSessionInput, deps CancelSessionDeps) (domainSession.Session, error) {
	s, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return domainSession.Session{}, err
	}
	switch s.Status {
	case domainSession.StatusCancelled:
		return s, nil
	case domainSession.StatusCompleted:
		return domainSession.Session{}, domainSession.ErrAlreadyClosed
	}

	now := deps.Now()
	err = deps.SessionStore.UpdateStatus(ctx, s.ID, domainSession.StatusScheduled, domainSession.StatusCancelled, now)
	if errors.Is(err, domainSession.ErrAlreadyClosed) {
		// Lost a race: a concurrent cancel is a no-op, a concurrent completion wins.
		latest, getErr := deps.SessionStore.GetByID(ctx, s.ID)
		if getErr == nil && latest.Status == domainSession.StatusCancelled {
			return latest, nil
		}
		return domainSession.Session{}, domainSession.ErrAlreadyClosed
	}
	if err != nil {
		return domainSession.Session{}, fmt.Errorf("cancel session: %w", err)
	}
	s.Status = domainSession.StatusCancelled
	s.UpdatedAt = now
	slog.Info("session_event", "event", "cancelled", "session_id", s.ID, "client_id", s.ClientID)

	client, err := deps.UserStore.GetByID(ctx, s.ClientID)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "session_id", s.ID, "error", err)
		return s, nil
	}
	payload, err := composeEmail(input.Locale, client.Email, "email.cancelled.subject", "email.cancelled.body",
		client.FullName(), s.SessionDate.Format(domainSession.DateLayout), s.SessionTime)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "session_id", s.ID, "error", err)
		return s, nil
	}
	enqueueEmail(ctx, deps.OutboxStore, deps.GenerateID(), payload, now)
	return s, nil
}
