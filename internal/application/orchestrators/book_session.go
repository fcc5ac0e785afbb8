package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainClientPack "stayfit/internal/domain/clientpack"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

// Booking errors.
var (
	ErrNotACoach     = errors.New("assigned user is not a coach")
	ErrPackNotOwned  = errors.New("client pack does not belong to this client")
	ErrPackNotUsable = errors.New("client pack is not paid, has expired or has no sessions left")
)

// ClientPackReader looks up purchases.
type ClientPackReader interface {
	GetByID(ctx context.Context, id string) (domainClientPack.ClientPack, error)
}

// BookSessionInput carries input for booking a session against a paid pack.
type BookSessionInput struct {
	ClientID     string
	CoachID      string
	ClientPackID string
	SessionDate  string // YYYY-MM-DD
	SessionTime  string // e.g. "6PM"
	Duration     int    // minutes
	Location     string
	Notes        string
}

// BookSessionDeps holds dependencies for BookSession.
type BookSessionDeps struct {
	SessionStore    SessionStore
	ClientPackStore ClientPackReader
	UserStore       UserReader
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteBookSession schedules a session for a client with a coach.
// The pack's session count is consumed on completion, not here.
// PRE: caller is an admin or the assigned coach
// POST: a scheduled session exists referencing a completed, unexpired pack with sessions left
func ExecuteBookSession(ctx context.Context, input BookSessionInput, deps BookSessionDeps) (domainSession.Session, error) {
	date, err := domainSession.ParseDate(input.SessionDate)
	if err != nil {
		return domainSession.Session{}, err
	}

	coach, err := deps.UserStore.GetByID(ctx, input.CoachID)
	if err != nil {
		return domainSession.Session{}, fmt.Errorf("load coach: %w", err)
	}
	if coach.Role != domainUser.RoleCoach {
		return domainSession.Session{}, ErrNotACoach
	}

	cp, err := deps.ClientPackStore.GetByID(ctx, input.ClientPackID)
	if err != nil {
		return domainSession.Session{}, fmt.Errorf("load client pack: %w", err)
	}
	if cp.ClientID != input.ClientID {
		return domainSession.Session{}, ErrPackNotOwned
	}
	now := deps.Now()
	if !cp.IsUsable(now) {
		return domainSession.Session{}, ErrPackNotUsable
	}

	s := domainSession.Session{
		ID:           deps.GenerateID(),
		ClientID:     input.ClientID,
		CoachID:      input.CoachID,
		PackID:       cp.PackID,
		ClientPackID: cp.ID,
		SessionDate:  date,
		SessionTime:  input.SessionTime,
		Duration:     input.Duration,
		Location:     input.Location,
		Status:       domainSession.StatusScheduled,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Validate(); err != nil {
		return domainSession.Session{}, err
	}
	if err := deps.SessionStore.Create(ctx, s); err != nil {
		return domainSession.Session{}, fmt.Errorf("create session: %w", err)
	}

	slog.Info("session_event", "event", "booked", "session_id", s.ID, "client_id", s.ClientID,
		"coach_id", s.CoachID, "client_pack_id", s.ClientPackID, "date", input.SessionDate, "time", s.SessionTime)
	return s, nil
}
