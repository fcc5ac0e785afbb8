package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stayfit/internal/adapters/markdown"
	"stayfit/internal/domain/i18n"
	domainOutbox "stayfit/internal/domain/outbox"
)

// composeEmail renders a catalog subject and markdown body into an email payload.
// PRE: bodyKey names a format string taking args
func composeEmail(locale i18n.Locale, to, subjectKey, bodyKey string, args ...any) (domainOutbox.EmailPayload, error) {
	text := fmt.Sprintf(i18n.T(locale, bodyKey), args...)
	html, err := markdown.ToHTML(text)
	if err != nil {
		return domainOutbox.EmailPayload{}, fmt.Errorf("render %s: %w", bodyKey, err)
	}
	if locale.IsRTL() {
		html = `<div dir="rtl">` + html + `</div>`
	}
	return domainOutbox.EmailPayload{
		To:      to,
		Subject: i18n.T(locale, subjectKey),
		HTML:    html,
		Text:    text,
	}, nil
}

// enqueueEmail stores an email for the outbox worker to deliver.
// Failures are logged and swallowed: the triggering state change has already happened.
// POST: returns the entry id, or "" when nothing was queued
func enqueueEmail(ctx context.Context, store OutboxWriter, id string, payload domainOutbox.EmailPayload, now time.Time) string {
	entry, err := domainOutbox.NewEmailEntry(id, payload, now)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "subject", payload.Subject, "error", err)
		return ""
	}
	if err := store.Save(ctx, entry); err != nil {
		slog.Error("outbox_enqueue_failed", "entry_id", id, "subject", payload.Subject, "error", err)
		return ""
	}
	slog.Info("outbox_enqueued", "entry_id", id, "action_type", entry.ActionType, "subject", payload.Subject)
	return id
}
