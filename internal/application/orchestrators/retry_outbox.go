package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"stayfit/internal/adapters/email"
	outboxStore "stayfit/internal/adapters/storage/outbox"
	domain "stayfit/internal/domain/outbox"
)

// OutboxProcessor delivers queued outbox entries with retries and backoff.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's id for the action (e.g. an email message id) and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// ProcessPending processes pending outbox entries with retries.
// PRE: Context is valid
// POST: Ready entries are attempted once; entries still backing off are left alone
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}

	return nil
}

// processEntry processes a single outbox entry.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	if !entry.ReadyAt(p.now(), p.baseDelay, p.maxDelay) {
		return nil
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAttempt(p.now())
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	return p.attempt(ctx, entry, executor)
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry, executor ActionExecutor) error {
	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}

	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// A failed entry gets a fresh attempt budget.
// PRE: entryID is non-empty
// POST: Entry is processed, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}

	switch entry.Status {
	case domain.StatusDone, domain.StatusAbandoned:
		return entry, fmt.Errorf("entry %s is %s and cannot be retried: %w", entryID, entry.Status, domain.ErrMaxRetries)
	case domain.StatusFailed:
		entry.Attempts = 0
		entry.Status = domain.StatusRetrying
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		return entry, fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}

	if err := p.attempt(ctx, entry, executor); err != nil {
		return entry, err
	}
	return p.store.GetByID(ctx, entryID)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}

	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// --- Email Executor ---

// EmailExecutor sends queued emails through the configured sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching outbox.EmailPayload
// POST: email handed to the sender, returns the provider message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p domain.EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:      []string{p.To},
		Subject: p.Subject,
		HTML:    p.HTML,
		Text:    p.Text,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// --- Background Worker ---

// StartBackgroundWorker starts a background goroutine that periodically processes pending outbox entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed; the returned channel is closed once it has exited
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
	return done
}
