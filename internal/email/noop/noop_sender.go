package noop

import (
	"context"
	"log"

	"sva/internal/email"
	"sva/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs triage summaries to stdout.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendTriageSummary(_ context.Context, toEmail string, summary port.TriageSummary) error {
	log.Printf("[NOOP EMAIL] Triage summary for %s: %s\n%s", toEmail, email.Subject(summary), email.TextBody(summary, s.frontendURL))
	return nil
}
