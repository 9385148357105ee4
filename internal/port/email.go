package port

import (
	"context"

	"github.com/google/uuid"
)

// TriageSummary describes the outcome of confirming one extraction.
type TriageSummary struct {
	ExtractionID    uuid.UUID
	FileName        string
	QuotationNumber string
	HospitalUnit    string
	Committed       int
	Failed          int
	Lines           []string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendTriageSummary(ctx context.Context, toEmail string, summary TriageSummary) error
}
