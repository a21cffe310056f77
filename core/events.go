package core

import "context"

// Event subjects
const (
	EventMessageSent         = "chikoro.message.sent"
	EventApplicationReceived = "chikoro.application.submitted"
	EventApplicationReviewed = "chikoro.application.reviewed"
	EventResultsApproved     = "chikoro.exam.results.approved"
	EventPaymentRecorded     = "chikoro.finance.payment.recorded"
)

// Publisher broadcasts domain events to whoever listens (notification workers, integrations).
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}
