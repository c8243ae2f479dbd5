package authz

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventEnrollmentStarted     EventType = "ENROLLMENT_STARTED"
	EventTrainingCompleted     EventType = "TRAINING_COMPLETED"
	EventTrainingFailed        EventType = "TRAINING_FAILED"
	EventAuthorizationDecision EventType = "AUTHORIZATION_DECISION"
)

// Event is an append-only audit record of a security-relevant action.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	EventType    EventType `json:"event_type"`
	Claimant     string    `json:"claimant,omitempty"`
	RecognizedAs string    `json:"recognized_as,omitempty"`
	Confidence   float64   `json:"confidence,omitempty"`
	Decision     string    `json:"decision,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("claimant", event.Claimant),
		slog.String("recognized_as", event.RecognizedAs),
		slog.Float64("confidence", event.Confidence),
		slog.String("decision", event.Decision),
		slog.String("reason", event.Reason),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
