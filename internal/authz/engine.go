// Package authz renders the final accept/reject decision for one
// verification round and records it for audit.
package authz

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

// DecisionStore persists rendered decisions append-only.
type DecisionStore interface {
	Create(ctx context.Context, decision *domain.AuthorizationDecision) error
}

type Engine struct {
	threshold float64
	store     DecisionStore
	audit     Logger
	logger    *slog.Logger
}

func NewEngine(threshold float64, store DecisionStore, audit Logger, logger *slog.Logger) *Engine {
	return &Engine{
		threshold: threshold,
		store:     store,
		audit:     audit,
		logger:    logger,
	}
}

// Decide aggregates the recognition results of one round into a single
// decision. Authorization requires all of: exactly one face in the
// round, best confidence at or above the threshold, a claimed-name
// match, and a resolved identity other than "Unknown". Exactly one
// audit record is emitted whatever the outcome.
func (e *Engine) Decide(ctx context.Context, results []domain.RecognitionResult, claimed string) *domain.AuthorizationDecision {
	decision := &domain.AuthorizationDecision{
		ID:        uuid.New(),
		Claimant:  claimed,
		Outcome:   domain.DecisionUnauthorized,
		CreatedAt: time.Now().UTC(),
	}

	if len(results) == 0 {
		decision.Reason = domain.ReasonNoResults
		e.record(ctx, decision)
		return decision
	}

	best := results[0]
	for _, r := range results[1:] {
		// strict greater keeps first-seen order on ties
		if r.Confidence > best.Confidence {
			best = r
		}
	}

	decision.RecognizedAs = best.Name
	decision.Confidence = best.Confidence

	// Reason priority is fixed: low confidence, then name mismatch,
	// then unknown identity, then multiple faces.
	switch {
	case best.Confidence < e.threshold:
		decision.Reason = domain.ReasonLowConfidence
	case !best.NameMatch:
		decision.Reason = domain.ReasonNameMismatch
	case best.Name == domain.UnknownName:
		decision.Reason = domain.ReasonUnknown
	case len(results) > 1:
		decision.Reason = domain.ReasonMultipleFaces
	default:
		decision.Outcome = domain.DecisionAuthorized
		decision.Reason = domain.ReasonAuthorized
	}

	e.record(ctx, decision)
	return decision
}

// record persists the decision and emits the audit event. Storage
// failure does not flip a rendered decision; it is logged and the
// slog audit trail still carries the record.
func (e *Engine) record(ctx context.Context, decision *domain.AuthorizationDecision) {
	if e.store != nil {
		if err := e.store.Create(ctx, decision); err != nil {
			e.logger.Error("failed to persist authorization decision",
				slog.String("decision_id", decision.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	_ = e.audit.Log(ctx, Event{
		ID:           decision.ID,
		EventType:    EventAuthorizationDecision,
		Claimant:     decision.Claimant,
		RecognizedAs: decision.RecognizedAs,
		Confidence:   decision.Confidence,
		Decision:     string(decision.Outcome),
		Reason:       decision.Reason,
		Timestamp:    decision.CreatedAt,
	})
}
