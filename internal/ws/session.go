package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/shield/internal/authz"
	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/enroll"
	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
	"github.com/saturnino-fabrica-de-software/shield/internal/recognition"
)

// FrameVerifier is the slice of the intake validator verification needs.
type FrameVerifier interface {
	AllFaces(ctx context.Context, data []byte) ([]intake.Region, error)
}

// Session is the per-connection protocol state machine. Recognition
// results accumulate between recognize_face events until
// get_final_authorization closes the round.
type Session struct {
	tracker  *enroll.Tracker
	verifier FrameVerifier
	scorer   *recognition.Scorer
	engine   *authz.Engine
	hub      *Hub
	audit    authz.Logger
	username string
	logger   *slog.Logger

	lastResults []domain.RecognitionResult
	lastClaimed string
}

type SessionDeps struct {
	Tracker  *enroll.Tracker
	Verifier FrameVerifier
	Scorer   *recognition.Scorer
	Engine   *authz.Engine
	Hub      *Hub
	Audit    authz.Logger
	Logger   *slog.Logger
}

func NewSession(deps SessionDeps, username string) *Session {
	audit := deps.Audit
	if audit == nil {
		audit = &authz.NoOpLogger{}
	}
	return &Session{
		tracker:  deps.Tracker,
		verifier: deps.Verifier,
		scorer:   deps.Scorer,
		engine:   deps.Engine,
		hub:      deps.Hub,
		audit:    audit,
		username: username,
		logger:   deps.Logger,
	}
}

// Handle dispatches one inbound event and returns the events to send
// back on this connection.
func (s *Session) Handle(ctx context.Context, in Inbound) []Event {
	switch in.Type {
	case EventUploadImage:
		return s.handleUpload(ctx, in)
	case EventRecognizeFace:
		return s.handleRecognize(ctx, in)
	case EventFinalAuthorization:
		return s.handleFinalAuthorization(ctx, in)
	default:
		return []Event{newEvent(EventError, ErrorPayload{
			Code:    "UNKNOWN_EVENT",
			Message: "Unknown event type: " + string(in.Type),
		})}
	}
}

func (s *Session) handleUpload(ctx context.Context, in Inbound) []Event {
	var payload UploadImagePayload
	if err := decodePayload(in, &payload); err != nil {
		return []Event{frameError(err)}
	}

	identity := payload.Identity
	if identity == "" {
		identity = s.username
	}

	data, err := imaging.DecodeDataURL(payload.Image)
	if err != nil {
		return []Event{frameError(err)}
	}

	result, err := s.tracker.ProcessFrame(ctx, identity, data)
	if err != nil {
		return []Event{frameError(err)}
	}

	if result.Progress.Count == 1 {
		_ = s.audit.Log(ctx, authz.Event{
			EventType: authz.EventEnrollmentStarted,
			Claimant:  identity,
		})
	}

	events := []Event{newEvent(EventFrameCaptured, FrameCapturedPayload{
		Faces:    result.Faces,
		Status:   result.Progress.State,
		Progress: result.Progress,
	})}

	if !result.Completed {
		return events
	}

	events = append(events, newEvent(EventCaptureCompleted, result.Progress))

	if result.TrainErr != nil {
		_ = s.audit.Log(ctx, authz.Event{
			EventType: authz.EventTrainingFailed,
			Claimant:  identity,
			Error:     result.TrainErr.Error(),
		})
		return append(events, newEvent(EventTrainingError, errorPayload(result.TrainErr)))
	}

	_ = s.audit.Log(ctx, authz.Event{
		EventType: authz.EventTrainingCompleted,
		Claimant:  identity,
	})

	completed := TrainingCompletedPayload{
		Identity:     identity,
		TrainedFaces: result.TrainedFaces,
	}
	events = append(events, newEvent(EventTrainingCompleted, completed))

	// Every other connected client sees the model change too.
	s.hub.Broadcast(EventTrainingCompleted, completed)
	return events
}

func (s *Session) handleRecognize(ctx context.Context, in Inbound) []Event {
	var payload RecognizePayload
	if err := decodePayload(in, &payload); err != nil {
		return []Event{frameError(err)}
	}

	claimed := payload.Username
	if claimed == "" {
		claimed = s.username
	}

	data, err := imaging.DecodeDataURL(payload.Image)
	if err != nil {
		return []Event{frameError(err)}
	}

	regions, err := s.verifier.AllFaces(ctx, data)
	if err != nil {
		return []Event{frameError(err)}
	}

	results, err := s.scorer.Score(ctx, regions, claimed)
	if err != nil {
		return []Event{frameError(err)}
	}

	s.lastResults = results
	s.lastClaimed = claimed

	return []Event{newEvent(EventRecognitionResult, results)}
}

func (s *Session) handleFinalAuthorization(ctx context.Context, in Inbound) []Event {
	var payload FinalAuthorizationPayload
	if err := decodePayload(in, &payload); err != nil {
		return []Event{newEvent(EventError, errorPayload(err))}
	}

	claimed := payload.Username
	if claimed == "" {
		claimed = s.lastClaimed
	}
	if claimed == "" {
		claimed = s.username
	}

	// The decision runs on the results this session produced, not on the
	// client's echo: a caller must not be able to authorize itself with
	// recognizedFaces it fabricated.
	decision := s.engine.Decide(ctx, s.lastResults, claimed)

	// The round is closed; a new one starts from scratch.
	s.lastResults = nil
	s.lastClaimed = ""

	s.logger.Info("final authorization",
		slog.String("claimant", decision.Claimant),
		slog.String("outcome", string(decision.Outcome)),
		slog.String("reason", decision.Reason),
	)

	return []Event{newEvent(EventFinalAuthorizationRes, decision)}
}

func decodePayload(in Inbound, out interface{}) error {
	if len(in.Data) == 0 {
		return domain.ErrBadRequest
	}
	if err := json.Unmarshal(in.Data, out); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	return nil
}

func frameError(err error) Event {
	return newEvent(EventFrameError, errorPayload(err))
}

func errorPayload(err error) ErrorPayload {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return ErrorPayload{Code: appErr.Code, Message: appErr.Message}
	}
	return ErrorPayload{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}
}
