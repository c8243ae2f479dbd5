package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/shield/internal/authz"
	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/enroll"
	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
	"github.com/saturnino-fabrica-de-software/shield/internal/recognition"
	"github.com/saturnino-fabrica-de-software/shield/internal/samplestore"
	"github.com/saturnino-fabrica-de-software/shield/internal/training"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
	visionmock "github.com/saturnino-fabrica-de-software/shield/internal/vision/mock"
)

// newTestSession wires the full pipeline on the mock vision provider,
// with a two-frame enrollment target.
func newTestSession(t *testing.T, username string) *Session {
	t.Helper()

	dir := t.TempDir()
	logger := slog.Default()

	store, err := samplestore.New(dir)
	require.NoError(t, err)

	labels, err := training.LoadLabelMap(filepath.Join(dir, "labels.json"))
	require.NoError(t, err)

	detector := visionmock.NewDetector()
	guard := vision.NewGuard(visionmock.NewModel())
	trainer := training.NewTrainer(store, detector, guard, labels,
		filepath.Join(dir, "model.json"), time.Minute, logger)

	validator := intake.NewValidator(detector, 10)
	tracker := enroll.NewTracker(validator, store, trainer, 2, logger)
	scorer := recognition.NewScorer(guard, labels, logger)
	engine := authz.NewEngine(50, nil, &authz.NoOpLogger{}, logger)

	return NewSession(SessionDeps{
		Tracker:  tracker,
		Verifier: validator,
		Scorer:   scorer,
		Engine:   engine,
		Hub:      NewHub(),
		Logger:   logger,
	}, username)
}

func frameDataURL(t *testing.T) string {
	t.Helper()

	gray := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			gray.Pix[y*gray.Stride+x] = uint8(x * 4)
		}
	}
	data, err := imaging.EncodeJPEG(gray)
	require.NoError(t, err)
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

func inbound(t *testing.T, eventType EventType, payload interface{}) Inbound {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return Inbound{Type: eventType, Data: data}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestSession_UnknownEvent(t *testing.T) {
	session := newTestSession(t, "jane")

	events := session.Handle(context.Background(), Inbound{Type: "reboot"})

	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, "UNKNOWN_EVENT", events[0].Data.(ErrorPayload).Code)
}

func TestSession_UploadImage_MalformedPayload(t *testing.T) {
	session := newTestSession(t, "jane")

	events := session.Handle(context.Background(), Inbound{Type: EventUploadImage})

	require.Len(t, events, 1)
	assert.Equal(t, EventFrameError, events[0].Type)
	assert.Equal(t, domain.ErrBadRequest.Code, events[0].Data.(ErrorPayload).Code)
}

func TestSession_UploadImage_UndecodableImage(t *testing.T) {
	session := newTestSession(t, "jane")

	events := session.Handle(context.Background(),
		inbound(t, EventUploadImage, UploadImagePayload{Image: "@@@not-base64@@@"}))

	require.Len(t, events, 1)
	assert.Equal(t, EventFrameError, events[0].Type)
	assert.Equal(t, domain.ErrDecodeImage.Code, events[0].Data.(ErrorPayload).Code)
}

func TestSession_EnrollmentRound(t *testing.T) {
	session := newTestSession(t, "jane")
	frame := frameDataURL(t)

	// First frame only advances the counter.
	events := session.Handle(context.Background(),
		inbound(t, EventUploadImage, UploadImagePayload{Identity: "jane", Image: frame}))
	require.Equal(t, []EventType{EventFrameCaptured}, eventTypes(events))

	captured := events[0].Data.(FrameCapturedPayload)
	assert.Equal(t, 1, captured.Progress.Count)
	assert.Equal(t, 2, captured.Progress.Target)
	// The detected box rides along for the client overlay.
	require.Len(t, captured.Faces, 1)
	assert.NotZero(t, captured.Faces[0].Width)

	// Second frame hits the target, triggers training and tells the
	// uploader the outcome directly.
	events = session.Handle(context.Background(),
		inbound(t, EventUploadImage, UploadImagePayload{Identity: "jane", Image: frame}))
	require.Equal(t,
		[]EventType{EventFrameCaptured, EventCaptureCompleted, EventTrainingCompleted},
		eventTypes(events))

	completed := events[2].Data.(TrainingCompletedPayload)
	assert.Equal(t, "jane", completed.Identity)
	assert.Equal(t, 1, completed.TrainedFaces)
}

func TestSession_UploadImage_DefaultsIdentityToUsername(t *testing.T) {
	session := newTestSession(t, "jane")

	events := session.Handle(context.Background(),
		inbound(t, EventUploadImage, UploadImagePayload{Image: frameDataURL(t)}))

	require.Equal(t, []EventType{EventFrameCaptured}, eventTypes(events))
	assert.Equal(t, 1, session.tracker.Progress("jane").Count)
}

func TestSession_VerificationRound(t *testing.T) {
	session := newTestSession(t, "jane")
	frame := frameDataURL(t)

	// Enroll jane first so the model recognizes the probe frame.
	for i := 0; i < 2; i++ {
		events := session.Handle(context.Background(),
			inbound(t, EventUploadImage, UploadImagePayload{Identity: "jane", Image: frame}))
		require.NotEqual(t, EventFrameError, events[0].Type)
	}

	events := session.Handle(context.Background(),
		inbound(t, EventRecognizeFace, RecognizePayload{Username: "jane", Image: frame}))
	require.Equal(t, []EventType{EventRecognitionResult}, eventTypes(events))

	results := events[0].Data.([]domain.RecognitionResult)
	require.Len(t, results, 1)
	assert.Equal(t, "jane", results[0].Name)
	assert.True(t, results[0].NameMatch)

	events = session.Handle(context.Background(),
		inbound(t, EventFinalAuthorization, FinalAuthorizationPayload{}))
	require.Equal(t, []EventType{EventFinalAuthorizationRes}, eventTypes(events))

	decision := events[0].Data.(*domain.AuthorizationDecision)
	assert.Equal(t, domain.DecisionAuthorized, decision.Outcome)
	// Claimed name falls back to the last recognize_face claim.
	assert.Equal(t, "jane", decision.Claimant)
}

func TestSession_ClaimedUsernameOverridesConnectionIdentity(t *testing.T) {
	session := newTestSession(t, "conn-user")
	frame := frameDataURL(t)

	for i := 0; i < 2; i++ {
		events := session.Handle(context.Background(),
			inbound(t, EventUploadImage, UploadImagePayload{Identity: "alice", Image: frame}))
		require.NotEqual(t, EventFrameError, events[0].Type)
	}

	session.Handle(context.Background(),
		inbound(t, EventRecognizeFace, RecognizePayload{Username: "alice", Image: frame}))

	events := session.Handle(context.Background(),
		inbound(t, EventFinalAuthorization, FinalAuthorizationPayload{Username: "alice"}))
	require.Equal(t, []EventType{EventFinalAuthorizationRes}, eventTypes(events))

	// The username carried on the wire is the claim, not the identity
	// the connection authenticated as.
	decision := events[0].Data.(*domain.AuthorizationDecision)
	assert.Equal(t, "alice", decision.Claimant)
	assert.Equal(t, domain.DecisionAuthorized, decision.Outcome)
}

func TestSession_FinalAuthorization_IgnoresFabricatedResults(t *testing.T) {
	session := newTestSession(t, "jane")

	// No recognize_face ran on this connection, so an echoed result set
	// claiming a perfect match must not authorize anyone.
	events := session.Handle(context.Background(),
		inbound(t, EventFinalAuthorization, FinalAuthorizationPayload{
			Username: "jane",
			RecognizedFaces: []domain.RecognitionResult{
				{Name: "jane", Confidence: 100, NameMatch: true},
			},
		}))
	require.Equal(t, []EventType{EventFinalAuthorizationRes}, eventTypes(events))

	decision := events[0].Data.(*domain.AuthorizationDecision)
	assert.Equal(t, domain.DecisionUnauthorized, decision.Outcome)
	assert.Equal(t, domain.ReasonNoResults, decision.Reason)
}

func TestSession_FinalAuthorization_WithoutRecognition(t *testing.T) {
	session := newTestSession(t, "jane")

	events := session.Handle(context.Background(),
		inbound(t, EventFinalAuthorization, FinalAuthorizationPayload{}))
	require.Equal(t, []EventType{EventFinalAuthorizationRes}, eventTypes(events))

	decision := events[0].Data.(*domain.AuthorizationDecision)
	assert.Equal(t, domain.DecisionUnauthorized, decision.Outcome)
	assert.Equal(t, domain.ReasonNoResults, decision.Reason)
	// No claim anywhere in the round, so the connection identity is used.
	assert.Equal(t, "jane", decision.Claimant)
}

type recordingAudit struct {
	events []authz.Event
}

func (r *recordingAudit) Log(_ context.Context, event authz.Event) error {
	r.events = append(r.events, event)
	return nil
}

func TestSession_EnrollmentAuditTrail(t *testing.T) {
	session := newTestSession(t, "jane")
	audit := &recordingAudit{}
	session.audit = audit
	frame := frameDataURL(t)

	for i := 0; i < 2; i++ {
		session.Handle(context.Background(),
			inbound(t, EventUploadImage, UploadImagePayload{Identity: "jane", Image: frame}))
	}

	require.Len(t, audit.events, 2)
	assert.Equal(t, authz.EventEnrollmentStarted, audit.events[0].EventType)
	assert.Equal(t, authz.EventTrainingCompleted, audit.events[1].EventType)
	assert.Equal(t, "jane", audit.events[0].Claimant)
}

func TestSession_FinalAuthorization_ClosesTheRound(t *testing.T) {
	session := newTestSession(t, "jane")
	frame := frameDataURL(t)

	session.Handle(context.Background(),
		inbound(t, EventRecognizeFace, RecognizePayload{Username: "jane", Image: frame}))
	session.Handle(context.Background(),
		inbound(t, EventFinalAuthorization, FinalAuthorizationPayload{}))

	// A second authorization without new frames starts empty.
	events := session.Handle(context.Background(),
		inbound(t, EventFinalAuthorization, FinalAuthorizationPayload{}))
	decision := events[0].Data.(*domain.AuthorizationDecision)
	assert.Equal(t, domain.ReasonNoResults, decision.Reason)
}
