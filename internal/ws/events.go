package ws

import (
	"encoding/json"
	"time"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

type EventType string

// Client to server.
const (
	EventUploadImage        EventType = "upload_image"
	EventRecognizeFace      EventType = "recognize_face"
	EventFinalAuthorization EventType = "get_final_authorization"
)

// Server to client.
const (
	EventFrameCaptured         EventType = "frame_captured"
	EventFrameError            EventType = "frame_error"
	EventCaptureCompleted      EventType = "capture_completed"
	EventTrainingCompleted     EventType = "training_completed"
	EventTrainingError         EventType = "training_error"
	EventRecognitionResult     EventType = "recognition_result"
	EventFinalAuthorizationRes EventType = "final_authorization"
	EventError                 EventType = "error"
)

// Event is the wire envelope for every message in both directions.
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Inbound is an incoming envelope with the payload still raw, decoded
// per event type by the session.
type Inbound struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UploadImagePayload carries one enrollment frame.
type UploadImagePayload struct {
	Identity string `json:"face_id"`
	Image    string `json:"image"`
}

// RecognizePayload carries one verification frame and the claimed username.
type RecognizePayload struct {
	Username string `json:"username"`
	Image    string `json:"image"`
}

// FinalAuthorizationPayload closes a verification round. RecognizedFaces
// echoes the results the client collected during the round; the session
// accepts the echo but decides on its own server-side copy, so a client
// cannot fabricate results it was never sent.
type FinalAuthorizationPayload struct {
	Username        string                     `json:"username"`
	RecognizedFaces []domain.RecognitionResult `json:"recognizedFaces"`
}

// FrameCapturedPayload acknowledges one accepted enrollment frame with
// the detected boxes for the client's overlay.
type FrameCapturedPayload struct {
	Faces    []domain.BoundingBox   `json:"faces"`
	Status   domain.CaptureState    `json:"status"`
	Progress domain.CaptureProgress `json:"progress"`
}

// ErrorPayload is the data of frame_error, training_error and error events.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TrainingCompletedPayload announces a model update to every client.
type TrainingCompletedPayload struct {
	Identity     string `json:"face_id"`
	TrainedFaces int    `json:"trained_faces"`
}

func newEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
