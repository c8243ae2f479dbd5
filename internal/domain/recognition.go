package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnknownName is the identity resolved for labels the label map cannot
// translate, and for predictions against an untrained model.
const UnknownName = "Unknown"

// BoundingBox is a face location in source image pixels.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RecognitionResult is the outcome of scoring a single detected face.
type RecognitionResult struct {
	Box        BoundingBox `json:"box"`
	Name       string      `json:"name"`
	Confidence float64     `json:"confidence"`
	NameMatch  bool        `json:"nameMatch"`
}

// Decision is the outcome of an authorization round.
type Decision string

const (
	DecisionAuthorized   Decision = "Authorized"
	DecisionUnauthorized Decision = "Unauthorized"
)

// Reason codes, in the priority order the engine applies them.
const (
	ReasonLowConfidence = "Confidence below threshold"
	ReasonNameMismatch  = "Name mismatch"
	ReasonUnknown       = "Unknown identity"
	ReasonMultipleFaces = "Multiple faces in frame"
	ReasonAuthorized    = "Authorized"
	ReasonNoResults     = "No faces to evaluate"
)

// AuthorizationDecision is written once per verification attempt and
// never mutated afterwards.
type AuthorizationDecision struct {
	ID           uuid.UUID `json:"id"`
	Claimant     string    `json:"claimant"`
	RecognizedAs string    `json:"recognized_as,omitempty"`
	Confidence   float64   `json:"confidence"`
	Outcome      Decision  `json:"status"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// Authorized reports whether the decision granted access.
func (d *AuthorizationDecision) Authorized() bool {
	return d.Outcome == DecisionAuthorized
}
