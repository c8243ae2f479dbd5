package domain

// CaptureState is the lifecycle state of an enrollment session.
type CaptureState string

const (
	StateIdle      CaptureState = "idle"
	StateCapturing CaptureState = "capturing"
	StateTraining  CaptureState = "training"
	StateComplete  CaptureState = "complete"
	StateFailed    CaptureState = "failed"
)

// CaptureProgress reports how far an enrollment session has advanced.
type CaptureProgress struct {
	Identity string       `json:"face_id"`
	Count    int          `json:"count"`
	Target   int          `json:"target"`
	Percent  float64      `json:"percent"`
	State    CaptureState `json:"state"`
}

// Completed reports whether the session reached its frame target.
func (p CaptureProgress) Completed() bool {
	return p.Count >= p.Target
}
