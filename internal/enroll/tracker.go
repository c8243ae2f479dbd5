// Package enroll tracks capture progress per identity and hands a
// completed sample set to the trainer.
package enroll

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
)

// Trainer rebuilds or updates the shared model from an identity's
// completed sample directory. Returns the new total identity count.
type Trainer interface {
	Train(ctx context.Context, identity string) (int, error)
}

// SampleStore persists accepted enrollment samples.
type SampleStore interface {
	Save(identity string, sample *image.Gray) (int, error)
	Clear(identity string) error
}

// FrameValidator is the slice of the intake validator enrollment needs.
type FrameValidator interface {
	SingleFace(ctx context.Context, data []byte) (intake.Region, error)
}

// FrameResult is everything one accepted or completed frame produced.
// When Completed is set, training already ran: exactly one of
// TrainedFaces / TrainErr is meaningful.
type FrameResult struct {
	Faces        []domain.BoundingBox
	Progress     domain.CaptureProgress
	Completed    bool
	TrainedFaces int
	TrainErr     error
}

// session is the per-identity capture state machine. All access happens
// under its mutex, so two connections uploading for the same identity
// cannot lose increments.
type session struct {
	mu    sync.Mutex
	state domain.CaptureState
	count int
}

// Tracker owns every capture session. Sessions for different identities
// are fully independent.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session

	validator FrameValidator
	store     SampleStore
	trainer   Trainer
	target    int
	logger    *slog.Logger
}

func NewTracker(validator FrameValidator, store SampleStore, trainer Trainer, targetFrames int, logger *slog.Logger) *Tracker {
	return &Tracker{
		sessions:  make(map[string]*session),
		validator: validator,
		store:     store,
		trainer:   trainer,
		target:    targetFrames,
		logger:    logger,
	}
}

func (t *Tracker) session(identity string) *session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[identity]
	if !ok {
		s = &session{state: domain.StateIdle}
		t.sessions[identity] = s
	}
	return s
}

// Progress reports the current capture state for an identity without
// mutating it.
func (t *Tracker) Progress(identity string) domain.CaptureProgress {
	s := t.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.progress(identity, s)
}

func (t *Tracker) progress(identity string, s *session) domain.CaptureProgress {
	return domain.CaptureProgress{
		Identity: identity,
		Count:    s.count,
		Target:   t.target,
		Percent:  float64(s.count) * 100 / float64(t.target),
		State:    s.state,
	}
}

// ProcessFrame runs one enrollment frame through intake and the state
// machine. Rejected frames return an error and leave the counter and
// state untouched. Exactly at the frame target, training is triggered
// once and the counter resets to zero regardless of the outcome.
func (t *Tracker) ProcessFrame(ctx context.Context, identity string, data []byte) (FrameResult, error) {
	s := t.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateTraining {
		return FrameResult{}, domain.ErrSessionBusy
	}

	// First frame of a fresh session: previous samples are stale.
	if s.state == domain.StateIdle {
		if err := t.store.Clear(identity); err != nil {
			return FrameResult{}, err
		}
		s.state = domain.StateCapturing
		s.count = 0
		t.logger.Info("capture session started", slog.String("identity", identity))
	}

	region, err := t.validator.SingleFace(ctx, data)
	if err != nil {
		// Invalid frame: counter must not advance.
		return FrameResult{}, err
	}

	if _, err := t.store.Save(identity, region.Gray); err != nil {
		return FrameResult{}, err
	}

	s.count++
	result := FrameResult{
		Faces:    []domain.BoundingBox{region.Box},
		Progress: t.progress(identity, s),
	}

	if s.count < t.target {
		return result, nil
	}

	// Target reached: train synchronously with respect to this session.
	s.state = domain.StateTraining
	result.Completed = true

	trained, err := t.trainer.Train(ctx, identity)
	if err != nil {
		s.state = domain.StateFailed
		result.TrainErr = err
		t.logger.Error("training failed",
			slog.String("identity", identity),
			slog.Any("error", err),
		)
	} else {
		s.state = domain.StateComplete
		result.TrainedFaces = trained
		t.logger.Info("training completed",
			slog.String("identity", identity),
			slog.Int("trained_faces", trained),
		)
	}

	// Ready for a future re-enrollment either way.
	s.count = 0
	s.state = domain.StateIdle

	return result, nil
}
