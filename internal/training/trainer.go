// Package training maintains the label map and drives initial and
// incremental updates of the shared recognition model.
package training

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

// SampleSource loads an identity's stored enrollment samples.
type SampleSource interface {
	Load(identity string) ([][]byte, error)
}

type Trainer struct {
	samples   SampleSource
	detector  vision.Detector
	guard     *vision.Guard
	labels    *LabelMap
	modelPath string
	timeout   time.Duration
	logger    *slog.Logger
}

func NewTrainer(
	samples SampleSource,
	detector vision.Detector,
	guard *vision.Guard,
	labels *LabelMap,
	modelPath string,
	timeout time.Duration,
	logger *slog.Logger,
) *Trainer {
	return &Trainer{
		samples:   samples,
		detector:  detector,
		guard:     guard,
		labels:    labels,
		modelPath: modelPath,
		timeout:   timeout,
		logger:    logger,
	}
}

// Train builds a batch from the identity's sample directory and mutates
// the shared model: a full train when no identity was mapped before,
// an incremental update otherwise. On success the label map is persisted
// first, then the model, both atomically. Returns the new total number
// of trained identities.
//
// The whole call runs under a deadline; exceeding it fails the attempt
// without touching persisted state.
func (t *Trainer) Train(ctx context.Context, identity string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()

	batch, err := t.buildBatch(ctx, identity)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, domain.ErrNoSamples
	}

	var (
		wasEmpty bool
		label    int
	)

	err = t.guard.Mutate(func(model vision.Model) error {
		// The label is only reserved here; a failed mutation must not
		// leave a phantom identity in the map.
		wasEmpty = t.labels.Len() == 0
		existing, ok := t.labels.Label(identity)
		if ok {
			label = existing
		} else {
			label = t.labels.Len()
		}

		labels := make([]int, len(batch))
		for i := range labels {
			labels[i] = label
		}

		if wasEmpty {
			if err := model.Train(ctx, batch, labels); err != nil {
				return fmt.Errorf("train model: %w", err)
			}
		} else {
			if err := model.Update(ctx, batch, labels); err != nil {
				return fmt.Errorf("update model: %w", err)
			}
		}
		t.labels.Assign(identity)

		// Persist order matters: label map first, then the model.
		if err := t.labels.Save(); err != nil {
			return err
		}
		if err := model.Save(t.modelPath); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	t.logger.Info("model trained",
		slog.String("identity", identity),
		slog.Int("label", label),
		slog.Int("batch_size", len(batch)),
		slog.Bool("initial", wasEmpty),
		slog.Duration("elapsed", time.Since(start)),
	)

	return t.labels.Len(), nil
}

// buildBatch loads every stored sample, re-runs face localization and
// resizes accepted regions to the canonical size. Samples where
// detection no longer finds a face are skipped.
func (t *Trainer) buildBatch(ctx context.Context, identity string) ([]*image.Gray, error) {
	stored, err := t.samples.Load(identity)
	if err != nil {
		return nil, err
	}

	batch := make([]*image.Gray, 0, len(stored))
	for _, data := range stored {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := imaging.Decode(data)
		if err != nil {
			// A corrupted sample file is skipped, not fatal.
			continue
		}

		boxes, err := t.detector.Detect(ctx, img)
		if err != nil {
			return nil, err
		}
		if len(boxes) == 0 {
			continue
		}

		region := imaging.Normalize(img, boxes[0], 0)
		batch = append(batch, imaging.ResizeGray(region, vision.CanonicalSize))
	}
	return batch, nil
}

// Restore loads persisted trainer state at startup: the label map and,
// when present, the model blob.
func Restore(modelPath string, guard *vision.Guard, labels *LabelMap) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil
	}

	return guard.Mutate(func(model vision.Model) error {
		if err := model.Load(modelPath); err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		return nil
	})
}

// Verify cross-checks the label map against the restored model. A crash
// between the two persistence steps leaves them out of step; the
// affected identities must be re-enrolled before recognition can be
// trusted.
func Verify(guard *vision.Guard, labels *LabelMap) error {
	mapped := labels.Len()
	trained := guard.Trained()

	if !trained && mapped > 0 {
		return fmt.Errorf("label map holds %d identities but the model is untrained; re-enroll to repair", mapped)
	}
	if trained && mapped == 0 {
		return fmt.Errorf("model is trained but the label map is empty; re-enroll to repair")
	}
	return nil
}
