package vision

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

// CanonicalSize is the square edge length every face region is resized to
// before it reaches the appearance model.
const CanonicalSize = 128

// Detector localizes faces in a frame. Implementations treat the frame as
// read-only and return one bounding box per face found, in pixel
// coordinates of the input image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error)
}

// Prediction is the raw output of the appearance model for one face region:
// an integer label and a distance-like score where lower means closer.
type Prediction struct {
	Label    int
	Distance float64
}

// Model is the appearance-model capability. Samples are grayscale regions
// of CanonicalSize x CanonicalSize pixels.
//
// Train replaces all learned state with the given batch. Update adds the
// batch without forgetting previously trained labels. Predict against an
// untrained model returns domain.ErrModelUntrained; callers degrade to
// "unknown" rather than failing.
type Model interface {
	Trained() bool
	Train(ctx context.Context, samples []*image.Gray, labels []int) error
	Update(ctx context.Context, samples []*image.Gray, labels []int) error
	Predict(ctx context.Context, sample *image.Gray) (Prediction, error)
	Save(path string) error
	Load(path string) error
}
