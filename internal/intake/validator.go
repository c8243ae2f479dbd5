// Package intake decodes inbound frames, localizes faces and normalizes
// the accepted regions before they reach enrollment or recognition.
package intake

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

// Region is one validated, normalized face region plus where it was
// found in the source frame.
type Region struct {
	Gray *image.Gray
	Box  domain.BoundingBox
}

type Validator struct {
	detector vision.Detector
	padding  int
}

func NewValidator(detector vision.Detector, padding int) *Validator {
	return &Validator{
		detector: detector,
		padding:  padding,
	}
}

// SingleFace enforces the enrollment policy: the frame must contain
// exactly one face. Zero faces yields ErrNoFaceDetected, more than one
// ErrMultipleFaces; in both cases the frame is discarded.
func (v *Validator) SingleFace(ctx context.Context, data []byte) (Region, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return Region{}, err
	}

	boxes, err := v.detector.Detect(ctx, img)
	if err != nil {
		return Region{}, err
	}

	switch {
	case len(boxes) == 0:
		return Region{}, domain.ErrNoFaceDetected
	case len(boxes) > 1:
		return Region{}, domain.ErrMultipleFaces
	}

	return Region{
		Gray: imaging.Normalize(img, boxes[0], v.padding),
		Box:  boxes[0],
	}, nil
}

// AllFaces accepts a verification frame with any number of faces and
// normalizes each independently. Zero faces is not an error here; the
// decision engine accounts for an empty round.
func (v *Validator) AllFaces(ctx context.Context, data []byte) ([]Region, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}

	boxes, err := v.detector.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	regions := make([]Region, 0, len(boxes))
	for _, box := range boxes {
		regions = append(regions, Region{
			Gray: imaging.Normalize(img, box, v.padding),
			Box:  box,
		})
	}
	return regions, nil
}
