package pigo

import (
	"context"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

const (
	// minQuality filters out weak cascade responses
	minQuality = 5.0
	// clusterIoU merges overlapping detections of the same face
	clusterIoU = 0.2
)

// Detector localizes faces with the embedded pigo cascade classifier.
// Pure Go, no cgo or external runtime required.
type Detector struct {
	classifier *pigo.Pigo
}

// NewDetector loads a binary cascade file (the stock pigo "facefinder")
// and prepares a classifier.
func NewDetector(cascadePath string) (*Detector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read cascade %s: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}

	return &Detector{classifier: classifier}, nil
}

func (d *Detector) Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	bounds := src.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()

	maxSize := cols
	if rows < cols {
		maxSize = rows
	}

	params := pigo.CascadeParams{
		MinSize:     40,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, clusterIoU)

	boxes := make([]domain.BoundingBox, 0, len(dets))
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}
		// pigo reports a center point and scale; convert to a box.
		half := det.Scale / 2
		boxes = append(boxes, domain.BoundingBox{
			X:      det.Col - half,
			Y:      det.Row - half,
			Width:  det.Scale,
			Height: det.Scale,
		})
	}

	return boxes, nil
}

var _ vision.Detector = (*Detector)(nil)
