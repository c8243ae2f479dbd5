package rekognition

import (
	"context"
	"errors"
	"fmt"
	"image"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/imaging"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
)

// maxImageSize is the byte limit AWS Rekognition accepts inline (5MB)
const maxImageSize = 5 * 1024 * 1024

const errCodeInvalidParameter = "InvalidParameterException"

// Config holds AWS settings for the detector.
type Config struct {
	Region string
}

// Detector localizes faces through the AWS Rekognition DetectFaces API.
// It only uses bounding boxes; indexing and collections are not involved.
type Detector struct {
	client *rekognition.Client
}

// NewDetector builds a detector using the AWS default credential chain.
func NewDetector(ctx context.Context, cfg Config) (*Detector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Detector{client: rekognition.NewFromConfig(awsCfg)}, nil
}

func (d *Detector) Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, domain.ErrDecodeImage.WithError(
			fmt.Errorf("image too large for Rekognition (%d bytes, max %d)", len(data), maxImageSize))
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: data,
		},
		Attributes: []types.Attribute{types.AttributeDefault},
	}

	output, err := d.client.DetectFaces(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeInvalidParameter {
			return nil, domain.ErrDecodeImage.WithError(err)
		}
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	// Rekognition reports boxes as ratios of the frame; convert to pixels.
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	boxes := make([]domain.BoundingBox, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		bb := detail.BoundingBox
		if bb == nil || bb.Left == nil || bb.Top == nil || bb.Width == nil || bb.Height == nil {
			continue
		}
		boxes = append(boxes, domain.BoundingBox{
			X:      bounds.Min.X + int(float64(*bb.Left)*w),
			Y:      bounds.Min.Y + int(float64(*bb.Top)*h),
			Width:  int(float64(*bb.Width) * w),
			Height: int(float64(*bb.Height) * h),
		})
	}

	return boxes, nil
}

var _ vision.Detector = (*Detector)(nil)
