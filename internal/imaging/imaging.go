package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

// Decode parses encoded image bytes. Returns domain.ErrDecodeImage if the
// bytes are not a valid image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrDecodeImage.WithError(err)
	}
	return img, nil
}

// DecodeDataURL parses a browser data URL ("data:image/jpeg;base64,....")
// or a bare base64 payload into raw image bytes.
func DecodeDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if idx := strings.Index(dataURL, ","); idx >= 0 {
		payload = dataURL[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.ErrDecodeImage.WithError(fmt.Errorf("base64: %w", err))
	}
	if len(data) == 0 {
		return nil, domain.ErrDecodeImage
	}
	return data, nil
}

// ToGray converts any image to 8-bit grayscale using the ITU-R BT.601
// luma formula applied by the stdlib gray color model.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// Equalize applies 256-bin histogram equalization to spread contrast
// across the full intensity range. Returns a new image.
func Equalize(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return gray
	}

	var hist [256]int
	for _, p := range gray.Pix {
		hist[p]++
	}

	// Cumulative distribution, anchored at the first non-empty bin.
	var cdf [256]int
	sum := 0
	cdfMin := 0
	for i, h := range hist {
		sum += h
		cdf[i] = sum
		if cdfMin == 0 && h > 0 {
			cdfMin = sum
		}
	}

	var lut [256]uint8
	denom := total - cdfMin
	if denom <= 0 {
		return gray
	}
	for i := range lut {
		v := (cdf[i] - cdfMin) * 255 / denom
		if v < 0 {
			v = 0
		}
		lut[i] = uint8(v)
	}

	out := image.NewGray(bounds)
	for i, p := range gray.Pix {
		out.Pix[i] = lut[p]
	}
	return out
}

// CropPadded cuts a bounding box out of the image, expanded by padding
// pixels on every side and clamped to the image bounds.
func CropPadded(img image.Image, box domain.BoundingBox, padding int) image.Image {
	bounds := img.Bounds()

	r := image.Rect(box.X-padding, box.Y-padding, box.X+box.Width+padding, box.Y+box.Height+padding)
	r = r.Intersect(bounds)
	if r.Empty() {
		r = bounds
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// ResizeGray scales a grayscale image to size x size pixels.
func ResizeGray(gray *image.Gray, size int) *image.Gray {
	if b := gray.Bounds(); b.Dx() == size && b.Dy() == size {
		return gray
	}
	dst := image.NewGray(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	return dst
}

// Normalize runs the full intake pipeline on one face region: padded crop,
// grayscale conversion and contrast equalization.
func Normalize(img image.Image, box domain.BoundingBox, padding int) *image.Gray {
	cropped := CropPadded(img, box, padding)
	return Equalize(ToGray(cropped))
}

// EncodeJPEG renders an image as JPEG bytes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
