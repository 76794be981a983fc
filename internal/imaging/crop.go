package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// CropResult contains the cropped image data
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropContour cuts the bounding box of a contour, grown by padding pixels on
// every side and clipped to the image, and optionally rescales it. X and Y
// in the result are the top-left corner of the cut in image coordinates,
// before scaling.
func CropContour(img image.Image, c geometry.Contour, padding int, scale float64) (*CropResult, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("cannot crop an empty contour")
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", padding)
	}

	box := geometry.Bounds(c).Inset(-padding).Intersect(img.Bounds())
	if box.Empty() {
		return nil, fmt.Errorf("contour bounds %v outside image bounds %v", geometry.Bounds(c), img.Bounds())
	}

	cropped := imaging.Crop(img, box)

	if scale != 1.0 && scale > 0 {
		w := int(float64(cropped.Bounds().Dx()) * scale)
		h := int(float64(cropped.Bounds().Dy()) * scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           box.Min.X,
		Y:           box.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
