package detection

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	imgops "github.com/ironsheep/shape-measure-mcp/internal/imaging"
)

// Preprocessing modes.
const (
	// ModeCanny outlines objects with Canny edges, then dilates and closes
	// the edge map so every outline becomes a solid ring.
	ModeCanny = "canny"

	// ModeThreshold separates dark objects from a light background with a
	// global luminance threshold.
	ModeThreshold = "threshold"
)

// Options controls how a photo is turned into a binary mask.
type Options struct {
	Mode string `json:"mode"`

	// BlurSigma is the Gaussian blur applied first. Zero disables it.
	BlurSigma float64 `json:"blur_sigma"`

	// CannyLow and CannyHigh are the hysteresis thresholds for ModeCanny.
	CannyLow  float64 `json:"canny_low"`
	CannyHigh float64 `json:"canny_high"`

	// DilateRadius is the radius of the dilation and closing applied to the
	// Canny edge map. Radius 1 is a 3x3 neighbourhood.
	DilateRadius float64 `json:"dilate_radius"`

	// ThresholdLevel is the luminance below which a pixel is foreground in
	// ModeThreshold.
	ThresholdLevel uint8 `json:"threshold_level"`
}

// DefaultOptions returns settings tuned for coins and paper cut-outs
// photographed on a plain background.
func DefaultOptions() Options {
	return Options{
		Mode:           ModeCanny,
		BlurSigma:      3,
		CannyLow:       170,
		CannyHigh:      170,
		DilateRadius:   1,
		ThresholdLevel: 128,
	}
}

// Validate reports whether the options can be used.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeCanny, ModeThreshold:
	default:
		return fmt.Errorf("unknown preprocessing mode: %q", o.Mode)
	}
	if o.BlurSigma < 0 {
		return fmt.Errorf("blur sigma must not be negative, got %v", o.BlurSigma)
	}
	if o.CannyLow < 0 || o.CannyHigh < o.CannyLow {
		return fmt.Errorf("invalid canny thresholds %v/%v", o.CannyLow, o.CannyHigh)
	}
	if o.DilateRadius < 0 {
		return fmt.Errorf("dilate radius must not be negative, got %v", o.DilateRadius)
	}
	return nil
}

// Preprocess converts a photo into a binary mask where 255 marks foreground.
// The mask has img's size with its origin at (0,0).
func Preprocess(img image.Image, opts Options) (*image.Gray, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch opts.Mode {
	case ModeThreshold:
		src := image.Image(imaging.Grayscale(img))
		if opts.BlurSigma > 0 {
			src = imaging.Blur(src, opts.BlurSigma)
		}
		mask := segment.Threshold(src, opts.ThresholdLevel)
		invert(mask)
		return rebase(mask), nil
	default:
		mask := imgops.Canny(img, opts.BlurSigma, opts.CannyLow, opts.CannyHigh)
		if opts.DilateRadius > 0 {
			dilated := effect.Dilate(mask, opts.DilateRadius)
			closed := effect.Erode(effect.Dilate(dilated, opts.DilateRadius), opts.DilateRadius)
			mask = binarize(closed)
		}
		return mask, nil
	}
}

// invert flips a binary mask in place.
func invert(g *image.Gray) {
	for i, v := range g.Pix {
		g.Pix[i] = 255 - v
	}
}

// binarize maps any image onto a 0/255 mask by its red channel.
func binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, _, _, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			if r>>8 >= 128 {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// rebase returns g with its origin moved to (0,0).
func rebase(g *image.Gray) *image.Gray {
	if g.Rect.Min == (image.Point{}) {
		return g
	}
	return binarize(g)
}
