package dimension

import (
	"fmt"
	"math"

	"github.com/BaSui01/headerflow/types"
)

// Vendor-imposed bounds for jimeng_t2i_v40 free-form dimensions.
// Area outside [MinArea, MaxArea] or ratio outside [1/3, 3] is rejected
// upstream, so every outbound width/height must be normalized first.
const (
	MinArea = 1024 * 1024
	MaxArea = 4096 * 4096

	MinRatio = 1.0 / 3.0
	MaxRatio = 3.0

	DefaultWidth  = 2048
	DefaultHeight = 2048
)

// Request carries an explicit dimension request. Both fields must be set
// for the pair to take effect; a partial pair is treated as absent.
type Request struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// Normalized is a width/height pair that has passed through Normalize and
// can be embedded verbatim into an outbound generation request body.
type Normalized struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns width*height in pixels.
func (n Normalized) Area() int { return n.Width * n.Height }

// Ratio returns width/height.
func (n Normalized) Ratio() float64 { return float64(n.Width) / float64(n.Height) }

// Normalize validates and corrects a requested dimension pair against the
// vendor bounds. Corrections are applied in a fixed order: the area bound
// first (proportional rescale, preserving the requested aspect ratio), then
// the ratio bound re-evaluated against the rescaled values. A ratio
// violation is corrected holding one side fixed: width is kept when the
// pair is too tall, height is kept when it is too wide.
func Normalize(req Request) (Normalized, error) {
	if req.Width == nil || req.Height == nil {
		return Normalized{Width: DefaultWidth, Height: DefaultHeight}, nil
	}

	w, h := *req.Width, *req.Height
	if w <= 0 || h <= 0 {
		return Normalized{}, types.NewError(types.ErrInvalidDimension,
			fmt.Sprintf("width and height must be positive, got %dx%d", w, h))
	}

	// Area correction: rescale both sides by the same factor so the
	// requested ratio survives. Ceil on upscale and floor on downscale keep
	// the corrected area on the right side of the bound.
	area := w * h
	switch {
	case area < MinArea:
		scale := math.Sqrt(float64(MinArea) / float64(area))
		w = int(math.Ceil(float64(w) * scale))
		h = int(math.Ceil(float64(h) * scale))
	case area > MaxArea:
		scale := math.Sqrt(float64(MaxArea) / float64(area))
		w = max(1, int(math.Floor(float64(w)*scale)))
		h = max(1, int(math.Floor(float64(h)*scale)))
	}

	// Ratio correction, evaluated after the area pass.
	ratio := float64(w) / float64(h)
	switch {
	case ratio < MinRatio:
		h = w * 3
	case ratio > MaxRatio:
		w = h * 3
	}

	return Normalized{Width: w, Height: h}, nil
}

// NormalizePair is a convenience wrapper for callers holding plain ints.
func NormalizePair(width, height int) (Normalized, error) {
	return Normalize(Request{Width: &width, Height: &height})
}
