package preview

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultSize is the longest preview side in pixels
const DefaultSize = 400

// Thumbnail returns a copy scaled down so that neither side exceeds size,
// keeping the aspect ratio. Images already small enough are copied as-is.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	if size <= 0 {
		size = DefaultSize
	}
	return imaging.Fit(img, size, size, imaging.Lanczos)
}
