package mask

import (
	"image"

	"github.com/dudu/facerestore/internal/raster"
)

const (
	// DefaultThreshold marks near-white pixels (scratches, dust, glare) as damaged
	DefaultThreshold = 240

	On  = 255
	Off = 0
)

// Mask is a single-channel binary image, On where a pixel is damaged
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// Detect thresholds the grayscale image: strictly brighter than threshold is On
func Detect(img *raster.Image, threshold uint8) *Mask {
	gray := img.Gray()
	m := &Mask{Width: img.Width, Height: img.Height, Pix: gray}

	// Reuse the gray buffer in place
	for i, v := range m.Pix {
		if v > threshold {
			m.Pix[i] = On
		} else {
			m.Pix[i] = Off
		}
	}

	return m
}

// Count returns the number of damaged pixels
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == On {
			n++
		}
	}
	return n
}

// ToImage exposes the mask as a grayscale image for saving or display
func (m *Mask) ToImage() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}
