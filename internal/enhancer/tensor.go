package enhancer

import (
	"math"

	"github.com/dudu/facerestore/internal/raster"
)

// Range is the value interval a network maps 0..255 pixels onto
type Range struct {
	Min, Max float32
}

var (
	// Signed is (x/255 - 0.5) / 0.5, used by the face networks
	Signed = Range{Min: -1, Max: 1}
	// Unit is x/255, used by Real-ESRGAN
	Unit = Range{Min: 0, Max: 1}
)

// ToNCHW packs img into a 1x3xHxW float tensor with RGB planes
func ToNCHW(img *raster.Image, r Range) []float32 {
	plane := img.Width * img.Height
	data := make([]float32, 3*plane)
	span := r.Max - r.Min

	for p := 0; p < plane; p++ {
		i := p * 3
		c0, c1, c2 := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		red, green, blue := c0, c1, c2
		if img.Order == raster.BGR {
			red, blue = c2, c0
		}
		data[p] = float32(red)/255*span + r.Min
		data[plane+p] = float32(green)/255*span + r.Min
		data[2*plane+p] = float32(blue)/255*span + r.Min
	}

	return data
}

// FromNCHW unpacks an RGB-planar tensor into a BGR raster, clamping to r
// and rounding to the nearest level.
func FromNCHW(data []float32, width, height int, r Range) *raster.Image {
	out := raster.New(width, height, raster.BGR)
	plane := width * height
	span := r.Max - r.Min

	for p := 0; p < plane; p++ {
		i := p * 3
		out.Pix[i+2] = toByte(data[p], r.Min, span)
		out.Pix[i+1] = toByte(data[plane+p], r.Min, span)
		out.Pix[i] = toByte(data[2*plane+p], r.Min, span)
	}

	return out
}

func toByte(v, min, span float32) uint8 {
	v = clamp(v, min, min+span)
	return uint8(math.Round(float64((v - min) / span * 255)))
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
