package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ChannelOrder tells which channel is stored first in each pixel triplet
type ChannelOrder string

const (
	BGR ChannelOrder = "bgr" // OpenCV and model side
	RGB ChannelOrder = "rgb" // display side
)

// Image is a 3-channel, 8-bit, row-major interleaved raster
type Image struct {
	Width  int
	Height int
	Order  ChannelOrder
	Pix    []uint8 // len == Width*Height*3
}

// New allocates a zeroed image
func New(width, height int, order ChannelOrder) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Order:  order,
		Pix:    make([]uint8, width*height*3),
	}
}

// FromImage converts any decoded image to a raster in the requested order.
// Alpha is dropped without compositing, like OpenCV's IMREAD_COLOR.
func FromImage(img image.Image, order ChannelOrder) (*Image, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty image")
	}

	// Clone normalizes to NRGBA with origin at 0,0
	src := imaging.Clone(img)
	out := New(b.Dx(), b.Dy(), order)

	for y := 0; y < out.Height; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < out.Width; x++ {
			r, g, bl := row[x*4], row[x*4+1], row[x*4+2]
			i := (y*out.Width + x) * 3
			if order == BGR {
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = bl, g, r
			} else {
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = r, g, bl
			}
		}
	}

	return out, nil
}

// ToNRGBA returns an opaque NRGBA copy suitable for encoding or display
func (m *Image) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := (y*m.Width + x) * 3
			o := y*dst.Stride + x*4
			c0, c1, c2 := m.Pix[i], m.Pix[i+1], m.Pix[i+2]
			if m.Order == BGR {
				c0, c2 = c2, c0
			}
			dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] = c0, c1, c2, 255
		}
	}
	return dst
}

// Convert returns a copy in the requested channel order
func (m *Image) Convert(order ChannelOrder) *Image {
	out := m.Clone()
	if m.Order == order {
		return out
	}
	for i := 0; i < len(out.Pix); i += 3 {
		out.Pix[i], out.Pix[i+2] = out.Pix[i+2], out.Pix[i]
	}
	out.Order = order
	return out
}

// Clone returns a deep copy
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Width: m.Width, Height: m.Height, Order: m.Order, Pix: pix}
}

// At returns the pixel at x,y as R, G, B regardless of storage order
func (m *Image) At(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * 3
	if m.Order == BGR {
		return m.Pix[i+2], m.Pix[i+1], m.Pix[i]
	}
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Gray converts to single channel luma using OpenCV's fixed-point
// BGR2GRAY coefficients so thresholds match cv2 bit for bit.
func (m *Image) Gray() []uint8 {
	const (
		r2y   = 4899
		g2y   = 9617
		b2y   = 1868
		shift = 14
	)

	gray := make([]uint8, m.Width*m.Height)
	for p := range gray {
		r, g, b := m.At(p%m.Width, p/m.Width)
		gray[p] = uint8((int(r)*r2y + int(g)*g2y + int(b)*b2y + (1 << (shift - 1))) >> shift)
	}
	return gray
}

// Bounds returns the image rectangle
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Crop returns a copy of the pixels inside r, clipped to the image
func (m *Image) Crop(r image.Rectangle) *Image {
	r = r.Intersect(m.Bounds())
	out := New(r.Dx(), r.Dy(), m.Order)
	for y := 0; y < out.Height; y++ {
		src := ((r.Min.Y+y)*m.Width + r.Min.X) * 3
		copy(out.Pix[y*out.Width*3:(y+1)*out.Width*3], m.Pix[src:src+out.Width*3])
	}
	return out
}

// Paste copies src into m with its top-left corner at at, clipped to m
func (m *Image) Paste(src *Image, at image.Point) {
	r := src.Bounds().Add(at).Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := ((y-at.Y)*src.Width + (r.Min.X - at.X)) * 3
		do := (y*m.Width + r.Min.X) * 3
		copy(m.Pix[do:do+r.Dx()*3], src.Pix[so:so+r.Dx()*3])
	}
}

// Blend returns w*a + (1-w)*b per channel, rounded. Both images must have
// the same size; b is converted to a's channel order first.
func Blend(a, b *Image, w float64) (*Image, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("blend size mismatch: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if b.Order != a.Order {
		b = b.Convert(a.Order)
	}

	out := New(a.Width, a.Height, a.Order)
	for i := range out.Pix {
		v := w*float64(a.Pix[i]) + (1-w)*float64(b.Pix[i])
		out.Pix[i] = uint8(math.Min(255, math.Max(0, math.Round(v))))
	}
	return out, nil
}
