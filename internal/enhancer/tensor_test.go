package enhancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facerestore/internal/raster"
)

func TestToNCHW_SignedRGBPlanes(t *testing.T) {
	img := raster.New(2, 1, raster.BGR)
	copy(img.Pix, []uint8{0, 0, 255, 255, 255, 255}) // red, white

	data := ToNCHW(img, Signed)
	require.Len(t, data, 6)

	// R plane, G plane, B plane
	assert.InDeltaSlice(t, []float32{1, 1}, data[0:2], 1e-6)
	assert.InDeltaSlice(t, []float32{-1, 1}, data[2:4], 1e-6)
	assert.InDeltaSlice(t, []float32{-1, 1}, data[4:6], 1e-6)
}

func TestToNCHW_RGBInput(t *testing.T) {
	img := raster.New(1, 1, raster.RGB)
	copy(img.Pix, []uint8{255, 0, 0})

	data := ToNCHW(img, Unit)
	assert.InDeltaSlice(t, []float32{1, 0, 0}, data, 1e-6)
}

func TestFromNCHW_ClampsAndRounds(t *testing.T) {
	// R, G, B planes for one pixel
	img := FromNCHW([]float32{2, 0, -3}, 1, 1, Signed)
	assert.Equal(t, raster.BGR, img.Order)
	assert.Equal(t, []uint8{0, 128, 255}, img.Pix)
}

func TestNCHW_RoundTrip(t *testing.T) {
	img := raster.New(4, 3, raster.BGR)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}

	for _, r := range []Range{Signed, Unit} {
		back := FromNCHW(ToNCHW(img, r), img.Width, img.Height, r)
		assert.Equal(t, img.Pix, back.Pix)
	}
}
