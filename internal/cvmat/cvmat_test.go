package cvmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dudu/facerestore/internal/mask"
	"github.com/dudu/facerestore/internal/raster"
)

func gradient(order raster.ChannelOrder) *raster.Image {
	img := raster.New(5, 3, order)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return img
}

func TestRoundTripBGR(t *testing.T) {
	img := gradient(raster.BGR)

	m, err := FromRaster(img)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 5, m.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC3, m.Type())

	out, err := ToRaster(m)
	require.NoError(t, err)
	assert.Equal(t, raster.BGR, out.Order)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestFromRasterSwapsRGB(t *testing.T) {
	img := raster.New(1, 1, raster.RGB)
	copy(img.Pix, []uint8{10, 20, 30})

	m, err := FromRaster(img)
	require.NoError(t, err)
	defer m.Close()

	v := m.GetVecbAt(0, 0)
	assert.Equal(t, []uint8{30, 20, 10}, []uint8(v))

	out, err := ToRaster(m)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.Convert(raster.RGB).Pix)
	// input untouched
	assert.Equal(t, []uint8{10, 20, 30}, img.Pix)
}

func TestFromRasterOwnsPixels(t *testing.T) {
	img := gradient(raster.BGR)

	m, err := FromRaster(img)
	require.NoError(t, err)
	defer m.Close()

	img.Pix[0] = 255
	assert.Equal(t, uint8(0), m.GetUCharAt(0, 0))
}

func TestToRasterRejects(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := ToRaster(empty)
	assert.Error(t, err)

	gray := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer gray.Close()
	_, err = ToRaster(gray)
	assert.Error(t, err)
}

func TestFromMask(t *testing.T) {
	msk := &mask.Mask{Width: 3, Height: 2, Pix: []uint8{0, mask.On, 0, mask.On, 0, 0}}

	m, err := FromMask(msk)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, gocv.MatTypeCV8UC1, m.Type())
	assert.Equal(t, uint8(mask.On), m.GetUCharAt(0, 1))
	assert.Equal(t, uint8(mask.On), m.GetUCharAt(1, 0))
	assert.Equal(t, uint8(0), m.GetUCharAt(1, 2))
}
