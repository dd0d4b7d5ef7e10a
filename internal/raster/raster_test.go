package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFromImage_BGROrder(t *testing.T) {
	img, err := FromImage(solid(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255}), BGR)
	require.NoError(t, err)
	require.Equal(t, []uint8{30, 20, 10, 30, 20, 10}, img.Pix)

	r, g, b := img.At(1, 0)
	require.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})
}

func TestFromImage_DropsAlpha(t *testing.T) {
	img, err := FromImage(solid(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 0}), RGB)
	require.NoError(t, err)
	require.Equal(t, []uint8{200, 100, 50}, img.Pix)
}

func TestFromImage_Empty(t *testing.T) {
	_, err := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 0)), RGB)
	require.Error(t, err)
}

func TestImage_ConvertRoundTrip(t *testing.T) {
	src, err := FromImage(solid(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255}), RGB)
	require.NoError(t, err)

	bgr := src.Convert(BGR)
	require.Equal(t, BGR, bgr.Order)
	require.Equal(t, uint8(3), bgr.Pix[0])
	// source untouched
	require.Equal(t, uint8(1), src.Pix[0])

	back := bgr.Convert(RGB)
	require.Equal(t, src.Pix, back.Pix)
}

func TestImage_ToNRGBA(t *testing.T) {
	img := New(1, 1, BGR)
	copy(img.Pix, []uint8{30, 20, 10})

	out := img.ToNRGBA()
	require.Equal(t, []uint8{10, 20, 30, 255}, out.Pix)
}

func TestImage_GrayMatchesOpenCVWeights(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
		{241, 241, 241, 241},
	}

	for _, tc := range cases {
		img := New(1, 1, RGB)
		copy(img.Pix, []uint8{tc.r, tc.g, tc.b})
		require.Equal(t, tc.want, img.Gray()[0], "rgb(%d,%d,%d)", tc.r, tc.g, tc.b)

		bgr := img.Convert(BGR)
		require.Equal(t, tc.want, bgr.Gray()[0])
	}
}

func TestCropAndPaste(t *testing.T) {
	img := New(3, 2, RGB)
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}

	c := img.Crop(image.Rect(1, 0, 5, 2))
	require.Equal(t, 2, c.Width)
	require.Equal(t, 2, c.Height)
	require.Equal(t, []uint8{3, 4, 5, 6, 7, 8, 12, 13, 14, 15, 16, 17}, c.Pix)

	dst := New(3, 2, RGB)
	dst.Paste(c, image.Pt(1, 0))
	require.Equal(t, img.Crop(image.Rect(1, 0, 3, 2)).Pix, dst.Crop(image.Rect(1, 0, 3, 2)).Pix)
	r, g, b := dst.At(0, 0)
	require.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})

	// clipped at the right edge
	dst.Paste(c, image.Pt(2, 1))
	r, g, b = dst.At(2, 1)
	require.Equal(t, [3]uint8{3, 4, 5}, [3]uint8{r, g, b})
}

func TestBlend(t *testing.T) {
	a := New(1, 1, BGR)
	copy(a.Pix, []uint8{200, 100, 0})
	b := New(1, 1, RGB)
	copy(b.Pix, []uint8{255, 0, 0}) // stored as B=0,G=0,R=255 in BGR

	out, err := Blend(a, b, 0.5)
	require.NoError(t, err)
	require.Equal(t, BGR, out.Order)
	require.Equal(t, []uint8{100, 50, 128}, out.Pix)

	same, err := Blend(a, b, 1)
	require.NoError(t, err)
	require.Equal(t, a.Pix, same.Pix)

	_, err = Blend(a, New(2, 1, BGR), 0.5)
	require.Error(t, err)
}
