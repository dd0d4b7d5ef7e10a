package preview

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThumbnail_FitsAndKeepsAspect(t *testing.T) {
	sizes := []image.Point{
		{1024, 1024},
		{1920, 1080},
		{1080, 1920},
		{401, 13},
		{799, 401},
		{3, 2000},
	}

	for _, sz := range sizes {
		src := image.NewNRGBA(image.Rect(0, 0, sz.X, sz.Y))
		thumb := Thumbnail(src, DefaultSize)

		w, h := thumb.Bounds().Dx(), thumb.Bounds().Dy()
		require.LessOrEqual(t, w, DefaultSize, "%v", sz)
		require.LessOrEqual(t, h, DefaultSize, "%v", sz)
		require.Equal(t, DefaultSize, max(w, h), "%v", sz)

		// other side within 1px of the exact ratio
		if w >= h {
			want := float64(sz.Y) * float64(w) / float64(sz.X)
			require.LessOrEqual(t, math.Abs(float64(h)-want), 1.0, "%v", sz)
		} else {
			want := float64(sz.X) * float64(h) / float64(sz.Y)
			require.LessOrEqual(t, math.Abs(float64(w)-want), 1.0, "%v", sz)
		}
	}
}

func TestThumbnail_SmallImageNotUpscaled(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 120, 80))
	thumb := Thumbnail(src, DefaultSize)
	require.Equal(t, src.Bounds(), thumb.Bounds())
}

func TestThumbnail_DoesNotMutateSource(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 800, 600))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	before := append([]uint8(nil), src.Pix...)

	_ = Thumbnail(src, DefaultSize)
	require.Equal(t, before, src.Pix)
}
