package enhancer

import (
	"fmt"
	"image"

	"github.com/dudu/facerestore/internal/raster"
)

// UpscaleFunc enlarges a whole image by a fixed factor
type UpscaleFunc func(img *raster.Image) (*raster.Image, error)

// Tiled runs fn over overlapping tiles so large backgrounds fit in memory.
// Each tile is grown by pad pixels on every side before upscaling and the
// padding is cut away afterwards, hiding seams. tile <= 0 disables tiling.
func Tiled(img *raster.Image, tile, pad, scale int, fn UpscaleFunc) (*raster.Image, error) {
	if tile <= 0 || (img.Width <= tile && img.Height <= tile) {
		return fn(img)
	}

	out := raster.New(img.Width*scale, img.Height*scale, img.Order)
	bounds := img.Bounds()

	for y0 := 0; y0 < img.Height; y0 += tile {
		for x0 := 0; x0 < img.Width; x0 += tile {
			core := image.Rect(x0, y0, x0+tile, y0+tile).Intersect(bounds)
			padded := image.Rect(core.Min.X-pad, core.Min.Y-pad, core.Max.X+pad, core.Max.Y+pad).Intersect(bounds)

			up, err := fn(img.Crop(padded))
			if err != nil {
				return nil, fmt.Errorf("tile at %d,%d: %w", x0, y0, err)
			}
			if up.Width != padded.Dx()*scale || up.Height != padded.Dy()*scale {
				return nil, fmt.Errorf("tile at %d,%d: upscaler returned %dx%d, want %dx%d",
					x0, y0, up.Width, up.Height, padded.Dx()*scale, padded.Dy()*scale)
			}

			offset := core.Min.Sub(padded.Min).Mul(scale)
			keep := up.Crop(image.Rectangle{Min: offset, Max: offset.Add(core.Size().Mul(scale))})
			out.Paste(keep, core.Min.Mul(scale))
		}
	}

	return out, nil
}
