// Package stub provides a deterministic stand-in for the face restoration
// model so the rest of the pipeline runs without model files.
package stub

import (
	"context"
	"fmt"

	"github.com/dudu/facerestore/internal/raster"
	"github.com/dudu/facerestore/internal/restore"
)

// Upscaler enlarges the whole image by an integer factor with
// nearest-neighbour sampling. It finds no faces.
type Upscaler struct {
	Factor int
}

// NewUpscaler creates a stub with the given factor (minimum 1)
func NewUpscaler(factor int) *Upscaler {
	if factor < 1 {
		factor = 1
	}
	return &Upscaler{Factor: factor}
}

// Enhance implements restore.FaceRestorer
func (u *Upscaler) Enhance(ctx context.Context, img *raster.Image, opts restore.EnhanceOptions) (*restore.Restoration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("empty input image")
	}

	if opts.HasAligned {
		face := img.Clone()
		return &restore.Restoration{
			CroppedFaces:  []*raster.Image{img.Clone()},
			RestoredFaces: []*raster.Image{face},
		}, nil
	}

	res := &restore.Restoration{}
	if opts.PasteBack {
		res.Image = Scale(img, u.Factor)
	}
	return res, nil
}

// Scale returns img enlarged by factor using nearest-neighbour sampling
func Scale(img *raster.Image, factor int) *raster.Image {
	if factor <= 1 {
		return img.Clone()
	}

	out := raster.New(img.Width*factor, img.Height*factor, img.Order)
	for y := 0; y < out.Height; y++ {
		sy := y / factor
		for x := 0; x < out.Width; x++ {
			si := (sy*img.Width + x/factor) * 3
			di := (y*out.Width + x) * 3
			copy(out.Pix[di:di+3], img.Pix[si:si+3])
		}
	}
	return out
}

var _ restore.FaceRestorer = (*Upscaler)(nil)
