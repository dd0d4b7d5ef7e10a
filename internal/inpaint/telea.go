// Package inpaint fills damaged pixels with OpenCV's inpainting.
package inpaint

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/dudu/facerestore/internal/cvmat"
	"github.com/dudu/facerestore/internal/mask"
	"github.com/dudu/facerestore/internal/raster"
)

// Telea inpaints with Telea's fast marching method
type Telea struct{}

// Inpaint replaces the On pixels of m using a radius-sized neighbourhood
func (Telea) Inpaint(img *raster.Image, m *mask.Mask, radius float64) (*raster.Image, error) {
	if img.Width != m.Width || img.Height != m.Height {
		return nil, fmt.Errorf("mask is %dx%d, image is %dx%d", m.Width, m.Height, img.Width, img.Height)
	}

	src, err := cvmat.FromRaster(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	maskMat, err := cvmat.FromMask(m)
	if err != nil {
		return nil, err
	}
	defer maskMat.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Inpaint(src, maskMat, &dst, float32(radius), gocv.Telea)

	out, err := cvmat.ToRaster(dst)
	if err != nil {
		return nil, fmt.Errorf("inpaint: %w", err)
	}
	if img.Order != raster.BGR {
		out = out.Convert(img.Order)
	}
	return out, nil
}
