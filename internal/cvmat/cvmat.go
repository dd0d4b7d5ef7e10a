// Package cvmat moves pixels between raster images and OpenCV matrices.
package cvmat

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/dudu/facerestore/internal/mask"
	"github.com/dudu/facerestore/internal/raster"
)

// FromRaster returns a CV_8UC3 BGR Mat owning a copy of img's pixels
func FromRaster(img *raster.Image) (gocv.Mat, error) {
	bgr := img
	if img.Order != raster.BGR {
		bgr = img.Convert(raster.BGR)
	}

	m, err := gocv.NewMatFromBytes(bgr.Height, bgr.Width, gocv.MatTypeCV8UC3, bgr.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	// NewMatFromBytes borrows the slice
	owned := m.Clone()
	m.Close()
	return owned, nil
}

// ToRaster copies a CV_8UC3 BGR Mat into a raster
func ToRaster(m gocv.Mat) (*raster.Image, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	if m.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("expected CV_8UC3 mat, got %v", m.Type())
	}

	src := m
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}

	out := raster.New(src.Cols(), src.Rows(), raster.BGR)
	copy(out.Pix, src.ToBytes())
	return out, nil
}

// FromMask returns a CV_8UC1 Mat owning a copy of the mask
func FromMask(msk *mask.Mask) (gocv.Mat, error) {
	m, err := gocv.NewMatFromBytes(msk.Height, msk.Width, gocv.MatTypeCV8UC1, msk.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mask mat: %w", err)
	}
	owned := m.Clone()
	m.Close()
	return owned, nil
}
