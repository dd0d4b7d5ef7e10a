package restore

import (
	"context"

	"github.com/dudu/facerestore/internal/mask"
	"github.com/dudu/facerestore/internal/raster"
)

// EnhanceOptions are the per-call switches of the face restoration model
type EnhanceOptions struct {
	HasAligned     bool    // input is already a 512x512 aligned face
	OnlyCenterFace bool    // restore only the face nearest the image center
	PasteBack      bool    // paste restored faces into the upscaled full image
	Weight         float64 // share of the network output blended over the input face
}

// DefaultWeight is the blend weight used when none is given
const DefaultWeight = 0.5

// Restoration is what a FaceRestorer produces. Image is nil when paste-back
// is disabled or the input was an aligned face.
type Restoration struct {
	CroppedFaces  []*raster.Image
	RestoredFaces []*raster.Image
	Image         *raster.Image
}

// FaceRestorer is the black-box restoration model
type FaceRestorer interface {
	Enhance(ctx context.Context, img *raster.Image, opts EnhanceOptions) (*Restoration, error)
}

// Inpainter fills the On pixels of a mask from their neighbourhood
type Inpainter interface {
	Inpaint(img *raster.Image, m *mask.Mask, radius float64) (*raster.Image, error)
}
