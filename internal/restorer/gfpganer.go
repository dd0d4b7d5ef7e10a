// Package restorer implements face restoration on ONNX models: detect,
// align, restore each face and paste it back into an upscaled image.
package restorer

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/dudu/facerestore/internal/align"
	"github.com/dudu/facerestore/internal/cvmat"
	"github.com/dudu/facerestore/internal/enhancer"
	"github.com/dudu/facerestore/internal/face"
	"github.com/dudu/facerestore/internal/raster"
	"github.com/dudu/facerestore/internal/restore"
)

// minEyeDistance drops detections too small to restore
const minEyeDistance = 5

// Detector finds faces with 5-point landmarks in a BGR Mat
type Detector interface {
	Detect(img gocv.Mat) ([]face.Face, error)
	Close() error
}

// GFPGANer restores faces with a FaceNet and composites them over a
// background upscaled by a fixed factor.
type GFPGANer struct {
	detector   Detector
	net        enhancer.FaceNet
	background enhancer.Upsampler // optional
	upscale    int
	log        logrus.FieldLogger
}

// New creates a restorer. background may be nil to upscale with Lanczos.
func New(det Detector, net enhancer.FaceNet, background enhancer.Upsampler, upscale int, log logrus.FieldLogger) *GFPGANer {
	if upscale < 1 {
		upscale = 1
	}
	return &GFPGANer{
		detector:   det,
		net:        net,
		background: background,
		upscale:    upscale,
		log:        log,
	}
}

// Enhance implements restore.FaceRestorer
func (g *GFPGANer) Enhance(ctx context.Context, img *raster.Image, opts restore.EnhanceOptions) (*restore.Restoration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := cvmat.FromRaster(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if opts.HasAligned {
		return g.enhanceAligned(src, opts.Weight)
	}

	faces, err := g.detector.Detect(src)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	faces = g.selectFaces(faces, img.Width, img.Height, opts.OnlyCenterFace)

	size := g.net.Size()
	template := align.Template(size)

	res := &restore.Restoration{}
	affines := make([]align.Affine, 0, len(faces))

	for i, f := range faces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := align.EstimateSimilarity(f.Landmarks.Points(), template)
		if err != nil {
			g.log.WithError(err).WithField("face", i).Warn("skipping face, alignment failed")
			continue
		}

		crop := warpFace(src, m, size)
		cropped, err := cvmat.ToRaster(crop)
		crop.Close()
		if err != nil {
			return nil, err
		}

		restored, err := g.restoreFace(cropped, opts.Weight)
		if err != nil {
			return nil, err
		}

		res.CroppedFaces = append(res.CroppedFaces, cropped)
		res.RestoredFaces = append(res.RestoredFaces, restored)
		affines = append(affines, m)
	}

	g.log.WithFields(logrus.Fields{
		"detected": len(faces),
		"restored": len(res.RestoredFaces),
	}).Debug("faces restored")

	if !opts.PasteBack {
		return res, nil
	}

	full, err := g.pasteBack(src, res.RestoredFaces, affines)
	if err != nil {
		return nil, err
	}
	res.Image = full
	return res, nil
}

// enhanceAligned treats the input as one already-aligned face
func (g *GFPGANer) enhanceAligned(src gocv.Mat, weight float64) (*restore.Restoration, error) {
	size := g.net.Size()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	cropped, err := cvmat.ToRaster(resized)
	if err != nil {
		return nil, err
	}
	restored, err := g.restoreFace(cropped, weight)
	if err != nil {
		return nil, err
	}

	return &restore.Restoration{
		CroppedFaces:  []*raster.Image{cropped},
		RestoredFaces: []*raster.Image{restored},
	}, nil
}

// restoreFace runs the network and mixes weight of its output with the crop
func (g *GFPGANer) restoreFace(cropped *raster.Image, weight float64) (*raster.Image, error) {
	out, err := g.net.Restore(cropped)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.net.Name(), err)
	}
	if weight >= 1 {
		return out, nil
	}
	return raster.Blend(out, cropped, weight)
}

// selectFaces drops tiny detections and optionally keeps the central face
func (g *GFPGANer) selectFaces(faces []face.Face, width, height int, onlyCenter bool) []face.Face {
	kept := faces[:0]
	for _, f := range faces {
		l := f.Landmarks
		eyeDist := math.Hypot(float64(l.RightEye.X-l.LeftEye.X), float64(l.RightEye.Y-l.LeftEye.Y))
		if eyeDist < minEyeDistance {
			continue
		}
		kept = append(kept, f)
	}

	if onlyCenter {
		return face.ClosestToCenter(kept, width, height)
	}
	return kept
}

// pasteBack upscales the whole image and composites the restored faces
func (g *GFPGANer) pasteBack(src gocv.Mat, faces []*raster.Image, affines []align.Affine) (*raster.Image, error) {
	background, err := g.upscaleBackground(src)
	if err != nil {
		return nil, err
	}
	defer background.Close()

	c := newCanvas(background, g.upscale)
	defer c.Close()

	for i, f := range faces {
		faceMat, err := cvmat.FromRaster(f)
		if err != nil {
			return nil, err
		}
		err = c.paste(faceMat, affines[i])
		faceMat.Close()
		if err != nil {
			g.log.WithError(err).WithField("face", i).Warn("skipping paste, transform not invertible")
		}
	}

	out := c.result()
	defer out.Close()
	return cvmat.ToRaster(out)
}

// upscaleBackground enlarges src to upscale times its size
func (g *GFPGANer) upscaleBackground(src gocv.Mat) (gocv.Mat, error) {
	target := image.Pt(src.Cols()*g.upscale, src.Rows()*g.upscale)

	base := src
	if g.background != nil {
		bg, err := cvmat.ToRaster(src)
		if err != nil {
			return gocv.NewMat(), err
		}
		up, err := g.background.Upscale(bg)
		if err != nil {
			return gocv.NewMat(), fmt.Errorf("background upsampling failed: %w", err)
		}
		upMat, err := cvmat.FromRaster(up)
		if err != nil {
			return gocv.NewMat(), err
		}
		defer upMat.Close()
		base = upMat
	}

	out := gocv.NewMat()
	if base.Cols() == target.X && base.Rows() == target.Y {
		base.CopyTo(&out)
		return out, nil
	}
	gocv.Resize(base, &out, target, 0, 0, gocv.InterpolationLanczos4)
	return out, nil
}

// Close releases the models
func (g *GFPGANer) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{g.detector, g.net} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if g.background != nil {
		if err := g.background.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ restore.FaceRestorer = (*GFPGANer)(nil)
