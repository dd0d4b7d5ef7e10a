package restore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	// Extra decoders for the all-files fallback
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dudu/facerestore/internal/mask"
	"github.com/dudu/facerestore/internal/preview"
	"github.com/dudu/facerestore/internal/raster"
	"github.com/dudu/facerestore/internal/storage"
)

// Timing holds per-stage durations of one run
type Timing struct {
	Decode     time.Duration
	Preprocess time.Duration
	Enhance    time.Duration
	Encode     time.Duration
	Write      time.Duration
	Total      time.Duration
}

// Result is everything a successful run produced
type Result struct {
	OutputPath      string
	Input           *raster.Image
	Restored        *raster.Image
	InputPreview    *image.NRGBA
	RestoredPreview *image.NRGBA
	MaskedPixels    int
	Faces           int
	Timing          Timing
}

// Pipeline decodes, optionally repairs, restores and persists one image per run
type Pipeline struct {
	config    Config
	restorer  FaceRestorer
	inpainter Inpainter
	store     storage.Store
	fs        afero.Fs
	log       logrus.FieldLogger
	running   atomic.Bool
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithInpainter sets the inpainter used by the inpaint policy
func WithInpainter(in Inpainter) Option {
	return func(p *Pipeline) { p.inpainter = in }
}

// WithFs sets the filesystem inputs are read from
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a restoration pipeline
func New(config Config, restorer FaceRestorer, store storage.Store, opts ...Option) (*Pipeline, error) {
	if restorer == nil {
		return nil, fmt.Errorf("face restorer is required")
	}
	if store == nil {
		return nil, fmt.Errorf("output store is required")
	}

	p := &Pipeline{
		config:   config,
		restorer: restorer,
		store:    store,
		fs:       afero.NewOsFs(),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.config.Policy == "" {
		p.config.Policy = PolicyDirect
	}
	if _, err := ParsePolicy(string(p.config.Policy)); err != nil {
		return nil, err
	}
	if p.config.Policy == PolicyInpaint && p.inpainter == nil {
		return nil, fmt.Errorf("policy %q requires an inpainter", PolicyInpaint)
	}
	if p.config.InpaintRadius <= 0 {
		p.config.InpaintRadius = DefaultInpaintRadius
	}
	if p.config.PreviewSize <= 0 {
		p.config.PreviewSize = preview.DefaultSize
	}

	return p, nil
}

// Config returns the effective configuration
func (p *Pipeline) Config() Config {
	return p.config
}

// Restore runs the whole pipeline on the image at path. Any failure aborts
// the run before the output is written, leaving previous outputs untouched.
func (p *Pipeline) Restore(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrNoInputSelected
	}
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.running.Store(false)

	totalStart := time.Now()
	var timing Timing
	log := p.log.WithFields(logrus.Fields{"input": path, "policy": p.config.Policy})

	decodeStart := time.Now()
	input, err := p.decode(path)
	timing.Decode = time.Since(decodeStart)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"width": input.Width, "height": input.Height}).Debug("image decoded")

	preStart := time.Now()
	prepared, masked, err := p.preprocess(input)
	timing.Preprocess = time.Since(preStart)
	if err != nil {
		return nil, err
	}

	enhanceStart := time.Now()
	restoration, err := p.restorer.Enhance(ctx, prepared, p.config.Enhance)
	timing.Enhance = time.Since(enhanceStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}
	if restoration == nil || restoration.Image == nil {
		return nil, fmt.Errorf("%w: no restored image returned", ErrModelInvocation)
	}
	restored := restoration.Image

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, restored.ToNRGBA(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrOutputWrite, err)
	}
	timing.Encode = time.Since(encodeStart)

	writeStart := time.Now()
	outPath, err := p.store.Save(ctx, p.config.outputName(path), buf.Bytes())
	timing.Write = time.Since(writeStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	result := &Result{
		OutputPath:      outPath,
		Input:           input,
		Restored:        restored,
		InputPreview:    preview.Thumbnail(input.ToNRGBA(), p.config.PreviewSize),
		RestoredPreview: preview.Thumbnail(restored.ToNRGBA(), p.config.PreviewSize),
		MaskedPixels:    masked,
		Faces:           len(restoration.RestoredFaces),
	}
	timing.Total = time.Since(totalStart)
	result.Timing = timing

	log.WithFields(logrus.Fields{
		"output":     outPath,
		"faces":      result.Faces,
		"masked":     masked,
		"enhance_ms": timing.Enhance.Milliseconds(),
		"total_ms":   timing.Total.Milliseconds(),
	}).Info("restoration complete")

	return result, nil
}

// Preview decodes path and returns a display thumbnail of it
func (p *Pipeline) Preview(path string) (*image.NRGBA, error) {
	if path == "" {
		return nil, ErrNoInputSelected
	}
	img, err := p.decode(path)
	if err != nil {
		return nil, err
	}
	return preview.Thumbnail(img.ToNRGBA(), p.config.PreviewSize), nil
}

// decode reads path into a BGR raster, honouring EXIF orientation
func (p *Pipeline) decode(path string) (*raster.Image, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}

	out, err := raster.FromImage(img, raster.BGR)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	return out, nil
}

// preprocess applies the configured policy and reports how many pixels were masked
func (p *Pipeline) preprocess(img *raster.Image) (*raster.Image, int, error) {
	if p.config.Policy != PolicyInpaint {
		return img, 0, nil
	}

	m := mask.Detect(img, p.config.Threshold)
	count := m.Count()
	if count == 0 {
		p.log.Debug("damage mask empty, skipping inpaint")
		return img, 0, nil
	}

	repaired, err := p.inpainter.Inpaint(img, m, p.config.InpaintRadius)
	if err != nil {
		return nil, count, fmt.Errorf("inpaint: %w", err)
	}
	if repaired == nil {
		return nil, count, errors.New("inpaint: no image returned")
	}

	p.log.WithField("pixels", count).Debug("damage mask inpainted")
	return repaired, count, nil
}
