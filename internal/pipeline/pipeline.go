// Package pipeline assembles a restore.Pipeline from configuration: models,
// inpainter and output stores.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/dudu/facerestore/internal/config"
	"github.com/dudu/facerestore/internal/detector"
	"github.com/dudu/facerestore/internal/enhancer"
	"github.com/dudu/facerestore/internal/inference"
	"github.com/dudu/facerestore/internal/inpaint"
	"github.com/dudu/facerestore/internal/restore"
	"github.com/dudu/facerestore/internal/restorer"
	"github.com/dudu/facerestore/internal/restorer/stub"
	"github.com/dudu/facerestore/internal/storage"
)

// Runtime owns a configured pipeline and the models behind it
type Runtime struct {
	*restore.Pipeline
	closers []func() error
}

// New builds the pipeline described by cfg
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Runtime, error) {
	rt := &Runtime{}

	faceRestorer, err := rt.newRestorer(afero.NewOsFs(), cfg, log)
	if err != nil {
		rt.Close()
		return nil, err
	}

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		rt.Close()
		return nil, err
	}

	p, err := restore.New(cfg.PipelineConfig(), faceRestorer, store,
		restore.WithInpainter(inpaint.Telea{}),
		restore.WithFs(afero.NewOsFs()),
		restore.WithLogger(log),
	)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	rt.Pipeline = p

	log.WithFields(logrus.Fields{
		"model":   cfg.Model.Name,
		"policy":  cfg.Restore.Policy,
		"upscale": cfg.Restore.Upscale,
		"weight":  cfg.Restore.Weight,
		"output":  filepath.Join(cfg.Output.Dir, cfg.Output.Name),
	}).Info("pipeline ready")

	return rt, nil
}

func (rt *Runtime) newRestorer(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) (restore.FaceRestorer, error) {
	if cfg.Model.Name == config.ModelStub {
		log.Warn("using stub restorer, faces are not restored")
		return stub.NewUpscaler(cfg.Restore.Upscale), nil
	}

	if err := inference.Initialize(inference.Options{
		LibraryPath: cfg.Model.OrtLibrary,
		CoreML:      cfg.Model.CoreML,
		Log:         log,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize inference: %w", err)
	}
	rt.closers = append(rt.closers, inference.Shutdown)

	det, err := detector.NewSCRFD(
		modelPath(fs, cfg.Model.Dir, cfg.Model.Detector),
		cfg.Model.DetectionSize,
		float32(cfg.Model.ConfThreshold),
		float32(cfg.Model.NMSThreshold),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	net, err := newFaceNet(cfg, modelPath(fs, cfg.Model.Dir, cfg.Model.Face))
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("failed to create face model: %w", err)
	}

	var bg enhancer.Upsampler
	if cfg.Model.Background != "" {
		bg, err = enhancer.NewRealESRGAN(modelPath(fs, cfg.Model.Dir, cfg.Model.Background), enhancer.DefaultTile)
		if err != nil {
			det.Close()
			net.Close()
			return nil, fmt.Errorf("failed to create background upsampler: %w", err)
		}
	}

	r := restorer.New(det, net, bg, cfg.Restore.Upscale, log)
	// Sessions go before the environment
	rt.closers = append([]func() error{r.Close}, rt.closers...)
	return r, nil
}

func newFaceNet(cfg *config.Config, path string) (enhancer.FaceNet, error) {
	switch cfg.Model.Name {
	case config.ModelCodeFormer:
		return enhancer.NewCodeFormer(path, cfg.Model.Fidelity)
	case config.ModelGPEN:
		return enhancer.NewGPEN(path, enhancer.GPENSize(cfg.Model.FaceSize))
	default:
		return enhancer.NewGFPGAN(path)
	}
}

func newStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (storage.Store, error) {
	local := storage.NewLocal(afero.NewOsFs(), cfg.Output.Dir, log)
	if !cfg.MinIO.Enabled {
		return local, nil
	}

	remote, err := storage.NewMinIO(ctx, storage.MinIOConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		Region:    cfg.MinIO.Region,
		Prefix:    cfg.MinIO.Prefix,
		UseSSL:    cfg.MinIO.UseSSL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}
	return storage.NewMirrored(local, remote, log), nil
}

// fallbackModelDirs are searched, in order, when a model is not in model.dir
var fallbackModelDirs = []string{
	filepath.Join("experiments", "pretrained_models"),
	filepath.Join("gfpgan", "weights"),
}

// modelPath resolves a relative model name against dir, then the fallback
// directories. When no candidate exists the dir path is returned so the
// load error names it.
func modelPath(fs afero.Fs, dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	primary := filepath.Join(dir, name)
	candidates := []string{primary}
	for _, d := range fallbackModelDirs {
		candidates = append(candidates, filepath.Join(d, name))
	}

	for _, c := range candidates {
		if ok, _ := afero.Exists(fs, c); ok {
			return c
		}
	}
	return primary
}

// Close releases models and the inference environment
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
