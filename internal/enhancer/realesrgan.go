package enhancer

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facerestore/internal/inference"
	"github.com/dudu/facerestore/internal/raster"
)

const (
	realESRGANScale = 4
	// DefaultTile and DefaultTilePad bound memory on large backgrounds
	DefaultTile    = 400
	DefaultTilePad = 10
)

// RealESRGAN upscales backgrounds 4x using the Real-ESRGAN x4v3 model
type RealESRGAN struct {
	session *inference.Session
	tile    int
}

// NewRealESRGAN creates a new Real-ESRGAN upsampler. tile <= 0 runs whole images.
func NewRealESRGAN(modelPath string, tile int) (*RealESRGAN, error) {
	session, err := inference.NewSession(modelPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RealESRGAN session: %w", err)
	}

	return &RealESRGAN{
		session: session,
		tile:    tile,
	}, nil
}

// Scale returns the fixed upscale factor
func (r *RealESRGAN) Scale() int {
	return realESRGANScale
}

// Upscale enlarges img 4x, tile by tile
func (r *RealESRGAN) Upscale(img *raster.Image) (*raster.Image, error) {
	return Tiled(img, r.tile, DefaultTilePad, realESRGANScale, r.run)
}

func (r *RealESRGAN) run(img *raster.Image) (*raster.Image, error) {
	height, width := img.Height, img.Width

	inputTensor, err := inference.CreateTensor([]int64{1, 3, int64(height), int64(width)}, ToNCHW(img, Unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	// Output is 4x the input size
	outHeight := height * realESRGANScale
	outWidth := width * realESRGANScale

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 3, int64(outHeight), int64(outWidth)})
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := r.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("RealESRGAN inference failed: %w", err)
	}

	return FromNCHW(outputTensor.GetData(), outWidth, outHeight, Unit), nil
}

// Close releases resources
func (r *RealESRGAN) Close() error {
	return r.session.Destroy()
}
