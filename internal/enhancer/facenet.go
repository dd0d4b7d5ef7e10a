package enhancer

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facerestore/internal/inference"
	"github.com/dudu/facerestore/internal/raster"
)

// FaceNet restores one aligned face crop of Size() x Size() pixels
type FaceNet interface {
	Name() string
	Size() int
	Restore(face *raster.Image) (*raster.Image, error)
	Close() error
}

// Upsampler enlarges whole images by Scale()
type Upsampler interface {
	Scale() int
	Upscale(img *raster.Image) (*raster.Image, error)
	Close() error
}

// faceNet is the shared single-image-in, single-image-out session runner
type faceNet struct {
	name    string
	session *inference.Session
	size    int
	// extra inputs appended after the image tensor
	extra func() ([]ort.Value, error)
}

func newFaceNet(name, modelPath string, size int) (*faceNet, error) {
	session, err := inference.NewSession(modelPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s session: %w", name, err)
	}
	return &faceNet{name: name, session: session, size: size}, nil
}

func (n *faceNet) Name() string { return n.name }

func (n *faceNet) Size() int { return n.size }

// Restore runs the network on a BGR face crop and returns a BGR face
func (n *faceNet) Restore(face *raster.Image) (*raster.Image, error) {
	if face.Width != n.size || face.Height != n.size {
		return nil, fmt.Errorf("%s expects a %dx%d face, got %dx%d", n.name, n.size, n.size, face.Width, face.Height)
	}

	inputTensor, err := inference.CreateTensor([]int64{1, 3, int64(n.size), int64(n.size)}, ToNCHW(face, Signed))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	inputs := []ort.Value{inputTensor}
	if n.extra != nil {
		extra, err := n.extra()
		if err != nil {
			return nil, err
		}
		defer func() {
			for _, v := range extra {
				v.Destroy()
			}
		}()
		inputs = append(inputs, extra...)
	}

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 3, int64(n.size), int64(n.size)})
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := n.session.Run(inputs, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("%s inference failed: %w", n.name, err)
	}

	return FromNCHW(outputTensor.GetData(), n.size, n.size, Signed), nil
}

// Close releases resources
func (n *faceNet) Close() error {
	return n.session.Destroy()
}
