package enhancer

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facerestore/internal/inference"
)

// CodeFormer performs face restoration using the CodeFormer model
// Input: 512x512 aligned face, Output: 512x512 restored face
// Uses a codebook lookup transformer; fidelity trades quality (0) for
// faithfulness to the input (1)
type CodeFormer struct {
	*faceNet
	fidelity float64
}

// NewCodeFormer creates a new CodeFormer restorer
func NewCodeFormer(modelPath string, fidelity float64) (*CodeFormer, error) {
	net, err := newFaceNet("CodeFormer", modelPath, 512)
	if err != nil {
		return nil, err
	}

	c := &CodeFormer{faceNet: net, fidelity: fidelity}

	// Some exports bake the weight in and only take 'x'
	if len(net.session.InputNames()) > 1 {
		net.extra = c.weightInput
	}

	return c, nil
}

func (c *CodeFormer) weightInput() ([]ort.Value, error) {
	w, err := inference.CreateTensor([]int64{1}, []float64{c.fidelity})
	if err != nil {
		return nil, fmt.Errorf("failed to create fidelity tensor: %w", err)
	}
	return []ort.Value{w}, nil
}
