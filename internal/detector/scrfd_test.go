package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterbox(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
		wantScale     float32
	}{
		{"landscape", 1280, 720, 640, 360, 0.5},
		{"square", 320, 320, 640, 640, 2},
		{"thin column", 1, 1280, 1, 640, 0.5},
		{"thin row", 2560, 1, 640, 1, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, scale := letterbox(tt.width, tt.height, 640)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.InDelta(t, tt.wantScale, scale, 1e-6)
		})
	}
}

func TestPostprocessThresholdAndDecode(t *testing.T) {
	s := &SCRFD{
		inputSize:      32,
		confThreshold:  0.5,
		featureStrides: []int{8, 16, 32},
		numAnchors:     2,
	}

	outputs := make([][]float32, 9)
	for level, stride := range s.featureStrides {
		anchors := (32 / stride) * (32 / stride) * s.numAnchors
		outputs[level] = make([]float32, anchors)
		outputs[level+3] = make([]float32, anchors*4)
		outputs[level+6] = make([]float32, anchors*10)
	}

	// Stride 8 grid is 4x4; anchor 10 is position (1,1), first anchor
	outputs[0][10] = 0.9
	copy(outputs[3][10*4:], []float32{1, 1, 1, 1})
	copy(outputs[6][10*10:], []float32{-0.5, -0.5, 0.5, -0.5, 0, 0, -0.5, 0.5, 0.5, 0.5})
	// Below threshold
	outputs[0][0] = 0.3

	faces := s.postprocess(outputs, 0.5, 64, 64)
	if assert.Len(t, faces, 1) {
		f := faces[0]
		assert.InDelta(t, 0.9, f.Score, 1e-6)
		// centre (8,8) in input space, scale 0.5 back to the original
		assert.InDelta(t, 0, f.BoundingBox.X1, 1e-4)
		assert.InDelta(t, 0, f.BoundingBox.Y1, 1e-4)
		assert.InDelta(t, 32, f.BoundingBox.X2, 1e-4)
		assert.InDelta(t, 32, f.BoundingBox.Y2, 1e-4)
		assert.InDelta(t, 8, f.Landmarks.LeftEye.X, 1e-4)
		assert.InDelta(t, 24, f.Landmarks.RightEye.X, 1e-4)
		assert.InDelta(t, 16, f.Landmarks.Nose.Y, 1e-4)
	}
}
