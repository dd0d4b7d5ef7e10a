package detector

import (
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/facerestore/internal/face"
	"github.com/dudu/facerestore/internal/inference"
)

// SCRFD implements the SCRFD face detector (insightface det_10g and friends)
type SCRFD struct {
	session        *inference.Session
	inputSize      int
	confThreshold  float32
	nmsThreshold   float32
	featureStrides []int
	numAnchors     int
}

// NewSCRFD creates a new SCRFD detector
func NewSCRFD(modelPath string, inputSize int, confThreshold, nmsThreshold float32) (*SCRFD, error) {
	// Output names differ between exports; the order is always
	// scores, boxes, keypoints for strides 8, 16, 32
	session, err := inference.NewSession(modelPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCRFD session: %w", err)
	}
	if n := len(session.OutputNames()); n != 9 {
		session.Destroy()
		return nil, fmt.Errorf("SCRFD model %s has %d outputs, want 9 (with keypoints)", modelPath, n)
	}

	return &SCRFD{
		session:        session,
		inputSize:      inputSize,
		confThreshold:  confThreshold,
		nmsThreshold:   nmsThreshold,
		featureStrides: []int{8, 16, 32},
		numAnchors:     2, // anchors per position
	}, nil
}

// Detect finds faces in a BGR image, highest score first
func (s *SCRFD) Detect(img gocv.Mat) ([]face.Face, error) {
	origHeight := img.Rows()
	origWidth := img.Cols()

	blob, scale := s.preprocess(img)
	defer blob.Close()

	blobData, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read input blob: %w", err)
	}
	floatData := make([]float32, len(blobData))
	copy(floatData, blobData)

	inputTensor, err := inference.CreateTensor([]int64{1, 3, int64(s.inputSize), int64(s.inputSize)}, floatData)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	// Let the runtime allocate outputs; their rank varies between exports
	outputs := make([]ort.Value, 9)
	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	data := make([][]float32, len(outputs))
	for i, v := range outputs {
		t, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("output %d is not a float32 tensor", i)
		}
		data[i] = t.GetData()
	}

	faces := s.postprocess(data, scale, origWidth, origHeight)
	return face.NMS(faces, s.nmsThreshold), nil
}

// preprocess letterboxes into the top-left of a square input and
// normalizes to (x - 127.5) / 128 in RGB order
func (s *SCRFD) preprocess(img gocv.Mat) (gocv.Mat, float32) {
	newWidth, newHeight, scale := letterbox(img.Cols(), img.Rows(), s.inputSize)

	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationLinear)
	defer resized.Close()

	padded := gocv.NewMatWithSize(s.inputSize, s.inputSize, gocv.MatTypeCV8UC3)
	defer padded.Close()
	padded.SetTo(gocv.NewScalar(0, 0, 0, 0))

	roi := padded.Region(image.Rect(0, 0, newWidth, newHeight))
	resized.CopyTo(&roi)
	roi.Close()

	blob := gocv.BlobFromImage(padded, 1.0/128.0, image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)

	return blob, scale
}

// letterbox fits width x height into a square of side size. Each side is
// at least one pixel so very thin images still resize.
func letterbox(width, height, size int) (int, int, float32) {
	scale := float32(size) / float32(max(height, width))
	newWidth := max(1, int(float32(width)*scale))
	newHeight := max(1, int(float32(height)*scale))
	return newWidth, newHeight, scale
}

// postprocess decodes distance-to-edge boxes and keypoints per anchor
func (s *SCRFD) postprocess(outputs [][]float32, scale float32, origWidth, origHeight int) []face.Face {
	var faces []face.Face

	for level, stride := range s.featureStrides {
		fmSize := s.inputSize / stride
		st := float32(stride)

		scoreData := outputs[level]
		bboxData := outputs[level+3]
		kpsData := outputs[level+6]

		anchorIdx := 0
		for y := 0; y < fmSize; y++ {
			for x := 0; x < fmSize; x++ {
				for a := 0; a < s.numAnchors; a++ {
					score := scoreData[anchorIdx]

					if score >= s.confThreshold {
						cx := float32(x) * st
						cy := float32(y) * st

						b := bboxData[anchorIdx*4:]
						box := face.BoundingBox{
							X1: clamp((cx-b[0]*st)/scale, 0, float32(origWidth)),
							Y1: clamp((cy-b[1]*st)/scale, 0, float32(origHeight)),
							X2: clamp((cx+b[2]*st)/scale, 0, float32(origWidth)),
							Y2: clamp((cy+b[3]*st)/scale, 0, float32(origHeight)),
						}

						k := kpsData[anchorIdx*10:]
						pt := func(i int) face.Point {
							return face.Point{X: (cx + k[i*2]*st) / scale, Y: (cy + k[i*2+1]*st) / scale}
						}

						faces = append(faces, face.Face{
							BoundingBox: box,
							Landmarks: face.Landmarks{
								LeftEye:    pt(0),
								RightEye:   pt(1),
								Nose:       pt(2),
								LeftMouth:  pt(3),
								RightMouth: pt(4),
							},
							Score: score,
						})
					}
					anchorIdx++
				}
			}
		}
	}

	return faces
}

// Close releases detector resources
func (s *SCRFD) Close() error {
	return s.session.Destroy()
}

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
