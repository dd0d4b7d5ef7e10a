package enhancer

// GPENSize represents the GPEN model input size
type GPENSize int

const (
	GPEN256 GPENSize = 256
	GPEN512 GPENSize = 512
)

// GPEN performs fast face enhancement using GPEN-BFR model
type GPEN struct {
	*faceNet
}

// NewGPEN creates a new GPEN face enhancer
func NewGPEN(modelPath string, size GPENSize) (*GPEN, error) {
	net, err := newFaceNet("GPEN", modelPath, int(size))
	if err != nil {
		return nil, err
	}
	return &GPEN{faceNet: net}, nil
}
