package enhancer

const gfpganInputSize = 512

// GFPGAN restores 512x512 aligned faces (GFPGANv1.3/1.4 clean architecture)
type GFPGAN struct {
	*faceNet
}

// NewGFPGAN creates a new GFPGAN face restorer
func NewGFPGAN(modelPath string) (*GFPGAN, error) {
	net, err := newFaceNet("GFPGAN", modelPath, gfpganInputSize)
	if err != nil {
		return nil, err
	}
	return &GFPGAN{faceNet: net}, nil
}
