package restore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dudu/facerestore/internal/mask"
	"github.com/dudu/facerestore/internal/preview"
)

// Policy selects the pre-processing applied before the model runs
type Policy string

const (
	PolicyDirect  Policy = "direct"  // decode, then restore
	PolicyInpaint Policy = "inpaint" // threshold damage mask, inpaint, then restore
)

// ParsePolicy validates a policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyDirect, PolicyInpaint:
		return p, nil
	default:
		return "", fmt.Errorf("unknown policy %q (use %q or %q)", s, PolicyDirect, PolicyInpaint)
	}
}

// Naming decides the output file name
type Naming string

const (
	NamingFixed  Naming = "fixed"  // always the configured name, overwritten per run
	NamingInput  Naming = "input"  // <input-base>_restored.png
	NamingUnique Naming = "unique" // restored_<uuid>.png
)

// ParseNaming validates a naming mode
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(strings.TrimSpace(s))); n {
	case NamingFixed, NamingInput, NamingUnique:
		return n, nil
	default:
		return "", fmt.Errorf("unknown output naming %q (use fixed, input or unique)", s)
	}
}

const (
	DefaultOutputDir     = "results"
	DefaultOutputName    = "restored_img.png"
	DefaultInpaintRadius = 3
)

// Config holds pipeline configuration
type Config struct {
	Policy        Policy
	Threshold     uint8
	InpaintRadius float64
	Enhance       EnhanceOptions
	OutputName    string
	Naming        Naming
	PreviewSize   int
}

// DefaultConfig returns the reference parameter set: paste back all faces
// with blend weight 0.5 into results/restored_img.png.
func DefaultConfig() Config {
	return Config{
		Policy:        PolicyDirect,
		Threshold:     mask.DefaultThreshold,
		InpaintRadius: DefaultInpaintRadius,
		Enhance: EnhanceOptions{
			HasAligned:     false,
			OnlyCenterFace: false,
			PasteBack:      true,
			Weight:         DefaultWeight,
		},
		OutputName:  DefaultOutputName,
		Naming:      NamingFixed,
		PreviewSize: preview.DefaultSize,
	}
}

// outputName resolves the file name for a run on inputPath
func (c Config) outputName(inputPath string) string {
	switch c.Naming {
	case NamingInput:
		base := filepath.Base(inputPath)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		return base + "_restored.png"
	case NamingUnique:
		return "restored_" + uuid.NewString() + ".png"
	default:
		if c.OutputName == "" {
			return DefaultOutputName
		}
		return c.OutputName
	}
}
