package inference

import (
	"fmt"
	"io"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

// TensorInfo describes one model input or output
type TensorInfo struct {
	Name  string
	Shape []int64
	Type  string
}

// ModelInfo is what Describe reports about a model file
type ModelInfo struct {
	Path        string
	Inputs      []TensorInfo
	Outputs     []TensorInfo
	Producer    string
	Version     int64
	Domain      string
	Description string
}

// Describe loads the model's signature and metadata. Initialize must have run.
func Describe(modelPath string) (*ModelInfo, error) {
	if !initialized {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model info: %w", err)
	}

	info := &ModelInfo{
		Path:    modelPath,
		Inputs:  tensorInfos(inputs),
		Outputs: tensorInfos(outputs),
	}

	metadata, err := ort.GetModelMetadata(modelPath)
	if err != nil {
		log.WithError(err).Debug("model metadata unavailable")
		return info, nil
	}
	defer metadata.Destroy()

	if v, err := metadata.GetProducerName(); err == nil {
		info.Producer = v
	}
	if v, err := metadata.GetVersion(); err == nil {
		info.Version = v
	}
	if v, err := metadata.GetDomain(); err == nil {
		info.Domain = v
	}
	if v, err := metadata.GetDescription(); err == nil {
		info.Description = v
	}

	return info, nil
}

// Write prints a human readable summary
func (m *ModelInfo) Write(w io.Writer) {
	fmt.Fprintf(w, "Model: %s\n", m.Path)

	fmt.Fprintf(w, "\nInputs (%d):\n", len(m.Inputs))
	for _, t := range m.Inputs {
		fmt.Fprintf(w, "  %s: shape=%s, type=%s\n", t.Name, formatShape(t.Shape), t.Type)
	}

	fmt.Fprintf(w, "\nOutputs (%d):\n", len(m.Outputs))
	for _, t := range m.Outputs {
		fmt.Fprintf(w, "  %s: shape=%s, type=%s\n", t.Name, formatShape(t.Shape), t.Type)
	}

	if m.Producer != "" || m.Domain != "" || m.Description != "" {
		fmt.Fprintln(w, "\nMetadata:")
		fmt.Fprintf(w, "  Producer: %s\n", m.Producer)
		fmt.Fprintf(w, "  Version: %d\n", m.Version)
		fmt.Fprintf(w, "  Domain: %s\n", m.Domain)
		fmt.Fprintf(w, "  Description: %s\n", m.Description)
	}
}

// formatShape renders dynamic (-1) dimensions as "?"
func formatShape(shape []int64) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		if d < 0 {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprint(d)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func tensorInfos(infos []ort.InputOutputInfo) []TensorInfo {
	out := make([]TensorInfo, len(infos))
	for i, info := range infos {
		out[i] = TensorInfo{
			Name:  info.Name,
			Shape: []int64(info.Dimensions),
			Type:  info.DataType.String(),
		}
	}
	return out
}
