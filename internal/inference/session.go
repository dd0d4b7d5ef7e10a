package inference

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

// Options configure the ONNX Runtime environment
type Options struct {
	LibraryPath string // shared library; empty picks a per-OS default
	CoreML      bool   // try the CoreML execution provider on macOS
	Log         logrus.FieldLogger
}

var (
	initialized bool
	useCoreML   bool
	log         logrus.FieldLogger = logrus.StandardLogger()
	initMu      sync.Mutex
)

// DefaultLibraryPath returns where the runtime library is expected on this OS
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "lib/libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}

// Initialize sets up ONNX Runtime environment (call once at startup)
func Initialize(opts Options) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	if opts.Log != nil {
		log = opts.Log
	}

	libPath := opts.LibraryPath
	if libPath == "" {
		libPath = DefaultLibraryPath()
	}
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime from %s: %w", libPath, err)
	}

	useCoreML = opts.CoreML && runtime.GOOS == "darwin"
	initialized = true
	log.WithFields(logrus.Fields{"library": libPath, "coreml": useCoreML}).Debug("onnx runtime initialized")
	return nil
}

// Shutdown cleans up ONNX Runtime environment
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}

	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Session wraps an ONNX Runtime inference session
type Session struct {
	session     *ort.DynamicAdvancedSession
	modelPath   string
	inputNames  []string
	outputNames []string
}

// NewSession creates a session for modelPath. Nil name lists are read from
// the model, in declaration order.
func NewSession(modelPath string, inputNames, outputNames []string) (*Session, error) {
	if !initialized {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	if inputNames == nil || outputNames == nil {
		inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read model info for %s: %w", modelPath, err)
		}
		if inputNames == nil {
			inputNames = infoNames(inputs)
		}
		if outputNames == nil {
			outputNames = infoNames(outputs)
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	provider := "cpu"
	if useCoreML {
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			log.WithError(err).WithField("model", modelPath).Warn("CoreML unavailable, using CPU")
		} else {
			provider = "coreml"
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	log.WithFields(logrus.Fields{
		"model":    modelPath,
		"provider": provider,
		"inputs":   inputNames,
		"outputs":  outputNames,
	}).Info("model loaded")

	return &Session{
		session:     session,
		modelPath:   modelPath,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// InputNames returns the bound input names
func (s *Session) InputNames() []string {
	return s.inputNames
}

// OutputNames returns the bound output names
func (s *Session) OutputNames() []string {
	return s.outputNames
}

// Run executes inference with the given inputs. Nil outputs are allocated
// by the runtime and must be destroyed by the caller.
func (s *Session) Run(inputs []ort.Value, outputs []ort.Value) error {
	if err := s.session.Run(inputs, outputs); err != nil {
		return fmt.Errorf("run %s: %w", s.modelPath, err)
	}
	return nil
}

// Destroy releases session resources
func (s *Session) Destroy() error {
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}

// CreateTensor creates a tensor with the given shape and data
func CreateTensor[T ort.TensorData](shape []int64, data []T) (*ort.Tensor[T], error) {
	return ort.NewTensor(ort.NewShape(shape...), data)
}

// CreateEmptyTensor creates a zeroed tensor for output
func CreateEmptyTensor[T ort.TensorData](shape []int64) (*ort.Tensor[T], error) {
	return ort.NewEmptyTensor[T](ort.NewShape(shape...))
}

func infoNames(infos []ort.InputOutputInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}
