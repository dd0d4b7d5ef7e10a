// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and FACERESTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dudu/facerestore/internal/restore"
)

// EnvPrefix namespaces environment overrides, e.g. FACERESTORE_RESTORE_UPSCALE
const EnvPrefix = "FACERESTORE"

// Model names accepted by model.name
const (
	ModelGFPGAN     = "gfpgan"
	ModelCodeFormer = "codeformer"
	ModelGPEN       = "gpen"
	ModelStub       = "stub"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Restore RestoreConfig `mapstructure:"restore"`
	Model   ModelConfig   `mapstructure:"model"`
	Output  OutputConfig  `mapstructure:"output"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RestoreConfig struct {
	Policy         string  `mapstructure:"policy"`
	Threshold      int     `mapstructure:"threshold"`
	InpaintRadius  float64 `mapstructure:"inpaint_radius"`
	Upscale        int     `mapstructure:"upscale"`
	Weight         float64 `mapstructure:"weight"`
	OnlyCenterFace bool    `mapstructure:"only_center_face"`
	HasAligned     bool    `mapstructure:"has_aligned"`
	PreviewSize    int     `mapstructure:"preview_size"`
}

type ModelConfig struct {
	Name          string  `mapstructure:"name"`
	Dir           string  `mapstructure:"dir"`
	Detector      string  `mapstructure:"detector"`
	Face          string  `mapstructure:"face"`
	Background    string  `mapstructure:"background"`
	FaceSize      int     `mapstructure:"face_size"`
	DetectionSize int     `mapstructure:"detection_size"`
	ConfThreshold float64 `mapstructure:"conf_threshold"`
	NMSThreshold  float64 `mapstructure:"nms_threshold"`
	Fidelity      float64 `mapstructure:"fidelity"`
	OrtLibrary    string  `mapstructure:"ort_library"`
	CoreML        bool    `mapstructure:"coreml"`
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Name   string `mapstructure:"name"`
	Naming string `mapstructure:"naming"`
}

type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// SetDefaults registers every key so environment overrides are seen by Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("restore.policy", string(restore.PolicyDirect))
	v.SetDefault("restore.threshold", 240)
	v.SetDefault("restore.inpaint_radius", restore.DefaultInpaintRadius)
	v.SetDefault("restore.upscale", 2)
	v.SetDefault("restore.weight", restore.DefaultWeight)
	v.SetDefault("restore.only_center_face", false)
	v.SetDefault("restore.has_aligned", false)
	v.SetDefault("restore.preview_size", 400)

	v.SetDefault("model.name", ModelGFPGAN)
	v.SetDefault("model.dir", "models")
	v.SetDefault("model.detector", "det_10g.onnx")
	v.SetDefault("model.face", "GFPGANv1.3.onnx")
	v.SetDefault("model.background", "")
	v.SetDefault("model.face_size", 512)
	v.SetDefault("model.detection_size", 640)
	v.SetDefault("model.conf_threshold", 0.5)
	v.SetDefault("model.nms_threshold", 0.4)
	v.SetDefault("model.fidelity", 0.5)
	v.SetDefault("model.ort_library", "")
	v.SetDefault("model.coreml", false)

	v.SetDefault("output.dir", restore.DefaultOutputDir)
	v.SetDefault("output.name", restore.DefaultOutputName)
	v.SetDefault("output.naming", string(restore.NamingFixed))

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "facerestore")
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.prefix", "")
	v.SetDefault("minio.use_ssl", false)
}

// Load reads configuration into v. A missing .env is ignored; a missing
// explicit config file is an error. Pass a nil v for a fresh instance.
func Load(v *viper.Viper, path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	var errs []error

	if _, err := restore.ParsePolicy(c.Restore.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := restore.ParseNaming(c.Output.Naming); err != nil {
		errs = append(errs, err)
	}
	if c.Restore.Threshold < 0 || c.Restore.Threshold > 255 {
		errs = append(errs, fmt.Errorf("restore.threshold must be in [0,255], got %d", c.Restore.Threshold))
	}
	if c.Restore.Upscale < 1 {
		errs = append(errs, fmt.Errorf("restore.upscale must be >= 1, got %d", c.Restore.Upscale))
	}
	if c.Restore.Weight < 0 || c.Restore.Weight > 1 {
		errs = append(errs, fmt.Errorf("restore.weight must be in [0,1], got %g", c.Restore.Weight))
	}
	if c.Restore.HasAligned {
		// Aligned input yields restored faces only; there is no full image to save
		errs = append(errs, errors.New("restore.has_aligned is not supported when writing a restored image"))
	}
	if c.Restore.InpaintRadius <= 0 {
		errs = append(errs, fmt.Errorf("restore.inpaint_radius must be > 0, got %g", c.Restore.InpaintRadius))
	}
	if c.Model.Fidelity < 0 || c.Model.Fidelity > 1 {
		errs = append(errs, fmt.Errorf("model.fidelity must be in [0,1], got %g", c.Model.Fidelity))
	}

	switch c.Model.Name {
	case ModelGFPGAN, ModelCodeFormer, ModelStub:
	case ModelGPEN:
		if c.Model.FaceSize != 256 && c.Model.FaceSize != 512 {
			errs = append(errs, fmt.Errorf("model.face_size must be 256 or 512 for gpen, got %d", c.Model.FaceSize))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown model %q", c.Model.Name))
	}

	if c.MinIO.Enabled && c.MinIO.Bucket == "" {
		errs = append(errs, errors.New("minio.bucket is required when minio is enabled"))
	}

	return errors.Join(errs...)
}

// PipelineConfig converts to the restore package's configuration
func (c *Config) PipelineConfig() restore.Config {
	policy, _ := restore.ParsePolicy(c.Restore.Policy)
	naming, _ := restore.ParseNaming(c.Output.Naming)

	return restore.Config{
		Policy:        policy,
		Threshold:     uint8(c.Restore.Threshold),
		InpaintRadius: c.Restore.InpaintRadius,
		Enhance: restore.EnhanceOptions{
			HasAligned:     c.Restore.HasAligned,
			OnlyCenterFace: c.Restore.OnlyCenterFace,
			PasteBack:      true,
			Weight:         c.Restore.Weight,
		},
		OutputName:  c.Output.Name,
		Naming:      naming,
		PreviewSize: c.Restore.PreviewSize,
	}
}
