package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facerestore/internal/restore"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "direct", cfg.Restore.Policy)
	assert.Equal(t, 240, cfg.Restore.Threshold)
	assert.Equal(t, 2, cfg.Restore.Upscale)
	assert.Equal(t, 0.5, cfg.Restore.Weight)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, "restored_img.png", cfg.Output.Name)

	assert.Equal(t, restore.DefaultConfig(), cfg.PipelineConfig())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FACERESTORE_RESTORE_POLICY", "inpaint")
	t.Setenv("FACERESTORE_RESTORE_UPSCALE", "4")
	t.Setenv("FACERESTORE_MODEL_NAME", "codeformer")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "inpaint", cfg.Restore.Policy)
	assert.Equal(t, 4, cfg.Restore.Upscale)
	assert.Equal(t, ModelCodeFormer, cfg.Model.Name)
	assert.Equal(t, restore.PolicyInpaint, cfg.PipelineConfig().Policy)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FACERESTORE_OUTPUT_NAMING=unique\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FACERESTORE_OUTPUT_NAMING") })

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "unique", cfg.Output.Naming)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "facerestore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
restore:
  weight: 0.7
  only_center_face: true
output:
  dir: out
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Restore.Weight)
	assert.True(t, cfg.Restore.OnlyCenterFace)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(nil, "does-not-exist.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load(nil, "")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"policy":    func(c *Config) { c.Restore.Policy = "sharpen" },
		"naming":    func(c *Config) { c.Output.Naming = "dated" },
		"threshold": func(c *Config) { c.Restore.Threshold = 300 },
		"upscale":   func(c *Config) { c.Restore.Upscale = 0 },
		"weight":    func(c *Config) { c.Restore.Weight = 1.5 },
		"radius":    func(c *Config) { c.Restore.InpaintRadius = 0 },
		"model":     func(c *Config) { c.Model.Name = "dalle" },
		"aligned":   func(c *Config) { c.Restore.HasAligned = true },
		"gpen size": func(c *Config) {
			c.Model.Name = ModelGPEN
			c.Model.FaceSize = 300
		},
		"bucket": func(c *Config) {
			c.MinIO.Enabled = true
			c.MinIO.Bucket = ""
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
