package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelPath(t *testing.T) {
	const model = "GFPGANv1.3.onnx"

	touch := func(t *testing.T, fs afero.Fs, path string) {
		t.Helper()
		require.NoError(t, afero.WriteFile(fs, path, []byte("onnx"), 0o644))
	}

	t.Run("model dir wins", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		touch(t, fs, filepath.Join("models", model))
		touch(t, fs, filepath.Join("gfpgan", "weights", model))

		assert.Equal(t, filepath.Join("models", model), modelPath(fs, "models", model))
	})

	t.Run("pretrained models before weights", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		touch(t, fs, filepath.Join("experiments", "pretrained_models", model))
		touch(t, fs, filepath.Join("gfpgan", "weights", model))

		assert.Equal(t, filepath.Join("experiments", "pretrained_models", model), modelPath(fs, "models", model))
	})

	t.Run("weights last", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		touch(t, fs, filepath.Join("gfpgan", "weights", model))

		assert.Equal(t, filepath.Join("gfpgan", "weights", model), modelPath(fs, "models", model))
	})

	t.Run("missing everywhere names the model dir", func(t *testing.T) {
		assert.Equal(t, filepath.Join("models", model), modelPath(afero.NewMemMapFs(), "models", model))
	})

	t.Run("empty dir is the working directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		touch(t, fs, model)

		assert.Equal(t, model, modelPath(fs, "", model))
	})

	t.Run("absolute is kept", func(t *testing.T) {
		abs := filepath.Join(string(filepath.Separator), "opt", "models", model)
		assert.Equal(t, abs, modelPath(afero.NewMemMapFs(), "models", abs))
	})
}
