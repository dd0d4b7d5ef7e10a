package selector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Match(t *testing.T) {
	f := DefaultFilter()

	assert.True(t, f.Match("/photos/a.jpg"))
	assert.True(t, f.Match("/photos/b.JPEG"))
	assert.True(t, f.Match("c.Png"))
	assert.False(t, f.Match("d.bmp"))
	assert.False(t, f.Match("noext"))
	assert.False(t, f.Match(""))

	f.AllFiles = true
	assert.True(t, f.Match("d.bmp"))
	assert.True(t, f.Match("noext"))
	assert.False(t, f.Match(""))
}

func TestDefaultFilter_IsACopy(t *testing.T) {
	f := DefaultFilter()
	f.Extensions[0] = ".gif"
	assert.Equal(t, ".jpg", ImageExtensions[0])
}

func TestStatic_Select(t *testing.T) {
	path, err := Static{Path: filepath.Join("photos", "a.jpg")}.Select(context.Background())
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "a.jpg", filepath.Base(path))
}

func TestStatic_SelectCancelled(t *testing.T) {
	path, err := Static{}.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, path)
}
