package app

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facerestore/internal/restore"
)

type fakeSelector struct {
	path string
	err  error
}

func (f fakeSelector) Select(context.Context) (string, error) { return f.path, f.err }

type fakePipeline struct {
	previewErr error
	restoreErr error
	restored   []string
}

func (f *fakePipeline) Preview(string) (*image.NRGBA, error) {
	if f.previewErr != nil {
		return nil, f.previewErr
	}
	return image.NewNRGBA(image.Rect(0, 0, 4, 2)), nil
}

func (f *fakePipeline) Restore(_ context.Context, path string) (*restore.Result, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	f.restored = append(f.restored, path)
	return &restore.Result{OutputPath: "results/restored_img.png"}, nil
}

type event struct {
	kind string
	arg  string
}

type recorder struct {
	events []event
}

func (r *recorder) NoImageSelected(msg string) { r.events = append(r.events, event{"none", msg}) }
func (r *recorder) ImageSelected(path string, _ image.Image) {
	r.events = append(r.events, event{"selected", path})
}
func (r *recorder) Failed(err error) { r.events = append(r.events, event{"failed", err.Error()}) }
func (r *recorder) RestorationComplete(res *restore.Result) {
	r.events = append(r.events, event{"complete", res.OutputPath})
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSession_RestoreWithoutSelection(t *testing.T) {
	p := &fakePipeline{}
	rec := &recorder{}
	s := NewSession(fakeSelector{}, p, rec, quietLogger())

	_, err := s.RestoreImage(context.Background())
	require.ErrorIs(t, err, restore.ErrNoInputSelected)
	assert.Empty(t, p.restored)
	assert.Equal(t, []event{{"none", MsgSelectFirst}}, rec.events)
}

func TestSession_CancelledSelection(t *testing.T) {
	rec := &recorder{}
	s := NewSession(fakeSelector{}, &fakePipeline{}, rec, quietLogger())

	require.NoError(t, s.SelectImage(context.Background()))
	assert.Empty(t, s.Path())
	assert.Equal(t, []event{{"none", MsgSelectToRestore}}, rec.events)
}

func TestSession_SelectThenRestore(t *testing.T) {
	p := &fakePipeline{}
	rec := &recorder{}
	s := NewSession(fakeSelector{path: "/photos/a.jpg"}, p, rec, quietLogger())

	require.NoError(t, s.SelectImage(context.Background()))
	assert.Equal(t, "/photos/a.jpg", s.Path())

	res, err := s.RestoreImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "results/restored_img.png", res.OutputPath)
	assert.Equal(t, []string{"/photos/a.jpg"}, p.restored)
	assert.Equal(t, []event{
		{"selected", "/photos/a.jpg"},
		{"complete", "results/restored_img.png"},
	}, rec.events)
}

func TestSession_DecodeErrorClearsSelection(t *testing.T) {
	p := &fakePipeline{previewErr: restore.ErrDecodeFailure}
	rec := &recorder{}
	s := NewSession(fakeSelector{path: "/photos/broken.png"}, p, rec, quietLogger())

	err := s.SelectImage(context.Background())
	require.ErrorIs(t, err, restore.ErrDecodeFailure)
	assert.Empty(t, s.Path())
	require.Len(t, rec.events, 1)
	assert.Equal(t, "failed", rec.events[0].kind)
}

func TestSession_RestoreFailureIsReported(t *testing.T) {
	p := &fakePipeline{restoreErr: errors.Join(restore.ErrModelInvocation, errors.New("boom"))}
	rec := &recorder{}
	s := NewSession(fakeSelector{path: "/photos/a.jpg"}, p, rec, quietLogger())
	require.NoError(t, s.SelectImage(context.Background()))

	_, err := s.RestoreImage(context.Background())
	require.ErrorIs(t, err, restore.ErrModelInvocation)
	assert.Equal(t, "failed", rec.events[len(rec.events)-1].kind)

	// selection survives a failed run
	assert.Equal(t, "/photos/a.jpg", s.Path())
}

func TestSession_SelectorError(t *testing.T) {
	rec := &recorder{}
	s := NewSession(fakeSelector{err: errors.New("no display")}, &fakePipeline{}, rec, quietLogger())

	require.Error(t, s.SelectImage(context.Background()))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "failed", rec.events[0].kind)
}
