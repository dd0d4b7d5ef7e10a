// Package app holds the select-then-restore session logic shared by the
// command line and the desktop window.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dudu/facerestore/internal/restore"
	"github.com/dudu/facerestore/internal/selector"
)

const (
	MsgSelectToRestore = "Please select an image to restore."
	MsgSelectFirst     = "Please select an image first."
)

// Pipeline is the part of restore.Pipeline the session drives
type Pipeline interface {
	Restore(ctx context.Context, path string) (*restore.Result, error)
	Preview(path string) (*image.NRGBA, error)
}

// Notifier presents session events to the user
type Notifier interface {
	NoImageSelected(message string)
	ImageSelected(path string, preview image.Image)
	Failed(err error)
	RestorationComplete(result *restore.Result)
}

// Session remembers the selected image between user actions
type Session struct {
	selector selector.Selector
	pipeline Pipeline
	notifier Notifier
	log      logrus.FieldLogger

	mu   sync.Mutex
	path string
}

// NewSession wires a selector, pipeline and notifier together
func NewSession(sel selector.Selector, p Pipeline, n Notifier, log logrus.FieldLogger) *Session {
	return &Session{selector: sel, pipeline: p, notifier: n, log: log}
}

// Path returns the currently selected image, or ""
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *Session) setPath(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

// SelectImage asks the selector for an image and previews it. Cancelling
// clears the selection. An undecodable file is reported and not kept.
func (s *Session) SelectImage(ctx context.Context) error {
	path, err := s.selector.Select(ctx)
	if err != nil {
		s.notifier.Failed(fmt.Errorf("select image: %w", err))
		return err
	}

	if path == "" {
		s.setPath("")
		s.log.Info("no image selected")
		s.notifier.NoImageSelected(MsgSelectToRestore)
		return nil
	}

	s.log.WithField("path", path).Info("image selected")

	thumb, err := s.pipeline.Preview(path)
	if err != nil {
		s.setPath("")
		s.log.WithError(err).WithField("path", path).Error("failed to open image")
		s.notifier.Failed(err)
		return err
	}

	s.setPath(path)
	s.notifier.ImageSelected(path, thumb)
	return nil
}

// RestoreImage runs the pipeline on the selected image and reports the outcome
func (s *Session) RestoreImage(ctx context.Context) (*restore.Result, error) {
	path := s.Path()
	if path == "" {
		s.notifier.NoImageSelected(MsgSelectFirst)
		return nil, restore.ErrNoInputSelected
	}

	result, err := s.pipeline.Restore(ctx, path)
	if err != nil {
		entry := s.log.WithError(err).WithField("path", path)
		if errors.Is(err, restore.ErrBusy) {
			entry.Warn("restoration already running")
		} else {
			entry.Error("restoration failed")
		}
		s.notifier.Failed(err)
		return nil, err
	}

	s.notifier.RestorationComplete(result)
	return result, nil
}
