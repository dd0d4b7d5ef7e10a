package gui

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/dudu/facerestore/internal/selector"
)

// DialogSelector asks for an image with fyne's open-file dialog. Select
// must not be called from the fyne event goroutine since it waits for
// the user.
type DialogSelector struct {
	window fyne.Window

	mu     sync.Mutex
	filter selector.Filter
}

// NewDialogSelector creates a selector parented to window
func NewDialogSelector(window fyne.Window, filter selector.Filter) *DialogSelector {
	return &DialogSelector{window: window, filter: filter}
}

// SetAllFiles toggles the "all files" fallback
func (s *DialogSelector) SetAllFiles(all bool) {
	s.mu.Lock()
	s.filter.AllFiles = all
	s.mu.Unlock()
}

func (s *DialogSelector) currentFilter() selector.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Select shows the dialog and waits for a choice; cancel yields ""
func (s *DialogSelector) Select(ctx context.Context) (string, error) {
	filter := s.currentFilter()
	type choice struct {
		path string
		err  error
	}
	done := make(chan choice, 1)

	fyne.Do(func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				done <- choice{err: err}
				return
			}
			defer reader.Close()
			done <- choice{path: reader.URI().Path()}
		}, s.window)

		if !filter.AllFiles {
			d.SetFilter(storage.NewExtensionFileFilter(filter.Extensions))
		}
		d.Resize(fyne.NewSize(800, 600))
		d.Show()
	})

	select {
	case c := <-done:
		if c.err != nil {
			return "", c.err
		}
		if c.path != "" && !filter.Match(c.path) {
			return "", nil
		}
		return c.path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

var _ selector.Selector = (*DialogSelector)(nil)
