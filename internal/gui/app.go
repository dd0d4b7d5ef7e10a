// Package gui is the desktop front end: pick an image, restore it, and
// compare the two previews.
package gui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/dudu/facerestore/internal/app"
	"github.com/dudu/facerestore/internal/selector"
)

const AppID = "com.github.dudu.facerestore"

// Window is the main restoration window
type Window struct {
	window   fyne.Window
	session  *app.Session
	selector *DialogSelector
	log      logrus.FieldLogger

	selectButton  *widget.Button
	restoreButton *widget.Button
	status        *widget.Label
}

// NewWindow builds the window around a pipeline
func NewWindow(a fyne.App, pipeline app.Pipeline, log logrus.FieldLogger) *Window {
	fw := a.NewWindow("Image Restoration with GFPGAN")

	input := newPreview()
	restored := newPreview()

	sel := NewDialogSelector(fw, selector.DefaultFilter())
	n := &notifier{window: fw, input: input, restored: restored}

	w := &Window{
		window:   fw,
		session:  app.NewSession(sel, pipeline, n, log),
		selector: sel,
		log:      log,
		status:   widget.NewLabel(""),
	}

	w.selectButton = widget.NewButton("Select Image", w.selectImage)
	w.restoreButton = widget.NewButton("Restore Image", w.restoreImage)
	allFiles := widget.NewCheck("All files", sel.SetAllFiles)

	buttons := container.NewHBox(w.selectButton, w.restoreButton, allFiles)
	previews := container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel("Input Image"), nil, nil, nil, container.NewCenter(input)),
		container.NewBorder(widget.NewLabel("Restored Image"), nil, nil, nil, container.NewCenter(restored)),
	)

	fw.SetContent(container.NewBorder(buttons, w.status, nil, nil, previews))
	fw.Resize(fyne.NewSize(880, 560))
	return w
}

func newPreview() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	return img
}

// ShowAndRun displays the window and runs the event loop
func (w *Window) ShowAndRun() {
	w.window.ShowAndRun()
}

func (w *Window) selectImage() {
	w.selectButton.Disable()
	go func() {
		defer fyne.Do(w.selectButton.Enable)
		if err := w.session.SelectImage(context.Background()); err != nil {
			w.log.WithError(err).Debug("select image")
		}
	}()
}

func (w *Window) restoreImage() {
	w.restoreButton.Disable()
	w.status.SetText("Restoring...")
	go func() {
		defer fyne.Do(func() {
			w.restoreButton.Enable()
			w.status.SetText("")
		})
		if _, err := w.session.RestoreImage(context.Background()); err != nil {
			w.log.WithError(err).Debug("restore image")
		}
	}()
}
