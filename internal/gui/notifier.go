package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"

	"github.com/dudu/facerestore/internal/restore"
)

// notifier shows session events as modal dialogs and updates the previews.
// Calls arrive from worker goroutines, so every widget touch goes
// through fyne.Do.
type notifier struct {
	window   fyne.Window
	input    *canvas.Image
	restored *canvas.Image
}

func (n *notifier) NoImageSelected(message string) {
	fyne.Do(func() {
		dialog.ShowInformation("No Image Selected", message, n.window)
	})
}

func (n *notifier) ImageSelected(_ string, preview image.Image) {
	fyne.Do(func() {
		setImage(n.input, preview)
		n.restored.Image = nil
		n.restored.Refresh()
		dialog.ShowInformation("Image Selected", "The selected image will be restored.", n.window)
	})
}

func (n *notifier) Failed(err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("error: %w", err), n.window)
	})
}

func (n *notifier) RestorationComplete(result *restore.Result) {
	fyne.Do(func() {
		setImage(n.restored, result.RestoredPreview)
		dialog.ShowInformation("Restoration Complete",
			fmt.Sprintf("Restored image saved at %s", result.OutputPath), n.window)
	})
}

func setImage(c *canvas.Image, img image.Image) {
	c.Image = img
	b := img.Bounds()
	c.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	c.Refresh()
}
