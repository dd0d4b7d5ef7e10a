package ui

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// labelBarHeight is the strip above each panel holding its caption
const labelBarHeight = 32

// Window shows the input and restored previews side by side
type Window struct {
	window *gocv.Window
	name   string
}

// NewWindow creates a new comparison window
func NewWindow(name string) *Window {
	window := gocv.NewWindow(name)
	// Force window to appear on macOS
	window.MoveWindow(100, 100)
	return &Window{
		window: window,
		name:   name,
	}
}

// ShowComparison draws the two previews next to each other with captions
func (w *Window) ShowComparison(input, restored image.Image) error {
	left, err := panel(input, "Input Image")
	if err != nil {
		return err
	}
	defer left.Close()

	right, err := panel(restored, "Restored Image")
	if err != nil {
		return err
	}
	defer right.Close()

	height := max(left.Rows(), right.Rows())
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(240, 240, 240, 0), height, left.Cols()+right.Cols(), gocv.MatTypeCV8UC3)
	defer canvas.Close()

	leftROI := canvas.Region(image.Rect(0, 0, left.Cols(), left.Rows()))
	left.CopyTo(&leftROI)
	leftROI.Close()

	rightROI := canvas.Region(image.Rect(left.Cols(), 0, left.Cols()+right.Cols(), right.Rows()))
	right.CopyTo(&rightROI)
	rightROI.Close()

	w.window.ResizeWindow(canvas.Cols(), canvas.Rows())
	w.window.IMShow(canvas)
	return nil
}

// panel converts img to BGR and adds a caption bar above it
func panel(img image.Image, caption string) (gocv.Mat, error) {
	pic, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert preview: %w", err)
	}
	defer pic.Close()

	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(240, 240, 240, 0), pic.Rows()+labelBarHeight, pic.Cols(), gocv.MatTypeCV8UC3)
	roi := out.Region(image.Rect(0, labelBarHeight, pic.Cols(), pic.Rows()+labelBarHeight))
	pic.CopyTo(&roi)
	roi.Close()

	gocv.PutText(&out, caption, image.Pt(8, 22),
		gocv.FontHersheyPlain, 1.4, color.RGBA{R: 51, G: 51, B: 51, A: 255}, 1)
	return out, nil
}

// WaitKey waits for key press, returns key code or -1
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// Close closes the window
func (w *Window) Close() error {
	if w.window != nil {
		return w.window.Close()
	}
	return nil
}
