package app

import (
	"image"

	"github.com/sirupsen/logrus"

	"github.com/dudu/facerestore/internal/restore"
)

// LogNotifier reports session events through a logger, for headless use
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) NoImageSelected(message string) {
	n.Log.Warn(message)
}

func (n LogNotifier) ImageSelected(path string, preview image.Image) {
	b := preview.Bounds()
	n.Log.WithFields(logrus.Fields{
		"path":    path,
		"preview": b.Size().String(),
	}).Info("The selected image will be restored.")
}

func (n LogNotifier) Failed(err error) {
	n.Log.WithError(err).Error("operation failed")
}

func (n LogNotifier) RestorationComplete(result *restore.Result) {
	n.Log.WithFields(logrus.Fields{
		"output":   result.OutputPath,
		"faces":    result.Faces,
		"width":    result.Restored.Width,
		"height":   result.Restored.Height,
		"total_ms": result.Timing.Total.Milliseconds(),
	}).Infof("Restored image saved at %s", result.OutputPath)
}

var _ Notifier = LogNotifier{}
