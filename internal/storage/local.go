package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Local writes outputs into a directory of an afero filesystem.
// Writes go to a temp file in the same directory and are renamed over the
// target, so a failed write never leaves a truncated output behind.
type Local struct {
	fs  afero.Fs
	dir string
	log logrus.FieldLogger
}

// NewLocal creates a store rooted at dir. The directory is created lazily on
// the first Save so a missing results folder is not an error at startup.
func NewLocal(fs afero.Fs, dir string, log logrus.FieldLogger) *Local {
	if dir == "" {
		dir = "."
	}
	return &Local{fs: fs, dir: dir, log: log}
}

// Dir returns the output directory
func (s *Local) Dir() string {
	return s.dir
}

// Save atomically writes data to dir/name, replacing any previous file
func (s *Local) Save(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyData
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", s.dir, err)
	}

	target := filepath.Join(s.dir, name)

	tmp, err := afero.TempFile(s.fs, s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file in %s: %w", s.dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil {
			s.log.WithError(rmErr).WithField("path", tmpName).Warn("failed to remove temp file")
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close %s: %w", tmpName, err)
	}

	if exists, _ := afero.Exists(s.fs, target); exists {
		s.log.WithField("path", target).Debug("output exists, will be overwritten")
	}

	if err := s.fs.Rename(tmpName, target); err != nil {
		cleanup()
		return "", fmt.Errorf("rename %s to %s: %w", tmpName, target, err)
	}

	s.log.WithFields(logrus.Fields{
		"path":  target,
		"bytes": len(data),
	}).Info("output saved")

	return target, nil
}

var _ Store = (*Local)(nil)
