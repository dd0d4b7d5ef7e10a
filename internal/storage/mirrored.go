package storage

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mirrored writes to a primary store and copies the result to a secondary.
// Only the primary decides success; mirror failures are logged.
type Mirrored struct {
	primary Store
	mirror  Store
	log     logrus.FieldLogger
}

// NewMirrored wraps primary with a best-effort mirror
func NewMirrored(primary, mirror Store, log logrus.FieldLogger) *Mirrored {
	return &Mirrored{primary: primary, mirror: mirror, log: log}
}

// Save writes to the primary store, then the mirror
func (m *Mirrored) Save(ctx context.Context, name string, data []byte) (string, error) {
	location, err := m.primary.Save(ctx, name, data)
	if err != nil {
		return "", err
	}

	if _, err := m.mirror.Save(ctx, name, data); err != nil {
		m.log.WithError(err).WithField("name", name).Warn("mirror upload failed")
	}

	return location, nil
}

var _ Store = (*Mirrored)(nil)
