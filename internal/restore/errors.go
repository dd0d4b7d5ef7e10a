package restore

import "errors"

var (
	ErrNoInputSelected = errors.New("no input image selected")
	ErrDecodeFailure   = errors.New("failed to decode input image")
	ErrModelInvocation = errors.New("face restoration model failed")
	ErrOutputWrite     = errors.New("failed to write restored image")
	ErrBusy            = errors.New("a restoration is already running")
)
