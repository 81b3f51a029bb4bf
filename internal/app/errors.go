package service

import "errors"

var (
	// ErrMissingCredential means the places directory is not usable; the
	// feed fails as a configuration error and is not retried.
	ErrMissingCredential = errors.New("missing places directory credential")
	// ErrNotStarted is returned by Feed before Start.
	ErrNotStarted = errors.New("service not started")
)
