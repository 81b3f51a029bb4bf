// Package directory holds shared pieces of the places directory adapters:
// sentinel errors, the caching decorator and the instrumentation wrapper.
package directory

import "errors"

var (
	// ErrMissingCredential means the directory cannot be called at all.
	ErrMissingCredential = errors.New("places directory credential missing")
	// ErrUpstream wraps transport, status and decoding failures.
	ErrUpstream = errors.New("places directory upstream error")
)

// Checker is implemented by directories that can report misconfiguration
// before any call is made.
type Checker interface {
	Ready() error
}

// Ready reports d's readiness; directories without a check are always ready.
func Ready(d any) error {
	if c, ok := d.(Checker); ok {
		return c.Ready()
	}
	return nil
}
