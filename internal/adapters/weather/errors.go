// Package weather holds the shared pieces of the live weather adapters.
package weather

import "errors"

// ErrUpstream wraps transport, status and decoding failures of a provider.
var ErrUpstream = errors.New("weather upstream error")
