package cities

import "errors"

// ErrInvalidTable is returned when city data cannot be read or has no usable entries.
var ErrInvalidTable = errors.New("invalid city table")
