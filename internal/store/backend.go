package store

import "errors"

// ErrKeyNotFound is returned by a Backend when no value has been written
// under the requested key.
var ErrKeyNotFound = errors.New("store: key not found")
