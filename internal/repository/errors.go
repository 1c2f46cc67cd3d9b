package repository

import "errors"

// ErrNotFound is returned when no snapshot exists for the requested
// contest. It abstracts the storage implementation away from the service
// layer.
var ErrNotFound = errors.New("snapshot not found")
