package repository

import "errors"

// Sentinel kinds for catalog store errors.
var (
	ErrNotReady         = errors.New("catalog not loaded yet")
	ErrAlreadyPublished = errors.New("catalog already published")
	ErrNilCatalog       = errors.New("nil catalog")
)
