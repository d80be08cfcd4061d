package sheets

import "errors"

// Sentinel kinds for ingestion errors. None of them escape Loader.Load.
var (
	ErrFetch         = errors.New("fetch failed")
	ErrStatus        = errors.New("unexpected status")
	ErrNotConfigured = errors.New("sources not configured")
	ErrNoRows        = errors.New("no valid game rows")
	ErrSnapshot      = errors.New("bundled snapshot unreadable")
)
