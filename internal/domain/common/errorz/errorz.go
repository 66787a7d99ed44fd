package errorz

import "errors"

var (
	ErrInvalidContainerSize = errors.New("container size must be positive")

	ErrIngestFailure     = errors.New("logo ingest failed")
	ErrEmptySource       = errors.New("empty logo source")
	ErrUnsafeURL         = errors.New("unsafe logo url")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrLogoTooLarge      = errors.New("logo exceeds size limit")

	ErrExportFailure = errors.New("export failed")

	ErrSessionClosed = errors.New("session closed")
)
