package downloader

import (
	"errors"
	"fmt"

	"ytfetch/pkg/models"
)

var (
	ErrInvalidURL        = errors.New("invalid URL")
	ErrMissingDependency = errors.New("missing dependency")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrUnexpected        = errors.New("unexpected failure")
	ErrArtifactMissing   = errors.New("download succeeded but file is missing")
)

// ExtractionError is returned by an Engine when the extractor itself reports
// a failure (private, removed, region-locked, network).
type ExtractionError struct {
	Detail string
}

func (e *ExtractionError) Error() string {
	return e.Detail
}

// ErrorKind returns the taxonomy tag for err, or "" for nil
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, models.ErrInvalidOption):
		return "invalid_option"
	case errors.Is(err, ErrMissingDependency):
		return "missing_dependency"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction_failure"
	case errors.Is(err, ErrArtifactMissing):
		return "artifact_missing"
	default:
		return "unexpected_failure"
	}
}

// classify maps whatever the engine returned onto the declared error kinds
func classify(err error) error {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return fmt.Errorf("%w: %s", ErrExtractionFailed, extErr.Detail)
	}
	return fmt.Errorf("%w: %w", ErrUnexpected, err)
}
