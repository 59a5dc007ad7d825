package domain

import "errors"

var (
	// ErrJobNotFound is returned when a screening job cannot be found in the store
	ErrJobNotFound = errors.New("screening job not found")

	// ErrUnsupportedFormat is returned for a document format tag outside the supported set
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtractionFailed is returned when a document's content is corrupt or unreadable
	ErrExtractionFailed = errors.New("document extraction failed")

	// ErrEmptyDescription is returned when a job is submitted with a blank job description
	ErrEmptyDescription = errors.New("job description cannot be empty")

	// ErrNoDocuments is returned when a job is submitted without any documents
	ErrNoDocuments = errors.New("at least one document is required")
)
