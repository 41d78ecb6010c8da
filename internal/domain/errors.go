package domain

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrResourceNotFound signals that a hit could not be resolved to a live resource.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrDocumentNotFound signals a missing index document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrExtraction signals that content extraction failed for a resource.
	ErrExtraction = errors.New("content extraction failed")
	// ErrInvalidFieldConfig signals a malformed field-mapping configuration.
	ErrInvalidFieldConfig = errors.New("invalid field configuration")
	// ErrUnknownLocale signals a configured locale that cannot be parsed.
	ErrUnknownLocale = errors.New("unknown locale")
	// ErrUnknownResourceType signals a resource type with no registered document factory.
	ErrUnknownResourceType = errors.New("unknown resource type")
	// ErrWriterClosed signals an operation on a closed index writer.
	ErrWriterClosed = errors.New("index writer closed")
)

// SearchError is the umbrella error returned by the search entry point.
// It carries the original query in URL-encoded form and the cause.
type SearchError struct {
	Query string
	Err   error
}

// NewSearchError wraps err with the encoded query terms.
func NewSearchError(terms string, err error) *SearchError {
	return &SearchError{Query: url.QueryEscape(terms), Err: err}
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// ExtractionError wraps ErrExtraction with the failing resource path.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrExtraction.Error(), e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return ErrExtraction }

// NewExtractionError creates an extraction error for a resource path.
func NewExtractionError(path string, err error) error {
	return &ExtractionError{Path: path, Err: err}
}
