package jikan

import (
	"errors"
	"fmt"

	"coanime/internal/microservices/http-api/repository"
)

var (
	// ErrCatalogUnavailable matches every *CatalogUnavailableError.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrUnmappableType marks records whose media type has no local equivalent.
	ErrUnmappableType = errors.New("unmappable media type")
	// ErrEmptySlug marks names with no characters a slug can be built from.
	ErrEmptySlug = errors.New("name yields an empty slug")
	// ErrDuplicateEntity marks records whose slug already exists locally,
	// including unique-index violations raised by the store.
	ErrDuplicateEntity = repository.ErrDuplicateKey
	// ErrSyncInProgress is returned when another run holds the sync lock.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrTitleNotFound is returned by stores when a title id does not exist.
	ErrTitleNotFound = repository.ErrNotFound
)

// CatalogUnavailableError is a transport failure or non-2xx response from the catalog.
type CatalogUnavailableError struct {
	Endpoint   string
	StatusCode int // 0 for transport errors
	Body       string
	Cause      error
}

func (e *CatalogUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog unavailable: %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("catalog unavailable: %s: %v", e.Endpoint, e.Cause)
}

func (e *CatalogUnavailableError) Unwrap() error {
	return e.Cause
}

func (e *CatalogUnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// FieldParseError is a catalog value that could not be converted to a local field.
type FieldParseError struct {
	Field string
	Value string
	Cause error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Cause)
}

func (e *FieldParseError) Unwrap() error {
	return e.Cause
}
