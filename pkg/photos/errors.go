package photos

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("photos: empty file")

	// ErrTooLarge is returned when an upload exceeds Config.MaxBytes.
	ErrTooLarge = errors.New("photos: file too large")

	// ErrUnsupportedType is returned when the content is not a decodable image.
	ErrUnsupportedType = errors.New("photos: unsupported file type")

	// ErrDecode is returned when image data is corrupt.
	ErrDecode = errors.New("photos: cannot decode image")

	// ErrTooMany is returned when a batch exceeds Config.MaxFiles.
	ErrTooMany = errors.New("photos: too many files")
)

// IngestError reports which upload failed.
type IngestError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	return fmt.Sprintf("photos: %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *IngestError) Unwrap() error { return e.Err }
