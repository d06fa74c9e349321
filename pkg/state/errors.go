package state

import "errors"

var (
	// ErrNoPhotos is returned when browsing an empty collection.
	ErrNoPhotos = errors.New("state: photo collection is empty")

	// ErrUnknownPhoto is returned when selecting an ID that is not in the collection.
	ErrUnknownPhoto = errors.New("state: unknown photo")
)
